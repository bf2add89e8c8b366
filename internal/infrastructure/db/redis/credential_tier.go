package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/appliancehub/console-api/internal/core/domain"
)

const defaultCredentialTTL = 12 * time.Hour

// CredentialTier is the session-scoped credential storage tier. Records
// live under a per-kind key with a TTL so an unattended console session
// lapses on its own; explicit logout deletes them earlier.
// Key format: console:cred:<kind>
type CredentialTier struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCredentialTier creates a CredentialTier wrapping the given client.
// If ttl <= 0, defaultCredentialTTL is used.
func NewCredentialTier(client *redis.Client, ttl time.Duration) *CredentialTier {
	if ttl <= 0 {
		ttl = defaultCredentialTTL
	}
	return &CredentialTier{client: client, ttl: ttl}
}

func (t *CredentialTier) Put(ctx context.Context, kind domain.Kind, rec domain.CredentialRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal credential record: %w", err)
	}
	if err := t.client.Set(ctx, t.key(kind), data, t.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (t *CredentialTier) Get(ctx context.Context, kind domain.Kind) (*domain.CredentialRecord, error) {
	data, err := t.client.Get(ctx, t.key(kind)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec domain.CredentialRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		// Hand the raw payload back as the principal so the store's
		// corruption self-heal path makes the call.
		return &domain.CredentialRecord{Principal: data}, nil
	}
	return &rec, nil
}

func (t *CredentialTier) Delete(ctx context.Context, kind domain.Kind) error {
	return t.client.Del(ctx, t.key(kind)).Err()
}

func (t *CredentialTier) key(kind domain.Kind) string {
	return "console:cred:" + string(kind)
}
