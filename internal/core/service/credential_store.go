package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/appliancehub/console-api/internal/core/domain"
	"github.com/appliancehub/console-api/internal/core/ports"
)

// CredentialStore arbitrates between the durable and session-scoped
// credential tiers. Invariant: after Save, exactly one tier holds the
// record for a given kind.
type CredentialStore struct {
	durable ports.CredentialTier
	session ports.CredentialTier
	log     zerolog.Logger
}

func NewCredentialStore(durable, session ports.CredentialTier, log zerolog.Logger) *CredentialStore {
	return &CredentialStore{durable: durable, session: session, log: log}
}

// Save persists the credential to the tier selected by rememberMe and
// clears the other tier so the record never exists in both.
func (s *CredentialStore) Save(ctx context.Context, kind domain.Kind, cred domain.Credential, rememberMe bool) error {
	raw, err := json.Marshal(cred.Principal)
	if err != nil {
		return fmt.Errorf("serialize principal: %w", err)
	}

	rec := domain.CredentialRecord{
		Token:      cred.Token,
		Principal:  string(raw),
		Mode:       cred.Mode,
		RememberMe: rememberMe,
	}

	target, other := s.session, s.durable
	if rememberMe {
		target, other = s.durable, s.session
	}

	if err := target.Put(ctx, kind, rec); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	if err := other.Delete(ctx, kind); err != nil {
		return fmt.Errorf("clear opposite tier: %w", err)
	}
	return nil
}

// Load reads the durable tier first and falls back to the session tier.
// Corrupted principal JSON self-heals: both tiers are cleared and the
// caller sees an anonymous result, never a parse error. Tier read
// failures likewise degrade to an anonymous result so a flaky store
// cannot block startup.
func (s *CredentialStore) Load(ctx context.Context, kind domain.Kind) (*domain.Credential, error) {
	rec := s.read(ctx, kind, s.durable, "durable")
	if rec == nil {
		rec = s.read(ctx, kind, s.session, "session")
	}
	if rec == nil || rec.Principal == "" {
		return nil, nil
	}

	var principal domain.Principal
	if err := json.Unmarshal([]byte(rec.Principal), &principal); err != nil {
		s.log.Debug().Err(err).Str("kind", string(kind)).Msg("corrupted credential record, clearing both tiers")
		if clearErr := s.Clear(ctx, kind); clearErr != nil {
			s.log.Warn().Err(clearErr).Str("kind", string(kind)).Msg("failed to clear corrupted credential")
		}
		return nil, nil
	}

	mode := rec.Mode
	if mode == "" {
		// Records written before the mode field existed: infer from token.
		mode = domain.AuthModeCookie
		if rec.Token != "" {
			mode = domain.AuthModeBearer
		}
	}

	return &domain.Credential{Principal: principal, Token: rec.Token, Mode: mode}, nil
}

// Clear removes the record for kind from both tiers.
func (s *CredentialStore) Clear(ctx context.Context, kind domain.Kind) error {
	return errors.Join(
		s.durable.Delete(ctx, kind),
		s.session.Delete(ctx, kind),
	)
}

func (s *CredentialStore) read(ctx context.Context, kind domain.Kind, tier ports.CredentialTier, name string) *domain.CredentialRecord {
	rec, err := tier.Get(ctx, kind)
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Str("tier", name).Msg("credential tier read failed")
		return nil
	}
	return rec
}
