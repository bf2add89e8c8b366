package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appliancehub/console-api/internal/core/domain"
)

const credentialCollection = "console_credentials"

// CredentialRepository is the durable credential tier: one document per
// principal kind, written when the operator ticked "remember me".
// Records survive console restarts and are removed only by logout, a
// remember-me change, or corruption self-heal.
type CredentialRepository struct {
	coll *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database) *CredentialRepository {
	return &CredentialRepository{coll: db.Collection(credentialCollection)}
}

type mongoCredential struct {
	Kind       string `bson:"_id"`
	Token      string `bson:"token,omitempty"`
	Principal  string `bson:"principal"`
	Mode       string `bson:"mode"`
	RememberMe bool   `bson:"remember_me"`
	UpdatedAt  int64  `bson:"updated_at"`
}

func (r *CredentialRepository) Put(ctx context.Context, kind domain.Kind, rec domain.CredentialRecord) error {
	doc := mongoCredential{
		Kind:       string(kind),
		Token:      rec.Token,
		Principal:  rec.Principal,
		Mode:       string(rec.Mode),
		RememberMe: rec.RememberMe,
		UpdatedAt:  time.Now().Unix(),
	}

	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": string(kind)},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Get(ctx context.Context, kind domain.Kind) (*domain.CredentialRecord, error) {
	var doc mongoCredential
	if err := r.coll.FindOne(ctx, bson.M{"_id": string(kind)}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}

	return &domain.CredentialRecord{
		Token:      doc.Token,
		Principal:  doc.Principal,
		Mode:       domain.AuthMode(doc.Mode),
		RememberMe: doc.RememberMe,
	}, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, kind domain.Kind) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": string(kind)}); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
