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

const auditCollection = "console_audit"

// AuditRepository persists the console's operational audit trail.
// Writes are best-effort from the caller's perspective; a lost entry
// never fails the operation that produced it.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAudit struct {
	ID          string `bson:"_id"`
	Kind        string `bson:"kind"`
	PrincipalID string `bson:"principal_id,omitempty"`
	Action      string `bson:"action"`
	Detail      string `bson:"detail,omitempty"`
	At          int64  `bson:"at"`
}

func (r *AuditRepository) Record(ctx context.Context, entry domain.AuditEntry) error {
	doc := mongoAudit{
		ID:          entry.ID,
		Kind:        string(entry.Kind),
		PrincipalID: entry.PrincipalID,
		Action:      string(entry.Action),
		Detail:      entry.Detail,
		At:          entry.At.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first.
func (r *AuditRepository) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []domain.AuditEntry
	for cursor.Next(ctx) {
		var doc mongoAudit
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode audit entry: %w", err)
		}
		entries = append(entries, domain.AuditEntry{
			ID:          doc.ID,
			Kind:        domain.Kind(doc.Kind),
			PrincipalID: doc.PrincipalID,
			Action:      domain.AuditAction(doc.Action),
			Detail:      doc.Detail,
			At:          time.Unix(doc.At, 0).UTC(),
		})
	}
	return entries, cursor.Err()
}
