// Package mongodb implements the unresolved-event evidence archive.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"jobtrack_server/core/port/out"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionUnresolved = "unresolved_events"

	// Evidence older than this is no longer worth reviewing.
	unresolvedRetention = 90 * 24 * time.Hour
)

// ArchiveAdapter implements out.MessageArchive on MongoDB. Evidence is
// denormalized review material, not source of truth, so it lives next
// to a TTL index instead of the relational schema.
type ArchiveAdapter struct {
	collection *mongo.Collection
}

func NewArchiveAdapter(db *mongo.Database) *ArchiveAdapter {
	return &ArchiveAdapter{collection: db.Collection(collectionUnresolved)}
}

var _ out.MessageArchive = (*ArchiveAdapter)(nil)

// EnsureIndexes creates the lookup and TTL indexes.
func (a *ArchiveAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "evidence.event.received_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "evidence.event.message_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

type unresolvedDocument struct {
	UserID    string                  `bson:"user_id"`
	Evidence  *out.UnresolvedEvidence `bson:"evidence"`
	CreatedAt time.Time               `bson:"created_at"`
	ExpiresAt time.Time               `bson:"expires_at"`
}

func (a *ArchiveAdapter) StoreUnresolved(ctx context.Context, userID uuid.UUID, evidence *out.UnresolvedEvidence) error {
	now := time.Now().UTC()
	doc := unresolvedDocument{
		UserID:    userID.String(),
		Evidence:  evidence,
		CreatedAt: now,
		ExpiresAt: now.Add(unresolvedRetention),
	}

	filter := bson.M{
		"user_id":                   doc.UserID,
		"evidence.event.message_id": evidence.Event.MessageID,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := a.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("store unresolved evidence: %w", err)
	}
	return nil
}

func (a *ArchiveAdapter) ListUnresolved(ctx context.Context, userID uuid.UUID, limit int) ([]*out.UnresolvedEvidence, error) {
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "evidence.event.received_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := a.collection.Find(ctx, bson.M{"user_id": userID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("list unresolved evidence: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []unresolvedDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode unresolved evidence: %w", err)
	}

	evidence := make([]*out.UnresolvedEvidence, len(docs))
	for i, doc := range docs {
		evidence[i] = doc.Evidence
	}
	return evidence, nil
}
