// Package mongo provides a MongoDB implementation of the hermeticity ledger
// store.
//
// This implementation persists run digests to MongoDB for durability across
// restarts, suitable for the verify-hermeticity CLI command (spec §10.2)
// running against a shared CI ledger.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/gigainfosystems/buffi/registry/store"
)

// Store is a MongoDB implementation of the store.Store interface.
type Store struct {
	collection *mongo.Collection
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// runDocument is the MongoDB document representation of a store.Run.
type runDocument struct {
	ID          string               `bson:"_id"`
	APIBasename string               `bson:"api_basename"`
	Files       []fileDigestDocument `bson:"files"`
	RecordedAt  string               `bson:"recorded_at"`
}

type fileDigestDocument struct {
	Path   string `bson:"path"`
	SHA256 string `bson:"sha256"`
}

// New creates a new MongoDB store using the provided collection. The
// collection should be from a connected mongo-driver v2 client.
func New(collection *mongo.Collection) *Store {
	return &Store{collection: collection}
}

// SaveRun stores or replaces the run recorded under run.InputDigest.
func (s *Store) SaveRun(ctx context.Context, run *store.Run) error {
	doc := toDocument(run)
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": run.InputDigest}, doc, opts)
	if err != nil {
		return fmt.Errorf("mongodb save run %q: %w", run.InputDigest, err)
	}
	return nil
}

// GetRun retrieves the run recorded for digest.
func (s *Store) GetRun(ctx context.Context, digest string) (*store.Run, error) {
	var doc runDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": digest}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("mongodb get run %q: %w", digest, err)
	}
	return fromDocument(&doc), nil
}

// DeleteRun removes the run recorded for digest.
func (s *Store) DeleteRun(ctx context.Context, digest string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": digest})
	if err != nil {
		return fmt.Errorf("mongodb delete run %q: %w", digest, err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListRuns returns every recorded run from MongoDB.
func (s *Store) ListRuns(ctx context.Context) ([]*store.Run, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongodb list runs: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []runDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb list runs decode: %w", err)
	}

	out := make([]*store.Run, len(docs))
	for i, doc := range docs {
		out[i] = fromDocument(&doc)
	}
	return out, nil
}

func toDocument(run *store.Run) *runDocument {
	files := make([]fileDigestDocument, len(run.Files))
	for i, f := range run.Files {
		files[i] = fileDigestDocument{Path: f.Path, SHA256: f.SHA256}
	}
	return &runDocument{
		ID:          run.InputDigest,
		APIBasename: run.APIBasename,
		Files:       files,
		RecordedAt:  run.RecordedAt,
	}
}

func fromDocument(doc *runDocument) *store.Run {
	files := make([]store.FileDigest, len(doc.Files))
	for i, f := range doc.Files {
		files[i] = store.FileDigest{Path: f.Path, SHA256: f.SHA256}
	}
	return &store.Run{
		InputDigest: doc.ID,
		APIBasename: doc.APIBasename,
		Files:       files,
		RecordedAt:  doc.RecordedAt,
	}
}
