package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/digitalbridge/mongoes/internal/db"
)

// Compile-time check: Store is a document store. It deliberately does not
// implement db.ReferenceFetcher; references are resolved with findOne.
var _ db.DocumentStore = (*Store)(nil)

// Config holds connection parameters for a MongoDB store.
type Config struct {
	URI      string
	Database string
}

// collection is the subset of *mongo.Collection the store uses.
type collection interface {
	findOne(ctx context.Context, filter bson.M) (bson.M, error)
	find(ctx context.Context, offset, limit int) ([]bson.M, error)
	count(ctx context.Context) (int64, error)
	replaceOne(ctx context.Context, filter bson.M, doc bson.M) error
	deleteOne(ctx context.Context, filter bson.M) (int64, error)
}

// Store implements db.DocumentStore on MongoDB.
type Store struct {
	client *mongo.Client
	coll   func(name string) collection
}

// NewStore connects to MongoDB. The connection is lazy; use WaitForReady to block until it answers.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database is required")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	database := client.Database(cfg.Database)
	return &Store{
		client: client,
		coll: func(name string) collection {
			return driverCollection{c: database.Collection(name)}
		},
	}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() {
	if s.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

// WaitForReady pings with exponential backoff until the server answers or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 100 * time.Millisecond
	eb.MaxInterval = 2 * time.Second
	eb.MaxElapsedTime = timeout

	if err := backoff.Retry(func() error { return s.Ping(ctx) }, backoff.WithContext(eb, ctx)); err != nil {
		return fmt.Errorf("timeout waiting for database: %w", err)
	}
	return nil
}

// FindOne loads the document with the given id.
func (s *Store) FindOne(ctx context.Context, collection string, id any) (map[string]any, error) {
	key, err := documentID(id)
	if err != nil {
		return nil, err
	}
	doc, err := s.coll(collection).findOne(ctx, bson.M{"_id": key})
	if err != nil {
		if errors.Is(err, db.ErrDocumentNotFound) {
			return nil, err
		}
		return nil, &db.Error{Op: db.OpFindOne, Err: err}
	}
	return normalizeMap(doc), nil
}

// Find returns a page of documents ordered by _id.
func (s *Store) Find(ctx context.Context, collection string, offset, limit int) ([]map[string]any, error) {
	raw, err := s.coll(collection).find(ctx, offset, limit)
	if err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}
	docs := make([]map[string]any, 0, len(raw))
	for _, d := range raw {
		docs = append(docs, normalizeMap(d))
	}
	return docs, nil
}

// Count returns the number of documents in collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	n, err := s.coll(collection).count(ctx)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return int(n), nil
}

// Save upserts the document under id.
func (s *Store) Save(ctx context.Context, collection string, id any, doc map[string]any) error {
	key, err := documentID(id)
	if err != nil {
		return err
	}
	out := denormalizeMap(doc)
	out["_id"] = key
	if err := s.coll(collection).replaceOne(ctx, bson.M{"_id": key}, out); err != nil {
		return &db.Error{Op: db.OpReplaceOne, Err: err}
	}
	return nil
}

// Delete removes the document under id.
func (s *Store) Delete(ctx context.Context, collection string, id any) error {
	key, err := documentID(id)
	if err != nil {
		return err
	}
	n, err := s.coll(collection).deleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return &db.Error{Op: db.OpDeleteOne, Err: err}
	}
	if n == 0 {
		return db.ErrDocumentNotFound
	}
	return nil
}

type driverCollection struct {
	c *mongo.Collection
}

func (d driverCollection) findOne(ctx context.Context, filter bson.M) (bson.M, error) {
	var doc bson.M
	if err := d.c.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.ErrDocumentNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (d driverCollection) find(ctx context.Context, offset, limit int) ([]bson.M, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := d.c.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (d driverCollection) count(ctx context.Context) (int64, error) {
	return d.c.CountDocuments(ctx, bson.D{})
}

func (d driverCollection) replaceOne(ctx context.Context, filter bson.M, doc bson.M) error {
	_, err := d.c.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	return err
}

func (d driverCollection) deleteOne(ctx context.Context, filter bson.M) (int64, error) {
	res, err := d.c.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
