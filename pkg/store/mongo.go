package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/cellplace/pkg/cache"
	errs "github.com/matzehuels/cellplace/pkg/errors"
)

// Defaults for MongoStore.
const (
	DefaultDatabase   = "cellplace"
	DefaultCollection = "runs"
)

// MongoStore keeps runs in a MongoDB collection. Network failures are
// retried on cache.DefaultBackoff.
type MongoStore struct {
	client  *mongo.Client
	runs    *mongo.Collection
	backoff cache.Backoff
}

// NewMongoStore connects to uri, pings the server and ensures the
// created_at index exists. An empty database selects DefaultDatabase.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if err := errs.ValidateURI(uri, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	if database == "" {
		database = DefaultDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	ping := func() error { return classifyMongo(client.Ping(ctx, nil)) }
	if err := cache.DefaultBackoff.Retry(ctx, ping); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStore{
		client:  client,
		runs:    client.Database(database).Collection(DefaultCollection),
		backoff: cache.DefaultBackoff,
	}
	_, err = s.runs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return s, nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, run *Run) error {
	if err := ValidateID(run.ID); err != nil {
		return err
	}
	err := s.backoff.Retry(ctx, func() error {
		_, err := s.runs.ReplaceOne(ctx, bson.M{"_id": run.ID}, run, options.Replace().SetUpsert(true))
		return classifyMongo(err)
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var run Run
	err := s.backoff.Retry(ctx, func() error {
		return classifyMongo(s.runs.FindOne(ctx, bson.M{"_id": id}).Decode(&run))
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	var runs []*Run
	err := s.backoff.Retry(ctx, func() error {
		cur, err := s.runs.Find(ctx, bson.D{}, opts)
		if err != nil {
			return classifyMongo(err)
		}
		runs = runs[:0]
		return classifyMongo(cur.All(ctx, &runs))
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Close implements Store.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// classifyMongo marks driver network errors as retryable.
func classifyMongo(err error) error {
	if err != nil && mongo.IsNetworkError(err) {
		return cache.Retryable(err)
	}
	return err
}

var _ Store = (*MongoStore)(nil)
