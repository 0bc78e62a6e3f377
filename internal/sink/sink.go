// Package sink wraps the document store holding historical records and live
// samples. One Store is constructed per run and passed into each pipeline.
package sink

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkraev/aqwatch/internal/models"
)

const (
	historicalCollection = "historical"
	liveCollection       = "live_samples"
)

// Store wraps document store access for both collections.
type Store struct {
	client     *mongo.Client
	historical *mongo.Collection
	live       *mongo.Collection
}

// New connects to the document store and verifies the connection.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect sink: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping sink: %w", err)
	}

	db := client.Database(database)
	return &Store{
		client:     client,
		historical: db.Collection(historicalCollection),
		live:       db.Collection(liveCollection),
	}, nil
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// LiveSampleExists reports whether a live sample with the given epoch
// timestamp is already stored.
func (s *Store) LiveSampleExists(ctx context.Context, timestampUnix int64) (bool, error) {
	err := s.live.FindOne(ctx, bson.M{"timestamp_unix": timestampUnix}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find live sample: %w", err)
	}
	return true, nil
}

// InsertLiveSample stores one live sample as a single atomic insert.
func (s *Store) InsertLiveSample(ctx context.Context, sample models.LiveSample) error {
	if _, err := s.live.InsertOne(ctx, sample); err != nil {
		return fmt.Errorf("insert live sample: %w", err)
	}
	return nil
}

// InsertHistorical stores the cleaned historical records in one batch.
func (s *Store) InsertHistorical(ctx context.Context, records []models.HistoricalRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	docs := make([]any, len(records))
	for i, rec := range records {
		docs[i] = rec
	}

	res, err := s.historical.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert historical records: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// AllLiveSamples reads back every stored live sample in sink iteration order.
func (s *Store) AllLiveSamples(ctx context.Context) ([]bson.M, error) {
	cursor, err := s.live.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find live samples: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read live samples: %w", err)
	}
	return docs, nil
}
