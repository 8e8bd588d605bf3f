package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/pokedex/internal/models"
)

// MongoStore keeps the history of importer runs.
type MongoStore struct {
	col *mongo.Collection
}

// ConnectMongo dials uri and checks the server answers. Callers disconnect
// the returned client.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Client, *MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, NewMongoStore(client.Database(database)), nil
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("import_runs")}
}

func (s *MongoStore) InsertRun(ctx context.Context, run *models.ImportRun) error {
	if _, err := s.col.InsertOne(ctx, run); err != nil {
		return fmt.Errorf("mongo insert run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *MongoStore) RecentRuns(ctx context.Context, limit int64) ([]models.ImportRun, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}).SetLimit(limit)
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find runs: %w", err)
	}
	defer cur.Close(ctx)

	var runs []models.ImportRun
	if err := cur.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("mongo decode runs: %w", err)
	}
	return runs, nil
}
