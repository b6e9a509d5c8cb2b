package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

const snapshotCollection = "sales_snapshots"

// Repository archives closed-day sales snapshots.
type Repository interface {
	SaveSnapshot(ctx context.Context, snapshot models.SalesSnapshot) error
	ListSnapshots(ctx context.Context, from, to string) ([]models.SalesSnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := newRepository(client.Database(dbName).Collection(snapshotCollection))
	repo.client = client

	_, err = repo.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot index: %w", err)
	}

	return repo, nil
}

func newRepository(collection *mongo.Collection) *MongoDBRepository {
	return &MongoDBRepository{collection: collection}
}

// SaveSnapshot stores the snapshot, replacing any earlier copy for the same date.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.SalesSnapshot) error {
	if snapshot.Date == "" {
		return fmt.Errorf("snapshot date is required")
	}
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"date": snapshot.Date},
		snapshot,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save sales snapshot %s: %w", snapshot.Date, err)
	}
	return nil
}

// ListSnapshots returns snapshots with from <= date <= to, oldest first.
// Dates are YYYY-MM-DD so lexical order is calendar order.
func (r *MongoDBRepository) ListSnapshots(ctx context.Context, from, to string) ([]models.SalesSnapshot, error) {
	filter := bson.M{"date": bson.M{"$gte": from, "$lte": to}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query sales snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	snapshots := make([]models.SalesSnapshot, 0)
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode sales snapshots: %w", err)
	}
	return snapshots, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}
