package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prakriti-darpan/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reportsCollection = "reports"

// MongoTable stores reports in the "reports" collection, one document per
// report, looked up by the "id" field.
type MongoTable struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoTable returns a table over db's reports collection.
func NewMongoTable(client *mongo.Client, db *mongo.Database) *MongoTable {
	return &MongoTable{
		client:  client,
		coll:    db.Collection(reportsCollection),
		timeout: 10 * time.Second,
	}
}

// EnsureIndexes creates the unique id index and the timestamp sort index.
func (t *MongoTable) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	_, err := t.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("mongo: create indexes: %w", err)
	}
	return nil
}

func (t *MongoTable) List(ctx context.Context) ([]models.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetProjection(bson.M{"_id": 0})

	cursor, err := t.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo: find reports: %w", err)
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("mongo: decode reports: %w", err)
	}
	return reports, nil
}

func (t *MongoTable) Get(ctx context.Context, id string) (models.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var report models.Report
	err := t.coll.FindOne(ctx, bson.M{"id": id}, options.FindOne().SetProjection(bson.M{"_id": 0})).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Report{}, ErrRowNotFound
	}
	if err != nil {
		return models.Report{}, fmt.Errorf("mongo: find report %q: %w", id, err)
	}
	return report, nil
}

func (t *MongoTable) Insert(ctx context.Context, report models.Report) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if _, err := t.coll.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("mongo: insert report %q: %w", report.ID, err)
	}
	return nil
}

func (t *MongoTable) InsertMany(ctx context.Context, reports []models.Report) error {
	if len(reports) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	docs := make([]interface{}, len(reports))
	for i, r := range reports {
		docs[i] = r
	}
	if _, err := t.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("mongo: insert %d reports: %w", len(reports), err)
	}
	return nil
}

func (t *MongoTable) Update(ctx context.Context, report models.Report) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if _, err := t.coll.ReplaceOne(ctx, bson.M{"id": report.ID}, report); err != nil {
		return fmt.Errorf("mongo: update report %q: %w", report.ID, err)
	}
	return nil
}

func (t *MongoTable) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if _, err := t.coll.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("mongo: delete report %q: %w", id, err)
	}
	return nil
}

func (t *MongoTable) Close(ctx context.Context) error {
	if t.client == nil {
		return nil
	}
	return t.client.Disconnect(ctx)
}
