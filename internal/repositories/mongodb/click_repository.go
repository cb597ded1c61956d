package mongodb

import (
	"context"
	"fmt"
	"time"

	"afftrack/internal/models"
	"afftrack/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type clickRepository struct {
	collection *mongo.Collection
}

func NewClickRepository(db *mongo.Database) interfaces.ClickRepository {
	return &clickRepository{
		collection: db.Collection("affiliate_clicks"),
	}
}

func (r *clickRepository) Create(ctx context.Context, click *models.ClickEvent) error {
	if click.ID.IsZero() {
		click.ID = primitive.NewObjectID()
	}
	click.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, click)
	if err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	return nil
}

func (r *clickRepository) CountByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (int64, error) {
	filter := bson.M{
		"affiliate_id": affiliateID,
		"created_at":   bson.M{"$gte": since},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}

	return count, nil
}

func (r *clickRepository) DailyCounts(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{
			"affiliate_id": affiliateID,
			"created_at":   bson.M{"$gte": since},
		}},
		{"$group": bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$created_at",
			}},
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily clicks: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Day   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode daily clicks: %w", err)
	}

	counts := make(map[string]int64, len(results))
	for _, result := range results {
		counts[result.Day] = result.Count
	}

	return counts, nil
}
