package mongodb

import (
	"context"
	"fmt"
	"time"

	"afftrack/internal/models"
	"afftrack/internal/repositories/interfaces"
	"afftrack/internal/services"
	"afftrack/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type conversionRepository struct {
	collection *mongo.Collection
}

func NewConversionRepository(db *mongo.Database) interfaces.ConversionRepository {
	return &conversionRepository{
		collection: db.Collection("conversions"),
	}
}

// Create inserts and lets the unique order_id index arbitrate concurrent
// retries. Two racing inserts for the same order cannot both succeed, which
// is the whole idempotency story for at-least-once order events.
func (r *conversionRepository) Create(ctx context.Context, conversion *models.ConversionRecord) error {
	if conversion.ID.IsZero() {
		conversion.ID = primitive.NewObjectID()
	}
	conversion.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, conversion)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return services.ErrDuplicateConversion
		}
		return fmt.Errorf("failed to create conversion: %w", err)
	}

	return nil
}

func (r *conversionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ConversionRecord, error) {
	var conversion models.ConversionRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conversion)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("conversion not found")
		}
		return nil, fmt.Errorf("failed to get conversion: %w", err)
	}

	return &conversion, nil
}

func (r *conversionRepository) GetByOrderID(ctx context.Context, orderID string) (*models.ConversionRecord, error) {
	var conversion models.ConversionRecord
	err := r.collection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&conversion)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("conversion not found for order %s", orderID)
		}
		return nil, fmt.Errorf("failed to get conversion by order id: %w", err)
	}

	return &conversion, nil
}

// ClaimUnsettled is the atomic claim step of batch creation. Each matched
// document flips settlement_id from null to settlementID in a single
// update; a record claimed by a concurrent batch no longer matches the
// filter and stays out of this one.
func (r *conversionRepository) ClaimUnsettled(ctx context.Context, affiliateID, settlementID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{"affiliate_id": affiliateID, "settlement_id": nil},
		bson.M{"$set": bson.M{"settlement_id": settlementID}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to claim unsettled conversions: %w", err)
	}

	return result.ModifiedCount, nil
}

func (r *conversionRepository) GetBySettlementID(ctx context.Context, settlementID primitive.ObjectID) ([]*models.ConversionRecord, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"settlement_id": settlementID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversions for settlement: %w", err)
	}
	defer cursor.Close(ctx)

	var conversions []*models.ConversionRecord
	if err := cursor.All(ctx, &conversions); err != nil {
		return nil, fmt.Errorf("failed to decode conversions: %w", err)
	}

	return conversions, nil
}

func (r *conversionRepository) ListByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ConversionRecord, int64, error) {
	filter := bson.M{"affiliate_id": affiliateID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count conversions: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list conversions: %w", err)
	}
	defer cursor.Close(ctx)

	var conversions []*models.ConversionRecord
	if err := cursor.All(ctx, &conversions); err != nil {
		return nil, 0, fmt.Errorf("failed to decode conversions: %w", err)
	}

	return conversions, total, nil
}

func (r *conversionRepository) TotalsByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (*models.ConversionTotals, error) {
	pipeline := []bson.M{
		{"$match": bson.M{
			"affiliate_id": affiliateID,
			"created_at":   bson.M{"$gte": since},
		}},
		{"$group": bson.M{
			"_id":        nil,
			"count":      bson.M{"$sum": 1},
			"revenue":    bson.M{"$sum": "$order_total"},
			"commission": bson.M{"$sum": "$commission_amount"},
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate conversion totals: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.ConversionTotals
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode conversion totals: %w", err)
	}

	if len(results) == 0 {
		return &models.ConversionTotals{}, nil
	}

	return &results[0], nil
}

func (r *conversionRepository) DailyTotals(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (map[string]*models.ConversionTotals, error) {
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
			"count":      bson.M{"$sum": 1},
			"revenue":    bson.M{"$sum": "$order_total"},
			"commission": bson.M{"$sum": "$commission_amount"},
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily conversions: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Day                     string `bson:"_id"`
		models.ConversionTotals `bson:",inline"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode daily conversions: %w", err)
	}

	totals := make(map[string]*models.ConversionTotals, len(results))
	for i := range results {
		totals[results[i].Day] = &results[i].ConversionTotals
	}

	return totals, nil
}
