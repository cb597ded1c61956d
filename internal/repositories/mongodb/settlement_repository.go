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
)

type settlementRepository struct {
	collection *mongo.Collection
}

func NewSettlementRepository(db *mongo.Database) interfaces.SettlementRepository {
	return &settlementRepository{
		collection: db.Collection("settlements"),
	}
}

func (r *settlementRepository) Create(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID.IsZero() {
		settlement.ID = primitive.NewObjectID()
	}
	settlement.CreatedAt = time.Now()
	settlement.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, settlement)
	if err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}

	return nil
}

func (r *settlementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Settlement, error) {
	var settlement models.Settlement
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&settlement)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrSettlementNotFound
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return &settlement, nil
}

// TransitionStatus succeeds only when the settlement currently holds the
// `from` status. The pending->processing edge acts as the payout lock: the
// loser of a concurrent process call matches nothing and gets false back.
func (r *settlementRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.SettlementStatus, updates map[string]interface{}) (bool, error) {
	set := bson.M{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range updates {
		set[k] = v
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, fmt.Errorf("failed to transition settlement status: %w", err)
	}

	return result.MatchedCount > 0, nil
}

func (r *settlementRepository) ListByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Settlement, int64, error) {
	return r.list(ctx, bson.M{"affiliate_id": affiliateID}, params)
}

func (r *settlementRepository) ListByStatus(ctx context.Context, status models.SettlementStatus, params *utils.PaginationParams) ([]*models.Settlement, int64, error) {
	return r.list(ctx, bson.M{"status": status}, params)
}

func (r *settlementRepository) list(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Settlement, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count settlements: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer cursor.Close(ctx)

	var settlements []*models.Settlement
	if err := cursor.All(ctx, &settlements); err != nil {
		return nil, 0, fmt.Errorf("failed to decode settlements: %w", err)
	}

	return settlements, total, nil
}
