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

type affiliateRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewAffiliateRepository(db *mongo.Database, cache services.CacheService) interfaces.AffiliateRepository {
	return &affiliateRepository{
		collection: db.Collection("affiliates"),
		cache:      cache,
	}
}

func (r *affiliateRepository) Create(ctx context.Context, affiliate *models.AffiliateAccount) error {
	if affiliate.ID.IsZero() {
		affiliate.ID = primitive.NewObjectID()
	}
	affiliate.CreatedAt = time.Now()
	affiliate.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, affiliate)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("referral code %s already issued: %w", affiliate.ReferralCode, err)
		}
		return fmt.Errorf("failed to create affiliate: %w", err)
	}

	return nil
}

func (r *affiliateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AffiliateAccount, error) {
	// Try cache first
	cacheKey := utils.CacheAffiliatePrefix + id.Hex()
	if r.cache != nil {
		var affiliate models.AffiliateAccount
		if err := r.cache.Get(ctx, cacheKey, &affiliate); err == nil {
			return &affiliate, nil
		}
	}

	var affiliate models.AffiliateAccount
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&affiliate)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrAffiliateNotFound
		}
		return nil, fmt.Errorf("failed to get affiliate: %w", err)
	}

	r.cacheAffiliate(ctx, &affiliate)

	return &affiliate, nil
}

func (r *affiliateRepository) GetByReferralCode(ctx context.Context, code string) (*models.AffiliateAccount, error) {
	var affiliate models.AffiliateAccount
	err := r.collection.FindOne(ctx, bson.M{"referral_code": code}).Decode(&affiliate)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to get affiliate by referral code: %w", err)
	}

	return &affiliate, nil
}

func (r *affiliateRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update affiliate: %w", err)
	}
	if result.MatchedCount == 0 {
		return services.ErrAffiliateNotFound
	}

	r.invalidateAffiliateCache(ctx, id)

	return nil
}

func (r *affiliateRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.AffiliateStatus) error {
	return r.Update(ctx, id, map[string]interface{}{"status": status})
}

func (r *affiliateRepository) UpdateCommissionRate(ctx context.Context, id primitive.ObjectID, rateBps int64) error {
	return r.Update(ctx, id, map[string]interface{}{"commission_rate_bps": rateBps})
}

func (r *affiliateRepository) List(ctx context.Context, status models.AffiliateStatus, params *utils.PaginationParams) ([]*models.AffiliateAccount, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count affiliates: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list affiliates: %w", err)
	}
	defer cursor.Close(ctx)

	var affiliates []*models.AffiliateAccount
	if err := cursor.All(ctx, &affiliates); err != nil {
		return nil, 0, fmt.Errorf("failed to decode affiliates: %w", err)
	}

	return affiliates, total, nil
}

func (r *affiliateRepository) cacheAffiliate(ctx context.Context, affiliate *models.AffiliateAccount) {
	if r.cache == nil {
		return
	}
	cacheKey := utils.CacheAffiliatePrefix + affiliate.ID.Hex()
	r.cache.Set(ctx, cacheKey, affiliate, 10*time.Minute)
}

func (r *affiliateRepository) invalidateAffiliateCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}
	r.cache.Delete(ctx, utils.CacheAffiliatePrefix+id.Hex())
}
