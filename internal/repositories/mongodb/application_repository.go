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

type applicationRepository struct {
	collection *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) interfaces.ApplicationRepository {
	return &applicationRepository{
		collection: db.Collection("affiliate_applications"),
	}
}

func (r *applicationRepository) Create(ctx context.Context, application *models.AffiliateApplication) error {
	if application.ID.IsZero() {
		application.ID = primitive.NewObjectID()
	}
	application.Status = models.ApplicationStatusPending
	application.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, application)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AffiliateApplication, error) {
	var application models.AffiliateApplication
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&application)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, services.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &application, nil
}

// TransitionStatus filters on the expected current status so a review can
// only land once, regardless of concurrent admin clicks.
func (r *applicationRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.ApplicationStatus, updates map[string]interface{}) (bool, error) {
	set := bson.M{"status": to}
	for k, v := range updates {
		set[k] = v
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, fmt.Errorf("failed to transition application status: %w", err)
	}

	return result.MatchedCount > 0, nil
}

func (r *applicationRepository) List(ctx context.Context, status models.ApplicationStatus, params *utils.PaginationParams) ([]*models.AffiliateApplication, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	defer cursor.Close(ctx)

	var applications []*models.AffiliateApplication
	if err := cursor.All(ctx, &applications); err != nil {
		return nil, 0, fmt.Errorf("failed to decode applications: %w", err)
	}

	return applications, total, nil
}
