package interfaces

import (
	"context"

	"afftrack/internal/models"
	"afftrack/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApplicationRepository interface {
	Create(ctx context.Context, application *models.AffiliateApplication) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.AffiliateApplication, error)

	// TransitionStatus compare-and-swaps the status field and applies the
	// review metadata in the same update. Returns false when the document
	// was not in the expected `from` status.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.ApplicationStatus, updates map[string]interface{}) (bool, error)

	List(ctx context.Context, status models.ApplicationStatus, params *utils.PaginationParams) ([]*models.AffiliateApplication, int64, error)
}
