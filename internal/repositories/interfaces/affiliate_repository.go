package interfaces

import (
	"context"

	"afftrack/internal/models"
	"afftrack/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AffiliateRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, affiliate *models.AffiliateAccount) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.AffiliateAccount, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Code registry lookups
	GetByReferralCode(ctx context.Context, code string) (*models.AffiliateAccount, error)

	// Status transitions (idempotent; authoritative status lives here)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.AffiliateStatus) error

	// Rate changes never touch historical conversion snapshots
	UpdateCommissionRate(ctx context.Context, id primitive.ObjectID, rateBps int64) error

	// Listing
	List(ctx context.Context, status models.AffiliateStatus, params *utils.PaginationParams) ([]*models.AffiliateAccount, int64, error)
}
