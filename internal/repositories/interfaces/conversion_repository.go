package interfaces

import (
	"context"
	"time"

	"afftrack/internal/models"
	"afftrack/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConversionRepository interface {
	// Create relies on the unique order_id index for insert-if-absent
	// semantics and returns services.ErrDuplicateConversion on a
	// duplicate-key error. Never implemented as read-then-write.
	Create(ctx context.Context, conversion *models.ConversionRecord) error

	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ConversionRecord, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.ConversionRecord, error)

	// ClaimUnsettled atomically assigns settlementID to every conversion of
	// the affiliate whose settlement_id is still null, and reports how many
	// records were claimed. Two concurrent claims partition the unsettled
	// set; no record is ever claimed twice.
	ClaimUnsettled(ctx context.Context, affiliateID, settlementID primitive.ObjectID) (int64, error)

	// GetBySettlementID returns the claimed records ordered by creation
	// time, ties broken by id.
	GetBySettlementID(ctx context.Context, settlementID primitive.ObjectID) ([]*models.ConversionRecord, error)

	ListByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ConversionRecord, int64, error)

	// Reporting rollups
	TotalsByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (*models.ConversionTotals, error)
	DailyTotals(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (map[string]*models.ConversionTotals, error)
}
