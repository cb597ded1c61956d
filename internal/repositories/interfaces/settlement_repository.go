package interfaces

import (
	"context"

	"afftrack/internal/models"
	"afftrack/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettlementRepository interface {
	Create(ctx context.Context, settlement *models.Settlement) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Settlement, error)

	// TransitionStatus compare-and-swaps the status field, applying the
	// extra updates in the same write. Returns false when the settlement
	// was not in the expected `from` status, which callers surface as
	// ErrInvalidState. This is the double-payout guard: pending->processing
	// can only succeed once.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.SettlementStatus, updates map[string]interface{}) (bool, error)

	ListByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Settlement, int64, error)
	ListByStatus(ctx context.Context, status models.SettlementStatus, params *utils.PaginationParams) ([]*models.Settlement, int64, error)
}
