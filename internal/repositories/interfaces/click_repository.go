package interfaces

import (
	"context"
	"time"

	"afftrack/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ClickRepository interface {
	// Append-only; clicks are never updated or deleted.
	Create(ctx context.Context, click *models.ClickEvent) error

	CountByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (int64, error)

	// DailyCounts buckets click volume by UTC day for trend reporting.
	DailyCounts(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (map[string]int64, error)
}
