package services

import (
	"context"
	"testing"

	"afftrack/internal/models"
	"afftrack/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAffiliateStatsRollup(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	affiliateRepo := newFakeAffiliateRepo()
	clickRepo := newFakeClickRepo()
	conversionRepo := newFakeConversionRepo()

	tracking := NewTrackingService(affiliateRepo, clickRepo, conversionRepo, logger.NewNop())
	service := NewStatsService(affiliateRepo, clickRepo, conversionRepo, logger.NewNop())

	affiliate := newTestAffiliate(t, affiliateRepo, models.AffiliateStatusActive, 500)
	other := newTestAffiliate(t, affiliateRepo, models.AffiliateStatusActive, 500)

	for i := 0; i < 5; i++ {
		_, err := tracking.RecordClick(ctx, affiliate.ID, "", nil)
		require.NoError(err)
	}
	_, err := tracking.RecordClick(ctx, other.ID, "", nil)
	require.NoError(err)

	_, err = tracking.RecordConversion(ctx, "order-1", affiliate.ID, decimal.RequireFromString("1000.00"), "USD")
	require.NoError(err)
	_, err = tracking.RecordConversion(ctx, "order-2", affiliate.ID, decimal.RequireFromString("500.00"), "USD")
	require.NoError(err)
	_, err = tracking.RecordConversion(ctx, "order-3", other.ID, decimal.RequireFromString("100.00"), "USD")
	require.NoError(err)

	stats, err := service.AffiliateStats(ctx, affiliate.ID, "7d")
	require.NoError(err)
	require.Equal(affiliate.ID.Hex(), stats.AffiliateID)
	require.Equal("7d", stats.Period)
	require.Equal(int64(5), stats.TotalClicks)
	require.Equal(int64(2), stats.TotalConversions)
	require.Equal("1500", stats.TotalRevenue.String())
	require.Equal("75", stats.TotalCommission.String())
}

func TestAffiliateStatsTrendIsDense(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	affiliateRepo := newFakeAffiliateRepo()
	clickRepo := newFakeClickRepo()
	conversionRepo := newFakeConversionRepo()

	tracking := NewTrackingService(affiliateRepo, clickRepo, conversionRepo, logger.NewNop())
	service := NewStatsService(affiliateRepo, clickRepo, conversionRepo, logger.NewNop())

	affiliate := newTestAffiliate(t, affiliateRepo, models.AffiliateStatusActive, 500)
	_, err := tracking.RecordClick(ctx, affiliate.ID, "", nil)
	require.NoError(err)

	stats, err := service.AffiliateStats(ctx, affiliate.ID, "7d")
	require.NoError(err)

	// One bucket per day over the window, zero-filled where nothing
	// happened, today's bucket carrying the click.
	require.Len(stats.Trend, 8)

	var total int64
	for _, day := range stats.Trend {
		total += day.Clicks
		require.False(day.Date.IsZero())
	}
	require.Equal(int64(1), total)
	require.Equal(int64(1), stats.Trend[len(stats.Trend)-1].Clicks)
}

func TestAffiliateStatsUnknownAffiliate(t *testing.T) {
	require := require.New(t)

	service := NewStatsService(newFakeAffiliateRepo(), newFakeClickRepo(), newFakeConversionRepo(), logger.NewNop())

	_, err := service.AffiliateStats(context.Background(), primitive.NewObjectID(), "30d")
	require.ErrorIs(err, ErrAffiliateNotFound)
}
