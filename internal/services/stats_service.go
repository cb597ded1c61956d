package services

import (
	"context"
	"time"

	"afftrack/internal/models"
	"afftrack/internal/repositories/interfaces"
	"afftrack/pkg/logger"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatsService is the read-only rollup layer. It never mutates anything.
type StatsService interface {
	AffiliateStats(ctx context.Context, affiliateID primitive.ObjectID, period string) (*models.AffiliateStats, error)
}

type statsService struct {
	affiliateRepo  interfaces.AffiliateRepository
	clickRepo      interfaces.ClickRepository
	conversionRepo interfaces.ConversionRepository
	logger         *logger.Logger
}

func NewStatsService(
	affiliateRepo interfaces.AffiliateRepository,
	clickRepo interfaces.ClickRepository,
	conversionRepo interfaces.ConversionRepository,
	log *logger.Logger,
) StatsService {
	return &statsService{
		affiliateRepo:  affiliateRepo,
		clickRepo:      clickRepo,
		conversionRepo: conversionRepo,
		logger:         log,
	}
}

func (s *statsService) AffiliateStats(ctx context.Context, affiliateID primitive.ObjectID, period string) (*models.AffiliateStats, error) {
	if _, err := s.affiliateRepo.GetByID(ctx, affiliateID); err != nil {
		return nil, err
	}

	days := periodDays(period)
	since := time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)

	clicks, err := s.clickRepo.CountByAffiliate(ctx, affiliateID, since)
	if err != nil {
		return nil, err
	}

	totals, err := s.conversionRepo.TotalsByAffiliate(ctx, affiliateID, since)
	if err != nil {
		return nil, err
	}

	dailyClicks, err := s.clickRepo.DailyCounts(ctx, affiliateID, since)
	if err != nil {
		return nil, err
	}

	dailyConversions, err := s.conversionRepo.DailyTotals(ctx, affiliateID, since)
	if err != nil {
		return nil, err
	}

	return &models.AffiliateStats{
		AffiliateID:      affiliateID.Hex(),
		Period:           period,
		TotalClicks:      clicks,
		TotalConversions: totals.Count,
		TotalRevenue:     totals.Revenue,
		TotalCommission:  totals.Commission,
		Trend:            buildTrend(since, days, dailyClicks, dailyConversions),
	}, nil
}

// buildTrend emits one bucket per day over the window, zero-filled so
// dashboards get a dense series.
func buildTrend(since time.Time, days int, dailyClicks map[string]int64, dailyConversions map[string]*models.ConversionTotals) []models.DailyStat {
	trend := make([]models.DailyStat, 0, days+1)

	for day := 0; day <= days; day++ {
		date := since.AddDate(0, 0, day)
		key := date.Format("2006-01-02")

		stat := models.DailyStat{
			Date:       date,
			Clicks:     dailyClicks[key],
			Revenue:    models.NewMoney(decimal.Zero),
			Commission: models.NewMoney(decimal.Zero),
		}
		if totals, ok := dailyConversions[key]; ok {
			stat.Conversions = totals.Count
			stat.Revenue = totals.Revenue
			stat.Commission = totals.Commission
		}

		trend = append(trend, stat)
	}

	return trend
}

func periodDays(period string) int {
	switch period {
	case "7d":
		return 7
	case "90d":
		return 90
	default:
		return 30
	}
}
