package services

import (
	"context"

	"afftrack/internal/models"
	"afftrack/internal/repositories/interfaces"
	"afftrack/internal/utils"
	"afftrack/pkg/logger"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClickMetadata carries optional client context for a click. Both fields
// are stored as opaque strings and never parsed.
type ClickMetadata struct {
	Referrer  string
	UserAgent string
}

// TrackingService records click and conversion events. Conversions snapshot
// the affiliate's commission rate at record time, which is what keeps
// settlements auditable after rate changes.
type TrackingService interface {
	RecordClick(ctx context.Context, affiliateID primitive.ObjectID, linkID string, meta *ClickMetadata) (*models.ClickEvent, error)
	RecordConversion(ctx context.Context, orderID string, affiliateID primitive.ObjectID, orderTotal decimal.Decimal, currency string) (*models.ConversionRecord, error)
}

type trackingService struct {
	affiliateRepo  interfaces.AffiliateRepository
	clickRepo      interfaces.ClickRepository
	conversionRepo interfaces.ConversionRepository
	logger         *logger.Logger
}

func NewTrackingService(
	affiliateRepo interfaces.AffiliateRepository,
	clickRepo interfaces.ClickRepository,
	conversionRepo interfaces.ConversionRepository,
	log *logger.Logger,
) TrackingService {
	return &trackingService{
		affiliateRepo:  affiliateRepo,
		clickRepo:      clickRepo,
		conversionRepo: conversionRepo,
		logger:         log,
	}
}

func (s *trackingService) RecordClick(ctx context.Context, affiliateID primitive.ObjectID, linkID string, meta *ClickMetadata) (*models.ClickEvent, error) {
	if _, err := s.affiliateRepo.GetByID(ctx, affiliateID); err != nil {
		return nil, ErrUnknownAffiliate
	}

	click := &models.ClickEvent{
		AffiliateID: affiliateID,
		LinkID:      linkID,
	}
	if meta != nil {
		click.Referrer = meta.Referrer
		click.UserAgent = meta.UserAgent
	}

	if err := s.clickRepo.Create(ctx, click); err != nil {
		return nil, err
	}

	return click, nil
}

// RecordConversion is idempotent for a given order id: the unique index on
// order_id decides the winner of concurrent retries, and the loser gets
// ErrDuplicateConversion. A suspended affiliate still earns commission here;
// suspension blocks new attribution, not settlement of conversions already
// attributed.
func (s *trackingService) RecordConversion(ctx context.Context, orderID string, affiliateID primitive.ObjectID, orderTotal decimal.Decimal, currency string) (*models.ConversionRecord, error) {
	affiliate, err := s.affiliateRepo.GetByID(ctx, affiliateID)
	if err != nil {
		s.logger.WithOrderID(orderID).WithAffiliateID(affiliateID).Error("Conversion for unknown affiliate")
		return nil, ErrUnknownAffiliate
	}

	rateBps := affiliate.CommissionRateBps
	commission := CalculateCommission(orderTotal, rateBps, currency)

	conversion := &models.ConversionRecord{
		OrderID:           orderID,
		AffiliateID:       affiliateID,
		OrderTotal:        models.NewMoney(orderTotal),
		Currency:          currency,
		CommissionAmount:  models.NewMoney(commission),
		CommissionRateBps: rateBps,
	}

	if err := s.conversionRepo.Create(ctx, conversion); err != nil {
		if err == ErrDuplicateConversion {
			s.logger.WithOrderID(orderID).Debug("Duplicate conversion ignored")
		}
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"order_id":     orderID,
		"affiliate_id": affiliateID.Hex(),
		"commission":   commission.String(),
		"currency":     currency,
	}).Info("Conversion recorded")

	return conversion, nil
}

// CalculateCommission derives the commission for an order total at the
// given rate in basis points, rounding half-up to the currency's minor
// unit. This runs exactly once per conversion; the result and the rate are
// persisted immutably on the record.
func CalculateCommission(orderTotal decimal.Decimal, rateBps int64, currency string) decimal.Decimal {
	rate := decimal.NewFromInt(rateBps).Div(decimal.NewFromInt(10000))
	// decimal.Round is half-away-from-zero, which is half-up for the
	// non-negative amounts handled here.
	return orderTotal.Mul(rate).Round(utils.CurrencyMinorUnits(currency))
}
