package services

import (
	"context"
	"errors"
	"time"

	"afftrack/internal/models"
	"afftrack/internal/repositories/interfaces"
	"afftrack/internal/utils"
	"afftrack/pkg/logger"
	"afftrack/pkg/payout"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BatchProcessResult reports per-item outcomes of a batch process call.
// One settlement failing never aborts the rest.
type BatchProcessResult struct {
	ProcessedCount int                `json:"processed_count"`
	FailedCount    int                `json:"failed_count"`
	Items          []BatchProcessItem `json:"items"`
}

type BatchProcessItem struct {
	SettlementID string                  `json:"settlement_id"`
	Status       models.SettlementStatus `json:"status,omitempty"`
	Error        string                  `json:"error,omitempty"`
}

// SettlementService batches unsettled conversions into settlements and
// drives the pending -> processing -> completed/failed state machine.
type SettlementService interface {
	CreateBatch(ctx context.Context, affiliateID primitive.ObjectID, periodLabel string) (*models.Settlement, error)
	Process(ctx context.Context, settlementID primitive.ObjectID) (*models.Settlement, error)
	ProcessBatch(ctx context.Context, settlementIDs []primitive.ObjectID) (*BatchProcessResult, error)
	Get(ctx context.Context, settlementID primitive.ObjectID) (*models.Settlement, error)
	ListByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Settlement, int64, error)
}

type settlementService struct {
	settlementRepo interfaces.SettlementRepository
	conversionRepo interfaces.ConversionRepository
	affiliateRepo  interfaces.AffiliateRepository
	provider       payout.Provider
	logger         *logger.Logger
}

func NewSettlementService(
	settlementRepo interfaces.SettlementRepository,
	conversionRepo interfaces.ConversionRepository,
	affiliateRepo interfaces.AffiliateRepository,
	provider payout.Provider,
	log *logger.Logger,
) SettlementService {
	return &settlementService{
		settlementRepo: settlementRepo,
		conversionRepo: conversionRepo,
		affiliateRepo:  affiliateRepo,
		provider:       provider,
		logger:         log,
	}
}

// CreateBatch claims every unsettled conversion of the affiliate under a
// pre-generated settlement id. The claim is a per-record CAS from null, so
// two concurrent batches for one affiliate split the unsettled set instead
// of double-claiming any record. The total is recomputed from the claimed
// records, never trusted from a running counter.
func (s *settlementService) CreateBatch(ctx context.Context, affiliateID primitive.ObjectID, periodLabel string) (*models.Settlement, error) {
	if _, err := s.affiliateRepo.GetByID(ctx, affiliateID); err != nil {
		return nil, err
	}

	settlementID := primitive.NewObjectID()

	claimed, err := s.conversionRepo.ClaimUnsettled(ctx, affiliateID, settlementID)
	if err != nil {
		return nil, err
	}
	if claimed == 0 {
		return nil, ErrNothingToSettle
	}

	conversions, err := s.conversionRepo.GetBySettlementID(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	currency := ""
	conversionIDs := make([]primitive.ObjectID, 0, len(conversions))
	for _, conversion := range conversions {
		total = total.Add(conversion.CommissionAmount.Decimal)
		conversionIDs = append(conversionIDs, conversion.ID)
		if currency == "" {
			currency = conversion.Currency
		}
	}

	settlement := &models.Settlement{
		ID:              settlementID,
		AffiliateID:     affiliateID,
		PeriodLabel:     periodLabel,
		ConversionIDs:   conversionIDs,
		TotalCommission: models.NewMoney(total),
		Currency:        currency,
		Status:          models.SettlementStatusPending,
	}

	if err := s.settlementRepo.Create(ctx, settlement); err != nil {
		return nil, err
	}

	s.logger.LogSettlementEvent(settlementID, "created", map[string]interface{}{
		"affiliate_id":     affiliateID.Hex(),
		"period":           periodLabel,
		"conversion_count": len(conversionIDs),
		"total_commission": total.String(),
	})

	return settlement, nil
}

// Process drives one settlement through the payout. The CAS on
// pending->processing is the double-payment guard: a duplicate call on an
// in-flight or finished settlement fails fast with ErrInvalidState and
// never reaches the provider. failed is terminal; re-paying a failed
// settlement is a manual operation, not a state transition.
func (s *settlementService) Process(ctx context.Context, settlementID primitive.ObjectID) (*models.Settlement, error) {
	settlement, err := s.settlementRepo.GetByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	ok, err := s.settlementRepo.TransitionStatus(ctx, settlementID, models.SettlementStatusPending, models.SettlementStatusProcessing, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	affiliate, err := s.affiliateRepo.GetByID(ctx, settlement.AffiliateID)
	if err != nil {
		s.failSettlement(ctx, settlementID, "affiliate lookup failed: "+err.Error())
		return s.settlementRepo.GetByID(ctx, settlementID)
	}

	response, err := s.provider.Payout(ctx, &payout.Request{
		SettlementID: settlementID.Hex(),
		AffiliateID:  affiliate.ID.Hex(),
		Destination:  affiliate.PayoutAccountID,
		Amount:       settlement.TotalCommission.Decimal,
		Currency:     settlement.Currency,
		Description:  "Affiliate commission settlement " + settlement.PeriodLabel,
	})
	if err != nil {
		// Payout failures surface as settlement status, not as an error to
		// the caller of Process.
		s.failSettlement(ctx, settlementID, err.Error())
		return s.settlementRepo.GetByID(ctx, settlementID)
	}

	now := time.Now()
	_, err = s.settlementRepo.TransitionStatus(ctx, settlementID, models.SettlementStatusProcessing, models.SettlementStatusCompleted, map[string]interface{}{
		"payout_ref":   response.PayoutRef,
		"processed_at": now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogSettlementEvent(settlementID, "completed", map[string]interface{}{
		"payout_ref": response.PayoutRef,
	})

	return s.settlementRepo.GetByID(ctx, settlementID)
}

func (s *settlementService) failSettlement(ctx context.Context, settlementID primitive.ObjectID, reason string) {
	_, err := s.settlementRepo.TransitionStatus(ctx, settlementID, models.SettlementStatusProcessing, models.SettlementStatusFailed, map[string]interface{}{
		"failure_reason": reason,
	})
	if err != nil {
		s.logger.WithError(err).WithSettlementID(settlementID).Error("Failed to mark settlement as failed")
		return
	}

	s.logger.LogSettlementEvent(settlementID, "failed", map[string]interface{}{
		"reason": reason,
	})
}

func (s *settlementService) ProcessBatch(ctx context.Context, settlementIDs []primitive.ObjectID) (*BatchProcessResult, error) {
	result := &BatchProcessResult{
		Items: make([]BatchProcessItem, 0, len(settlementIDs)),
	}

	for _, settlementID := range settlementIDs {
		item := BatchProcessItem{SettlementID: settlementID.Hex()}

		settlement, err := s.Process(ctx, settlementID)
		switch {
		case err != nil:
			item.Error = err.Error()
			result.FailedCount++
		case settlement.Status == models.SettlementStatusCompleted:
			item.Status = settlement.Status
			result.ProcessedCount++
		default:
			item.Status = settlement.Status
			if settlement.FailureReason != "" {
				item.Error = settlement.FailureReason
			}
			result.FailedCount++
		}

		result.Items = append(result.Items, item)
	}

	return result, nil
}

func (s *settlementService) Get(ctx context.Context, settlementID primitive.ObjectID) (*models.Settlement, error) {
	settlement, err := s.settlementRepo.GetByID(ctx, settlementID)
	if err != nil {
		if errors.Is(err, ErrSettlementNotFound) {
			return nil, ErrSettlementNotFound
		}
		return nil, err
	}
	return settlement, nil
}

func (s *settlementService) ListByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Settlement, int64, error) {
	return s.settlementRepo.ListByAffiliate(ctx, affiliateID, params)
}
