package services

import (
	"context"
	"fmt"

	"afftrack/internal/models"
	"afftrack/internal/repositories/interfaces"
	"afftrack/internal/utils"
	"afftrack/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AffiliateService covers account reads and the explicit rate-change
// operation. A rate change applies to future conversions only; the
// snapshots on recorded conversions are never revisited.
type AffiliateService interface {
	Get(ctx context.Context, affiliateID primitive.ObjectID) (*models.AffiliateAccount, error)
	UpdateCommissionRate(ctx context.Context, affiliateID primitive.ObjectID, rateBps int64) (*models.AffiliateAccount, error)
	ListConversions(ctx context.Context, affiliateID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ConversionRecord, int64, error)
}

type affiliateService struct {
	affiliateRepo  interfaces.AffiliateRepository
	conversionRepo interfaces.ConversionRepository
	logger         *logger.Logger
}

func NewAffiliateService(
	affiliateRepo interfaces.AffiliateRepository,
	conversionRepo interfaces.ConversionRepository,
	log *logger.Logger,
) AffiliateService {
	return &affiliateService{
		affiliateRepo:  affiliateRepo,
		conversionRepo: conversionRepo,
		logger:         log,
	}
}

func (s *affiliateService) Get(ctx context.Context, affiliateID primitive.ObjectID) (*models.AffiliateAccount, error) {
	return s.affiliateRepo.GetByID(ctx, affiliateID)
}

func (s *affiliateService) UpdateCommissionRate(ctx context.Context, affiliateID primitive.ObjectID, rateBps int64) (*models.AffiliateAccount, error) {
	if rateBps < 0 || rateBps > 10000 {
		return nil, fmt.Errorf("commission rate must be between 0 and 10000 basis points")
	}

	if err := s.affiliateRepo.UpdateCommissionRate(ctx, affiliateID, rateBps); err != nil {
		return nil, err
	}

	s.logger.WithAffiliateID(affiliateID).WithField("rate_bps", rateBps).Info("Commission rate changed")

	return s.affiliateRepo.GetByID(ctx, affiliateID)
}

func (s *affiliateService) ListConversions(ctx context.Context, affiliateID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ConversionRecord, int64, error) {
	if _, err := s.affiliateRepo.GetByID(ctx, affiliateID); err != nil {
		return nil, 0, err
	}
	return s.conversionRepo.ListByAffiliate(ctx, affiliateID, params)
}
