package services

import (
	"context"
	"errors"

	"afftrack/internal/config"
	"afftrack/internal/models"
	"afftrack/internal/repositories/interfaces"
	"afftrack/internal/utils"
	"afftrack/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegistryService maps referral codes to affiliate ids. Resolution is the
// hot path (every attributed page hit goes through it), so resolved codes
// are cached in redis for a short window. The affiliate document remains
// the authoritative source of status.
type RegistryService interface {
	Resolve(ctx context.Context, code string) (primitive.ObjectID, error)
	Activate(ctx context.Context, affiliateID primitive.ObjectID) error
	Suspend(ctx context.Context, affiliateID primitive.ObjectID) error
}

type cachedCodeEntry struct {
	AffiliateID string                 `json:"affiliate_id"`
	Status      models.AffiliateStatus `json:"status"`
}

type registryService struct {
	affiliateRepo interfaces.AffiliateRepository
	cache         CacheService
	config        *config.AffiliateConfig
	logger        *logger.Logger
}

func NewRegistryService(affiliateRepo interfaces.AffiliateRepository, cache CacheService, cfg *config.AffiliateConfig, log *logger.Logger) RegistryService {
	return &registryService{
		affiliateRepo: affiliateRepo,
		cache:         cache,
		config:        cfg,
		logger:        log,
	}
}

func (s *registryService) Resolve(ctx context.Context, code string) (primitive.ObjectID, error) {
	if code == "" {
		return primitive.NilObjectID, ErrCodeNotFound
	}

	if entry, ok := s.resolveFromCache(ctx, code); ok {
		return s.checkEntry(entry)
	}

	affiliate, err := s.affiliateRepo.GetByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return primitive.NilObjectID, ErrCodeNotFound
		}
		return primitive.NilObjectID, err
	}

	entry := &cachedCodeEntry{
		AffiliateID: affiliate.ID.Hex(),
		Status:      affiliate.Status,
	}
	s.cacheEntry(ctx, code, entry)

	return s.checkEntry(entry)
}

// Pending and suspended codes fail resolution rather than resolving to an
// id, so attribution never leaks to an account that has not been approved
// or has been switched off.
func (s *registryService) checkEntry(entry *cachedCodeEntry) (primitive.ObjectID, error) {
	if entry.Status != models.AffiliateStatusActive {
		return primitive.NilObjectID, ErrCodeInactive
	}

	affiliateID, err := primitive.ObjectIDFromHex(entry.AffiliateID)
	if err != nil {
		return primitive.NilObjectID, ErrCodeNotFound
	}

	return affiliateID, nil
}

func (s *registryService) Activate(ctx context.Context, affiliateID primitive.ObjectID) error {
	return s.setStatus(ctx, affiliateID, models.AffiliateStatusActive)
}

func (s *registryService) Suspend(ctx context.Context, affiliateID primitive.ObjectID) error {
	return s.setStatus(ctx, affiliateID, models.AffiliateStatusSuspended)
}

func (s *registryService) setStatus(ctx context.Context, affiliateID primitive.ObjectID, status models.AffiliateStatus) error {
	affiliate, err := s.affiliateRepo.GetByID(ctx, affiliateID)
	if err != nil {
		return err
	}

	// Idempotent: repeating a transition is a no-op.
	if affiliate.Status != status {
		if err := s.affiliateRepo.UpdateStatus(ctx, affiliateID, status); err != nil {
			return err
		}
		s.logger.WithAffiliateID(affiliateID).WithField("status", status).Info("Affiliate status changed")
	}

	s.invalidateCode(ctx, affiliate.ReferralCode)

	return nil
}

func (s *registryService) resolveFromCache(ctx context.Context, code string) (*cachedCodeEntry, bool) {
	if s.cache == nil {
		return nil, false
	}

	var entry cachedCodeEntry
	if err := s.cache.Get(ctx, utils.CacheReferralCodePrefix+code, &entry); err != nil {
		return nil, false
	}

	return &entry, true
}

func (s *registryService) cacheEntry(ctx context.Context, code string, entry *cachedCodeEntry) {
	if s.cache == nil {
		return
	}
	s.cache.Set(ctx, utils.CacheReferralCodePrefix+code, entry, s.config.CodeCacheTTL)
}

func (s *registryService) invalidateCode(ctx context.Context, code string) {
	if s.cache == nil || code == "" {
		return
	}
	s.cache.Delete(ctx, utils.CacheReferralCodePrefix+code)
}
