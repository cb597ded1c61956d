package services

import (
	"context"
	"time"

	"afftrack/internal/config"
	"afftrack/internal/models"
	"afftrack/internal/repositories/interfaces"
	"afftrack/internal/utils"
	"afftrack/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const codeIssueAttempts = 5

// ApplicationService manages the applicant lifecycle. Approval is the only
// path that creates an affiliate account; rejection is terminal and
// reapplying requires a brand-new application.
type ApplicationService interface {
	Submit(ctx context.Context, application *models.AffiliateApplication) (*models.AffiliateApplication, error)
	Approve(ctx context.Context, applicationID, reviewerID primitive.ObjectID) (*models.AffiliateAccount, error)
	Reject(ctx context.Context, applicationID, reviewerID primitive.ObjectID, reason string) (*models.AffiliateApplication, error)
	Get(ctx context.Context, applicationID primitive.ObjectID) (*models.AffiliateApplication, error)
	List(ctx context.Context, status models.ApplicationStatus, params *utils.PaginationParams) ([]*models.AffiliateApplication, int64, error)
}

type applicationService struct {
	applicationRepo interfaces.ApplicationRepository
	affiliateRepo   interfaces.AffiliateRepository
	registry        RegistryService
	config          *config.AffiliateConfig
	logger          *logger.Logger
}

func NewApplicationService(
	applicationRepo interfaces.ApplicationRepository,
	affiliateRepo interfaces.AffiliateRepository,
	registry RegistryService,
	cfg *config.AffiliateConfig,
	log *logger.Logger,
) ApplicationService {
	return &applicationService{
		applicationRepo: applicationRepo,
		affiliateRepo:   affiliateRepo,
		registry:        registry,
		config:          cfg,
		logger:          log,
	}
}

// Submit accepts duplicate emails on purpose: a rejected applicant reapplies
// with a fresh application, and the reviewer decides again.
func (s *applicationService) Submit(ctx context.Context, application *models.AffiliateApplication) (*models.AffiliateApplication, error) {
	if err := s.applicationRepo.Create(ctx, application); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"application_id": application.ID.Hex(),
		"email":          application.Email,
	}).Info("Affiliate application submitted")

	return application, nil
}

// Approve CASes the application out of pending, creates the affiliate
// account with a freshly issued referral code, and activates the code in
// the registry. Approving a non-pending application fails ErrInvalidState.
func (s *applicationService) Approve(ctx context.Context, applicationID, reviewerID primitive.ObjectID) (*models.AffiliateAccount, error) {
	application, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ok, err := s.applicationRepo.TransitionStatus(ctx, applicationID, models.ApplicationStatusPending, models.ApplicationStatusApproved, map[string]interface{}{
		"reviewer_id": reviewerID,
		"reviewed_at": now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	affiliate, err := s.createAccount(ctx, application)
	if err != nil {
		// Without an account the approval must not stick, or retries would
		// hit the CAS and dead-end on ErrInvalidState forever.
		s.revertApproval(ctx, applicationID)
		return nil, err
	}

	// The account is created active; Activate only clears any stale
	// registry cache entry, so a failure here is not worth unwinding the
	// approval over.
	if err := s.registry.Activate(ctx, affiliate.ID); err != nil {
		s.logger.WithError(err).WithAffiliateID(affiliate.ID).Warn("Failed to refresh registry after approval")
	}

	s.logger.WithFields(map[string]interface{}{
		"application_id": applicationID.Hex(),
		"affiliate_id":   affiliate.ID.Hex(),
		"referral_code":  affiliate.ReferralCode,
		"reviewer_id":    reviewerID.Hex(),
	}).Info("Affiliate application approved")

	return affiliate, nil
}

func (s *applicationService) Reject(ctx context.Context, applicationID, reviewerID primitive.ObjectID, reason string) (*models.AffiliateApplication, error) {
	if reason == "" {
		reason = utils.DefaultRejectionReason
	}

	if _, err := s.applicationRepo.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}

	now := time.Now()
	ok, err := s.applicationRepo.TransitionStatus(ctx, applicationID, models.ApplicationStatusPending, models.ApplicationStatusRejected, map[string]interface{}{
		"rejection_reason": reason,
		"reviewer_id":      reviewerID,
		"reviewed_at":      now,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidState
	}

	s.logger.WithFields(map[string]interface{}{
		"application_id": applicationID.Hex(),
		"reviewer_id":    reviewerID.Hex(),
		"reason":         reason,
	}).Info("Affiliate application rejected")

	return s.applicationRepo.GetByID(ctx, applicationID)
}

func (s *applicationService) Get(ctx context.Context, applicationID primitive.ObjectID) (*models.AffiliateApplication, error) {
	return s.applicationRepo.GetByID(ctx, applicationID)
}

func (s *applicationService) List(ctx context.Context, status models.ApplicationStatus, params *utils.PaginationParams) ([]*models.AffiliateApplication, int64, error) {
	return s.applicationRepo.List(ctx, status, params)
}

// revertApproval rolls the application back to pending after a failed
// account creation. Best effort: if the rollback itself fails, the stuck
// approval is at least visible in the log.
func (s *applicationService) revertApproval(ctx context.Context, applicationID primitive.ObjectID) {
	ok, err := s.applicationRepo.TransitionStatus(ctx, applicationID, models.ApplicationStatusApproved, models.ApplicationStatusPending, nil)
	if err != nil || !ok {
		s.logger.WithField("application_id", applicationID.Hex()).Error("Failed to revert approval after account creation failure")
	}
}

func (s *applicationService) createAccount(ctx context.Context, application *models.AffiliateApplication) (*models.AffiliateAccount, error) {
	affiliate := &models.AffiliateAccount{
		Email:             application.Email,
		DisplayName:       application.DisplayName,
		Website:           application.Website,
		Status:            models.AffiliateStatusActive,
		CommissionRateBps: s.config.DefaultRateBps,
		ApplicationID:     application.ID,
	}

	// Codes are random, so collisions are rare; retry issuance a few times
	// against the unique index rather than pre-checking.
	var err error
	for attempt := 0; attempt < codeIssueAttempts; attempt++ {
		affiliate.ID = primitive.NilObjectID
		affiliate.ReferralCode = utils.GenerateReferralCode(s.config.CodeLength)
		if err = s.affiliateRepo.Create(ctx, affiliate); err == nil {
			return affiliate, nil
		}
	}

	return nil, err
}
