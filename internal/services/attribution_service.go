package services

import (
	"context"
	"time"

	"afftrack/internal/config"
	"afftrack/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttributionResult is the explicit input/output form of the attribution
// cookie. The handler owns translating this to Set-Cookie headers; the
// service never touches the request directly.
type AttributionResult struct {
	// SetCookie is non-empty when a new attribution cookie should be
	// written. Empty means leave the visitor's cookie state alone.
	SetCookie string
	CookieTTL time.Duration

	// AffiliateID of the resolved code, zero when resolution failed.
	AffiliateID primitive.ObjectID

	// Attributed reports whether this request established a new
	// attribution (first touch).
	Attributed bool
}

// AttributionService implements first-touch attribution. A valid existing
// cookie always wins over the incoming code; resolution failures are silent
// no-ops because attribution must never block navigation.
type AttributionService interface {
	Attribute(ctx context.Context, code, existingCookie string, meta *ClickMetadata) *AttributionResult
}

type attributionService struct {
	registry RegistryService
	tracking TrackingService
	config   *config.AffiliateConfig
	logger   *logger.Logger
}

func NewAttributionService(registry RegistryService, tracking TrackingService, cfg *config.AffiliateConfig, log *logger.Logger) AttributionService {
	return &attributionService{
		registry: registry,
		tracking: tracking,
		config:   cfg,
		logger:   log,
	}
}

func (s *attributionService) Attribute(ctx context.Context, code, existingCookie string, meta *ClickMetadata) *AttributionResult {
	result := &AttributionResult{}

	affiliateID, err := s.registry.Resolve(ctx, code)
	if err != nil {
		// Unknown or inactive codes are not errors, only no-ops.
		s.logger.LogAttributionEvent(code, "code_rejected", map[string]interface{}{"reason": err.Error()})
		return result
	}

	result.AffiliateID = affiliateID

	// Every resolved hit counts as a click, attributed or not; click
	// volume is the metric, not unique visitors.
	s.recordClick(ctx, affiliateID, meta)

	if existingCookie != "" {
		if _, err := primitive.ObjectIDFromHex(existingCookie); err == nil {
			// First-touch wins: an unexpired cookie is never replaced,
			// even for a different affiliate's link.
			s.logger.LogAttributionEvent(code, "first_touch_kept", map[string]interface{}{
				"existing_affiliate_id": existingCookie,
			})
			return result
		}
		// Malformed cookie value, fall through and re-attribute.
	}

	result.SetCookie = affiliateID.Hex()
	result.CookieTTL = s.config.CookieTTL
	result.Attributed = true

	s.logger.LogAttributionEvent(code, "cookie_set", map[string]interface{}{
		"affiliate_id": affiliateID.Hex(),
	})

	return result
}

func (s *attributionService) recordClick(ctx context.Context, affiliateID primitive.ObjectID, meta *ClickMetadata) {
	if _, err := s.tracking.RecordClick(ctx, affiliateID, "", meta); err != nil {
		// Click loss is tolerable; attribution is not allowed to fail the
		// request over it.
		s.logger.WithError(err).WithAffiliateID(affiliateID).Warn("Failed to record attribution click")
	}
}
