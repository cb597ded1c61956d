package services

import (
	"context"
	"testing"
	"time"

	"afftrack/internal/config"
	"afftrack/internal/models"
	"afftrack/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type attributionFixture struct {
	affiliateRepo *fakeAffiliateRepo
	clickRepo     *fakeClickRepo
	service       AttributionService
}

func newAttributionFixture() *attributionFixture {
	affiliateRepo := newFakeAffiliateRepo()
	clickRepo := newFakeClickRepo()
	cfg := &config.AffiliateConfig{
		CookieTTL:      30 * 24 * time.Hour,
		CodeLength:     8,
		DefaultRateBps: 500,
	}

	registry := NewRegistryService(affiliateRepo, nil, cfg, logger.NewNop())
	tracking := NewTrackingService(affiliateRepo, clickRepo, newFakeConversionRepo(), logger.NewNop())

	return &attributionFixture{
		affiliateRepo: affiliateRepo,
		clickRepo:     clickRepo,
		service:       NewAttributionService(registry, tracking, cfg, logger.NewNop()),
	}
}

func TestAttributeFirstTouchSetsCookie(t *testing.T) {
	require := require.New(t)

	f := newAttributionFixture()
	affiliate := newTestAffiliate(t, f.affiliateRepo, models.AffiliateStatusActive, 500)

	result := f.service.Attribute(context.Background(), affiliate.ReferralCode, "", &ClickMetadata{Referrer: "https://blog.example.com"})
	require.True(result.Attributed)
	require.Equal(affiliate.ID.Hex(), result.SetCookie)
	require.Equal(30*24*time.Hour, result.CookieTTL)
	require.Equal(1, f.clickRepo.count())
}

func TestAttributeFirstTouchWins(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	f := newAttributionFixture()
	first := newTestAffiliate(t, f.affiliateRepo, models.AffiliateStatusActive, 500)
	second := newTestAffiliate(t, f.affiliateRepo, models.AffiliateStatusActive, 500)

	// The visitor already carries the first affiliate's cookie; a hit on
	// the second affiliate's link must not replace it.
	result := f.service.Attribute(ctx, second.ReferralCode, first.ID.Hex(), nil)
	require.False(result.Attributed)
	require.Empty(result.SetCookie)

	// The second affiliate still gets the click counted.
	require.Equal(1, f.clickRepo.count())
	require.Equal(second.ID, f.clickRepo.clicks[0].AffiliateID)
}

func TestAttributeSilentOnBadCode(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	f := newAttributionFixture()
	suspended := newTestAffiliate(t, f.affiliateRepo, models.AffiliateStatusSuspended, 500)

	// Unknown code: no cookie, no click, no error.
	result := f.service.Attribute(ctx, "nosuchcode", "", nil)
	require.False(result.Attributed)
	require.Empty(result.SetCookie)
	require.True(result.AffiliateID.IsZero())

	// Suspended affiliate's code behaves the same.
	result = f.service.Attribute(ctx, suspended.ReferralCode, "", nil)
	require.False(result.Attributed)
	require.Empty(result.SetCookie)

	require.Equal(0, f.clickRepo.count())
}

func TestAttributeReplacesMalformedCookie(t *testing.T) {
	require := require.New(t)

	f := newAttributionFixture()
	affiliate := newTestAffiliate(t, f.affiliateRepo, models.AffiliateStatusActive, 500)

	// A cookie that is not an object id is treated as absent.
	result := f.service.Attribute(context.Background(), affiliate.ReferralCode, "garbage-value", nil)
	require.True(result.Attributed)
	require.Equal(affiliate.ID.Hex(), result.SetCookie)
}

func TestAttributeKeepsCookieForSameAffiliate(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	f := newAttributionFixture()
	affiliate := newTestAffiliate(t, f.affiliateRepo, models.AffiliateStatusActive, 500)

	first := f.service.Attribute(ctx, affiliate.ReferralCode, "", nil)
	require.True(first.Attributed)

	again := f.service.Attribute(ctx, affiliate.ReferralCode, first.SetCookie, nil)
	require.False(again.Attributed)
	require.Empty(again.SetCookie)
	require.Equal(affiliate.ID, again.AffiliateID)

	// Both hits counted as clicks.
	require.Equal(2, f.clickRepo.count())
}

func TestAttributeCookieFromRemovedAffiliateStays(t *testing.T) {
	require := require.New(t)

	f := newAttributionFixture()
	affiliate := newTestAffiliate(t, f.affiliateRepo, models.AffiliateStatusActive, 500)

	// The existing cookie references an affiliate this deployment has
	// never seen. It is well-formed, so first touch still wins.
	stranger := primitive.NewObjectID().Hex()
	result := f.service.Attribute(context.Background(), affiliate.ReferralCode, stranger, nil)
	require.False(result.Attributed)
	require.Empty(result.SetCookie)
}
