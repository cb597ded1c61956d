package services

import (
	"context"
	"testing"

	"afftrack/internal/models"
	"afftrack/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestRegistry(affiliateRepo *fakeAffiliateRepo) RegistryService {
	return NewRegistryService(affiliateRepo, nil, testAffiliateConfig(), logger.NewNop())
}

func TestResolveActiveCode(t *testing.T) {
	require := require.New(t)

	affiliateRepo := newFakeAffiliateRepo()
	registry := newTestRegistry(affiliateRepo)
	affiliate := newTestAffiliate(t, affiliateRepo, models.AffiliateStatusActive, 500)

	resolved, err := registry.Resolve(context.Background(), affiliate.ReferralCode)
	require.NoError(err)
	require.Equal(affiliate.ID, resolved)
}

func TestResolveRejectsUnknownAndInactiveCodes(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	affiliateRepo := newFakeAffiliateRepo()
	registry := newTestRegistry(affiliateRepo)

	_, err := registry.Resolve(ctx, "nosuchcode")
	require.ErrorIs(err, ErrCodeNotFound)

	_, err = registry.Resolve(ctx, "")
	require.ErrorIs(err, ErrCodeNotFound)

	pending := newTestAffiliate(t, affiliateRepo, models.AffiliateStatusPending, 500)
	_, err = registry.Resolve(ctx, pending.ReferralCode)
	require.ErrorIs(err, ErrCodeInactive)

	suspended := newTestAffiliate(t, affiliateRepo, models.AffiliateStatusSuspended, 500)
	_, err = registry.Resolve(ctx, suspended.ReferralCode)
	require.ErrorIs(err, ErrCodeInactive)
}

func TestSuspendAndActivateRoundTrip(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	affiliateRepo := newFakeAffiliateRepo()
	registry := newTestRegistry(affiliateRepo)
	affiliate := newTestAffiliate(t, affiliateRepo, models.AffiliateStatusActive, 500)

	require.NoError(registry.Suspend(ctx, affiliate.ID))
	_, err := registry.Resolve(ctx, affiliate.ReferralCode)
	require.ErrorIs(err, ErrCodeInactive)

	// Idempotent: suspending twice is a no-op, not an error.
	require.NoError(registry.Suspend(ctx, affiliate.ID))

	require.NoError(registry.Activate(ctx, affiliate.ID))
	resolved, err := registry.Resolve(ctx, affiliate.ReferralCode)
	require.NoError(err)
	require.Equal(affiliate.ID, resolved)

	require.ErrorIs(registry.Suspend(ctx, primitive.NewObjectID()), ErrAffiliateNotFound)
}
