package services

import "errors"

// Domain errors. Handlers map these to HTTP statuses; everything else is a
// 500. Attribution callers treat ErrCodeNotFound and ErrCodeInactive as
// silent no-ops.
var (
	ErrCodeNotFound        = errors.New("referral code not found")
	ErrCodeInactive        = errors.New("referral code is not active")
	ErrUnknownAffiliate    = errors.New("affiliate account not found")
	ErrDuplicateConversion = errors.New("conversion already recorded for order")
	ErrNothingToSettle     = errors.New("no unsettled conversions for affiliate")
	ErrInvalidState        = errors.New("invalid state for requested transition")
	ErrAffiliateNotFound   = errors.New("affiliate not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrSettlementNotFound  = errors.New("settlement not found")
)
