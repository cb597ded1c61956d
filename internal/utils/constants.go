package utils

import "time"

// Application constants
const (
	DefaultPageSize = 20
	MinPageSize     = 1
	MaxPageSize     = 100
)

// Referral program constants
const (
	ReferralCodeLength       = 8
	DefaultCommissionRateBps = 500
	AttributionCookieName    = "affiliate_ref"
	AttributionCookieTTL     = 30 * 24 * time.Hour
	DefaultRejectionReason   = "application did not meet program requirements"
)

// HTTP status messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error messages
const (
	ErrInvalidInput     = "invalid input"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrValidationFailed = "validation failed"
)

// Cache keys
const (
	CacheReferralCodePrefix = "referral_code:"
	CacheAffiliatePrefix    = "affiliate:"
	CacheSessionPrefix      = "session:"
)
