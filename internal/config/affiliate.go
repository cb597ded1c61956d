package config

import (
	"time"
)

type AffiliateConfig struct {
	CookieName          string        `yaml:"cookie_name"`
	CookieTTL           time.Duration `yaml:"cookie_ttl"`
	CookiePath          string        `yaml:"cookie_path"`
	CookieDomain        string        `yaml:"cookie_domain"`
	CookieSecure        bool          `yaml:"cookie_secure"`
	ReferralParam       string        `yaml:"referral_param"`
	CodeLength          int           `yaml:"code_length"`
	DefaultRateBps      int64         `yaml:"default_rate_bps"`
	CodeCacheTTL        time.Duration `yaml:"code_cache_ttl"`
	AttributionFallback string        `yaml:"attribution_fallback"`
}

func loadAffiliateConfig() *AffiliateConfig {
	return &AffiliateConfig{
		CookieName:          getEnv("AFFILIATE_COOKIE_NAME", "affiliate_ref"),
		CookieTTL:           getEnvAsDuration("AFFILIATE_COOKIE_TTL", 30*24*time.Hour),
		CookiePath:          getEnv("AFFILIATE_COOKIE_PATH", "/"),
		CookieDomain:        getEnv("AFFILIATE_COOKIE_DOMAIN", ""),
		CookieSecure:        getEnvAsBool("AFFILIATE_COOKIE_SECURE", false),
		ReferralParam:       getEnv("AFFILIATE_REFERRAL_PARAM", "ref"),
		CodeLength:          getEnvAsInt("AFFILIATE_CODE_LENGTH", 8),
		DefaultRateBps:      getEnvAsInt64("AFFILIATE_DEFAULT_RATE_BPS", 500),
		CodeCacheTTL:        getEnvAsDuration("AFFILIATE_CODE_CACHE_TTL", 5*time.Minute),
		AttributionFallback: getEnv("AFFILIATE_ATTRIBUTION_FALLBACK", "/"),
	}
}
