package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"afftrack/internal/config"
	"afftrack/internal/services"

	"github.com/gin-gonic/gin"
)

type AttributionHandler struct {
	attributionService services.AttributionService
	config             *config.AffiliateConfig
}

func NewAttributionHandler(attributionService services.AttributionService, cfg *config.AffiliateConfig) *AttributionHandler {
	return &AttributionHandler{
		attributionService: attributionService,
		config:             cfg,
	}
}

// HandleAttribution consumes a referral code, sets the attribution cookie on
// first touch, and always redirects. Bad codes never surface to the
// visitor; the only observable difference is whether a cookie was set.
func (h *AttributionHandler) HandleAttribution(c *gin.Context) {
	code := c.Query(h.config.ReferralParam)

	existingCookie, err := c.Cookie(h.config.CookieName)
	if err != nil {
		existingCookie = ""
	}

	meta := &services.ClickMetadata{
		Referrer:  c.GetHeader("Referer"),
		UserAgent: c.GetHeader("User-Agent"),
	}

	result := h.attributionService.Attribute(c.Request.Context(), code, existingCookie, meta)

	if result.SetCookie != "" {
		c.SetCookie(
			h.config.CookieName,
			result.SetCookie,
			int(result.CookieTTL.Seconds()),
			h.config.CookiePath,
			h.config.CookieDomain,
			h.config.CookieSecure,
			true,
		)
	}

	c.Redirect(http.StatusFound, h.redirectTarget(c))
}

// redirectTarget strips the referral parameter from the outward-facing URL
// so codes stay out of browser history and analytics. Only relative paths
// are honored to keep this from becoming an open redirect.
func (h *AttributionHandler) redirectTarget(c *gin.Context) string {
	target := c.Query("return_to")
	if target == "" {
		target = c.GetHeader("Referer")
	}
	if target == "" {
		return h.config.AttributionFallback
	}

	parsed, err := url.Parse(target)
	if err != nil || parsed.Host != "" || !strings.HasPrefix(parsed.Path, "/") {
		return h.config.AttributionFallback
	}

	query := parsed.Query()
	query.Del(h.config.ReferralParam)
	parsed.RawQuery = query.Encode()

	return parsed.String()
}
