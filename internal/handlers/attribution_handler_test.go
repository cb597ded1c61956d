package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"afftrack/internal/config"
	"afftrack/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubAttributionService struct {
	result   *services.AttributionResult
	lastCode string
	lastMeta *services.ClickMetadata
}

func (s *stubAttributionService) Attribute(ctx context.Context, code, existingCookie string, meta *services.ClickMetadata) *services.AttributionResult {
	s.lastCode = code
	s.lastMeta = meta
	return s.result
}

func attributionTestConfig() *config.AffiliateConfig {
	return &config.AffiliateConfig{
		CookieName:          "affiliate_ref",
		CookieTTL:           30 * 24 * time.Hour,
		CookiePath:          "/",
		ReferralParam:       "ref",
		AttributionFallback: "/",
	}
}

func newAttributionRouter(stub *stubAttributionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAttributionHandler(stub, attributionTestConfig())
	router.GET("/attribution", handler.HandleAttribution)
	return router
}

func TestHandleAttributionSetsCookieAndRedirects(t *testing.T) {
	require := require.New(t)

	affiliateID := primitive.NewObjectID()
	stub := &stubAttributionService{result: &services.AttributionResult{
		SetCookie:   affiliateID.Hex(),
		CookieTTL:   30 * 24 * time.Hour,
		AffiliateID: affiliateID,
		Attributed:  true,
	}}
	router := newAttributionRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/attribution?ref=abc123&return_to=%2Fproducts%2F42%3Fref%3Dabc123", nil)
	req.Header.Set("Referer", "https://blog.example.com/review")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(http.StatusFound, recorder.Code)
	// The referral parameter never survives into the redirect target.
	require.Equal("/products/42", recorder.Header().Get("Location"))
	require.Equal("abc123", stub.lastCode)
	require.Equal("https://blog.example.com/review", stub.lastMeta.Referrer)

	cookies := recorder.Result().Cookies()
	require.Len(cookies, 1)
	require.Equal("affiliate_ref", cookies[0].Name)
	require.Equal(affiliateID.Hex(), cookies[0].Value)
	require.Equal(int((30 * 24 * time.Hour).Seconds()), cookies[0].MaxAge)
	require.True(cookies[0].HttpOnly)
}

func TestHandleAttributionNoCookieOnFailedResolution(t *testing.T) {
	require := require.New(t)

	stub := &stubAttributionService{result: &services.AttributionResult{}}
	router := newAttributionRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/attribution?ref=badcode", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	// Still a redirect; the visitor cannot tell the code was bad.
	require.Equal(http.StatusFound, recorder.Code)
	require.Equal("/", recorder.Header().Get("Location"))
	require.Empty(recorder.Result().Cookies())
}

func TestHandleAttributionRejectsAbsoluteRedirects(t *testing.T) {
	require := require.New(t)

	stub := &stubAttributionService{result: &services.AttributionResult{}}
	router := newAttributionRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/attribution?ref=abc123&return_to=https%3A%2F%2Fevil.example.com%2F", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(http.StatusFound, recorder.Code)
	require.Equal("/", recorder.Header().Get("Location"))
}
