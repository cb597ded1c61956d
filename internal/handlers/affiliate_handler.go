package handlers

import (
	"errors"
	"net/http"

	"afftrack/internal/services"
	"afftrack/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AffiliateHandler struct {
	affiliateService  services.AffiliateService
	registryService   services.RegistryService
	settlementService services.SettlementService
	statsService      services.StatsService
}

func NewAffiliateHandler(
	affiliateService services.AffiliateService,
	registryService services.RegistryService,
	settlementService services.SettlementService,
	statsService services.StatsService,
) *AffiliateHandler {
	return &AffiliateHandler{
		affiliateService:  affiliateService,
		registryService:   registryService,
		settlementService: settlementService,
		statsService:      statsService,
	}
}

type updateRateRequest struct {
	CommissionRateBps *int64 `json:"commission_rate_bps" binding:"required"`
}

// GetAffiliate retrieves affiliate account details
func (h *AffiliateHandler) GetAffiliate(c *gin.Context) {
	affiliateID, ok := h.affiliateIDParam(c)
	if !ok {
		return
	}

	affiliate, err := h.affiliateService.Get(c.Request.Context(), affiliateID)
	if err != nil {
		h.respondAffiliateError(c, err, "AFFILIATE_FETCH_FAILED")
		return
	}

	utils.SuccessResponse(c, "Affiliate retrieved", affiliate)
}

// GetStats serves the reporting rollup for an affiliate
func (h *AffiliateHandler) GetStats(c *gin.Context) {
	affiliateID, ok := h.affiliateIDParam(c)
	if !ok {
		return
	}

	period := c.DefaultQuery("period", "30d")

	stats, err := h.statsService.AffiliateStats(c.Request.Context(), affiliateID, period)
	if err != nil {
		h.respondAffiliateError(c, err, "STATS_FETCH_FAILED")
		return
	}

	utils.SuccessResponse(c, "Stats retrieved", stats)
}

// ListConversions lists an affiliate's conversions, newest first
func (h *AffiliateHandler) ListConversions(c *gin.Context) {
	affiliateID, ok := h.affiliateIDParam(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	conversions, total, err := h.affiliateService.ListConversions(c.Request.Context(), affiliateID, params)
	if err != nil {
		h.respondAffiliateError(c, err, "CONVERSION_LIST_FAILED")
		return
	}

	meta := &utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)}
	utils.SuccessResponseWithMeta(c, "Conversions retrieved", conversions, meta)
}

// ListSettlements lists an affiliate's settlements
func (h *AffiliateHandler) ListSettlements(c *gin.Context) {
	affiliateID, ok := h.affiliateIDParam(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	settlements, total, err := h.settlementService.ListByAffiliate(c.Request.Context(), affiliateID, params)
	if err != nil {
		h.respondAffiliateError(c, err, "SETTLEMENT_LIST_FAILED")
		return
	}

	meta := &utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)}
	utils.SuccessResponseWithMeta(c, "Settlements retrieved", settlements, meta)
}

// UpdateCommissionRate changes the rate applied to future conversions
func (h *AffiliateHandler) UpdateCommissionRate(c *gin.Context) {
	affiliateID, ok := h.affiliateIDParam(c)
	if !ok {
		return
	}

	var request updateRateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	affiliate, err := h.affiliateService.UpdateCommissionRate(c.Request.Context(), affiliateID, *request.CommissionRateBps)
	if err != nil {
		if errors.Is(err, services.ErrAffiliateNotFound) {
			utils.NotFoundResponse(c, "Affiliate")
			return
		}
		utils.BadRequestResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, "Commission rate updated", affiliate)
}

// SuspendAffiliate deactivates the affiliate's referral code. Existing
// attributions keep converting; only new attribution stops.
func (h *AffiliateHandler) SuspendAffiliate(c *gin.Context) {
	affiliateID, ok := h.affiliateIDParam(c)
	if !ok {
		return
	}

	if err := h.registryService.Suspend(c.Request.Context(), affiliateID); err != nil {
		h.respondAffiliateError(c, err, "AFFILIATE_SUSPEND_FAILED")
		return
	}

	utils.SuccessResponse(c, "Affiliate suspended", nil)
}

// ActivateAffiliate re-enables the affiliate's referral code
func (h *AffiliateHandler) ActivateAffiliate(c *gin.Context) {
	affiliateID, ok := h.affiliateIDParam(c)
	if !ok {
		return
	}

	if err := h.registryService.Activate(c.Request.Context(), affiliateID); err != nil {
		h.respondAffiliateError(c, err, "AFFILIATE_ACTIVATE_FAILED")
		return
	}

	utils.SuccessResponse(c, "Affiliate activated", nil)
}

func (h *AffiliateHandler) affiliateIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	affiliateID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid affiliate ID")
		return primitive.NilObjectID, false
	}
	return affiliateID, true
}

func (h *AffiliateHandler) respondAffiliateError(c *gin.Context, err error, code string) {
	if errors.Is(err, services.ErrAffiliateNotFound) {
		utils.NotFoundResponse(c, "Affiliate")
		return
	}
	utils.ErrorResponse(c, http.StatusInternalServerError, code, err.Error())
}
