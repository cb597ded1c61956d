package handlers

import (
	"errors"
	"net/http"

	"afftrack/internal/services"
	"afftrack/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TrackingHandler struct {
	trackingService services.TrackingService
}

func NewTrackingHandler(trackingService services.TrackingService) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
	}
}

type recordClickRequest struct {
	AffiliateID string `json:"affiliate_id" binding:"required"`
	LinkID      string `json:"link_id"`
	Referrer    string `json:"referrer"`
	UserAgent   string `json:"user_agent"`
}

type recordConversionRequest struct {
	OrderID     string          `json:"order_id" binding:"required"`
	AffiliateID string          `json:"affiliate_id" binding:"required"`
	OrderTotal  decimal.Decimal `json:"order_total" binding:"required"`
	Currency    string          `json:"currency" binding:"required,len=3"`
}

// RecordClick appends a click event for an affiliate link
func (h *TrackingHandler) RecordClick(c *gin.Context) {
	var request recordClickRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	affiliateID, err := primitive.ObjectIDFromHex(request.AffiliateID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid affiliate ID")
		return
	}

	meta := &services.ClickMetadata{
		Referrer:  request.Referrer,
		UserAgent: request.UserAgent,
	}
	if meta.Referrer == "" {
		meta.Referrer = c.GetHeader("Referer")
	}
	if meta.UserAgent == "" {
		meta.UserAgent = c.GetHeader("User-Agent")
	}

	click, err := h.trackingService.RecordClick(c.Request.Context(), affiliateID, request.LinkID, meta)
	if err != nil {
		if errors.Is(err, services.ErrUnknownAffiliate) {
			utils.NotFoundResponse(c, "Affiliate")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "CLICK_RECORD_FAILED", "Failed to record click: "+err.Error())
		return
	}

	utils.CreatedResponse(c, "Click recorded", click)
}

// RecordConversion records a completed order attributed to an affiliate.
// Safe to call repeatedly for the same order; retries get a 409 with the
// original record untouched.
func (h *TrackingHandler) RecordConversion(c *gin.Context) {
	var request recordConversionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	affiliateID, err := primitive.ObjectIDFromHex(request.AffiliateID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid affiliate ID")
		return
	}

	conversion, err := h.trackingService.RecordConversion(
		c.Request.Context(),
		request.OrderID,
		affiliateID,
		request.OrderTotal,
		request.Currency,
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateConversion):
			utils.ConflictResponse(c, "Conversion already recorded for this order")
		case errors.Is(err, services.ErrUnknownAffiliate):
			utils.NotFoundResponse(c, "Affiliate")
		default:
			utils.ErrorResponse(c, http.StatusInternalServerError, "CONVERSION_RECORD_FAILED", "Failed to record conversion: "+err.Error())
		}
		return
	}

	utils.CreatedResponse(c, "Conversion recorded", conversion)
}
