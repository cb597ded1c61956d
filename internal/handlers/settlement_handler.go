package handlers

import (
	"errors"
	"net/http"

	"afftrack/internal/services"
	"afftrack/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettlementHandler struct {
	settlementService services.SettlementService
}

func NewSettlementHandler(settlementService services.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

type createSettlementRequest struct {
	AffiliateID string `json:"affiliate_id" binding:"required"`
	PeriodLabel string `json:"period_label" binding:"required"`
}

type batchProcessRequest struct {
	SettlementIDs []string `json:"settlement_ids" binding:"required,min=1"`
}

// CreateSettlement batches the affiliate's unsettled conversions
func (h *SettlementHandler) CreateSettlement(c *gin.Context) {
	var request createSettlementRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	affiliateID, err := primitive.ObjectIDFromHex(request.AffiliateID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid affiliate ID")
		return
	}

	settlement, err := h.settlementService.CreateBatch(c.Request.Context(), affiliateID, request.PeriodLabel)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNothingToSettle):
			utils.ConflictResponse(c, "No unsettled conversions for this affiliate")
		case errors.Is(err, services.ErrAffiliateNotFound):
			utils.NotFoundResponse(c, "Affiliate")
		default:
			utils.ErrorResponse(c, http.StatusInternalServerError, "SETTLEMENT_CREATE_FAILED", "Failed to create settlement: "+err.Error())
		}
		return
	}

	utils.CreatedResponse(c, "Settlement created", settlement)
}

// GetSettlement retrieves settlement details
func (h *SettlementHandler) GetSettlement(c *gin.Context) {
	settlementID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid settlement ID")
		return
	}

	settlement, err := h.settlementService.Get(c.Request.Context(), settlementID)
	if err != nil {
		if errors.Is(err, services.ErrSettlementNotFound) {
			utils.NotFoundResponse(c, "Settlement")
			return
		}
		utils.ErrorResponse(c, http.StatusInternalServerError, "SETTLEMENT_FETCH_FAILED", "Failed to get settlement: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Settlement retrieved", settlement)
}

// ProcessSettlement runs the payout for a pending settlement
func (h *SettlementHandler) ProcessSettlement(c *gin.Context) {
	settlementID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid settlement ID")
		return
	}

	settlement, err := h.settlementService.Process(c.Request.Context(), settlementID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSettlementNotFound):
			utils.NotFoundResponse(c, "Settlement")
		case errors.Is(err, services.ErrInvalidState):
			utils.UnprocessableResponse(c, "Settlement is not pending")
		default:
			utils.ErrorResponse(c, http.StatusInternalServerError, "SETTLEMENT_PROCESS_FAILED", "Failed to process settlement: "+err.Error())
		}
		return
	}

	utils.SuccessResponse(c, "Settlement processed", settlement)
}

// BatchProcessSettlements processes settlements independently and reports
// per-item outcomes; one failure never aborts the rest.
func (h *SettlementHandler) BatchProcessSettlements(c *gin.Context) {
	var request batchProcessRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	settlementIDs := make([]primitive.ObjectID, 0, len(request.SettlementIDs))
	for _, idStr := range request.SettlementIDs {
		settlementID, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid settlement ID: "+idStr)
			return
		}
		settlementIDs = append(settlementIDs, settlementID)
	}

	result, err := h.settlementService.ProcessBatch(c.Request.Context(), settlementIDs)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "SETTLEMENT_BATCH_FAILED", "Failed to process settlements: "+err.Error())
		return
	}

	utils.SuccessResponse(c, "Batch processed", result)
}
