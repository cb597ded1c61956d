package handlers

import (
	"errors"
	"net/http"

	"afftrack/internal/models"
	"afftrack/internal/services"
	"afftrack/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApplicationHandler struct {
	applicationService services.ApplicationService
}

func NewApplicationHandler(applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
	}
}

type submitApplicationRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name" binding:"required"`
	Website     string `json:"website"`
}

type rejectApplicationRequest struct {
	Reason string `json:"reason"`
}

// SubmitApplication accepts a new affiliate application
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	var request submitApplicationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	application := &models.AffiliateApplication{
		Email:       request.Email,
		DisplayName: request.DisplayName,
		Website:     request.Website,
	}

	application, err := h.applicationService.Submit(c.Request.Context(), application)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "APPLICATION_SUBMIT_FAILED", "Failed to submit application: "+err.Error())
		return
	}

	utils.CreatedResponse(c, "Application submitted", application)
}

// ListApplications lists applications, optionally filtered by status
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := models.ApplicationStatus(c.Query("status"))

	applications, total, err := h.applicationService.List(c.Request.Context(), status, params)
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "APPLICATION_LIST_FAILED", "Failed to list applications: "+err.Error())
		return
	}

	meta := &utils.Meta{Pagination: utils.CreatePaginationMeta(params, total)}
	utils.SuccessResponseWithMeta(c, "Applications retrieved", applications, meta)
}

// ApproveApplication approves a pending application and issues the
// affiliate account
func (h *ApplicationHandler) ApproveApplication(c *gin.Context) {
	applicationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID")
		return
	}

	reviewerID, ok := reviewerFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	affiliate, err := h.applicationService.Approve(c.Request.Context(), applicationID, reviewerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			utils.NotFoundResponse(c, "Application")
		case errors.Is(err, services.ErrInvalidState):
			utils.UnprocessableResponse(c, "Application has already been reviewed")
		default:
			utils.ErrorResponse(c, http.StatusInternalServerError, "APPLICATION_APPROVE_FAILED", "Failed to approve application: "+err.Error())
		}
		return
	}

	utils.SuccessResponse(c, "Application approved", affiliate)
}

// RejectApplication rejects a pending application
func (h *ApplicationHandler) RejectApplication(c *gin.Context) {
	applicationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid application ID")
		return
	}

	reviewerID, ok := reviewerFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var request rejectApplicationRequest
	if err := c.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	application, err := h.applicationService.Reject(c.Request.Context(), applicationID, reviewerID, request.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrApplicationNotFound):
			utils.NotFoundResponse(c, "Application")
		case errors.Is(err, services.ErrInvalidState):
			utils.UnprocessableResponse(c, "Application has already been reviewed")
		default:
			utils.ErrorResponse(c, http.StatusInternalServerError, "APPLICATION_REJECT_FAILED", "Failed to reject application: "+err.Error())
		}
		return
	}

	utils.SuccessResponse(c, "Application rejected", application)
}

func reviewerFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, false
	}

	reviewerID, ok := userID.(primitive.ObjectID)
	return reviewerID, ok
}
