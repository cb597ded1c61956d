package routes

import (
	"afftrack/internal/config"
	"afftrack/internal/handlers"
	"afftrack/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAffiliateRoutes wires the full affiliate program surface: public
// attribution and click intake, authenticated reporting, and the admin
// settlement/review endpoints.
func SetupAffiliateRoutes(
	r *gin.RouterGroup,
	security *config.SecurityConfig,
	attributionHandler *handlers.AttributionHandler,
	trackingHandler *handlers.TrackingHandler,
	settlementHandler *handlers.SettlementHandler,
	applicationHandler *handlers.ApplicationHandler,
	affiliateHandler *handlers.AffiliateHandler,
) {
	// Public routes: attribution must never require auth, it runs on every
	// referred page hit.
	r.GET("/attribution", attributionHandler.HandleAttribution)
	r.POST("/clicks", trackingHandler.RecordClick)
	r.POST("/applications", applicationHandler.SubmitApplication)

	// Authenticated routes (order events come from the commerce backend
	// with a service token; reporting needs a signed-in caller).
	authed := r.Group("")
	authed.Use(middleware.AuthRequired(security))
	{
		authed.POST("/conversions", trackingHandler.RecordConversion)

		affiliates := authed.Group("/affiliates")
		{
			affiliates.GET("/:id", affiliateHandler.GetAffiliate)
			affiliates.GET("/:id/stats", affiliateHandler.GetStats)
			affiliates.GET("/:id/conversions", affiliateHandler.ListConversions)
			affiliates.GET("/:id/settlements", affiliateHandler.ListSettlements)
		}
	}

	// Admin routes
	admin := r.Group("")
	admin.Use(middleware.AuthRequired(security), middleware.AdminRequired())
	{
		settlements := admin.Group("/settlements")
		{
			settlements.POST("", settlementHandler.CreateSettlement)
			settlements.GET("/:id", settlementHandler.GetSettlement)
			settlements.POST("/:id/process", settlementHandler.ProcessSettlement)
			settlements.POST("/batch-process", settlementHandler.BatchProcessSettlements)
		}

		applications := admin.Group("/applications")
		{
			applications.GET("", applicationHandler.ListApplications)
			applications.POST("/:id/approve", applicationHandler.ApproveApplication)
			applications.POST("/:id/reject", applicationHandler.RejectApplication)
		}

		affiliates := admin.Group("/affiliates")
		{
			affiliates.PUT("/:id/rate", affiliateHandler.UpdateCommissionRate)
			affiliates.POST("/:id/suspend", affiliateHandler.SuspendAffiliate)
			affiliates.POST("/:id/activate", affiliateHandler.ActivateAffiliate)
		}
	}
}
