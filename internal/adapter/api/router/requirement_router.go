package router

import (
	"github.com/labstack/echo/v4"

	"servicemarket/internal/adapter/api/handler"
	"servicemarket/internal/adapter/api/middleware"
	"servicemarket/internal/domain/entity"
)

func SetupRequirementRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	requirementHandler := handler.GetRequirementHandler()
	bidHandler := handler.GetBidHandler()
	clientOnly := middleware.RequireRole(entity.RoleClient)

	requirements := e.Group("/v1/requirements")
	requirements.Use(authMiddleware.Authenticate)

	requirements.GET("", requirementHandler.ListRequirements)
	requirements.GET("/:id", requirementHandler.GetRequirement)
	requirements.GET("/:id/bids", bidHandler.ListBidsForRequirement)

	requirements.POST("", requirementHandler.CreateRequirement, clientOnly)
	requirements.GET("/my", requirementHandler.ListMyRequirements, clientOnly)
	requirements.PUT("/:id", requirementHandler.UpdateRequirement, clientOnly)
	requirements.PUT("/:id/status", requirementHandler.SetRequirementStatus, clientOnly)
	requirements.DELETE("/:id", requirementHandler.DeleteRequirement, clientOnly)
	requirements.POST("/:id/repair", requirementHandler.RepairOrphanBids, clientOnly)
}
