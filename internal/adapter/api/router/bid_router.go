package router

import (
	"github.com/labstack/echo/v4"

	"servicemarket/internal/adapter/api/handler"
	"servicemarket/internal/adapter/api/middleware"
	"servicemarket/internal/domain/entity"
)

func SetupBidRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	bidHandler := handler.GetBidHandler()
	providerOnly := middleware.RequireRole(entity.RoleProvider)

	bids := e.Group("/v1/bids")
	bids.Use(authMiddleware.Authenticate)

	bids.GET("/:id", bidHandler.GetBid)

	bids.POST("", bidHandler.CreateBid, providerOnly)
	bids.GET("/my", bidHandler.ListMyBids, providerOnly)
	bids.DELETE("/:id", bidHandler.DeleteBid, providerOnly)

	// The client who owns the requirement decides on bids.
	bids.PUT("/:id/status", bidHandler.SetBidStatus, middleware.RequireRole(entity.RoleClient))
}
