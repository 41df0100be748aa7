package router

import (
	"github.com/labstack/echo/v4"

	"servicemarket/internal/adapter/api/handler"
	"servicemarket/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	messages := e.Group("/v1/messages")
	messages.Use(authMiddleware.Authenticate)

	messages.POST("", chatHandler.SendMessage)
	messages.GET("/unread", chatHandler.UnreadCount)
	messages.GET("/:otherId/:bidId", chatHandler.GetHistory)
	messages.PUT("/:otherId/:bidId/read", chatHandler.MarkRead)
}
