package handler

import (
	"github.com/labstack/echo/v4"

	"servicemarket/internal/adapter/api/middleware"
	"servicemarket/internal/usecase"
	"servicemarket/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,notblank"`
	BidID      string `json:"bid_id" validate:"required,notblank"`
	Text       string `json:"text" validate:"required,notblank,max=4000"`
}

// SendMessage stores a message from the caller; connected listeners get it
// over the websocket hub.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.AppendMessage(c.Request().Context(), middleware.UserID(c), req.ReceiverID, req.BidID, req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) GetHistory(c echo.Context) error {
	messages, err := h.chatUseCase.GetHistory(c.Request().Context(), middleware.UserID(c), c.Param("otherId"), c.Param("bidId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, messages)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	changed, err := h.chatUseCase.MarkRead(c.Request().Context(), middleware.UserID(c), c.Param("otherId"), c.Param("bidId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"marked": changed})
}

// UnreadCount counts the caller's unread messages, optionally for ?bid= only.
func (h *ChatHandler) UnreadCount(c echo.Context) error {
	count, err := h.chatUseCase.UnreadCount(c.Request().Context(), middleware.UserID(c), c.QueryParam("bid"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"unread": count})
}
