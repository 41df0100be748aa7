package handler

import (
	"github.com/labstack/echo/v4"

	"servicemarket/internal/adapter/api/middleware"
	"servicemarket/internal/domain/entity"
	"servicemarket/internal/usecase"
	"servicemarket/pkg/response"
)

type BidHandler struct {
	bidUseCase *usecase.BidUseCase
}

func NewBidHandler(bidUseCase *usecase.BidUseCase) *BidHandler {
	return &BidHandler{
		bidUseCase: bidUseCase,
	}
}

type createBidRequest struct {
	RequirementID string  `json:"requirement_id" validate:"required,notblank"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	DeliveryTime  int     `json:"delivery_time" validate:"required,gt=0"`
	Proposal      string  `json:"proposal" validate:"max=5000"`
}

type bidStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Accepted Declined"`
}

func (h *BidHandler) CreateBid(c echo.Context) error {
	var req createBidRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	bid, err := h.bidUseCase.CreateBid(c.Request().Context(), middleware.UserID(c), usecase.CreateBidInput{
		RequirementID: req.RequirementID,
		Amount:        req.Amount,
		DeliveryTime:  req.DeliveryTime,
		Proposal:      req.Proposal,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, bid)
}

func (h *BidHandler) ListMyBids(c echo.Context) error {
	bids, err := h.bidUseCase.ListBidsForProvider(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, bids)
}

func (h *BidHandler) ListBidsForRequirement(c echo.Context) error {
	bids, err := h.bidUseCase.ListBidsForRequirement(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, bids)
}

func (h *BidHandler) GetBid(c echo.Context) error {
	bid, err := h.bidUseCase.GetBid(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, bid)
}

func (h *BidHandler) SetBidStatus(c echo.Context) error {
	var req bidStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	bid, err := h.bidUseCase.SetBidStatus(c.Request().Context(), c.Param("id"), entity.BidStatus(req.Status))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, bid)
}

func (h *BidHandler) DeleteBid(c echo.Context) error {
	bid, err := h.bidUseCase.DeleteBid(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, bid)
}
