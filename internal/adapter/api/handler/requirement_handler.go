package handler

import (
	"github.com/labstack/echo/v4"

	"servicemarket/internal/adapter/api/middleware"
	"servicemarket/internal/domain/entity"
	"servicemarket/internal/usecase"
	"servicemarket/pkg/response"
)

type RequirementHandler struct {
	requirementUseCase *usecase.RequirementUseCase
}

func NewRequirementHandler(requirementUseCase *usecase.RequirementUseCase) *RequirementHandler {
	return &RequirementHandler{
		requirementUseCase: requirementUseCase,
	}
}

type createRequirementRequest struct {
	Title       string  `json:"title" validate:"required,notblank"`
	Description string  `json:"description" validate:"required,notblank"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Location    string  `json:"location" validate:"required,notblank"`
	Category    string  `json:"category"`
}

type updateRequirementRequest struct {
	Title       *string  `json:"title" validate:"omitempty,notblank"`
	Description *string  `json:"description" validate:"omitempty,notblank"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Location    *string  `json:"location" validate:"omitempty,notblank"`
	Category    *string  `json:"category"`
	Status      *string  `json:"status" validate:"omitempty,oneof=Pending Active Completed"`
}

type requirementStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Active Completed"`
}

func (h *RequirementHandler) CreateRequirement(c echo.Context) error {
	var req createRequirementRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	requirement, err := h.requirementUseCase.CreateRequirement(c.Request().Context(), middleware.UserID(c), usecase.CreateRequirementInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		Category:    req.Category,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, requirement)
}

// ListRequirements lists every requirement, or one client's with ?client=.
func (h *RequirementHandler) ListRequirements(c echo.Context) error {
	requirements, err := h.requirementUseCase.ListRequirements(c.Request().Context(), c.QueryParam("client"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, requirements)
}

func (h *RequirementHandler) ListMyRequirements(c echo.Context) error {
	requirements, err := h.requirementUseCase.ListRequirements(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, requirements)
}

func (h *RequirementHandler) GetRequirement(c echo.Context) error {
	requirement, err := h.requirementUseCase.GetRequirement(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, requirement)
}

func (h *RequirementHandler) UpdateRequirement(c echo.Context) error {
	var req updateRequirementRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.UpdateRequirementInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
		Category:    req.Category,
	}
	if req.Status != nil {
		status := entity.RequirementStatus(*req.Status)
		input.Status = &status
	}

	requirement, err := h.requirementUseCase.UpdateRequirement(c.Request().Context(), c.Param("id"), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, requirement)
}

func (h *RequirementHandler) SetRequirementStatus(c echo.Context) error {
	var req requirementStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	requirement, err := h.requirementUseCase.SetRequirementStatus(c.Request().Context(), c.Param("id"), entity.RequirementStatus(req.Status))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, requirement)
}

func (h *RequirementHandler) DeleteRequirement(c echo.Context) error {
	requirement, err := h.requirementUseCase.DeleteRequirement(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, requirement)
}

func (h *RequirementHandler) RepairOrphanBids(c echo.Context) error {
	removed, err := h.requirementUseCase.RepairOrphanBids(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"requirement_id": c.Param("id"),
		"bids_removed":   removed,
	})
}
