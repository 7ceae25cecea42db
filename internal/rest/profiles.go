package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"
	"wasgeurtjeInsights/business/suggestion"
	"wasgeurtjeInsights/domain"
	"wasgeurtjeInsights/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	ProfilesHandler struct {
		validate       *validator.Validate
		profileService ProfileService
	}

	ProfileService interface {
		GetProfile(ctx context.Context, email string) (domain.CustomerProfile, bool)
		RecalculateProfile(ctx context.Context, email string, orders []suggestion.OrderSummary) (domain.CustomerProfile, error)
		RecentEvents(ctx context.Context, sessionID string, limit int) ([]domain.BehavioralEvent, error)
	}

	OrderSummaryInput struct {
		Total      float64  `json:"total" validate:"gte=0"`
		Quantity   int      `json:"quantity" validate:"gte=0"`
		Date       string   `json:"date" validate:"required"`
		ProductIDs []uint64 `json:"product_ids"`
	}

	RecalculateInput struct {
		Orders []OrderSummaryInput `json:"orders" validate:"required,min=1,dive"`
	}
)

func NewProfilesHandler(profileService ProfileService) *ProfilesHandler {
	return &ProfilesHandler{
		validate:       validator.New(),
		profileService: profileService,
	}
}

func (h *ProfilesHandler) GetProfile(c echo.Context) error {
	email := c.Param("email")

	profile, found := h.profileService.GetProfile(c.Request().Context(), email)
	if !found {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "profile not found"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(profile))
}

func (h *ProfilesHandler) RecalculateProfile(c echo.Context) error {
	email := c.Param("email")

	var request RecalculateInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed order history validation", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	orders := make([]suggestion.OrderSummary, 0, len(request.Orders))
	for _, in := range request.Orders {
		date, err := time.Parse(time.RFC3339, in.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid order date: " + in.Date})
		}
		orders = append(orders, suggestion.OrderSummary{
			Total:      in.Total,
			Quantity:   in.Quantity,
			Date:       date,
			ProductIDs: in.ProductIDs,
		})
	}

	profile, err := h.profileService.RecalculateProfile(c.Request().Context(), email, orders)
	if err != nil {
		logger.Error("Failed to recalculate profile", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(profile))
}

func (h *ProfilesHandler) GetRecentEvents(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "session_id is required"})
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events, err := h.profileService.RecentEvents(c.Request().Context(), sessionID, limit)
	if err != nil {
		logger.Error("Failed to list events", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(events))
}
