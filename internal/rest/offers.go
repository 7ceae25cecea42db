package rest

import (
	"context"
	"errors"
	"net/http"
	"wasgeurtjeInsights/business/offers"
	"wasgeurtjeInsights/domain"
	"wasgeurtjeInsights/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	OffersHandler struct {
		validate      *validator.Validate
		offersService OffersService
	}

	OffersService interface {
		ActiveOffer(ctx context.Context, email string) (*domain.BundleOffer, error)
		Respond(ctx context.Context, offerID, action string, conversionValue *float64) (domain.BundleOffer, error)
	}

	OfferResponseInput struct {
		Action          string   `json:"action" validate:"required,oneof=viewed accepted rejected completed"`
		ConversionValue *float64 `json:"conversion_value" validate:"omitempty,gte=0"`
	}
)

func NewOffersHandler(offersService OffersService) *OffersHandler {
	return &OffersHandler{
		validate:      validator.New(),
		offersService: offersService,
	}
}

func (h *OffersHandler) GetActiveOffer(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "email is required"})
	}

	offer, err := h.offersService.ActiveOffer(c.Request().Context(), email)
	if err != nil {
		logger.Error("Failed to get active offer", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if offer == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "no active offer"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(offer))
}

func (h *OffersHandler) RespondToOffer(c echo.Context) error {
	offerID := c.Param("id")

	var request OfferResponseInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed offer response validation", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	offer, err := h.offersService.Respond(c.Request().Context(), offerID, request.Action, request.ConversionValue)
	if err != nil {
		switch {
		case errors.Is(err, offers.ErrOfferNotFound):
			return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
		case errors.Is(err, offers.ErrOfferExpired):
			return c.JSON(http.StatusGone, ResponseError{Message: err.Error()})
		case errors.Is(err, offers.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, ResponseError{Message: err.Error()})
		default:
			logger.Error("Failed to record offer response", err)
			return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(offer))
}
