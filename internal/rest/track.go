package rest

import (
	"context"
	"net/http"
	"wasgeurtjeInsights/business/privacy"
	"wasgeurtjeInsights/domain"
	"wasgeurtjeInsights/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

type (
	TrackHandler struct {
		validate        *validator.Validate
		captureService  CaptureService
		identityService IdentityService
	}

	CaptureService interface {
		ObserveCart(ctx context.Context, meta domain.SessionMeta, items []domain.CartItem)
		ObserveCheckout(ctx context.Context, meta domain.SessionMeta, email, step string)
		ObserveEngagement(ctx context.Context, meta domain.SessionMeta, path string, scrollPct int)
		FlushEngagement(meta domain.SessionMeta, path string, scrollPct int)
		TrackPurchase(ctx context.Context, meta domain.SessionMeta, items []domain.CartItem, value float64, traits domain.UserTraits, orderID string)
	}

	IdentityService interface {
		UpsertDevice(ctx context.Context, identity domain.DeviceIdentity)
	}

	CartLineInput struct {
		ProductID uint64  `json:"product_id" validate:"required"`
		Title     string  `json:"title"`
		Price     float64 `json:"price" validate:"gte=0"`
		Quantity  int     `json:"quantity" validate:"required,gt=0"`
		Variant   string  `json:"variant"`
	}

	CartTrackInput struct {
		SessionID   string          `json:"session_id" validate:"required"`
		Email       string          `json:"email" validate:"omitempty,email"`
		Fingerprint string          `json:"fingerprint"`
		Items       []CartLineInput `json:"items"`
	}

	CheckoutTrackInput struct {
		SessionID string `json:"session_id" validate:"required"`
		Email     string `json:"email" validate:"omitempty,email"`
		Step      string `json:"step"`
	}

	EngagementTrackInput struct {
		SessionID      string `json:"session_id" validate:"required"`
		Path           string `json:"path"`
		ScrollDepthPct int    `json:"scroll_depth_pct" validate:"gte=0,lte=100"`
	}

	PurchaseItemInput struct {
		ProductID uint64  `json:"product_id" validate:"required"`
		Name      string  `json:"name"`
		Price     float64 `json:"price" validate:"gte=0"`
		Quantity  int     `json:"quantity" validate:"required,gt=0"`
	}

	BillingInput struct {
		Email      string `json:"email" validate:"required,email"`
		Phone      string `json:"phone"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		City       string `json:"city"`
		Country    string `json:"country"`
		PostalCode string `json:"postal_code"`
	}

	PurchaseTrackInput struct {
		SessionID string              `json:"session_id" validate:"required"`
		OrderID   string              `json:"order_id" validate:"required"`
		Value     float64             `json:"value" validate:"gte=0"`
		Items     []PurchaseItemInput `json:"items" validate:"required,min=1,dive"`
		Billing   BillingInput        `json:"billing" validate:"required"`
	}
)

func NewTrackHandler(captureService CaptureService, identityService IdentityService) *TrackHandler {
	return &TrackHandler{
		validate:        validator.New(),
		captureService:  captureService,
		identityService: identityService,
	}
}

func (h *TrackHandler) sessionMeta(c echo.Context, sessionID, email, fingerprint string) domain.SessionMeta {
	return domain.SessionMeta{
		SessionID:          sessionID,
		Email:              email,
		IPHash:             privacy.HashField(c.RealIP()),
		BrowserFingerprint: fingerprint,
		UserAgent:          c.Request().UserAgent(),
		GeoCountry:         c.Request().Header.Get("CF-IPCountry"),
	}
}

func (h *TrackHandler) TrackCart(c echo.Context) error {
	var request CartTrackInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed cart snapshot validation", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	meta := h.sessionMeta(c, request.SessionID, request.Email, request.Fingerprint)

	items := make([]domain.CartItem, 0, len(request.Items))
	for _, line := range request.Items {
		items = append(items, domain.CartItem{
			ProductID: line.ProductID,
			Title:     line.Title,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Variant:   line.Variant,
		})
	}

	h.captureService.ObserveCart(c.Request().Context(), meta, items)

	if meta.Email != "" || meta.IPHash != "" {
		h.identityService.UpsertDevice(c.Request().Context(), domain.DeviceIdentity{
			Email:              meta.Email,
			IPHash:             meta.IPHash,
			BrowserFingerprint: meta.BrowserFingerprint,
			UserAgent:          meta.UserAgent,
			GeoCountry:         meta.GeoCountry,
		})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("tracked"))
}

func (h *TrackHandler) TrackCheckout(c echo.Context) error {
	var request CheckoutTrackInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed checkout step validation", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	meta := h.sessionMeta(c, request.SessionID, request.Email, "")
	h.captureService.ObserveCheckout(c.Request().Context(), meta, request.Email, request.Step)

	return c.JSON(http.StatusOK, fres.Response.StatusOK("tracked"))
}

func (h *TrackHandler) TrackEngagement(c echo.Context) error {
	var request EngagementTrackInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed engagement validation", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	meta := h.sessionMeta(c, request.SessionID, "", "")
	h.captureService.ObserveEngagement(c.Request().Context(), meta, request.Path, request.ScrollDepthPct)

	return c.JSON(http.StatusOK, fres.Response.StatusOK("tracked"))
}

// TrackBeacon is the page-exit flush. Browsers abort the connection as soon
// as the page unloads, so this replies 204 immediately and dispatches on a
// detached context.
func (h *TrackHandler) TrackBeacon(c echo.Context) error {
	var request EngagementTrackInput

	if err := c.Bind(&request); err != nil {
		return c.NoContent(http.StatusNoContent)
	}
	if request.SessionID == "" {
		return c.NoContent(http.StatusNoContent)
	}

	meta := h.sessionMeta(c, request.SessionID, "", "")
	h.captureService.FlushEngagement(meta, request.Path, request.ScrollDepthPct)

	return c.NoContent(http.StatusNoContent)
}

func (h *TrackHandler) TrackPurchase(c echo.Context) error {
	var request PurchaseTrackInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed purchase validation", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	meta := h.sessionMeta(c, request.SessionID, request.Billing.Email, "")
	meta.GeoCity = request.Billing.City
	if meta.GeoCountry == "" {
		meta.GeoCountry = request.Billing.Country
	}

	items := make([]domain.CartItem, 0, len(request.Items))
	for _, line := range request.Items {
		items = append(items, domain.CartItem{
			ProductID: line.ProductID,
			Title:     line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}

	traits := domain.UserTraits{
		Email:      request.Billing.Email,
		Phone:      request.Billing.Phone,
		FirstName:  request.Billing.FirstName,
		LastName:   request.Billing.LastName,
		City:       request.Billing.City,
		Country:    request.Billing.Country,
		PostalCode: request.Billing.PostalCode,
	}

	h.captureService.TrackPurchase(c.Request().Context(), meta, items, request.Value, traits, request.OrderID)

	return c.JSON(http.StatusOK, fres.Response.StatusOK("tracked"))
}
