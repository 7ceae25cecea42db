package router

import (
	"wasgeurtjeInsights/internal/middleware"
	"wasgeurtjeInsights/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetTrackRoutes(api *echo.Group, handler *rest.TrackHandler) {
	track := api.Group("/track")

	track.POST("/cart", handler.TrackCart)
	track.POST("/checkout", handler.TrackCheckout)
	track.POST("/engagement", handler.TrackEngagement)
	track.POST("/beacon", handler.TrackBeacon)
	track.POST("/purchase", handler.TrackPurchase)
}

func SetOffersRoutes(api *echo.Group, handler *rest.OffersHandler) {
	offers := api.Group("/offers")

	offers.GET("/active", handler.GetActiveOffer)
	offers.POST("/:id/response", handler.RespondToOffer)
}

func SetAdminRoutes(api *echo.Group, handler *rest.ProfilesHandler) {
	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminOnly())

	admin.GET("/profiles/:email", handler.GetProfile)
	admin.POST("/profiles/:email/recalculate", handler.RecalculateProfile)
	admin.GET("/events", handler.GetRecentEvents)
}
