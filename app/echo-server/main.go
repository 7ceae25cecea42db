package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"wasgeurtjeInsights/app/echo-server/router"
	"wasgeurtjeInsights/business/capture"
	"wasgeurtjeInsights/business/dispatch"
	"wasgeurtjeInsights/business/identity"
	"wasgeurtjeInsights/business/offers"
	"wasgeurtjeInsights/business/suggestion"
	"wasgeurtjeInsights/internal/middleware"
	"wasgeurtjeInsights/internal/repository/destinations"
	psqlRepo "wasgeurtjeInsights/internal/repository/postgres"
	redisRepo "wasgeurtjeInsights/internal/repository/redis"
	"wasgeurtjeInsights/internal/rest"
	"wasgeurtjeInsights/pkg/config"
	"wasgeurtjeInsights/pkg/database"
	redisdb "wasgeurtjeInsights/pkg/database/redis"
	"wasgeurtjeInsights/pkg/logger"
	"wasgeurtjeInsights/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting customer intelligence service", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to redis", "error", err)
	}

	// Init repo
	profileRepo := psqlRepo.NewProfileRepository(db)
	deviceRepo := psqlRepo.NewDeviceRepository(db)
	offerRepo := psqlRepo.NewOfferRepository(db)
	eventRepo := psqlRepo.NewEventRepository(db)
	profileCache := redisRepo.NewProfileCache(redisClient)

	// Init destinations
	sinks := buildDestinations(cfg)
	logger.Info("Destinations configured", "count", len(sinks))

	// Init service
	engineCfg := suggestion.DefaultConfig()
	engineCfg.FreeShippingThreshold = cfg.Tracking.FreeShippingThreshold
	engine := suggestion.NewEngine(engineCfg)

	identityService := identity.NewService(profileRepo, deviceRepo, eventRepo, profileCache, engine)

	dispatcher := dispatch.NewDispatcher(dispatch.Config{
		CountryPhonePrefix: cfg.Tracking.CountryPhonePrefix,
	}, sinks, identityService, identityService)

	offersCfg := offers.DefaultConfig()
	offersCfg.TTL = time.Duration(cfg.Tracking.OfferTTLHours) * time.Hour
	offersService := offers.NewService(offersCfg, offerRepo, identityService, engine, dispatcher)

	captureCfg := capture.DefaultConfig()
	captureCfg.Currency = cfg.Tracking.Currency
	captureCfg.EngagementMinTime = time.Duration(cfg.Tracking.EngagementMinSeconds) * time.Second
	captureCfg.EngagementMinScroll = cfg.Tracking.EngagementMinScroll
	captureService := capture.NewService(captureCfg, dispatcher, offersService)

	// Init handler
	trackHandler := rest.NewTrackHandler(captureService, identityService)
	offersHandler := rest.NewOffersHandler(offersService)
	profilesHandler := rest.NewProfilesHandler(identityService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"https://wasgeurtje.nl", "http://localhost:3000"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetTrackRoutes(api, trackHandler)
	router.SetOffersRoutes(api, offersHandler)
	router.SetAdminRoutes(api, profilesHandler)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Engagement sweeper
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go captureService.RunSweeper(sweepCtx)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}

func buildDestinations(cfg *config.Config) []dispatch.Destination {
	var sinks []dispatch.Destination

	if cfg.Destinations.GTMEnabled {
		sinks = append(sinks, destinations.NewGTMRelay(destinations.GTMConfig{
			RelayURL: cfg.Destinations.GTMRelayURL,
		}))
	}

	if cfg.Destinations.EmailEnabled {
		sinks = append(sinks, destinations.NewEmailPlatform(destinations.EmailPlatformConfig{
			BaseURL:           cfg.Destinations.EmailBaseURL,
			BasicAuthUsername: cfg.Destinations.EmailBasicAuthUsername,
			BasicAuthPassword: cfg.Destinations.EmailBasicAuthPassword,
		}))
	}

	if cfg.Destinations.PixelEnabled {
		sinks = append(sinks, destinations.NewPixelRelay(destinations.PixelConfig{
			RelayURL: cfg.Destinations.PixelRelayURL,
			PixelID:  cfg.Destinations.PixelID,
		}))
	}

	if cfg.Destinations.ConversionsEnabled {
		sinks = append(sinks, destinations.NewConversionsAPI(destinations.ConversionsConfig{
			APIURL:      cfg.Destinations.ConversionsAPIURL,
			AccessToken: cfg.Destinations.ConversionsAccessToken,
		}))
	}

	if cfg.Destinations.CollectorEnabled {
		sinks = append(sinks, destinations.NewAnalyticsCollector(destinations.CollectorConfig{
			CollectURL: cfg.Destinations.CollectorURL,
			APIKey:     cfg.Destinations.CollectorAPIKey,
		}))
	}

	return sinks
}
