package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-assistant/internal/api/http"
	"github.com/i474232898/weather-assistant/internal/config"
	"github.com/i474232898/weather-assistant/internal/scheduler"
	"github.com/i474232898/weather-assistant/internal/store"
	"github.com/i474232898/weather-assistant/internal/weather"
	"github.com/i474232898/weather-assistant/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Forecasts always come from Open-Meteo; place search uses Google when a key is set.
	forecaster := providers.NewOpenMeteoProvider(httpClient, cfg.ForecastURL)
	var geocoder weather.Geocoder = providers.NewOpenMeteoGeocoder(httpClient, cfg.GeocodingURL)
	if cfg.GoogleGeocoderAPIKey != "" {
		geocoder = providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey)
	}
	log.Printf("INFO: using %s for forecasts and %s for place search", forecaster.Name(), geocoder.Name())

	// Core service holding the active location, unit and latest snapshot.
	service := weather.NewService(forecaster, geocoder, cfg.DefaultUnit)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 2*cfg.HTTPTimeout)
	if err := service.SelectLocation(startupCtx, cfg.DefaultLocation); err != nil {
		// The dashboard reports the connectivity error; the scheduler retries.
		log.Printf("ERROR: initial fetch for %s failed: %v", cfg.DefaultLocation.DisplayName(), err)
	}
	cancelStartup()

	// In-memory chat sessions with configured retention.
	sessions := store.NewSessionStore(cfg.SessionMaxCount, cfg.SessionMaxAge)
	defer sessions.Close()

	// Scheduler that periodically refreshes the dashboard and prunes idle sessions.
	sched := scheduler.New(cfg.RefreshInterval, cfg.HTTPTimeout*2, service, sessions)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-assistant",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Chat requests wait for the reply pipeline.
		WriteTimeout: cfg.ChatReplyTimeout + 5*time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// API routes.
	httpapi.RegisterRoutes(app, service, sessions, geocoder, httpapi.Options{
		SearchCount:  cfg.SearchResultCount,
		ReplyTimeout: cfg.ChatReplyTimeout,
	})

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s", cfg.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
