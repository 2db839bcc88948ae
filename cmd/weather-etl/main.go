package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/akarpov91/weather-etl/internal/api/http"
	"github.com/akarpov91/weather-etl/internal/config"
	"github.com/akarpov91/weather-etl/internal/etl"
	"github.com/akarpov91/weather-etl/internal/scheduler"
	"github.com/akarpov91/weather-etl/internal/store"
	"github.com/akarpov91/weather-etl/internal/weather"
	"github.com/akarpov91/weather-etl/internal/weather/providers"
)

func main() {
	// Load configuration; a missing API key aborts startup.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// SQLite store holding measurements and the daily rollup.
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer st.Close()

	var geocoder weather.Geocoder
	if cfg.Geocoder == "google" {
		geocoder = providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey)
	} else {
		geocoder = providers.NewNominatimGeocoder(httpClient, cfg.NominatimURL)
	}

	openWeather := providers.NewOpenWeatherClient(httpClient, cfg.OpenWeatherAPIKey, "")

	// The three pipeline stages, handing off through the data directories.
	extractor := etl.NewExtractor(cfg.Cities, geocoder, openWeather, cfg.RawDataDir, cfg.RateLimitDelay)
	transformer := etl.NewTransformer(cfg.RawDataDir, cfg.ProcessedDataDir)
	loader := etl.NewLoader(cfg.ProcessedDataDir, st)

	sched := scheduler.New(cfg.FetchInterval,
		scheduler.Task{Name: "extract", Run: func(ctx context.Context) error {
			_, err := extractor.Extract(ctx)
			return err
		}},
		scheduler.Task{Name: "transform", Run: func(ctx context.Context) error {
			_, _, err := transformer.Transform()
			return err
		}},
		scheduler.Task{Name: "load", Run: loader.Load},
	)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-etl",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Health endpoint reporting table sizes.
	app.Get("/health", func(c *fiber.Ctx) error {
		weatherRows, airRows, err := st.MeasurementCounts(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "database unavailable")
		}
		return c.JSON(fiber.Map{
			"status":           "ok",
			"service":          "weather-etl",
			"weather_rows":     weatherRows,
			"air_quality_rows": airRows,
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, st)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

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
