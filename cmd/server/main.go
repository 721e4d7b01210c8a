package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/dharmasatrya/flightbooking/internal/cache"
	"github.com/dharmasatrya/flightbooking/internal/config"
	"github.com/dharmasatrya/flightbooking/internal/gateway"
	"github.com/dharmasatrya/flightbooking/internal/handler"
	"github.com/dharmasatrya/flightbooking/internal/logging"
	"github.com/dharmasatrya/flightbooking/internal/ratelimit"
	"github.com/dharmasatrya/flightbooking/internal/session"
	"github.com/dharmasatrya/flightbooking/internal/timezone"
)

func main() {
	cfg := config.Load(".env")
	e := echo.New()
	e.HideBanner = true

	logOutput, logCloser := logging.Setup(e, cfg.LogLevel, cfg.LogFile)
	defer logCloser.Close()

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Output: logOutput}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Validator = handler.NewValidator()

	var offerCache cache.Cache
	if cfg.CacheEnabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		offerCache = redisCache
		log.Infof("Redis cache enabled (host: %s:%s, TTL: %v)", cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.TTL)
	} else {
		offerCache = cache.NewNoOpCache()
		log.Info("Cache disabled")
	}
	defer offerCache.Close()

	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerSecond: cfg.GatewayRPS,
		BurstSize:         cfg.GatewayBurst,
	})

	client := gateway.New(gateway.Config{
		BaseURL:     cfg.GatewayBaseURL,
		Timeout:     cfg.GatewayTimeout,
		RateLimiter: limiter,
		Cache:       offerCache,
	})

	loc := timezone.LoadLocation(cfg.FormTimezone)
	store := session.NewStore(session.StoreConfig{
		TTL:           cfg.SessionTTL,
		SweepInterval: cfg.SessionSweepInterval,
		Location:      loc,
	})
	if err := store.StartSweeper(); err != nil {
		log.Fatalf("Failed to start session sweeper: %v", err)
	}

	sessionHandler := handler.NewSessionHandler(store, client)

	api := e.Group("/api/v1")
	sessionHandler.Register(api)
	e.GET("/health", handler.HealthHandler)

	go func() {
		log.Infof("Starting flight booking server on port %s (gateway: %s, form timezone: %s)",
			cfg.Port, cfg.GatewayBaseURL, loc)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown: %v", err)
	}
	if err := store.Shutdown(); err != nil {
		log.Errorf("Session sweeper shutdown: %v", err)
	}
	log.Info("Server stopped")
}
