package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/osintdesk/console-api/internal/config"
	"github.com/osintdesk/console-api/internal/domain/auth"
	"github.com/osintdesk/console-api/internal/domain/ledger"
	"github.com/osintdesk/console-api/internal/domain/officer"
	"github.com/osintdesk/console-api/internal/domain/query"
	"github.com/osintdesk/console-api/internal/domain/registration"
	"github.com/osintdesk/console-api/internal/domain/report"
	"github.com/osintdesk/console-api/internal/middleware"
	"github.com/osintdesk/console-api/internal/pkg/database"
	"github.com/osintdesk/console-api/internal/pkg/jwt"
	"github.com/osintdesk/console-api/internal/pkg/logger"
	"github.com/osintdesk/console-api/internal/pkg/ratelimit"
	"github.com/osintdesk/console-api/internal/pkg/response"
	"github.com/osintdesk/console-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting console API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// Object storage is optional; without it avatar uploads are refused
	// and exports stream inline
	var store storage.Storage
	if cfg.StorageBucket != "" {
		s3Store, err := storage.NewS3Storage(storage.S3Config{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
			PublicURL: cfg.StoragePublicURL,
			Region:    cfg.StorageRegion,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create object storage client")
		}
		store = s3Store
	}

	var limiter *ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewLimiter(redisClient)
	}

	hub := query.NewHub(redisClient)
	go hub.Run()
	defer hub.Stop()

	// ---------- Services ----------
	creditService := ledger.NewService(db)
	officerService := officer.NewService(db)
	queryService := query.NewService(db, officerService, creditService, limiter, hub)
	registrationService := registration.NewService(db, officerService, cfg.DefaultRateLimitPerHour)
	reportService := report.NewService(creditService, queryService, cfg.CreditRate, report.NewExporter(store))
	authService := auth.NewService(db, jwtService, redisClient)

	// ---------- Handlers ----------
	ledgerHandler := ledger.NewHandler(creditService)
	officerHandler := officer.NewHandler(officerService, store)
	queryHandler := query.NewHandler(queryService)
	registrationHandler := registration.NewHandler(registrationService)
	reportHandler := report.NewHandler(reportService)
	authHandler := auth.NewHandler(authService)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint stays outside Compress and Timeout
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(hub.ServeWS)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(middleware.Timeout(30 * time.Second))

		r.Mount("/auth", authHandler.Routes())
		r.Mount("/officers", officerHandler.Routes(authMiddleware))
		r.Mount("/credits", ledgerHandler.Routes(authMiddleware))
		r.Mount("/queries", queryHandler.Routes(authMiddleware))
		r.Mount("/registrations", registrationHandler.Routes(authMiddleware))
		r.Mount("/reports", reportHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
