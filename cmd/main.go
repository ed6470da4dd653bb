package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lexiscreen/screening-backend/internal/app"
	"github.com/lexiscreen/screening-backend/internal/db"
	"github.com/lexiscreen/screening-backend/internal/handlers"
	"github.com/lexiscreen/screening-backend/internal/logger"
	"github.com/lexiscreen/screening-backend/internal/middleware"
	"github.com/lexiscreen/screening-backend/internal/observability"
	"github.com/lexiscreen/screening-backend/internal/repos"
	"github.com/lexiscreen/screening-backend/internal/scoring"
	"github.com/lexiscreen/screening-backend/internal/server"
	"github.com/lexiscreen/screening-backend/internal/services"
	"github.com/lexiscreen/screening-backend/internal/token"
)

const serviceName = "screening-backend"

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOtel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: logMode,
		Version:     os.Getenv("SERVICE_VERSION"),
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOtel(shutdownCtx); err != nil {
			log.Warn("otel shutdown failed", "error", err)
		}
	}()

	cfg, err := app.LoadConfig(log)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	accountRepo := repos.NewAccountRepo(thePG, log)
	profileRepo := repos.NewProfileRepo(thePG, log)
	sessionRepo := repos.NewTestSessionRepo(thePG, log)
	categoryRepo := repos.NewCategoryTestRepo(thePG, log)
	featureRepo := repos.NewFeatureRecordRepo(thePG, log)
	minigameRepo := repos.NewMinigameRepo(thePG, log)

	// Services
	codec := token.NewCodec(cfg.JWTSecretKey, cfg.AccessTokenTTL)
	policy, err := scoring.NewPolicy(cfg.ScoringPolicy)
	if err != nil {
		log.Fatal("Failed to build scoring policy", "error", err)
	}
	authService := services.NewAuthService(thePG, log, codec, accountRepo, profileRepo)
	profileService := services.NewProfileService(thePG, log, profileRepo)
	sessionService := services.NewTestSessionService(thePG, log, sessionRepo, categoryRepo, featureRepo, policy, cfg.RequireRatings)
	minigameService := services.NewMinigameService(thePG, log, minigameRepo)

	// Handlers & middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	router := server.NewRouter(server.RouterConfig{
		ServiceName:        serviceName,
		CORSOrigins:        cfg.CORSOrigins,
		AuthMiddleware:     authMiddleware,
		AuthHandler:        handlers.NewAuthHandler(authService),
		AccountHandler:     handlers.NewAccountHandler(authService, profileService),
		TestSessionHandler: handlers.NewTestSessionHandler(sessionService),
		MinigameHandler:    handlers.NewMinigameHandler(minigameService),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting HTTP server", "port", cfg.Port, "scoring_policy", cfg.ScoringPolicy, "require_ratings", cfg.RequireRatings)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal("Server exited with error", "error", err)
	}
	log.Info("Server stopped")
}
