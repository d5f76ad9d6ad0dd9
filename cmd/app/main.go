package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecocoach/internal/api"
	"ecocoach/internal/catalog"
	"ecocoach/internal/coach"
	"ecocoach/internal/middleware"
	"ecocoach/internal/repository"
	"ecocoach/internal/service"
	"ecocoach/pkg/clock"
	"ecocoach/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		zapLogger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *Config) error {
	zapLogger := logger.Logger()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load challenge catalog: %w", err)
	}

	repo, err := repository.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	defer repo.Close()

	clk := clock.Real{}

	leaderboardService := service.NewLeaderboardService(repo)
	hub := api.NewHub(leaderboardService, cfg.Leaderboard.StreamSize)
	go hub.Run(ctx)

	svc := service.NewService(
		service.NewChallengeService(repo, cat, clk, loc, hub),
		service.NewLedgerService(repo, clk, loc, hub),
		leaderboardService,
		service.NewUserService(repo, clk),
		service.NewReminderService(repo, clk),
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(), middleware.AccessLog())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.ExposeHeaders = []string{middleware.RequestIDHeader}
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api/v1")
	api.NewActivityRoutes(a, svc.LedgerService)
	api.NewChallengeRoutes(a, svc.ChallengeService)
	api.NewLeaderboardRoutes(a, svc.LeaderboardService)
	api.NewUserRoutes(a, svc.UserService, svc.LedgerService, svc.ReminderService)
	api.NewReminderRoutes(a, svc.ReminderService)
	api.NewStreamRoutes(a, hub)
	api.NewHealthRoutes(a, repo)

	if cfg.CoachEnabled() {
		cc := coach.New(coach.NewOpenAIClient(cfg.Coach), coach.NewCatalogRetriever(cat))
		api.NewChatRoutes(a, cc)
		zapLogger.Info("Coach enabled", zap.String("model", cfg.Coach.Model))
	} else {
		zapLogger.Info("Coach disabled, coach.apiKey is not set")
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("Starting server",
			zap.String("addr", addr),
			zap.String("timezone", loc.String()),
			zap.Int("challenges", cat.Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctxShutdown)
}
