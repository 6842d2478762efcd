package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/meatsafe-api/api/swagger"
	"github.com/noah-isme/meatsafe-api/internal/handler"
	"github.com/noah-isme/meatsafe-api/internal/repository"
	"github.com/noah-isme/meatsafe-api/internal/router"
	"github.com/noah-isme/meatsafe-api/internal/service"
	"github.com/noah-isme/meatsafe-api/pkg/cache"
	"github.com/noah-isme/meatsafe-api/pkg/config"
	"github.com/noah-isme/meatsafe-api/pkg/database"
	"github.com/noah-isme/meatsafe-api/pkg/identity"
	"github.com/noah-isme/meatsafe-api/pkg/jobs"
	"github.com/noah-isme/meatsafe-api/pkg/logger"
	"github.com/noah-isme/meatsafe-api/pkg/storage"
)

// @title MeatSafe Compliance API
// @version 1.0.0
// @description Restaurant operator onboarding, compliance evidence and food-safety quiz
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	metrics := service.NewMetricsService()

	var (
		cacheRepo  service.CacheRepository
		cacheProbe handler.Pinger
	)
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		redisRepo := repository.NewCacheRepository(redisClient)
		cacheRepo = redisRepo
		cacheProbe = redisRepo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled)

	blobs, err := storage.New(cfg.Storage)
	if err != nil {
		logr.Fatal("failed to init blob store", zap.Error(err))
	}
	if bucketed, ok := blobs.(interface{ EnsureBucket(context.Context) error }); ok {
		if err := bucketed.EnsureBucket(ctx); err != nil {
			logr.Fatal("failed to ensure storage bucket", zap.Error(err))
		}
	}

	validate := validator.New()

	accountRepo := repository.NewAccountRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	complianceRepo := repository.NewComplianceRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	authSvc := service.NewAuthService(identity.NewClient(cfg.Identity), accountRepo, sessionRepo, auditRepo, cacheSvc, metrics, logr, service.AuthConfig{
		PortalURL:    cfg.Identity.PortalURL,
		PublicAppURL: cfg.Identity.PublicAppURL,
		SessionTTL:   cfg.Session.TTL,
		AdminEmails:  cfg.Session.AdminEmails,
	})
	sessionSvc := service.NewSessionService(sessionRepo, accountRepo)
	accountSvc := service.NewAccountService(accountRepo, auditRepo, cacheSvc, validate, logr)
	complianceSvc := service.NewComplianceService(complianceRepo, blobs, auditRepo, cacheSvc, metrics, logr, cfg.Storage.MaxFileSizeBytes)
	quizSvc := service.NewQuizService(nil, quizRepo, auditRepo, cacheSvc, metrics, validate, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cacheSvc, metrics, logr)

	sweeper := service.NewSessionSweeper(sessionRepo, cfg.Session.Retention, logr)
	sweepJob := jobs.NewPeriodic("session_sweep", sweeper.Sweep, jobs.Config{
		Interval:   cfg.Session.SweepInterval,
		MaxRetries: 2,
		Logger:     logr,
	})
	sweepJob.Start(ctx)
	defer sweepJob.Stop()

	engine := router.New(logr, sessionSvc, metrics, router.Handlers{
		Auth: handler.NewAuthHandler(authSvc, handler.CookieConfig{
			Name:          cfg.Session.CookieName,
			Secure:        cfg.Session.CookieSecure,
			TTL:           cfg.Session.TTL,
			SessionHeader: cfg.Identity.SessionHeader,
		}),
		Account:    handler.NewAccountHandler(accountSvc),
		Compliance: handler.NewComplianceHandler(complianceSvc),
		Quiz:       handler.NewQuizHandler(quizSvc),
		Analytics:  handler.NewAnalyticsHandler(analyticsSvc),
		Metrics:    handler.NewMetricsHandler(metrics, analyticsRepo).WithCache(cacheProbe),
	}, router.Options{
		APIPrefix:          cfg.APIPrefix,
		CookieName:         cfg.Session.CookieName,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		EnableDocs:         cfg.Env != config.EnvProduction,
		MaxMultipartMemory: 32 << 20,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
