package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/meatsafe-api/internal/handler"
	"github.com/noah-isme/meatsafe-api/internal/middleware"
	"github.com/noah-isme/meatsafe-api/internal/models"
	"github.com/noah-isme/meatsafe-api/internal/service"
	"github.com/noah-isme/meatsafe-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/meatsafe-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/meatsafe-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by New.
type Handlers struct {
	Auth       *handler.AuthHandler
	Account    *handler.AccountHandler
	Compliance *handler.ComplianceHandler
	Quiz       *handler.QuizHandler
	Analytics  *handler.AnalyticsHandler
	Metrics    *handler.MetricsHandler
}

// Options tunes the engine.
type Options struct {
	APIPrefix      string
	CookieName     string
	AllowedOrigins []string
	EnableDocs     bool
	// MaxMultipartMemory bounds the in-memory part of multipart parsing; the rest spills to disk.
	MaxMultipartMemory int64
}

// New builds the gin engine with the full route table.
func New(log *zap.Logger, sessions middleware.SessionResolver, metrics *service.MetricsService, h Handlers, opts Options) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	prefix := "/" + strings.Trim(opts.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}

	r := gin.New()
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics"))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(prefix)
	api.Use(middleware.Session(sessions, opts.CookieName, log))

	auth := api.Group("/auth")
	auth.GET("/login", h.Auth.Login)
	auth.POST("/profile", h.Auth.Profile)
	auth.POST("/logout", h.Auth.Logout)

	users := api.Group("/users", middleware.RequireAuth())
	users.GET("/me", h.Account.Me)
	users.PUT("/me", h.Account.UpdateMe)

	admin := api.Group("/admin")
	manage := middleware.RequireCapability(models.CapabilityManageAccounts)
	admin.GET("/users", manage, h.Account.List)
	admin.GET("/users/export", manage, h.Account.Export)
	admin.PUT("/users/:id", manage, h.Account.UpdateStatus)
	viewAnalytics := middleware.RequireCapability(models.CapabilityViewAnalytics)
	admin.GET("/analytics", viewAnalytics, h.Analytics.Summary)
	admin.GET("/analytics/system", viewAnalytics, h.Analytics.System)
	admin.GET("/quiz/questions", middleware.RequireCapability(models.CapabilityViewQuizAnswers), h.Quiz.AnswerKey)

	compliance := api.Group("/compliance")
	compliance.POST("/upload", middleware.RequireApproved(), h.Compliance.Upload)
	compliance.GET("/uploads", middleware.RequireApproved(), h.Compliance.List)
	compliance.GET("/file/:id", middleware.RequireAuth(), h.Compliance.File)

	quiz := api.Group("/quiz", middleware.RequireApproved())
	quiz.GET("/questions", h.Quiz.Questions)
	quiz.POST("/submit", h.Quiz.Submit)
	quiz.GET("/attempts", h.Quiz.Attempts)

	return r
}
