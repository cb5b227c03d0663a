package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/kcislk/gradebook-api/api/swagger"
	"github.com/kcislk/gradebook-api/internal/handler"
	"github.com/kcislk/gradebook-api/internal/middleware"
	"github.com/kcislk/gradebook-api/internal/models"
	"github.com/kcislk/gradebook-api/internal/repository"
	"github.com/kcislk/gradebook-api/internal/service"
	"github.com/kcislk/gradebook-api/pkg/cache"
	"github.com/kcislk/gradebook-api/pkg/config"
	"github.com/kcislk/gradebook-api/pkg/database"
	"github.com/kcislk/gradebook-api/pkg/logger"
	corsmiddleware "github.com/kcislk/gradebook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/kcislk/gradebook-api/pkg/middleware/requestid"
)

// @title Gradebook API
// @version 1.0.0
// @description Grade entry, statistics and progress tracking for the bilingual elementary curriculum
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	expectationRepo := repository.NewExpectationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Statistics.CacheTTL, logr, cfg.Statistics.Enabled && redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "gradebook-api",
	})
	gradebookSvc := service.NewGradebookService(scoreRepo, courseRepo, periodRepo, cacheSvc, validate, logr)
	statisticsSvc := service.NewStatisticsService(gradebookSvc, scoreRepo, cacheSvc, cfg.Statistics.CacheTTL, validate, logr)
	expectationSvc := service.NewExpectationService(expectationRepo, courseRepo, scoreRepo, periodRepo, cacheSvc, cfg.Progress.CacheTTL, validate, logr)
	periodSvc := service.NewPeriodService(periodRepo, userRepo, validate, logr)
	exportSvc := service.NewExportService(gradebookSvc, cfg.Exports.Enabled, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	gradebookHandler := handler.NewGradebookHandler(gradebookSvc)
	statisticsHandler := handler.NewStatisticsHandler(statisticsSvc)
	expectationHandler := handler.NewExpectationHandler(expectationSvc)
	periodHandler := handler.NewPeriodHandler(periodSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		courses := protected.Group("/courses/:courseId/periods/:periodId")
		{
			courses.PUT("/scores", middleware.RequireWrite(), gradebookHandler.UpsertScore)
			courses.POST("/scores/bulk", middleware.RequireWrite(), gradebookHandler.BulkUpsertScores)
			courses.GET("/gradebook", gradebookHandler.ClassGradebook)
			courses.GET("/students/:studentId", gradebookHandler.StudentGradebook)
			courses.GET("/statistics", statisticsHandler.ClassStatistics)
			courses.GET("/distribution", statisticsHandler.ClassDistribution)
			courses.GET("/export", exportHandler.ClassGradebook)
		}

		protected.POST("/statistics/trend", statisticsHandler.StudentTrend)

		periods := protected.Group("/periods")
		{
			periods.GET("", periodHandler.List)
			periods.GET("/:id", periodHandler.Get)
			periods.POST("/:id/transition", middleware.RequireRoles(models.RoleAdmin), periodHandler.Transition)
			periods.POST("/:id/unlock", middleware.RequireRoles(models.RoleAdmin), periodHandler.Unlock)
			periods.PUT("/:id/expectations", middleware.RequireRoles(models.RoleAdmin, models.RoleHead), expectationHandler.UpsertSetting)
			periods.DELETE("/:id/expectations/:settingId", middleware.RequireRoles(models.RoleAdmin, models.RoleHead), expectationHandler.DeleteSetting)
			periods.GET("/:id/progress", middleware.RequireRoles(models.RoleAdmin, models.RoleHead, models.RoleOfficeMember), expectationHandler.ProgressReport)
		}

		protected.GET("/expectations", middleware.RequireRoles(models.RoleAdmin, models.RoleHead, models.RoleOfficeMember), expectationHandler.ListSettings)

		protected.GET("/system/metrics", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
