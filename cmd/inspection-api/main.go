package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hmpc-qa/inspection-api/api/swagger"
	"github.com/hmpc-qa/inspection-api/internal/handler"
	"github.com/hmpc-qa/inspection-api/internal/middleware"
	"github.com/hmpc-qa/inspection-api/internal/repository"
	"github.com/hmpc-qa/inspection-api/internal/service"
	"github.com/hmpc-qa/inspection-api/pkg/cache"
	"github.com/hmpc-qa/inspection-api/pkg/config"
	"github.com/hmpc-qa/inspection-api/pkg/database"
	"github.com/hmpc-qa/inspection-api/pkg/export"
	"github.com/hmpc-qa/inspection-api/pkg/logger"
	corsmiddleware "github.com/hmpc-qa/inspection-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hmpc-qa/inspection-api/pkg/middleware/requestid"
	"github.com/hmpc-qa/inspection-api/pkg/report"
	"github.com/hmpc-qa/inspection-api/pkg/storage"
)

// @title Final Inspection Checklist API
// @version 1.0.0
// @description Vehicle final-inspection checklists, jobs and PDF reports
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
		logr.Sugar().Warnw("redis unavailable, category tree caching disabled", "error", err)
		redisClient = nil
	}

	imageStore, err := storage.NewImageStore(cfg.Uploads.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads directory", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	categoryRepo := repository.NewCategoryRepository(db)
	jobRepo := repository.NewJobRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr).WithMetrics(metricsSvc)

	renderer := report.NewRenderer(report.Meta{
		Organization: cfg.Report.Organization,
		Division:     cfg.Report.Division,
		Department:   cfg.Report.Department,
		Title:        cfg.Report.Title,
		LogoPath:     cfg.Report.LogoPath,
	}, imageStore)

	categorySvc := service.NewCategoryService(categoryRepo, cacheRepo, imageStore, nil, logr, service.CategoryServiceConfig{
		CacheEnabled: cfg.Cache.Enabled,
		CacheTTL:     cfg.Cache.CategoryTreeTTL,
	})
	jobSvc := service.NewJobService(jobRepo, categoryRepo, imageStore, nil, logr)
	reportSvc := service.NewReportService(jobRepo, categoryRepo, renderer, logr)
	exportSvc := service.NewExportService(jobRepo, export.NewXLSXExporter(), logr)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	uploads := handler.UploadPolicy{
		MaxBytes:     cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
	}
	categoryHandler := handler.NewCategoryHandler(categorySvc, uploads)
	jobHandler := handler.NewJobHandler(jobSvc, uploads)
	reportHandler := handler.NewReportHandler(reportSvc, exportSvc, metricsSvc, logr)
	authHandler := handler.NewAuthHandler(authSvc)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	r.Static("/uploads", cfg.Uploads.Dir)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	api.GET("/categories", categoryHandler.Tree)
	api.GET("/categories/:id", categoryHandler.Get)
	api.GET("/categories/:id/jobs", jobHandler.ListByCategory)
	api.GET("/jobs", jobHandler.List)
	api.GET("/jobs/:id", jobHandler.Get)
	api.GET("/jobs/:id/report", reportHandler.Download)
	api.GET("/jobs/:id/report/preview", reportHandler.Preview)
	api.GET("/jobs/:id/defect-summary/export", reportHandler.DefectSummaryExport)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.POST("/categories", categoryHandler.Create)
	protected.DELETE("/categories/:id", categoryHandler.Delete)
	protected.POST("/categories/:id/sections", categoryHandler.AddSection)
	protected.DELETE("/categories/:id/sections/:sectionId", categoryHandler.DeleteSection)
	protected.POST("/categories/:id/sections/:sectionId/items", categoryHandler.AddItem)
	protected.PUT("/categories/:id/sections/:sectionId/items/:itemId", categoryHandler.UpdateItem)
	protected.DELETE("/categories/:id/sections/:sectionId/items/:itemId", categoryHandler.DeleteItem)
	protected.PUT("/categories/:id/checklist", categoryHandler.ReplaceChecklist)
	protected.PUT("/categories/:id/appearance-images", categoryHandler.UpdateAppearanceImages)
	protected.POST("/categories/:id/jobs", jobHandler.Create)
	protected.PUT("/jobs/:id", jobHandler.Update)
	protected.DELETE("/jobs/:id", jobHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
