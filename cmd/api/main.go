package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/greencampus/waste-portal-api/api/swagger"
	"github.com/greencampus/waste-portal-api/internal/handler"
	"github.com/greencampus/waste-portal-api/internal/middleware"
	"github.com/greencampus/waste-portal-api/internal/models"
	"github.com/greencampus/waste-portal-api/internal/repository"
	"github.com/greencampus/waste-portal-api/internal/service"
	"github.com/greencampus/waste-portal-api/pkg/cache"
	"github.com/greencampus/waste-portal-api/pkg/config"
	"github.com/greencampus/waste-portal-api/pkg/database"
	"github.com/greencampus/waste-portal-api/pkg/export"
	"github.com/greencampus/waste-portal-api/pkg/logger"
	corsmiddleware "github.com/greencampus/waste-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/greencampus/waste-portal-api/pkg/middleware/requestid"
	"github.com/greencampus/waste-portal-api/pkg/storage"
)

// @title Waste Portal API
// @version 1.0.0
// @description Institutional waste tracking: submission intake, verification and aggregation
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, report caching disabled", "error", err)
		redisClient = nil
	}

	store, err := storage.NewLocalStorage(cfg.Attachments.StorageDir, cfg.Attachments.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init attachment storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Attachments.SignedURLSecret, cfg.Attachments.SignedURLTTL)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	messRepo := repository.NewMessSubmissionRepository(db)
	hostelRepo := repository.NewHostelSubmissionRepository(db)
	aggregateRepo := repository.NewAggregateRepository(db)
	editLogRepo := repository.NewEditLogRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Reporting.CacheTTL, logr,
		cfg.Reporting.CacheEnabled && redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	submissionSvc := service.NewSubmissionService(messRepo, hostelRepo, attachmentRepo, userRepo, store,
		validate, logr, metricsSvc, service.SubmissionLimits{
			MaxFileSizeBytes: cfg.Attachments.MaxFileSizeBytes,
			AllowedMIMEs:     cfg.Attachments.AllowedMIMEs,
		})
	verificationSvc := service.NewVerificationService(db, messRepo, hostelRepo, editLogRepo, aggregateRepo,
		userRepo, cacheSvc, validate, logr, metricsSvc)
	reportSvc := service.NewReportService(aggregateRepo, cacheSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	attachmentSvc := service.NewAttachmentService(attachmentRepo, store, store, signer, userRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc, attachmentSvc)
	verificationHandler := handler.NewVerificationHandler(verificationSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	adminHandler := handler.NewAdminHandler(attachmentSvc, metricsSvc)

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
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	// The signed token carries the authorization for downloads.
	r.GET("/attachments/download", submissionHandler.Download)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)

	users := authed.Group("/users", middleware.RequireRoles(models.RoleAdmin))
	users.POST("", userHandler.Create)
	users.GET("", userHandler.List)
	users.DELETE("/:username", userHandler.Delete)

	submissions := authed.Group("/submissions")
	canSubmit := middleware.RequireRoles(models.RoleSubmitter, models.RoleAdmin)
	submissions.POST("/mess", canSubmit, submissionHandler.SubmitMess)
	submissions.POST("/hostel", canSubmit, submissionHandler.SubmitHostel)
	submissions.GET("/mess", submissionHandler.ListMess)
	submissions.GET("/hostel", submissionHandler.ListHostel)
	submissions.GET("/mess/:id/attachments", submissionHandler.MessAttachments)
	submissions.GET("/hostel/:id/attachments", submissionHandler.HostelAttachments)
	submissions.GET("/attachments/:attachmentID/link", submissionHandler.DownloadLink)

	verification := authed.Group("/verification", middleware.RequireRoles(models.RoleVerifier, models.RoleAdmin))
	verification.GET("/pending", verificationHandler.PendingGroups)
	verification.GET("/edits", verificationHandler.EditHistory)
	verification.GET("/edits/:id", verificationHandler.SubmissionEdits)
	verification.POST("/decisions/:type/:id/approve", verificationHandler.Approve)
	verification.POST("/decisions/:type/:id/reject", verificationHandler.Reject)
	verification.POST("/decisions/:type/:id/edit", verificationHandler.Edit)
	verification.POST("/batch/:type/approve-all", verificationHandler.ApproveAll)

	reports := authed.Group("/reports")
	reports.GET("/master", reportHandler.MasterData)
	reports.GET("/kpis", reportHandler.KPIs)
	reports.GET("/hostels", reportHandler.Hostels)
	exportAudit := middleware.Audit(userRepo, models.AuditActionExport, "reports")
	reports.GET("/export/csv", exportAudit, reportHandler.ExportCSV)
	reports.GET("/export/pdf", exportAudit, reportHandler.ExportPDF)

	admin := authed.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/storage", adminHandler.StorageReport)
	admin.POST("/storage/purge", adminHandler.Purge)
	admin.GET("/metrics", adminHandler.SystemMetrics)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
