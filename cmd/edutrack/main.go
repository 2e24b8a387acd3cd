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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/nipuna-lk/edutrack-api/api/swagger"
	"github.com/nipuna-lk/edutrack-api/internal/handler"
	"github.com/nipuna-lk/edutrack-api/internal/middleware"
	"github.com/nipuna-lk/edutrack-api/internal/repository"
	"github.com/nipuna-lk/edutrack-api/internal/service"
	"github.com/nipuna-lk/edutrack-api/pkg/cache"
	"github.com/nipuna-lk/edutrack-api/pkg/config"
	"github.com/nipuna-lk/edutrack-api/pkg/database"
	"github.com/nipuna-lk/edutrack-api/pkg/jobs"
	"github.com/nipuna-lk/edutrack-api/pkg/logger"
	corsmiddleware "github.com/nipuna-lk/edutrack-api/pkg/middleware/cors"
	reqidmiddleware "github.com/nipuna-lk/edutrack-api/pkg/middleware/requestid"
	"github.com/nipuna-lk/edutrack-api/pkg/storage"
)

// @title EduTrack API
// @version 1.0.0
// @description Student attendance, academic records and performance service
// @BasePath /api/v1
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

	blob, closeBlob, err := newBlobStore(cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to init state backend", "driver", cfg.Storage.Driver, "error", err)
	}
	defer closeBlob()

	store := repository.NewStore(blob, cfg.School.TotalSchoolDays, cfg.School.StartDate, logr)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 15*time.Second)
	if err := store.Load(loadCtx); err != nil {
		cancelLoad()
		logr.Sugar().Fatalw("failed to load state", "error", err)
	}
	cancelLoad()

	validate := validator.New()

	authSvc := service.NewAuthService(store, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(store, validate, logr)
	attendanceSvc := service.NewAttendanceService(store, validate, logr)
	academicSvc := service.NewAcademicService(store, cfg.School.DefaultSubject, validate, logr)
	performanceSvc := service.NewPerformanceService(store, attendanceSvc, academicSvc, logr)
	ledgerSvc := service.NewLedgerService(store, cfg.School.DefaultSubject, logr)
	ledgerSvc.Bootstrap(context.Background())
	metricsSvc := service.NewMetricsService()
	autosaveSvc := service.NewAutosaveService(store, ledgerSvc, cfg.Autosave.Interval, cfg.Autosave.Enabled, metricsSvc, logr)

	files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(attendanceSvc, academicSvc, performanceSvc, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, nil, nil)

	jobRegistry := repository.NewReportJobRegistry()
	var reportSvc *service.ReportService
	reportQueue := jobs.NewQueue("reports", func(ctx context.Context, job jobs.Job) error {
		return reportSvc.Process(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportSvc = service.NewReportService(jobRegistry, reportQueue, exportSvc, logr)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()
	reportQueue.Start(rootCtx)
	autosaveSvc.Start(rootCtx)
	go cleanupLoop(rootCtx, reportSvc, cfg.Reports.CleanupInterval)

	router := buildRouter(cfg, logr, metricsSvc, authSvc,
		handler.NewAuthHandler(authSvc),
		handler.NewStudentHandler(studentSvc, performanceSvc),
		handler.NewAttendanceHandler(attendanceSvc),
		handler.NewAcademicHandler(academicSvc),
		handler.NewLedgerHandler(ledgerSvc),
		handler.NewPerformanceHandler(performanceSvc),
		handler.NewReportHandler(reportSvc),
		handler.NewAutosaveHandler(autosaveSvc),
		handler.NewMetricsHandler(metricsSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}

	cancelRoot()
	reportQueue.Stop()
	autosaveSvc.Stop(shutdownCtx)
	logr.Info("shutdown complete")
}

func newBlobStore(cfg *config.Config) (repository.BlobStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewPostgresBlobStore(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, func() { _ = db.Close() }, nil
	case config.StorageDriverRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisBlobStore(client, "edutrack"), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func buildRouter(
	cfg *config.Config,
	logr *zap.Logger,
	metricsSvc *service.MetricsService,
	authSvc *service.AuthService,
	authHandler *handler.AuthHandler,
	studentHandler *handler.StudentHandler,
	attendanceHandler *handler.AttendanceHandler,
	academicHandler *handler.AcademicHandler,
	ledgerHandler *handler.LedgerHandler,
	performanceHandler *handler.PerformanceHandler,
	reportHandler *handler.ReportHandler,
	autosaveHandler *handler.AutosaveHandler,
	metricsHandler *handler.MetricsHandler,
) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

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
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	// Report downloads carry their own signed token.
	api.GET("/reports/download/:token", reportHandler.Download)

	protected := api.Group("", middleware.JWT(authSvc))

	students := protected.Group("/students")
	students.GET("", studentHandler.List)
	students.POST("", studentHandler.Create)
	students.GET("/classes", studentHandler.Classes)
	students.GET("/:id", studentHandler.Get)
	students.PUT("/:id", studentHandler.Update)
	students.DELETE("/:id", studentHandler.Delete)
	students.GET("/:id/summary", studentHandler.Summary)

	attendance := protected.Group("/attendance")
	attendance.POST("", attendanceHandler.Mark)
	attendance.GET("/overview", attendanceHandler.Overview)
	attendance.PUT("/settings", attendanceHandler.UpdateSettings)
	attendance.GET("/students/:id", attendanceHandler.StudentStats)
	attendance.GET("/:date", attendanceHandler.Day)

	academics := protected.Group("/academics")
	academics.GET("", academicHandler.List)
	academics.POST("", academicHandler.Create)
	academics.GET("/tables/assignments", academicHandler.AssignmentTable)
	academics.GET("/tables/termtests", academicHandler.TermTestTable)
	academics.GET("/legacy-grades", academicHandler.LegacyGrades)
	academics.PUT("/:id", academicHandler.Update)
	academics.DELETE("/:id", academicHandler.Delete)

	ledger := protected.Group("/ledger")
	ledger.GET("", ledgerHandler.Rows)
	ledger.POST("/rebuild", ledgerHandler.Rebuild)
	ledger.POST("/rows", ledgerHandler.AddRow)
	ledger.POST("/rows/:id/duplicate", ledgerHandler.DuplicateRow)
	ledger.DELETE("/rows/:id", ledgerHandler.DeleteRow)
	ledger.POST("/rows/:id/edit", ledgerHandler.OpenCell)
	ledger.PUT("/edit/stage", ledgerHandler.StageValue)
	ledger.POST("/edit/commit", ledgerHandler.CommitCell)
	ledger.DELETE("/edit", ledgerHandler.CancelEdit)

	performance := protected.Group("/performance")
	performance.GET("", performanceHandler.Summaries)
	performance.GET("/students/:id", performanceHandler.Overall)

	reports := protected.Group("/reports")
	reports.POST("", reportHandler.Create)
	reports.GET("", reportHandler.List)
	reports.GET("/:id", reportHandler.Get)

	autosave := protected.Group("/autosave")
	autosave.GET("", autosaveHandler.Status)
	autosave.POST("/save", autosaveHandler.SaveNow)

	protected.GET("/metrics/summary", metricsHandler.Snapshot)

	return r
}

func cleanupLoop(ctx context.Context, reports *service.ReportService, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reports.CleanupExpired()
		}
	}
}
