package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mcastellanos/cursoadmin-api/api/swagger"
	"github.com/mcastellanos/cursoadmin-api/internal/handler"
	"github.com/mcastellanos/cursoadmin-api/internal/middleware"
	"github.com/mcastellanos/cursoadmin-api/internal/models"
	"github.com/mcastellanos/cursoadmin-api/internal/repository"
	"github.com/mcastellanos/cursoadmin-api/internal/service"
	"github.com/mcastellanos/cursoadmin-api/pkg/cache"
	"github.com/mcastellanos/cursoadmin-api/pkg/config"
	"github.com/mcastellanos/cursoadmin-api/pkg/database"
	"github.com/mcastellanos/cursoadmin-api/pkg/logger"
	corsmiddleware "github.com/mcastellanos/cursoadmin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mcastellanos/cursoadmin-api/pkg/middleware/requestid"
	"github.com/mcastellanos/cursoadmin-api/pkg/storage"
)

// @title CursoAdmin API
// @version 1.0.0
// @description Course administration backend: entity screens and course reports
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, report dataset caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()

	roleRepo := repository.NewRoleRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	metricsSvc := service.NewMetricsService()

	roleSvc := service.NewRoleService(roleRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, roleRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, roleRepo, validate, logr)
	topicSvc := service.NewTopicService(topicRepo, teacherRepo, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, topicRepo, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, studentRepo, activityRepo, validate, logr)
	taskSvc := service.NewTaskService(taskRepo, topicRepo, validate, logr)

	reportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	reportSvc := service.NewReportService(topicSvc, activitySvc, gradeSvc, taskSvc, reportStore, signer, redisClient, metricsSvc, service.ReportConfig{
		WorkerConcurrency: cfg.Reports.WorkerConcurrency,
		WorkerRetries:     cfg.Reports.WorkerRetries,
		DatasetCacheTTL:   cfg.Reports.DatasetCacheTTL,
		CleanupInterval:   cfg.Reports.CleanupInterval,
		FileRetention:     cfg.Reports.SignedURLTTL,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reportSvc.Start(ctx)
	defer reportSvc.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

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
	api.POST("/auth/login", authHandler.Login)
	api.GET("/reports/course/download", reportHandler.Download)

	protected := api.Group("", middleware.JWT(authSvc))
	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/reports/course", reportHandler.Enqueue)
	protected.GET("/reports/course/:id", reportHandler.Status)

	handler.NewScreenHandler[service.RoleForm, models.Role]("roles", roleSvc).Register(protected)
	handler.NewScreenHandler[service.TeacherForm, models.TeacherView]("teachers", teacherSvc).Register(protected)
	handler.NewScreenHandler[service.StudentForm, models.StudentView]("students", studentSvc).Register(protected)
	handler.NewScreenHandler[service.TopicForm, models.TopicView]("topics", topicSvc).Register(protected)
	handler.NewScreenHandler[service.ActivityForm, models.ActivityView]("activities", activitySvc).Register(protected)
	handler.NewScreenHandler[service.GradeForm, models.GradeView]("grades", gradeSvc).Register(protected)
	handler.NewScreenHandler[service.TaskForm, models.TaskView]("tasks", taskSvc).Register(protected)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
