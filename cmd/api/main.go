package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/chis-api/internal/handler"
	"github.com/noah-isme/chis-api/internal/middleware"
	"github.com/noah-isme/chis-api/internal/repository"
	"github.com/noah-isme/chis-api/internal/service"
	"github.com/noah-isme/chis-api/pkg/cache"
	"github.com/noah-isme/chis-api/pkg/config"
	"github.com/noah-isme/chis-api/pkg/database"
	"github.com/noah-isme/chis-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/chis-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/chis-api/pkg/middleware/requestid"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Sugar().Fatalw("failed to ensure schema", "error", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, profile cache disabled", "error", err)
			redisClient = nil
		}
	}

	programRepo := repository.NewProgramRepository(db)
	clientRepo := repository.NewClientRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	profileSvc := service.NewProfileService(clientRepo, programRepo, programRepo, clientRepo, enrollmentRepo, cacheRepo, cfg.Cache.ProfileTTL, logr)
	programSvc := service.NewProgramService(programRepo, profileSvc, validate, logr)
	clientSvc := service.NewClientService(clientRepo, profileSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, clientRepo, programRepo, profileSvc, validate, logr)
	exportSvc := service.NewExportService(programRepo, enrollmentRepo, logr)

	programHandler := handler.NewProgramHandler(programSvc, profileSvc)
	clientHandler := handler.NewClientHandler(clientSvc, profileSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)

	programs := api.Group("/programs")
	programs.GET("", programHandler.List)
	programs.POST("", programHandler.Create)
	programs.GET("/:id", programHandler.Get)
	programs.PUT("/:id", programHandler.Update)
	programs.DELETE("/:id", programHandler.Delete)
	programs.GET("/:id/clients", programHandler.Clients)
	programs.GET("/:id/enrollments", enrollmentHandler.ByProgram)
	programs.GET("/:id/roster", exportHandler.ProgramRoster)

	clients := api.Group("/clients")
	clients.GET("", clientHandler.List)
	clients.POST("", clientHandler.Create)
	clients.GET("/search", clientHandler.Search)
	clients.GET("/:id", clientHandler.Get)
	clients.PUT("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete)
	clients.GET("/:id/profile", clientHandler.Profile)
	clients.GET("/:id/programs", clientHandler.Programs)
	clients.GET("/:id/enrollments", enrollmentHandler.ByClient)

	enrollments := api.Group("/enrollments")
	enrollments.GET("", enrollmentHandler.List)
	enrollments.POST("", enrollmentHandler.Enroll)
	enrollments.GET("/:id", enrollmentHandler.Get)
	enrollments.PUT("/:id/status", enrollmentHandler.UpdateStatus)
	enrollments.DELETE("/:id", enrollmentHandler.Unenroll)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
