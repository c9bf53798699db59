package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/fieldserve/booking-api/internal/handler"
	"github.com/fieldserve/booking-api/internal/middleware"
	"github.com/fieldserve/booking-api/internal/models"
	"github.com/fieldserve/booking-api/internal/repository"
	"github.com/fieldserve/booking-api/internal/service"
	"github.com/fieldserve/booking-api/pkg/cache"
	"github.com/fieldserve/booking-api/pkg/config"
	"github.com/fieldserve/booking-api/pkg/database"
	"github.com/fieldserve/booking-api/pkg/logger"
	corsmiddleware "github.com/fieldserve/booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/fieldserve/booking-api/pkg/middleware/requestid"
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, redisErr := cache.NewRedis(cfg.Redis)
		if redisErr != nil {
			logr.Sugar().Warnw("redis unavailable, running without cache", "error", redisErr)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.DefaultTTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	technicianRepo := repository.NewTechnicianRepository(db)
	ruleRepo := repository.NewAvailabilityRuleRepository(db)
	timeslotRepo := repository.NewTimeslotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	userRepo := repository.NewUserRepository(db)

	availabilitySvc := service.NewAvailabilityService(technicianRepo, ruleRepo, timeslotRepo, bookingRepo, logr, cfg.Scheduling.MaxDaysToCheck)
	rankingSvc := service.NewRankingService(reviewRepo, serviceRepo, logr)
	schedulingSvc := service.NewSchedulingService(availabilitySvc, rankingSvc, technicianRepo, metricsSvc, validate, logr)
	technicianSvc := service.NewTechnicianService(technicianRepo, ruleRepo, validate, logr)
	timeslotSvc := service.NewTimeslotService(timeslotRepo, cacheSvc, cfg.Cache.TimeslotTTL, validate, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	schedulingHandler := handler.NewSchedulingHandler(schedulingSvc, cfg.Scheduling.MaxDaysToCheck, cfg.Scheduling.MaxMatrixDays)
	technicianHandler := handler.NewTechnicianHandler(technicianSvc)
	timeslotHandler := handler.NewTimeslotHandler(timeslotSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", middleware.JWT(authSvc), authHandler.Me)

	scheduling := api.Group("/scheduling", middleware.JWT(authSvc))
	{
		scheduling.GET("/form-availability", schedulingHandler.FormAvailability)
		scheduling.GET("/matrix", schedulingHandler.Matrix)
		scheduling.GET("/rank", schedulingHandler.Rank)
		scheduling.GET("/next-available", schedulingHandler.NextAvailableDate)
		scheduling.GET("/multi-day", schedulingHandler.MultiDayCheck)
		scheduling.GET("/peak", schedulingHandler.PeakTimeslot)
		scheduling.POST("/auto-assign", middleware.RequireRoles(models.RoleAdmin, models.RoleDispatcher), schedulingHandler.AutoAssign)
		scheduling.POST("/validate-assignment", middleware.RequireRoles(models.RoleAdmin, models.RoleDispatcher), schedulingHandler.ValidateAssignment)
	}

	technicians := api.Group("/technicians", middleware.JWT(authSvc))
	{
		technicians.GET("", technicianHandler.List)
		technicians.GET("/:id", technicianHandler.Get)
		technicians.POST("", middleware.RequireRoles(models.RoleAdmin), technicianHandler.Create)
		technicians.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), technicianHandler.Update)
		technicians.PATCH("/:id/availability", middleware.RBAC(string(models.RoleAdmin), string(models.RoleDispatcher), "SELF"), technicianHandler.SetAvailability)
		technicians.GET("/:id/weekly-rules", technicianHandler.WeeklyRules)
		technicians.PUT("/:id/weekly-rules", middleware.RBAC(string(models.RoleAdmin), "SELF"), technicianHandler.UpsertWeeklyRule)
	}

	timeslots := api.Group("/timeslots", middleware.JWT(authSvc))
	{
		timeslots.GET("", timeslotHandler.List)
		timeslots.GET("/:id", timeslotHandler.Get)
		timeslots.POST("", middleware.RequireRoles(models.RoleAdmin), timeslotHandler.Create)
		timeslots.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), timeslotHandler.Update)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
