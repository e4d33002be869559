package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/atelierhq/facilitator-analytics/api/swagger"
	"github.com/atelierhq/facilitator-analytics/internal/handler"
	"github.com/atelierhq/facilitator-analytics/internal/middleware"
	"github.com/atelierhq/facilitator-analytics/internal/repository"
	"github.com/atelierhq/facilitator-analytics/internal/service"
	"github.com/atelierhq/facilitator-analytics/pkg/cache"
	"github.com/atelierhq/facilitator-analytics/pkg/config"
	"github.com/atelierhq/facilitator-analytics/pkg/database"
	"github.com/atelierhq/facilitator-analytics/pkg/export"
	"github.com/atelierhq/facilitator-analytics/pkg/logger"
	corsmiddleware "github.com/atelierhq/facilitator-analytics/pkg/middleware/cors"
	reqidmiddleware "github.com/atelierhq/facilitator-analytics/pkg/middleware/requestid"
)

// @title Facilitator Analytics API
// @version 0.1.0
// @description Activity statistics, arrival classification, and badge eligibility for facilitator appointments
// @BasePath /
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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, summary cache disabled", "error", err)
	} else {
		repo := repository.NewCacheRepository(redisClient, logr)
		defer repo.Close()
		cacheRepo = repo
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)

	appointmentRepo := repository.NewAppointmentRepository(db, true)

	// Deployments without the access-log integration disable the scan source
	// so presence-derived rates are reported as unavailable, not zero.
	var scanDB *sqlx.DB
	if cfg.Stats.ScanSourceEnabled {
		scanDB = db
	} else {
		logr.Sugar().Infow("scan source disabled, arrival rates will be omitted")
	}
	scanRepo := repository.NewScanRepository(scanDB)
	profileRepo := repository.NewProfileRepository(db, cfg.Stats.ProfileBundle)
	badgeRepo := repository.NewBadgeRepository(db)

	presence := service.NewPresenceIndex(scanRepo, cfg.Stats.DefaultTimezone, logr)
	statsSvc := service.NewStatsService(service.StatsServiceParams{
		Appointments: appointmentRepo,
		Profiles:     profileRepo,
		Presence:     presence,
		Cache:        cacheSvc,
		Metrics:      metricsSvc,
		Logger:       logr,
		Config: service.StatsServiceConfig{
			CacheTTL:         cfg.Stats.CacheTTL,
			GraceMinutes:     cfg.Stats.GraceMinutes,
			PreWindowMinutes: cfg.Stats.PreWindowMinutes,
			DefaultTimezone:  cfg.Stats.DefaultTimezone,
		},
	})
	eligibilitySvc := service.NewEligibilityService(badgeRepo, logr)

	var exportSvc *service.ExportService
	if cfg.Export.Enabled {
		exportSvc = service.NewExportService(statsSvc, logr, export.NewCSVExporter(), export.NewPDFExporter())
	}

	statsHandler := handler.NewStatsHandler(statsSvc, exportSvc)
	termHandler := handler.NewTermHandler(statsSvc)
	arrivalHandler := handler.NewArrivalHandler(statsSvc)
	eligibilityHandler := handler.NewEligibilityHandler(eligibilitySvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		if cfg.Stats.Enabled {
			api.GET("/stats/summary", statsHandler.Summary)
			if cfg.Export.Enabled {
				api.GET("/stats/summary/export", statsHandler.Export)
			}
			api.GET("/stats/system", statsHandler.System)
		}
		api.POST("/arrivals/classify", arrivalHandler.Classify)
		api.POST("/capacity/resolve", arrivalHandler.Capacity)
		api.GET("/facilitators/:facilitatorId/term", termHandler.Current)
		api.GET("/members/:memberId/badges/:badgeId/eligibility", eligibilityHandler.Evaluate)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
