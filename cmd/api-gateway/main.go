package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/slotwise/timetable-api/internal/handler"
	"github.com/slotwise/timetable-api/internal/middleware"
	"github.com/slotwise/timetable-api/internal/repository"
	"github.com/slotwise/timetable-api/internal/service"
	"github.com/slotwise/timetable-api/pkg/cache"
	"github.com/slotwise/timetable-api/pkg/config"
	"github.com/slotwise/timetable-api/pkg/database"
	"github.com/slotwise/timetable-api/pkg/logger"
	corsmiddleware "github.com/slotwise/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/slotwise/timetable-api/pkg/middleware/requestid"
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

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, result caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
		}
	}

	var catalogSvc *service.CatalogService
	if cfg.Catalog.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to catalog database", "error", err)
		}
		defer db.Close() //nolint:errcheck
		catalogSvc = service.NewCatalogService(repository.NewCatalogRepository(db), logr)
	}

	validate := validator.New()
	diag := service.NewDiagnosticsService(cfg.Scheduler)
	grid := service.NewGridService(cfg.Scheduler, logr)
	planner := service.NewSectionPlanner(cfg.Scheduler, logr)
	exact := service.NewConstraintSolver(cfg.Scheduler, logr)
	genetic := service.NewGeneticSolver(cfg.Genetic, cfg.Scheduler, diag, logr)
	allocator := service.NewAllocationService(cfg.Allocator, logr)
	timetables := service.NewTimetableService(cfg.Scheduler, grid, planner, exact, genetic, allocator, diag, cacheSvc, metricsSvc, validate, logr)
	exporter := service.NewExportService(nil, nil, logr)
	parser := service.NewRequestParser()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var solveJobs *service.SolveJobService
	if cfg.Jobs.Enabled {
		solveJobs = service.NewSolveJobService(timetables, cfg.Jobs, logr)
		solveJobs.Start(rootCtx)
		defer solveJobs.Stop()
	}

	timetableHandler := handler.NewTimetableHandler(timetables, solveJobs)
	allocationHandler := handler.NewAllocationHandler(timetables)
	exportHandler := handler.NewExportHandler(timetables, exporter)
	parserHandler := handler.NewParserHandler(parser)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/grids", timetableHandler.BuildGrid)
		api.POST("/timetables", timetableHandler.PlanAndAssign)
		api.GET("/timetables/:id", timetableHandler.GetProposal)
		api.DELETE("/timetables/:id", timetableHandler.DeleteProposal)
		api.POST("/jobs", timetableHandler.SubmitJob)
		api.GET("/jobs/:id", timetableHandler.JobStatus)
		api.POST("/allocations", allocationHandler.Allocate)
		api.POST("/parse", parserHandler.Parse)
		api.GET("/system/metrics", metricsHandler.Snapshot)

		if cfg.Export.Enabled {
			api.GET("/timetables/:id/export", exportHandler.Export)
		}
		if catalogSvc != nil {
			catalogHandler := handler.NewCatalogHandler(catalogSvc)
			api.GET("/catalog/courses", catalogHandler.Courses)
			api.GET("/catalog/faculty", catalogHandler.Faculty)
			api.GET("/catalog/rooms", catalogHandler.Rooms)
			api.GET("/catalog/students", catalogHandler.Students)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
