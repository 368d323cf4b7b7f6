package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"teampulse-api/internal/handler"
	"teampulse-api/internal/middleware"
	"teampulse-api/internal/service"
	"teampulse-api/pkg/config"
	"teampulse-api/pkg/database"
	"teampulse-api/pkg/jwtutil"
	"teampulse-api/pkg/logger"
	"teampulse-api/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting TeamPulse API...", zap.String("environment", cfg.Server.Env))

	// Initialize token signing
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Primary store: owns the core schema, migrated at startup
	primary, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to primary database", zap.Error(err))
	}
	log.Info("Primary database connection established and migrations completed")

	// Reporting store: externally owned, read-only, no migrations
	reporting, err := database.ConnectReporting(cfg)
	if err != nil {
		log.Fatal("Failed to connect to reporting database", zap.Error(err))
	}
	log.Info("Reporting database connection established")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(middleware.MetricsMiddleware)

	// Handlers over the primary store
	authHandler := handler.NewAuthHandler(primary)
	userHandler := handler.NewUserHandler(primary)
	clientHandler := handler.NewClientHandler(primary)
	projectHandler := handler.NewProjectHandler(primary)
	taskHandler := handler.NewTaskHandler(primary)
	okrHandler := handler.NewOKRHandler(primary)
	kpiHandler := handler.NewKPIHandler(primary)

	// Handlers over the reporting store
	dashboardHandler := handler.NewDashboardHandler(service.NewDashboardService(reporting))
	analyticsHandler := handler.NewAnalyticsHandler(
		service.NewSalesService(reporting),
		service.NewAdsService(reporting, log),
	)
	insightsHandler := handler.NewInsightsHandler(service.NewInsightsService(reporting))

	healthHandler := handler.NewHealthHandler(primary, reporting)

	// Public routes - no authentication required
	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Everything below requires a valid bearer token
	gate := middleware.NewAuthGate(primary)
	protected := api.Group("", gate.Middleware)

	users := protected.Group("/users")
	users.GET("", userHandler.List)
	users.GET("/me", userHandler.Me)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	clients := protected.Group("/clients")
	clients.GET("", clientHandler.List)
	clients.GET("/:id", clientHandler.Get)
	clients.POST("", clientHandler.Create)
	clients.PUT("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete)

	projects := protected.Group("/projects")
	projects.GET("", projectHandler.List)
	projects.GET("/:id", projectHandler.Get)
	projects.POST("", projectHandler.Create)
	projects.PUT("/:id", projectHandler.Update)
	projects.DELETE("/:id", projectHandler.Delete)

	tasks := protected.Group("/tasks")
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.Get)
	tasks.POST("", taskHandler.Create)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	okrs := protected.Group("/okrs")
	okrs.GET("", okrHandler.List)
	okrs.GET("/:id", okrHandler.Get)
	okrs.POST("", okrHandler.Create)
	okrs.PUT("/:id", okrHandler.Update)
	okrs.DELETE("/:id", okrHandler.Delete)

	kpis := protected.Group("/kpis")
	kpis.GET("", kpiHandler.List)
	kpis.GET("/:id", kpiHandler.Get)
	kpis.POST("", kpiHandler.Create)
	kpis.PUT("/:id", kpiHandler.Update)
	kpis.DELETE("/:id", kpiHandler.Delete)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/channels", dashboardHandler.Channels)
	dashboard.GET("/creatives", dashboardHandler.Creatives)
	dashboard.GET("/devices", dashboardHandler.Devices)
	dashboard.GET("/crm", dashboardHandler.CRM)
	dashboard.GET("/insights", dashboardHandler.Insights)
	dashboard.GET("/kpi", dashboardHandler.KPI)
	dashboard.GET("/linechart", dashboardHandler.LineChart)
	dashboard.GET("/utm", dashboardHandler.UTM)

	analytics := protected.Group("/analytics")
	analytics.GET("/sales", analyticsHandler.Sales)
	analytics.GET("/ads", analyticsHandler.Ads)

	protected.GET("/insights/sales", insightsHandler.Sales)

	// Start server and wait for a shutdown signal
	go func() {
		port := cfg.Server.Port
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil {
			log.Info("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := database.Close(primary); err != nil {
		log.Error("Failed to close primary database", zap.Error(err))
	}
	if err := database.Close(reporting); err != nil {
		log.Error("Failed to close reporting database", zap.Error(err))
	}
}
