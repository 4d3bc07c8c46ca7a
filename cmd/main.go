package main

import (
	"context"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/12344321abc/romantic-flowers-app/internal/handler"
	"github.com/12344321abc/romantic-flowers-app/internal/middleware"
	"github.com/12344321abc/romantic-flowers-app/internal/model"
	"github.com/12344321abc/romantic-flowers-app/internal/notify"
	"github.com/12344321abc/romantic-flowers-app/internal/order"
	"github.com/12344321abc/romantic-flowers-app/internal/store"
	"github.com/12344321abc/romantic-flowers-app/internal/sweeper"
	"github.com/12344321abc/romantic-flowers-app/pkg/config"
	"github.com/12344321abc/romantic-flowers-app/pkg/database"
	"github.com/12344321abc/romantic-flowers-app/pkg/jwtutil"
	"github.com/12344321abc/romantic-flowers-app/pkg/logger"
)

func main() {
	// Load configuration
	appConfig, err := config.Load("flower-service")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: appConfig.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting flower-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize database
	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(db,
		&model.FlowerBatch{},
		&model.User{},
		&model.Order{},
		&model.OrderItem{},
		&model.Subscriber{},
	); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database connection established")

	// Wire components
	st := store.NewPostgresStore(db)
	jwtUtil := jwtutil.NewJWTUtil(&appConfig.JWT)

	dispatcher := notify.NewDispatcher(&notify.LogSender{Log: log}, log, appConfig.Notify.QueueSize)
	defer dispatcher.Close()

	engine := order.NewEngine(st, st, dispatcher, log)

	sw := sweeper.New(st, appConfig.Sweep.Interval, log)
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sw.Run(sweepCtx)

	// Handlers
	authHandler := handler.NewAuthHandler(st, jwtUtil)
	flowerHandler := handler.NewFlowerHandler(st, sw, dispatcher)
	orderHandler := handler.NewOrderHandler(engine, st, st)
	userHandler := handler.NewUserHandler(st)
	subscriptionHandler := handler.NewSubscriptionHandler(st)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.MetricsMiddleware())

	// Metrics and health endpoints
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", handler.Health)

	// Authentication
	e.POST("/token", authHandler.Login)

	// Public catalog routes
	e.GET("/api/flowers", flowerHandler.ListBatches)
	e.GET("/api/flowers/:id", flowerHandler.GetBatch)

	// Subscription upsert arrives from the messaging side
	e.PUT("/api/subscriptions", subscriptionHandler.Upsert)

	authenticated := e.Group("", middleware.JWTAuthMiddleware(jwtUtil))
	authenticated.GET("/api/users/me", authHandler.Me)

	// Order routes
	authenticated.POST("/api/orders", orderHandler.Create)
	authenticated.GET("/api/orders/me", orderHandler.ListMine)
	authenticated.GET("/api/orders/:id", orderHandler.Get)

	// Admin routes
	admin := e.Group("", middleware.JWTAuthMiddleware(jwtUtil), middleware.RequireAdmin())
	admin.POST("/api/flowers", flowerHandler.CreateBatch)
	admin.PATCH("/api/flowers/:id/sell", flowerHandler.Sell)
	admin.PATCH("/api/flowers/:id/add", flowerHandler.AddStock)
	admin.DELETE("/api/flowers/:id", flowerHandler.DeleteBatch)
	admin.POST("/api/cleanup", flowerHandler.Cleanup)
	admin.POST("/api/notify-new-flowers", flowerHandler.NotifyNewFlowers)
	admin.GET("/api/orders", orderHandler.List)
	admin.POST("/api/users", userHandler.Create)
	admin.GET("/api/users", userHandler.List)
	admin.GET("/api/users/:id", userHandler.Get)
	admin.PUT("/api/users/:id", userHandler.Update)
	admin.DELETE("/api/users/:id", userHandler.Delete)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
