package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"restaurant-service/internal/config"
	httpctrl "restaurant-service/internal/controllers/http"
	"restaurant-service/internal/infra/mysql"
	"restaurant-service/internal/infra/rabbitmq"
	"restaurant-service/internal/notify"
	"restaurant-service/internal/orderref"
	"restaurant-service/internal/pricing"
	mysqlrepo "restaurant-service/internal/repository/mysql"
	"restaurant-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg)

	db, err := mysql.New(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db: underlying handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	orderRepo := mysqlrepo.NewOrderRepository(db)
	customerRepo := mysqlrepo.NewCustomerRepository(db)
	foodRepo := mysqlrepo.NewFoodRepository(db)
	statsRepo := mysqlrepo.NewStatsRepository(db)

	publisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer publisher.Close()

	dispatcher := notify.NewDispatcher(publisher, cfg.StaffEmail, logger)
	calculator := pricing.NewCalculator(cfg.Pricing.TaxRate, cfg.Pricing.DeliveryFee)

	orderService := services.NewOrderService(
		orderRepo, customerRepo, foodRepo,
		calculator, orderref.NewGenerator(), dispatcher,
		logger, cfg.StoreTimeout,
	)
	catalogService := services.NewCatalogService(foodRepo, logger)
	customerService := services.NewCustomerService(customerRepo)
	dashboardService := services.NewDashboardService(statsRepo, logger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		DB:           0,
		PoolSize:     100,
		MinIdleConns: 10,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	catalogService.SetRedisClient(redisClient)
	dashboardService.SetRedisClient(redisClient)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := catalogService.WarmupCache(ctx); err != nil {
			logger.Warn("catalog cache warmup failed", "error", err)
		}
	}()

	handler := httpctrl.NewHandler(
		orderService, catalogService, customerService, dashboardService,
		logger, cfg.Debug,
	)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpctrl.RequestLogger(logger))

	handler.RegisterRoutes(r)

	logger.Info("starting restaurant service", "port", cfg.Port, "debug", cfg.Debug)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
