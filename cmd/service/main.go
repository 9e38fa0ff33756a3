package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minimall-backend/config"
	"minimall-backend/internal/cache"
	"minimall-backend/internal/producer"
	"minimall-backend/internal/repository"
	"minimall-backend/internal/service"
	"minimall-backend/internal/transport/http/router"
	"minimall-backend/pkg/database"
	"minimall-backend/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// @Title MiniMall API
// @Version 1.0
// @Description API оформления и сопровождения заказов маркетплейса
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	var idem service.IdempotencyStore
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("failed to create redis client", zap.Error(err))
		}
		defer redisClient.Close()
		idem = cache.NewIdempotencyStore(redisClient, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		log.Info("Redis idempotency store enabled")
	} else {
		log.Info("Redis idempotency store disabled")
	}

	var events service.EventBus
	if cfg.Kafka.Enabled {
		orderProducer := producer.NewOrderProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer orderProducer.Close()
		events = orderProducer
		log.Info("Kafka order events enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	} else {
		log.Info("Kafka order events disabled")
	}

	checkout := service.NewCheckoutService(repos, idem, events, log)
	orders := service.NewOrderService(repos, events, log)

	r := router.Router(checkout, orders, []byte(cfg.JWTAccessSecret), log)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	log.Info("HTTP server stopped gracefully")
}
