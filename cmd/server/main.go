package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"storefront/internal/config"
	controllers "storefront/internal/controllers/http"
	"storefront/internal/infra/email"
	"storefront/internal/infra/paystack"
	"storefront/internal/infra/rabbitmq"
	"storefront/internal/repository/mysql"
	redisrepo "storefront/internal/repository/redis"
	"storefront/internal/services"
)

func main() {
	cfg := config.Load()

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		DB:           cfg.RedisDB,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("redis connect failed", "error", err)
		os.Exit(1)
	}

	db, err := mysql.NewMySQLFromEnv()
	if err != nil {
		slog.Error("mysql connect failed", "error", err)
		os.Exit(1)
	}

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		slog.Error("rabbitmq connect failed", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	gateway := paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey, 10*time.Second)
	sender := email.NewClient(cfg.EmailBaseURL, cfg.EmailAPIKey, cfg.EmailFrom, 5*time.Second)

	orderRepo := redisrepo.NewOrderRepository(rdb)
	productRepo := redisrepo.NewProductRepository(rdb)
	categoryRepo := redisrepo.NewCategoryRepository(rdb)
	sessionRepo := redisrepo.NewSessionRepository(rdb)
	notificationRepo := mysql.NewNotificationRepository(db)
	outboxRepo := mysql.NewOutboxRepository(db)

	notifications := services.NewNotificationService(notificationRepo, outboxRepo, sender, cfg.AdminNotifyEmails)
	orders := services.NewOrderService(orderRepo, productRepo, publisher, gateway, notifications)
	catalog := services.NewCatalogService(productRepo, categoryRepo)

	auth, err := services.NewAuthService(sessionRepo, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		slog.Error("auth init failed", "error", err)
		os.Exit(1)
	}

	handler := controllers.NewHandler(orders, catalog, auth, notifications)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go notifications.RunOutboxWorker(ctx, 30*time.Second)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting storefront backend", "port", cfg.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel()
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
