package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"logistics-api/auth"
	"logistics-api/config"
	"logistics-api/events"
	"logistics-api/handlers"
	"logistics-api/logger"
	"logistics-api/metrics"
	"logistics-api/routes"
	"logistics-api/services"
	"logistics-api/store"
	"logistics-api/validation"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "logistics-api:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.Server.GinMode)
	if err := validation.Register(); err != nil {
		return err
	}
	if cfg.UsesDevSecret() {
		log.Warn("JWT_SECRET not set, using the built-in development secret")
	}

	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	log.Info("database connected and migrated", zap.String("driver", cfg.Database.Driver))
	st := store.New(db)

	var publisher events.Publisher
	if cfg.RabbitMQ.URL != "" {
		rp, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		publisher = rp
		log.Info("publishing status events", zap.String("exchange", cfg.RabbitMQ.Exchange))
	} else {
		publisher = events.NewLogPublisher(log)
	}
	defer func() { _ = publisher.Close() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics(reg)

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Expire, cfg.JWT.Issuer)
	orders := services.NewOrderService(st, publisher, m, log, cfg.Orders.NumberRetries)
	h := handlers.New(handlers.Services{
		Users:      services.NewUserService(st, tokens),
		Orders:     orders,
		Warehouses: services.NewWarehouseService(st),
		Deliveries: services.NewDeliveryService(st, orders),
	}, st, log)

	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, routes.Deps{
		Handler: h,
		Tokens:  tokens,
		Users:   st.Users,
		Metrics: m,
		Log:     log,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
