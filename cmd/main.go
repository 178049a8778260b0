package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/bookstore-orders/internal/cache"
	h "github.com/fjod/go_cart/bookstore-orders/internal/http"
	"github.com/fjod/go_cart/bookstore-orders/internal/metrics"
	"github.com/fjod/go_cart/bookstore-orders/internal/publisher"
	"github.com/fjod/go_cart/bookstore-orders/internal/repository"
	"github.com/fjod/go_cart/bookstore-orders/internal/service"
	"github.com/fjod/go_cart/bookstore-orders/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

const serviceName = "bookstore-orders"

func main() {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("service stopped")
}

func run(cfg *Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.DBCredentials.MigrationsDirPath); err != nil {
		return err
	}
	log.Info("database migrations completed", "driver", cfg.DBDriver)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	opts := []service.Option{
		service.WithMetrics(m),
		service.WithLogger(log),
	}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis ping failed, book reads fall back to the database", "addr", cfg.RedisAddr, "error", err)
		}
		cachedBooks := cache.NewCachedBookReader(repo, cache.NewRedisCache(redisClient), log)
		opts = append(opts, service.WithDetailsBookReader(cachedBooks))
	}

	orderService := service.NewOrderService(repo, repo, repo, opts...)
	ordersHandler := h.NewOrdersHandler(orderService, cfg.RequestTimeout, log)
	router := h.NewRouter(ordersHandler, metrics.Handler(registry), log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(repo, publisher.NewKafkaWriter(cfg.KafkaBrokers...), m, log)
		defer poller.Close()
		g.Go(func() error {
			log.Info("outbox poller started", "brokers", cfg.KafkaBrokers, "topic", publisher.Topic)
			poller.Run(gctx)
			return nil
		})
	} else {
		log.Warn("KAFKA_BROKERS not set, order events stay in the outbox")
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openRepository(cfg *Config) (*repository.Repository, error) {
	if cfg.DBDriver == repository.DriverSQLite {
		return repository.NewSQLiteRepository(cfg.DBPath)
	}
	return repository.NewRepository(&cfg.DBCredentials)
}
