package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/khatmdev/quadramall-sub001/internal/cart"
	"github.com/khatmdev/quadramall-sub001/pkg/config"
	"github.com/khatmdev/quadramall-sub001/pkg/db"
	"github.com/khatmdev/quadramall-sub001/pkg/env"
	"github.com/khatmdev/quadramall-sub001/pkg/logger"
	"github.com/khatmdev/quadramall-sub001/pkg/metrics"
	"github.com/khatmdev/quadramall-sub001/pkg/pubsub"
	"github.com/khatmdev/quadramall-sub001/pkg/redis"
)

const (
	serviceName = "cart-worker"

	envMaxOutstanding     = "QUADRAMALL_CART_WORKER_MAX_OUTSTANDING"
	defaultMaxOutstanding = 64
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "failed to close database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.CatalogSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "catalog subscription", errors.New("subscription not configured"))
	}
	subscription.ReceiveSettings.MaxOutstandingMessages = env.Int(envMaxOutstanding, defaultMaxOutstanding)

	consumer, err := cart.NewCatalogConsumer(cart.ConsumerParams{
		Subscription: subscription,
		Holders:      cart.NewRepository(dbClient.DB()),
		Cache:        cart.NewRedisViewCache(redisClient, cfg.Cart.ViewCacheTTL),
		Dedupe:       redisClient,
		DedupeTTL:    cfg.Cart.EventDedupeTTL,
		Metrics:      metrics.NewCartMetrics(prometheus.DefaultRegisterer),
		Logger:       logg,
	})
	requireResource(ctx, logg, "catalog consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":          cfg.App.Env,
		"subscription": cfg.PubSub.CatalogSubscription,
	})
	logg.Info(runCtx, "cart worker ready")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "cart worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
