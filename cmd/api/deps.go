package main

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront-checkout/internal/aws"
	"github.com/imrishuroy/go-storefront-checkout/internal/catalog"
	"github.com/imrishuroy/go-storefront-checkout/internal/checkout"
	"github.com/imrishuroy/go-storefront-checkout/internal/config"
	"github.com/imrishuroy/go-storefront-checkout/internal/handlers"
	"github.com/imrishuroy/go-storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/go-storefront-checkout/internal/messaging"
	"github.com/imrishuroy/go-storefront-checkout/internal/session"
	"github.com/imrishuroy/go-storefront-checkout/internal/storage"
)

// newAWSClients is swapped in tests.
var newAWSClients = aws.NewAWSClients

// buildDeps wires the handlers. AWS clients are created only when a table
// or queue is configured; otherwise everything stays in process. The
// returned cleanup closes network clients and is never nil.
func buildDeps(ctx context.Context, cfg config.Config, log *zap.Logger) (handlers.HandlerConfig, func(), error) {
	cleanup := func() {}
	cat, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return handlers.HandlerConfig{}, cleanup, err
	}

	var clients *aws.AWSClients
	if cfg.StorageTable != "" || cfg.IdempotencyTbl != "" || cfg.OrdersQueueURL != "" {
		clients, err = newAWSClients(ctx, cfg.AWS())
		if err != nil {
			return handlers.HandlerConfig{}, cleanup, fmt.Errorf("init aws clients: %w", err)
		}
	}

	var closers []io.Closer
	var kv storage.KV = storage.NewMemory()
	switch {
	case cfg.StorageTable != "":
		kv = storage.NewDynamo(clients.DynamoDB, cfg.StorageTable)
	case cfg.RedisAddr != "":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		closers = append(closers, rdb)
		kv = storage.NewRedis(rdb, cfg.RedisPrefix)
	}

	var keeper idempotency.Keeper = idempotency.NewMemory(cfg.IdempotencyTTL)
	if cfg.IdempotencyTbl != "" {
		keeper = idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTbl, cfg.IdempotencyTTL)
	}

	var publisher checkout.Publisher
	switch {
	case cfg.OrdersQueueURL != "":
		publisher = clients.OrderPublisher(cfg.OrdersQueueURL)
	case len(cfg.KafkaBrokers) > 0:
		kp := messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		closers = append(closers, kp)
		publisher = kp
	}

	cleanup = func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Warn("close client", zap.Error(err))
			}
		}
	}

	log.Info("storefront wiring",
		zap.Int("products", cat.Len()),
		zap.Bool("dynamo_storage", cfg.StorageTable != ""),
		zap.Bool("redis_storage", cfg.StorageTable == "" && cfg.RedisAddr != ""),
		zap.Bool("dynamo_idempotency", cfg.IdempotencyTbl != ""),
		zap.Bool("publish_orders", publisher != nil),
		zap.Bool("kafka_orders", cfg.OrdersQueueURL == "" && len(cfg.KafkaBrokers) > 0),
		zap.String("free_shipping_above", cfg.Shipping.FreeAbove.String()))

	return handlers.HandlerConfig{
		Catalog:     cat,
		Sessions:    session.NewRegistry(),
		Checkout:    checkout.NewService(kv, publisher, cfg.Checkout(), log),
		Idempotency: keeper,
		Logger:      log,
	}, cleanup, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.New(catalog.Fixture())
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return cat, nil
}
