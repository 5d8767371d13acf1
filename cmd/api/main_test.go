package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront-checkout/internal/aws"
	"github.com/imrishuroy/go-storefront-checkout/internal/config"
	"github.com/imrishuroy/go-storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/go-storefront-checkout/internal/pricing"
)

func localConfig() config.Config {
	return config.Config{Shipping: pricing.DefaultShipping}
}

func TestBuildDeps_LocalNeedsNoAWS(t *testing.T) {
	newAWSClients = func(context.Context, aws.Options) (*aws.AWSClients, error) {
		t.Fatalf("aws clients should not be created for a local config")
		return nil, nil
	}
	t.Cleanup(func() { newAWSClients = aws.NewAWSClients })

	deps, _, err := buildDeps(context.Background(), localConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("buildDeps: %v", err)
	}
	if deps.Catalog.Len() != 5 {
		t.Fatalf("expected built-in catalog, got %d products", deps.Catalog.Len())
	}
	if _, ok := deps.Idempotency.(*idempotency.Memory); !ok {
		t.Fatalf("expected in-memory idempotency, got %T", deps.Idempotency)
	}
}

func TestBuildDeps_AWSFailure(t *testing.T) {
	newAWSClients = func(context.Context, aws.Options) (*aws.AWSClients, error) {
		return nil, errors.New("no credentials")
	}
	t.Cleanup(func() { newAWSClients = aws.NewAWSClients })

	cfg := localConfig()
	cfg.StorageTable = "storefront"
	if _, _, err := buildDeps(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatalf("expected error when aws clients cannot be built")
	}
}

func TestBuildDeps_CatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	body := `[{"id":7,"title":"Mug","category":"Home","price":"₹249","images":[]}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := localConfig()
	cfg.CatalogFile = path
	deps, _, err := buildDeps(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("buildDeps: %v", err)
	}
	if _, err := deps.Catalog.Get(7); err != nil {
		t.Fatalf("expected product 7: %v", err)
	}

	cfg.CatalogFile = filepath.Join(t.TempDir(), "missing.json")
	if _, _, err := buildDeps(context.Background(), cfg, zap.NewNop()); err == nil {
		t.Fatalf("expected error for missing catalog file")
	}
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps, _, err := buildDeps(context.Background(), localConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("buildDeps: %v", err)
	}
	r := setupRouter(deps)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestBuildDeps_RedisStorageNeedsNoAWS(t *testing.T) {
	newAWSClients = func(context.Context, aws.Options) (*aws.AWSClients, error) {
		t.Fatalf("redis storage should not need aws clients")
		return nil, nil
	}
	t.Cleanup(func() { newAWSClients = aws.NewAWSClients })

	cfg := localConfig()
	cfg.RedisAddr = "localhost:6379"
	_, cleanup, err := buildDeps(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("buildDeps: %v", err)
	}
	cleanup()
}

func TestBuildDeps_KafkaPublisherNeedsNoAWS(t *testing.T) {
	newAWSClients = func(context.Context, aws.Options) (*aws.AWSClients, error) {
		t.Fatalf("kafka publishing should not need aws clients")
		return nil, nil
	}
	t.Cleanup(func() { newAWSClients = aws.NewAWSClients })

	cfg := localConfig()
	cfg.KafkaBrokers = []string{"localhost:9092"}
	cfg.KafkaTopic = "orders.placed"
	_, cleanup, err := buildDeps(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("buildDeps: %v", err)
	}
	cleanup()
}

func TestSweepSessions_EvictsIdleSessionsAndFlows(t *testing.T) {
	deps, _, err := buildDeps(context.Background(), localConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("buildDeps: %v", err)
	}
	deps.Sessions.Get("idle")
	if _, err := deps.Checkout.Begin(context.Background(), "idle"); err != nil {
		t.Fatalf("begin: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sweepSessions(ctx, deps, time.Millisecond, zap.NewNop())
	}()

	deadline := time.Now().Add(3 * time.Second)
	for deps.Sessions.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if deps.Sessions.Len() != 0 {
		t.Fatalf("expected idle session to be evicted, %d live", deps.Sessions.Len())
	}
	if _, ok := deps.Checkout.Flow("idle"); ok {
		t.Fatalf("expected checkout flow to be dropped with its session")
	}
}
