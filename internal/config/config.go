package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/go-storefront-checkout/internal/aws"
	"github.com/imrishuroy/go-storefront-checkout/internal/checkout"
	"github.com/imrishuroy/go-storefront-checkout/internal/money"
	"github.com/imrishuroy/go-storefront-checkout/internal/pricing"
)

// Config is read from the environment once at startup.
type Config struct {
	AppEnv   string
	LogLevel string
	RunLocal bool
	HTTPAddr string

	AWSRegion      string
	AWSEndpoint    string // LocalStack and similar emulators
	StorageTable   string // empty: Redis when RedisAddr is set, else in-memory
	RedisAddr      string
	RedisPrefix    string
	IdempotencyTbl string // empty: in-memory idempotency
	OrdersQueueURL string // empty: Kafka when KafkaBrokers is set, else not published
	KafkaBrokers   []string
	KafkaTopic     string
	CatalogFile    string // empty: built-in catalog
	MetricsNS      string

	Shipping       pricing.ShippingPolicy
	PaymentDelay   time.Duration
	PlaceDelay     time.Duration
	CartClearDelay time.Duration
	IdempotencyTTL time.Duration
	SessionIdle    time.Duration // 0 keeps sessions for the life of the process
}

// Load reads the environment. Malformed values are errors rather than
// silent defaults.
func Load() (Config, error) {
	defaults := checkout.DefaultConfig()
	cfg := Config{
		AppEnv:         getEnv("APP_ENV", "dev"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		RunLocal:       os.Getenv("RUN_LOCAL") == "true",
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint:    os.Getenv("AWS_ENDPOINT_OVERRIDE"),
		StorageTable:   os.Getenv("STORAGE_TABLE"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPrefix:    getEnv("REDIS_PREFIX", "storefront:"),
		IdempotencyTbl: os.Getenv("IDEMPOTENCY_TABLE"),
		OrdersQueueURL: os.Getenv("ORDERS_QUEUE_URL"),
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "orders.placed"),
		CatalogFile:    os.Getenv("CATALOG_FILE"),
		MetricsNS:      getEnv("METRICS_NAMESPACE", "Storefront"),
	}

	var err error
	if cfg.Shipping.FreeAbove, err = getEnvMoney("FREE_SHIPPING_ABOVE", pricing.DefaultShipping.FreeAbove); err != nil {
		return Config{}, err
	}
	if cfg.Shipping.Fee, err = getEnvMoney("SHIPPING_FEE", pricing.DefaultShipping.Fee); err != nil {
		return Config{}, err
	}
	if cfg.PaymentDelay, err = getEnvDuration("PAYMENT_DELAY", defaults.PaymentDelay); err != nil {
		return Config{}, err
	}
	if cfg.PlaceDelay, err = getEnvDuration("PLACE_ORDER_DELAY", defaults.PlaceDelay); err != nil {
		return Config{}, err
	}
	if cfg.CartClearDelay, err = getEnvDuration("CART_CLEAR_DELAY", defaults.ClearDelay); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = getEnvDuration("IDEMPOTENCY_TTL", 48*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.SessionIdle, err = getEnvDuration("SESSION_IDLE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// AWS returns the client options for region and endpoint.
func (c Config) AWS() aws.Options {
	return aws.Options{Region: c.AWSRegion, Endpoint: c.AWSEndpoint}
}

// Checkout returns the checkout service settings.
func (c Config) Checkout() checkout.Config {
	return checkout.Config{
		Shipping:     c.Shipping,
		PaymentDelay: c.PaymentDelay,
		PlaceDelay:   c.PlaceDelay,
		ClearDelay:   c.CartClearDelay,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if ms, aerr := strconv.Atoi(v); aerr == nil {
		d, err = time.Duration(ms)*time.Millisecond, nil
	}
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func getEnvMoney(key string, def decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := money.Parse(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
