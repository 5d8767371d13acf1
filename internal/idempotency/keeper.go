package idempotency

import "context"

// Keeper is the idempotency contract shared by the DynamoDB Store and the
// in-memory store used for local runs.
type Keeper interface {
	// CreateIfNotExists claims key. created is false when another attempt
	// already holds or completed it; FAILED and expired entries are reclaimed.
	CreateIfNotExists(ctx context.Context, key, orderID string) (created bool, err error)
	// Get returns the live record for key, or nil.
	Get(ctx context.Context, key string) (*Record, error)
	MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error
	MarkFailed(ctx context.Context, key, note string) error
}

var (
	_ Keeper = (*Store)(nil)
	_ Keeper = (*Memory)(nil)
)
