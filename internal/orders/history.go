package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imrishuroy/go-storefront-checkout/internal/storage"
)

// Storage key suffixes, scoped per session.
const (
	ordersKey = "orders"
	draftKey  = "checkoutForm"
)

// HistoryKey is where a session's order list lives.
func HistoryKey(sessionID string) string { return sessionID + "#" + ordersKey }

// DraftKey is where a session's in-progress checkout form lives.
func DraftKey(sessionID string) string { return sessionID + "#" + draftKey }

// History persists each session's orders as one JSON array that is read,
// appended to and rewritten whole on every new order.
type History struct {
	kv storage.KV
}

func NewHistory(kv storage.KV) *History {
	return &History{kv: kv}
}

// List returns the session's orders, oldest first.
func (h *History) List(ctx context.Context, sessionID string) ([]Record, error) {
	raw, ok, err := h.kv.Get(ctx, HistoryKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("read order history: %w", err)
	}
	if !ok || raw == "" {
		return []Record{}, nil
	}
	var out []Record
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode order history: %w", err)
	}
	return out, nil
}

// Find returns one order from the session's history.
func (h *History) Find(ctx context.Context, sessionID, orderID string) (Record, error) {
	all, err := h.List(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	for _, r := range all {
		if r.ID == orderID {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, orderID)
}

// Append adds rec to the session's history. extra ops are committed in the
// same write, so callers can drop related keys atomically.
func (h *History) Append(ctx context.Context, sessionID string, rec Record, extra ...storage.Op) error {
	existing, err := h.List(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, r := range existing {
		if r.ID == rec.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateOrder, rec.ID)
		}
	}

	body, err := json.Marshal(append(existing, rec))
	if err != nil {
		return fmt.Errorf("encode order history: %w", err)
	}

	ops := append([]storage.Op{storage.Put(HistoryKey(sessionID), string(body))}, extra...)
	if err := h.kv.Write(ctx, ops...); err != nil {
		return fmt.Errorf("write order history: %w", err)
	}
	return nil
}

// UniqueID returns a fresh order id not already used in the session's history.
func (h *History) UniqueID(ctx context.Context, sessionID string) (string, error) {
	existing, err := h.List(ctx, sessionID)
	if err != nil {
		return "", err
	}
	used := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		used[r.ID] = struct{}{}
	}
	for {
		id := NewID()
		if _, ok := used[id]; !ok {
			return id, nil
		}
	}
}
