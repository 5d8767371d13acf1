package idempotency

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Memory keeps idempotency records in process. Used when no table is configured.
type Memory struct {
	mu        sync.Mutex
	records   map[string]Record
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

func NewMemory(ttlWindow time.Duration) *Memory {
	return &Memory{
		records:   map[string]Record{},
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

func (m *Memory) CreateIfNotExists(_ context.Context, key, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	if rec, ok := m.records[key]; ok && !rec.Claimable(now) {
		return false, nil
	}
	m.records[key] = newRecord(key, orderID, now, m.ttlWindow)
	return true, nil
}

func (m *Memory) Get(_ context.Context, key string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok || rec.Expired(m.nowFunc()) {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) MarkDone(_ context.Context, key, responseBody string, responseStatus int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return fmt.Errorf("mark done %s: %w", key, ErrConditionFailed)
	}
	rec.Status = StatusDone
	rec.ResponseBody = responseBody
	rec.ResponseStatus = responseStatus
	rec.UpdatedAt = m.nowFunc()
	m.records[key] = rec
	return nil
}

func (m *Memory) MarkFailed(_ context.Context, key, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.records[key]
	rec.Key = key
	rec.Status = StatusFailed
	rec.Note = note
	rec.UpdatedAt = m.nowFunc()
	m.records[key] = rec
	return nil
}
