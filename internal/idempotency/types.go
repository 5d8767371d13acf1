package idempotency

import "time"

// Record states. A key moves IN_PROGRESS -> DONE, or IN_PROGRESS -> FAILED
// after which the next attempt may claim it again.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// keyAttr is the partition key of the idempotency table.
const keyAttr = "idempotency_key"

// Record is one claimed key. For place-order keys the response body and
// status are replayed to retries; worker keys only use Status.
type Record struct {
	Key            string    `dynamodbav:"idempotency_key"`
	Status         string    `dynamodbav:"status"`
	OrderID        string    `dynamodbav:"order_id,omitempty"`
	ResponseBody   string    `dynamodbav:"response_body,omitempty"`
	ResponseStatus int       `dynamodbav:"response_status,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at"` // epoch seconds, table TTL attribute
	Note           string    `dynamodbav:"note,omitempty"`
}

func newRecord(key, orderID string, now time.Time, ttl time.Duration) Record {
	return Record{
		Key:       key,
		Status:    StatusInProgress,
		OrderID:   orderID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl).Unix(),
	}
}

// Expired reports whether the record is past its TTL. DynamoDB deletes
// expired items lazily, so readers check too.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresAt > 0 && now.Unix() >= r.ExpiresAt
}

// Claimable reports whether a new attempt may take over the key.
func (r *Record) Claimable(now time.Time) bool {
	return r.Status == StatusFailed || r.Expired(now)
}
