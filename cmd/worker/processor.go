package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront-checkout/internal/aws"
	"github.com/imrishuroy/go-storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/go-storefront-checkout/internal/money"
	"github.com/imrishuroy/go-storefront-checkout/internal/orders"
)

// OrderRecorder is satisfied by *aws.Metrics.
type OrderRecorder interface {
	RecordOrder(ctx context.Context, s aws.OrderSample) error
}

var errMissingOrderID = errors.New("message has no order_id")

// Processor turns order-placed messages into CloudWatch metrics, once per order.
type Processor struct {
	idempStore idempotency.Keeper
	metrics    OrderRecorder
	log        *zap.Logger
}

// NewProcessor creates a new worker processor.
func NewProcessor(idempStore idempotency.Keeper, metrics OrderRecorder, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{idempStore: idempStore, metrics: metrics, log: log}
}

func dedupeKey(msg orders.PlacedMessage) string { return "order-placed:" + msg.Key() }

// Handle processes an SQS batch. Failed messages are reported individually so
// Lambda only redelivers those; after too many attempts they go to the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.log.Error("worker error", zap.String("message_id", rec.MessageId), zap.Error(err))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg orders.PlacedMessage
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if msg.OrderID == "" {
		return errMissingOrderID
	}
	log := p.log.With(zap.String("order_id", msg.OrderID), zap.String("session_id", msg.SessionID))

	revenue, err := money.Parse(msg.Total)
	if err != nil {
		return fmt.Errorf("order %s total: %w", msg.OrderID, err)
	}

	key := dedupeKey(msg)
	created, err := p.idempStore.CreateIfNotExists(ctx, key, msg.OrderID)
	if err != nil {
		return fmt.Errorf("claim order %s: %w", msg.OrderID, err)
	}
	if !created {
		existing, err := p.idempStore.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read idempotency for %s: %w", msg.OrderID, err)
		}
		if existing != nil && existing.Status == idempotency.StatusDone {
			log.Info("duplicate delivery, metrics already recorded")
			return nil
		}
		// another delivery is mid-flight; retry later
		return fmt.Errorf("order %s is already being processed", msg.OrderID)
	}

	amount, _ := revenue.Float64()
	sample := aws.OrderSample{
		Payment:   msg.Payment,
		Revenue:   amount,
		Items:     msg.ItemCount,
		Timestamp: msg.CreatedAt,
	}
	if err := p.metrics.RecordOrder(ctx, sample); err != nil {
		if merr := p.idempStore.MarkFailed(ctx, key, err.Error()); merr != nil {
			log.Warn("failed to release idempotency key", zap.Error(merr))
		}
		return fmt.Errorf("record metrics for %s: %w", msg.OrderID, err)
	}

	response := fmt.Sprintf(`{"order_id":%q,"status":"RECORDED"}`, msg.OrderID)
	if err := p.idempStore.MarkDone(ctx, key, response, 200); err != nil {
		return fmt.Errorf("failed to update idempotency: %w", err)
	}

	log.Info("order metrics recorded",
		zap.String("total", msg.Total),
		zap.Int("items", msg.ItemCount),
		zap.String("payment", msg.Payment))
	return nil
}
