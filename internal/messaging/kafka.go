package messaging

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher sends order-placed messages to a Kafka topic. It is an
// alternative to the SQS publisher with the same Send signature.
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
}

// NewKafkaPublisher writes to topic with acks from all in-sync replicas.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
	}, topic)
}

// NewKafkaPublisherWithWriter uses w as is; tests pass a fake.
func NewKafkaPublisherWithWriter(w MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic}
}

// Send keys the message by session and order id, so one order always lands
// on the same partition and equal order ids from two sessions stay
// distinct. Attributes become headers; empty values are dropped.
func (p *KafkaPublisher) Send(ctx context.Context, messageBody string, attributes map[string]string) error {
	names := make([]string, 0, len(attributes))
	for k, v := range attributes {
		if v != "" {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	headers := make([]kafka.Header, 0, len(names))
	for _, k := range names {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(attributes[k])})
	}

	msg := kafka.Message{
		Key:     []byte(messageKey(attributes)),
		Value:   []byte(messageBody),
		Headers: headers,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", p.topic, err)
	}
	return nil
}

func messageKey(attributes map[string]string) string {
	if attributes["session_id"] == "" {
		return attributes["order_id"]
	}
	return attributes["session_id"] + ":" + attributes["order_id"]
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
