package aws

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// defaultGroup is the FIFO message group used when a message carries no
// session id.
const defaultGroup = "orders"

// Publisher sends order-placed messages to one SQS queue. On a FIFO queue
// messages from the same session share a group and session:order is the
// deduplication id (hashed), so a retried publish is dropped by SQS.
type Publisher struct {
	SQS      SQSAPI
	QueueURL string
	fifo     bool
}

func NewPublisher(sqsClient SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
		fifo:     strings.HasSuffix(queueURL, ".fifo"),
	}
}

// Send posts body with attributes as string message attributes. SQS
// rejects empty attribute values, so those are dropped.
func (p *Publisher) Send(ctx context.Context, messageBody string, attributes map[string]string) error {
	input := &sqs.SendMessageInput{
		QueueUrl:          sdkaws.String(p.QueueURL),
		MessageBody:       sdkaws.String(messageBody),
		MessageAttributes: messageAttributes(attributes),
	}
	if p.fifo {
		group := attributes["session_id"]
		if group == "" {
			group = defaultGroup
		}
		input.MessageGroupId = sdkaws.String(group)
		if id := attributes["order_id"]; id != "" {
			input.MessageDeduplicationId = sdkaws.String(deduplicationID(attributes["session_id"], id))
		}
	}

	if _, err := p.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("sqs send %s: %w", attributes["order_id"], err)
	}
	return nil
}

// deduplicationID fits the session-scoped order key into SQS's 128-char
// alphanumeric limit whatever the client sent as a session id.
func deduplicationID(sessionID, orderID string) string {
	sum := sha256.Sum256([]byte(sessionID + ":" + orderID))
	return hex.EncodeToString(sum[:])
}

func messageAttributes(attributes map[string]string) map[string]sqstypes.MessageAttributeValue {
	out := make(map[string]sqstypes.MessageAttributeValue, len(attributes))
	for k, v := range attributes {
		if v == "" {
			continue
		}
		out[k] = sqstypes.MessageAttributeValue{
			DataType:    sdkaws.String("String"),
			StringValue: sdkaws.String(v),
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
