package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-storefront-checkout/internal/aws"
)

// createCondition lets a put succeed on a new key, or take over a key whose
// previous attempt failed or whose TTL has passed.
const createCondition = "attribute_not_exists(" + keyAttr + ") OR #s = :failed OR expires_at <= :now"

// existsCondition guards updates so they never create a bare record.
const existsCondition = "attribute_exists(" + keyAttr + ")"

// ErrConditionFailed is returned when an update targets a key that was never claimed.
var ErrConditionFailed = errors.New("conditional check failed")

// Store keeps idempotency records in a DynamoDB table with TTL on expires_at.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

// CreateIfNotExists writes an IN_PROGRESS record. created is false when a
// live record already holds the key; callers Get it to decide what to do.
func (s *Store) CreateIfNotExists(ctx context.Context, key, orderID string) (bool, error) {
	now := s.nowFunc()
	item, err := attributevalue.MarshalMap(newRecord(key, orderID, now, s.ttlWindow))
	if err != nil {
		return false, fmt.Errorf("marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:                &s.tableName,
		Item:                     item,
		ConditionExpression:      sdkaws.String(createCondition),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed": &types.AttributeValueMemberS{Value: StatusFailed},
			":now":    &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return false, nil
		}
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return true, nil
}

// Get returns the record for key, or nil when it is absent or expired.
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            itemKey(key),
		ConsistentRead: sdkaws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	if rec.Expired(s.nowFunc()) {
		return nil, nil
	}
	return &rec, nil
}

// MarkDone stores the response replayed to retries. The key must exist.
func (s *Store) MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error {
	err := s.setStatus(ctx, key, existsCondition,
		"SET #s = :done, response_body = :rb, response_status = :rs, updated_at = :ua",
		map[string]types.AttributeValue{
			":done": &types.AttributeValueMemberS{Value: StatusDone},
			":rb":   &types.AttributeValueMemberS{Value: responseBody},
			":rs":   &types.AttributeValueMemberN{Value: strconv.Itoa(responseStatus)},
		})
	if isConditionFailed(err) {
		return fmt.Errorf("mark done %s: %w", key, ErrConditionFailed)
	}
	return err
}

// MarkFailed releases the key for the next attempt. It upserts, so a
// failure is recorded even if the claim itself was lost.
func (s *Store) MarkFailed(ctx context.Context, key, note string) error {
	return s.setStatus(ctx, key, "",
		"SET #s = :failed, note = :n, updated_at = :ua",
		map[string]types.AttributeValue{
			":failed": &types.AttributeValueMemberS{Value: StatusFailed},
			":n":      &types.AttributeValueMemberS{Value: note},
		})
}

func (s *Store) setStatus(ctx context.Context, key, condition, update string, values map[string]types.AttributeValue) error {
	values[":ua"] = &types.AttributeValueMemberS{Value: s.nowFunc().UTC().Format(time.RFC3339)}
	input := &dyn.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       itemKey(key),
		UpdateExpression:          sdkaws.String(update),
		ExpressionAttributeNames:  map[string]string{"#s": "status"},
		ExpressionAttributeValues: values,
	}
	if condition != "" {
		input.ConditionExpression = sdkaws.String(condition)
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		if isConditionFailed(err) {
			return err
		}
		return fmt.Errorf("update %s: %w", key, err)
	}
	return nil
}

func itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{keyAttr: &types.AttributeValueMemberS{Value: key}}
}

func isConditionFailed(err error) bool {
	if err == nil {
		return false
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}
