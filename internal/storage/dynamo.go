package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-storefront-checkout/internal/aws"
)

// ErrTooManyOps is returned when a Write exceeds the DynamoDB transaction limit.
var ErrTooManyOps = errors.New("too many operations in one write")

// maxTransactItems is the DynamoDB TransactWriteItems limit.
const maxTransactItems = 100

// item is the shape persisted in the storage table.
type item struct {
	Key       string    `dynamodbav:"storage_key"` // PK
	Value     string    `dynamodbav:"value"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// Dynamo is a KV backed by a DynamoDB table keyed on storage_key.
type Dynamo struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewDynamo returns a Dynamo store for tableName.
func NewDynamo(client aws.DynamoDBAPI, tableName string) *Dynamo {
	return &Dynamo{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

func (d *Dynamo) keyOf(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"storage_key": &types.AttributeValueMemberS{Value: key},
	}
}

func (d *Dynamo) marshal(key, value string) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(item{Key: key, Value: value, UpdatedAt: d.nowFunc().UTC()})
	if err != nil {
		return nil, fmt.Errorf("marshal item %s: %w", key, err)
	}
	return av, nil
}

// Get reads key. A missing item returns ("", false, nil).
func (d *Dynamo) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := d.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &d.tableName,
		Key:            d.keyOf(key),
		ConsistentRead: boolPtr(true),
	})
	if err != nil {
		return "", false, fmt.Errorf("get item %s: %w", key, err)
	}
	if len(out.Item) == 0 {
		return "", false, nil
	}
	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return "", false, fmt.Errorf("unmarshal item %s: %w", key, err)
	}
	return it.Value, true, nil
}

// Set overwrites key.
func (d *Dynamo) Set(ctx context.Context, key, value string) error {
	av, err := d.marshal(key, value)
	if err != nil {
		return err
	}
	if _, err := d.client.PutItem(ctx, &dyn.PutItemInput{TableName: &d.tableName, Item: av}); err != nil {
		return fmt.Errorf("put item %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (d *Dynamo) Delete(ctx context.Context, key string) error {
	if _, err := d.client.DeleteItem(ctx, &dyn.DeleteItemInput{TableName: &d.tableName, Key: d.keyOf(key)}); err != nil {
		return fmt.Errorf("delete item %s: %w", key, err)
	}
	return nil
}

// Write issues all ops in one TransactWriteItems call.
func (d *Dynamo) Write(ctx context.Context, ops ...Op) error {
	if len(ops) == 0 {
		return nil
	}
	if len(ops) > maxTransactItems {
		return fmt.Errorf("%w: %d", ErrTooManyOps, len(ops))
	}

	items := make([]types.TransactWriteItem, 0, len(ops))
	for _, op := range ops {
		if op.Delete {
			items = append(items, types.TransactWriteItem{
				Delete: &types.Delete{TableName: &d.tableName, Key: d.keyOf(op.Key)},
			})
			continue
		}
		av, err := d.marshal(op.Key, op.Value)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{TableName: &d.tableName, Item: av},
		})
	}

	_, err := d.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return fmt.Errorf("transaction canceled: %w", err)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
