package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// storage writes are small and on the request path, so retry a little harder
// than the SDK default before surfacing a 500
const dynamoMaxAttempts = 5

// AWSClients holds the service clients behind the narrow interfaces in api.go.
type AWSClients struct {
	DynamoDB   DynamoDBAPI
	SQS        SQSAPI
	CloudWatch CloudWatchAPI
}

// NewAWSClients builds the DynamoDB, SQS and CloudWatch clients from one
// SDK config.
func NewAWSClients(ctx context.Context, opts Options) (*AWSClients, error) {
	cfg, err := LoadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &AWSClients{
		DynamoDB: dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
			o.RetryMaxAttempts = dynamoMaxAttempts
		}),
		SQS:        sqs.NewFromConfig(cfg),
		CloudWatch: cloudwatch.NewFromConfig(cfg),
	}, nil
}

// OrderPublisher returns a publisher for the order-placed queue.
func (c *AWSClients) OrderPublisher(queueURL string) *Publisher {
	return NewPublisher(c.SQS, queueURL)
}

// OrderMetrics returns a recorder writing to namespace.
func (c *AWSClients) OrderMetrics(namespace string) *Metrics {
	return NewMetrics(c.CloudWatch, namespace)
}
