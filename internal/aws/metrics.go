package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted per placed order.
const (
	MetricOrdersPlaced = "OrdersPlaced"
	MetricOrderRevenue = "OrderRevenue"
	MetricItemsSold    = "ItemsSold"
)

// OrderSample is what gets recorded for one order.
type OrderSample struct {
	Payment   string
	Revenue   float64
	Items     int
	Timestamp time.Time
}

// Metrics writes order metrics to one CloudWatch namespace.
type Metrics struct {
	CloudWatch CloudWatchAPI
	Namespace  string
}

func NewMetrics(cw CloudWatchAPI, namespace string) *Metrics {
	if namespace == "" {
		namespace = "Storefront"
	}
	return &Metrics{CloudWatch: cw, Namespace: namespace}
}

// RecordOrder puts the three order metrics in a single call, dimensioned by payment method.
func (m *Metrics) RecordOrder(ctx context.Context, s OrderSample) error {
	dims := []cwtypes.Dimension{{Name: sdkaws.String("Payment"), Value: sdkaws.String(s.Payment)}}
	ts := s.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(m.Namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: sdkaws.String(MetricOrdersPlaced),
				Dimensions: dims,
				Timestamp:  &ts,
				Unit:       cwtypes.StandardUnitCount,
				Value:      sdkaws.Float64(1),
			},
			{
				MetricName: sdkaws.String(MetricOrderRevenue),
				Dimensions: dims,
				Timestamp:  &ts,
				Unit:       cwtypes.StandardUnitNone,
				Value:      sdkaws.Float64(s.Revenue),
			},
			{
				MetricName: sdkaws.String(MetricItemsSold),
				Dimensions: dims,
				Timestamp:  &ts,
				Unit:       cwtypes.StandardUnitCount,
				Value:      sdkaws.Float64(float64(s.Items)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
