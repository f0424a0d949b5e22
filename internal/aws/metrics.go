package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsRecorder publishes approval decision counters to CloudWatch.
type MetricsRecorder struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	nowFunc    func() time.Time
}

// NewMetricsRecorder returns a MetricsRecorder writing under namespace.
func NewMetricsRecorder(client CloudWatchAPI, namespace string) *MetricsRecorder {
	return &MetricsRecorder{
		CloudWatch: client,
		Namespace:  namespace,
		nowFunc:    time.Now,
	}
}

// RecordDecision emits one datum counting the items touched by an admin
// decision, dimensioned by the decision kind (item/bulk) and outcome.
func (m *MetricsRecorder) RecordDecision(ctx context.Context, kind, outcome string, items int) error {
	now := m.nowFunc()
	value := float64(items)
	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: awsString(m.Namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("ItemsDecided"),
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("Kind"), Value: awsString(kind)},
					{Name: awsString("Outcome"), Value: awsString(outcome)},
				},
				Timestamp: &now,
				Unit:      cwtypes.StandardUnitCount,
				Value:     &value,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
