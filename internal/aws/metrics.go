package aws

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the pipeline.
const (
	MetricCheckoutSucceeded         = "CheckoutSucceeded"
	MetricGatewayDeclined           = "GatewayDeclined"
	MetricReconciliationFault       = "ReconciliationFault"
	MetricInventoryAdjustmentFailed = "InventoryAdjustmentFailed"
	MetricNotificationFailed        = "NotificationFailed"
	MetricIntentOrphaned            = "PendingIntentOrphaned"
)

const metricNamespace = "CheckoutPipeline"

// MetricEmitter publishes count metrics to CloudWatch. Emission is
// best-effort: a failed put is logged and swallowed so metrics can never
// fail a checkout or a status update.
type MetricEmitter struct {
	client CloudWatchAPI
}

// NewMetricEmitter returns an emitter backed by the given CloudWatch client.
// A nil client disables emission, which keeps tests and local runs quiet.
func NewMetricEmitter(client CloudWatchAPI) *MetricEmitter {
	return &MetricEmitter{client: client}
}

// Count adds n to the named counter.
func (e *MetricEmitter) Count(ctx context.Context, name string, n float64) {
	if e == nil || e.client == nil {
		return
	}

	ns := metricNamespace
	value := n
	input := &cloudwatch.PutMetricDataInput{
		Namespace: &ns,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Value:      &value,
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	}

	if _, err := e.client.PutMetricData(ctx, input); err != nil {
		log.Printf("[metrics] put %s failed: %v", name, err)
	}
}
