package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/sirupsen/logrus"
)

// Reconciliation outcome metric names.
const (
	MetricPaymentSettled    = "PaymentSettled"
	MetricPaymentRejected   = "PaymentRejected"
	MetricDuplicateCallback = "DuplicateCallback"
	MetricUnknownFootprint  = "UnknownFootprint"
)

// Metrics emits count metrics to CloudWatch. Emission is best-effort:
// a failed put is logged and swallowed, never surfaced to the caller.
type Metrics struct {
	cw        CloudWatchAPI
	namespace string
	logger    *logrus.Logger
}

func NewMetrics(cw CloudWatchAPI, namespace string, logger *logrus.Logger) *Metrics {
	return &Metrics{
		cw:        cw,
		namespace: namespace,
		logger:    logger,
	}
}

// Count increments the named counter by one.
func (m *Metrics) Count(ctx context.Context, name string) {
	if m == nil || m.cw == nil {
		return
	}
	one := float64(1)
	_, err := m.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &m.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Value:      &one,
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	})
	if err != nil && m.logger != nil {
		m.logger.WithError(err).WithField("metric", name).Warn("failed to put metric data")
	}
}
