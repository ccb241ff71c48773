package report

import (
	"context"

	"github.com/skylift/warehouse-autoscaler/internal/logger"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

// LogSink writes one structured log line per outcome row.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Name() string {
	return "log"
}

func (s *LogSink) Emit(ctx context.Context, r *models.RunReport) error {
	for _, row := range r.Rows {
		fields := map[string]interface{}{
			"run_id":         r.RunID,
			"warehouse_id":   row.WarehouseID,
			"warehouse_name": row.WarehouseName,
			"recommendation": row.Recommendation,
			"action":         row.Action,
			"queue_depth":    row.Sample.QueueDepth,
			"query_count":    row.Sample.QueryCount,
			"avg_duration":   row.Sample.AvgDuration.String(),
			"p95_duration":   row.Sample.P95Duration.String(),
		}
		if row.Target != nil {
			fields["target"] = row.Target.String()
		}
		logger.WithFields(fields).Info(row.Reason)
	}
	return nil
}
