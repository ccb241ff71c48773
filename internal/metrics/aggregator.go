package metrics

import (
	"context"
	"sort"
	"time"

	"github.com/skylift/warehouse-autoscaler/internal/logger"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

// Aggregator turns the trailing query-history window into a MetricSample.
type Aggregator struct {
	source   Source
	lookback time.Duration
}

type AggregatorConfig struct {
	Source   Source
	Lookback time.Duration
}

func NewAggregator(cfg AggregatorConfig) *Aggregator {
	if cfg.Lookback == 0 {
		cfg.Lookback = 15 * time.Minute
	}
	return &Aggregator{
		source:   cfg.Source,
		lookback: cfg.Lookback,
	}
}

// Sample summarizes the window [now-lookback, now] for one warehouse. A
// fetch failure yields an unavailable sample rather than an error: absence
// of data must not be read as absence of load.
func (a *Aggregator) Sample(ctx context.Context, warehouseID string, now time.Time) models.MetricSample {
	sample := models.MetricSample{
		WarehouseID: warehouseID,
		Window:      a.lookback,
	}

	records, err := a.source.QueryHistory(ctx, warehouseID, now.Add(-a.lookback), now)
	if err != nil {
		logger.WithWarehouse(warehouseID).Warnf("Query history unavailable: %v", err)
		sample.Unavailable = true
		return sample
	}

	var finished []time.Duration
	var lastQueryAt time.Time

	for _, r := range records {
		switch r.Status {
		case models.QueryFinished:
			finished = append(finished, r.Duration)
			if completed := r.StartTime.Add(r.Duration); completed.After(lastQueryAt) {
				lastQueryAt = completed
			}
		case models.QueryQueued:
			sample.QueueDepth++
		}
	}

	sample.QueryCount = len(records)
	if !lastQueryAt.IsZero() {
		sample.LastQueryAt = &lastQueryAt
	}

	if len(finished) > 0 {
		sample.AvgDuration = average(finished)
		sample.P95Duration = percentile95(finished)
	}

	return sample
}

func average(durations []time.Duration) time.Duration {
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}

// percentile95 returns the value at floor(0.95*n) after ascending sort,
// clamped to the last index.
func percentile95(durations []time.Duration) time.Duration {
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(float64(len(sorted)) * 0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
