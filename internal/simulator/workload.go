package simulator

import (
	"math/rand"
	"time"

	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

// Workload generates synthetic query history for a simulated warehouse.
type Workload interface {
	Records(warehouseID string, start, end time.Time) []models.QueryRecord
	Name() string
}

func ParseWorkload(name string) Workload {
	switch name {
	case "busy":
		return &BusyWorkload{QueriesPerMinute: 12, AvgDuration: 45 * time.Second, QueueDepth: 7}
	case "idle":
		return &IdleWorkload{}
	case "light":
		return &SteadyWorkload{QueriesPerMinute: 3, AvgDuration: 2 * time.Second}
	default:
		return &SteadyWorkload{QueriesPerMinute: 6, AvgDuration: 12 * time.Second}
	}
}

// SteadyWorkload emits evenly spaced finished queries with jittered duration.
type SteadyWorkload struct {
	QueriesPerMinute int
	AvgDuration      time.Duration
}

func (w *SteadyWorkload) Name() string { return "steady" }

func (w *SteadyWorkload) Records(warehouseID string, start, end time.Time) []models.QueryRecord {
	return finishedSeries(warehouseID, start, end, w.QueriesPerMinute, w.AvgDuration)
}

// BusyWorkload emits slow finished queries plus a standing queue, enough to
// trip both the queue-depth and latency rules.
type BusyWorkload struct {
	QueriesPerMinute int
	AvgDuration      time.Duration
	QueueDepth       int
}

func (w *BusyWorkload) Name() string { return "busy" }

func (w *BusyWorkload) Records(warehouseID string, start, end time.Time) []models.QueryRecord {
	records := finishedSeries(warehouseID, start, end, w.QueriesPerMinute, w.AvgDuration)
	for i := 0; i < w.QueueDepth; i++ {
		records = append(records, models.QueryRecord{
			QueryID:     models.NewUUID(),
			WarehouseID: warehouseID,
			Status:      models.QueryQueued,
			StartTime:   end.Add(-time.Duration(i) * time.Second),
		})
	}
	return records
}

// IdleWorkload emits nothing.
type IdleWorkload struct{}

func (w *IdleWorkload) Name() string { return "idle" }

func (w *IdleWorkload) Records(string, time.Time, time.Time) []models.QueryRecord {
	return nil
}

func finishedSeries(warehouseID string, start, end time.Time, perMinute int, avg time.Duration) []models.QueryRecord {
	if perMinute <= 0 {
		return nil
	}

	interval := time.Minute / time.Duration(perMinute)
	var records []models.QueryRecord

	for t := start; t.Before(end); t = t.Add(interval) {
		jitter := time.Duration((rand.Float64()*0.4 - 0.2) * float64(avg))
		records = append(records, models.QueryRecord{
			QueryID:     models.NewUUID(),
			WarehouseID: warehouseID,
			Status:      models.QueryFinished,
			Duration:    avg + jitter,
			StartTime:   t,
		})
	}
	return records
}
