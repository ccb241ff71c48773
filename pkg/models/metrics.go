package models

import "time"

// MetricSample summarizes the trailing query-history window for one
// warehouse. It is recomputed every cycle and never persisted.
//
// Unavailable marks a sample whose upstream fetch failed. Absence of data
// must never be read as absence of load, so an unavailable sample always
// classifies as MONITOR downstream.
type MetricSample struct {
	WarehouseID string        `json:"warehouse_id"`
	Window      time.Duration `json:"window"`
	Unavailable bool          `json:"unavailable"`
	AvgDuration time.Duration `json:"avg_duration"`
	P95Duration time.Duration `json:"p95_duration"`
	QueueDepth  int           `json:"queue_depth"`
	QueryCount  int           `json:"query_count"`
	LastQueryAt *time.Time    `json:"last_query_at,omitempty"`
}

func (m *MetricSample) Idle() bool {
	return !m.Unavailable && m.QueryCount == 0
}
