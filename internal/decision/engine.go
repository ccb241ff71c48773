package decision

import (
	"fmt"
	"time"

	"github.com/skylift/warehouse-autoscaler/internal/ladder"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

// minQueriesForLatencySignal guards the latency rule against a single slow
// query skewing the window average.
const minQueriesForLatencySignal = 3

type Config struct {
	LatencyHigh    time.Duration
	LatencyLow     time.Duration
	QueueDepthHigh int
}

// Engine classifies a metric sample against the warehouse's current shape.
// Classify is a pure function: no clock reads, no I/O, no state.
type Engine struct {
	config Config
	ladder *ladder.Ladder
}

func NewEngine(cfg Config, l *ladder.Ladder) *Engine {
	if cfg.LatencyHigh == 0 {
		cfg.LatencyHigh = 30 * time.Second
	}
	if cfg.LatencyLow == 0 {
		cfg.LatencyLow = 5 * time.Second
	}
	if cfg.QueueDepthHigh == 0 {
		cfg.QueueDepthHigh = 5
	}

	return &Engine{config: cfg, ladder: l}
}

// Classify applies the rule ladder in priority order; the first match wins.
// Under-provisioning protection (queue depth, high latency) outranks cost
// reclamation, and missing or ambiguous signal never triggers a scale in
// either direction.
func (e *Engine) Classify(w *models.Warehouse, sample models.MetricSample) models.Decision {
	d := models.Decision{WarehouseID: w.ID}

	if !w.IsRunning() {
		d.Recommendation = models.RecommendNone
		d.Reason = fmt.Sprintf("not running (state %s)", w.State)
		return d
	}

	if sample.Unavailable {
		d.Recommendation = models.RecommendMonitor
		d.Reason = "no metric data"
		return d
	}

	if sample.QueueDepth >= e.config.QueueDepthHigh {
		d.Recommendation = models.RecommendScaleUp
		d.Reason = fmt.Sprintf("queue depth %d at or above threshold %d", sample.QueueDepth, e.config.QueueDepthHigh)
		return d
	}

	if sample.AvgDuration >= e.config.LatencyHigh && sample.QueryCount > minQueriesForLatencySignal {
		d.Recommendation = models.RecommendScaleUp
		d.Reason = fmt.Sprintf("avg latency %s at or above threshold %s over %d queries",
			sample.AvgDuration, e.config.LatencyHigh, sample.QueryCount)
		return d
	}

	if sample.QueryCount == 0 {
		d.Recommendation = models.RecommendMonitor
		d.Reason = "idle - no activity in window"
		return d
	}

	if sample.AvgDuration <= e.config.LatencyLow && sample.QueueDepth == 0 {
		// An unknown size tier means we cannot place the shape on the
		// ladder; never shrink on a shape we cannot reason about.
		atFloor, err := e.ladder.AtFloor(w.Shape)
		if err == nil && !atFloor {
			d.Recommendation = models.RecommendScaleDown
			d.Reason = fmt.Sprintf("avg latency %s at or below threshold %s with empty queue",
				sample.AvgDuration, e.config.LatencyLow)
			return d
		}
	}

	d.Recommendation = models.RecommendNone
	d.Reason = "within normal range"
	return d
}
