package controller

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/skylift/warehouse-autoscaler/internal/decision"
	"github.com/skylift/warehouse-autoscaler/internal/executor"
	"github.com/skylift/warehouse-autoscaler/internal/guard"
	"github.com/skylift/warehouse-autoscaler/internal/ladder"
	"github.com/skylift/warehouse-autoscaler/internal/logger"
	"github.com/skylift/warehouse-autoscaler/internal/metrics"
	"github.com/skylift/warehouse-autoscaler/internal/report"
	"github.com/skylift/warehouse-autoscaler/internal/state"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

type Config struct {
	WarehouseTimeout time.Duration
	DryRun           bool
}

// Controller runs one control cycle: for each warehouse it aggregates
// metrics, classifies, computes a ladder target, checks the safety guard,
// and executes. Warehouses are processed sequentially and independently; a
// failure for one never aborts the others.
type Controller struct {
	config     Config
	source     metrics.Source
	aggregator *metrics.Aggregator
	engine     *decision.Engine
	ladder     *ladder.Ladder
	guard      *guard.Guard
	executor   *executor.Executor
	store      *state.Store
	sinks      []report.Sink

	// now is injectable so decisions and guard checks are reproducible in
	// tests; everything downstream receives this timestamp explicitly.
	now func() time.Time
}

type Deps struct {
	Source     metrics.Source
	Aggregator *metrics.Aggregator
	Engine     *decision.Engine
	Ladder     *ladder.Ladder
	Guard      *guard.Guard
	Executor   *executor.Executor
	Store      *state.Store
	Sinks      []report.Sink
	Now        func() time.Time
}

func New(cfg Config, deps Deps) *Controller {
	if cfg.WarehouseTimeout == 0 {
		cfg.WarehouseTimeout = 30 * time.Second
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Controller{
		config:     cfg,
		source:     deps.Source,
		aggregator: deps.Aggregator,
		engine:     deps.Engine,
		ladder:     deps.Ladder,
		guard:      deps.Guard,
		executor:   deps.Executor,
		store:      deps.Store,
		sinks:      deps.Sinks,
		now:        now,
	}
}

// Run executes one full cycle and returns the run report. It fails only
// when the warehouse inventory or the persisted state cannot be loaded;
// per-warehouse errors are isolated into their outcome rows.
func (c *Controller) Run(ctx context.Context) (*models.RunReport, error) {
	runStart := c.now()
	runReport := models.NewRunReport(runStart)
	log := logger.WithRun(runReport.RunID)

	st, err := c.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load scaler state: %w", err)
	}

	warehouses, err := c.source.ListWarehouses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list warehouses: %w", err)
	}

	// Stable ordering for reproducible reporting.
	sort.Slice(warehouses, func(i, j int) bool {
		if warehouses[i].Name != warehouses[j].Name {
			return warehouses[i].Name < warehouses[j].Name
		}
		return warehouses[i].ID < warehouses[j].ID
	})

	log.Infof("Run started: %d warehouses", len(warehouses))

	for i := range warehouses {
		row := c.processWarehouse(ctx, &warehouses[i], st)
		runReport.Add(row)
	}

	runReport.FinishedAt = c.now()

	for _, sink := range c.sinks {
		if err := sink.Emit(ctx, runReport); err != nil {
			log.Errorf("Report sink %s failed: %v", sink.Name(), err)
		}
	}

	log.Infof("Run finished in %s", runReport.FinishedAt.Sub(runReport.StartedAt).Round(time.Millisecond))
	return runReport, nil
}

func (c *Controller) processWarehouse(ctx context.Context, w *models.Warehouse, st *models.ScalerState) (row models.OutcomeRow) {
	row = models.OutcomeRow{
		WarehouseID:   w.ID,
		WarehouseName: w.Name,
	}

	// One warehouse's processing must never take the whole run down.
	defer func() {
		if r := recover(); r != nil {
			logger.WithWarehouse(w.ID).Errorf("Warehouse processing panicked: %v", r)
			row.Recommendation = models.RecommendNone
			row.Reason = fmt.Sprintf("internal error: %v", r)
			row.Action = models.ActionSkip
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.config.WarehouseTimeout)
	defer cancel()

	now := c.now()

	sample := c.aggregator.Sample(ctx, w.ID, now)
	row.Sample = sample

	d := c.engine.Classify(w, sample)
	row.Recommendation = d.Recommendation
	row.Reason = d.Reason

	logger.WithWarehouse(w.ID).Debugf("Classified %s: %s", d.Recommendation, d.Reason)

	if !d.Actionable() {
		row.Action = models.ActionNone
		if !w.IsRunning() {
			row.Action = models.ActionSkip
		}
		return row
	}

	dir := d.Direction()

	target, err := c.ladder.Next(w.Shape, dir)
	if err == ladder.ErrNoChangePossible {
		logger.WithWarehouse(w.ID).Infof("No %s step available from %s", dir, w.Shape)
		row.Action = models.ActionNone
		row.Reason = fmt.Sprintf("%s; no %s step available from %s", d.Reason, dir, w.Shape)
		return row
	}
	if err != nil {
		logger.WithWarehouse(w.ID).Errorf("Cannot compute target shape: %v", err)
		row.Action = models.ActionSkip
		row.Reason = fmt.Sprintf("cannot compute target shape: %v", err)
		return row
	}
	row.Target = &target

	allowed, blockReason := c.guard.Check(w.ID, dir, st, now)
	if !allowed {
		logger.WithWarehouse(w.ID).Infof("Blocked %s to %s: %s", dir, target, blockReason)
		row.Action = models.ActionBlocked
		row.Reason = fmt.Sprintf("%s; blocked: %s", d.Reason, blockReason)
		return row
	}

	if c.config.DryRun {
		logger.WithWarehouse(w.ID).Infof("Dry run: would scale %s to %s", dir, target)
		row.Action = models.ActionNone
		row.Reason = fmt.Sprintf("%s; dry run, would scale %s to %s", d.Reason, dir, target)
		return row
	}

	action, err := c.executor.Execute(ctx, w, dir, target, d.Reason, st, now)
	if action == nil {
		row.Action = models.ActionFailed
		row.Reason = fmt.Sprintf("%s; apply failed: %v", d.Reason, err)
		return row
	}

	if dir == models.DirectionUp {
		row.Action = models.ActionScaledUp
	} else {
		row.Action = models.ActionScaledDown
	}
	return row
}
