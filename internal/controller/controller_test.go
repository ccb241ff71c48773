package controller_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylift/warehouse-autoscaler/internal/controller"
	"github.com/skylift/warehouse-autoscaler/internal/controlplane"
	"github.com/skylift/warehouse-autoscaler/internal/decision"
	"github.com/skylift/warehouse-autoscaler/internal/executor"
	"github.com/skylift/warehouse-autoscaler/internal/guard"
	"github.com/skylift/warehouse-autoscaler/internal/ladder"
	"github.com/skylift/warehouse-autoscaler/internal/metrics"
	"github.com/skylift/warehouse-autoscaler/internal/state"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

type harness struct {
	controller *controller.Controller
	source     *metrics.MockSource
	cp         *controlplane.Mock
	store      *state.Store
	now        time.Time
}

func newHarness(t *testing.T, cfg controller.Config) *harness {
	t.Helper()

	l, err := ladder.New(ladder.Config{
		Sizes:   []string{"2X-Small", "X-Small", "Small", "Medium"},
		Floor:   1,
		Ceiling: 4,
	})
	require.NoError(t, err)

	source := metrics.NewMockSource()
	cp := controlplane.NewMock()
	store := state.New(state.Config{Path: filepath.Join(t.TempDir(), "state.json")})
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	h := &harness{
		source: source,
		cp:     cp,
		store:  store,
		now:    now,
	}

	h.controller = controller.New(cfg, controller.Deps{
		Source: source,
		Aggregator: metrics.NewAggregator(metrics.AggregatorConfig{
			Source:   source,
			Lookback: 15 * time.Minute,
		}),
		Engine: decision.NewEngine(decision.Config{
			LatencyHigh:    30 * time.Second,
			LatencyLow:     5 * time.Second,
			QueueDepthHigh: 5,
		}, l),
		Ladder:   l,
		Guard:    guard.New(guard.Config{Cooldown: 10 * time.Minute, MaxScaleUpsPerHour: 3}),
		Executor: executor.New(cp, store),
		Store:    store,
		Now:      func() time.Time { return now },
	})
	return h
}

func (h *harness) addWarehouse(id, name string, st models.WarehouseState, shape models.Shape) {
	h.source.AddWarehouse(models.Warehouse{
		ID:          id,
		Name:        name,
		State:       st,
		MinClusters: 1,
		Shape:       shape,
	})
}

// busyHistory produces a window that trips the queue-depth rule.
func (h *harness) busyHistory(warehouseID string) {
	var records []models.QueryRecord
	for i := 0; i < 5; i++ {
		records = append(records, models.QueryRecord{
			QueryID:   models.NewUUID(),
			Status:    models.QueryQueued,
			StartTime: h.now.Add(-2 * time.Minute),
		})
	}
	h.source.SetHistory(warehouseID, records)
}

// quietHistory produces light finished traffic below the low-latency threshold.
func (h *harness) quietHistory(warehouseID string) {
	var records []models.QueryRecord
	for i := 0; i < 4; i++ {
		records = append(records, models.QueryRecord{
			QueryID:   models.NewUUID(),
			Status:    models.QueryFinished,
			Duration:  time.Second,
			StartTime: h.now.Add(-5 * time.Minute),
		})
	}
	h.source.SetHistory(warehouseID, records)
}

func rowFor(t *testing.T, r *models.RunReport, warehouseID string) models.OutcomeRow {
	t.Helper()
	for _, row := range r.Rows {
		if row.WarehouseID == warehouseID {
			return row
		}
	}
	t.Fatalf("no outcome row for %s", warehouseID)
	return models.OutcomeRow{}
}

func TestRun_BusyWarehouseScalesUp(t *testing.T) {
	h := newHarness(t, controller.Config{})
	h.addWarehouse("wh-1", "analytics", models.WarehouseRunning, models.Shape{MaxClusters: 1, Size: "Small"})
	h.busyHistory("wh-1")

	r, err := h.controller.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Rows, 1)

	row := r.Rows[0]
	assert.Equal(t, models.RecommendScaleUp, row.Recommendation)
	assert.Equal(t, models.ActionScaledUp, row.Action)
	require.NotNil(t, row.Target)
	assert.Equal(t, models.Shape{MaxClusters: 2, Size: "Small"}, *row.Target)

	assert.Equal(t, []models.Shape{{MaxClusters: 2, Size: "Small"}}, h.cp.Applied("wh-1"))

	persisted, err := h.store.Load()
	require.NoError(t, err)
	require.Len(t, persisted.Actions, 1)
	assert.Equal(t, models.DirectionUp, persisted.Actions[0].Direction)
}

func TestRun_QuietWarehouseScalesDown(t *testing.T) {
	h := newHarness(t, controller.Config{})
	h.addWarehouse("wh-1", "analytics", models.WarehouseRunning, models.Shape{MaxClusters: 2, Size: "Small"})
	h.quietHistory("wh-1")

	r, err := h.controller.Run(context.Background())
	require.NoError(t, err)

	row := r.Rows[0]
	assert.Equal(t, models.RecommendScaleDown, row.Recommendation)
	assert.Equal(t, models.ActionScaledDown, row.Action)
	assert.Equal(t, []models.Shape{{MaxClusters: 1, Size: "Small"}}, h.cp.Applied("wh-1"))
}

func TestRun_StoppedWarehouseSkipped(t *testing.T) {
	h := newHarness(t, controller.Config{})
	h.addWarehouse("wh-1", "sandbox", models.WarehouseStopped, models.Shape{MaxClusters: 1, Size: "2X-Small"})

	r, err := h.controller.Run(context.Background())
	require.NoError(t, err)

	row := r.Rows[0]
	assert.Equal(t, models.RecommendNone, row.Recommendation)
	assert.Equal(t, models.ActionSkip, row.Action)
	assert.Empty(t, h.cp.Applied("wh-1"))
}

func TestRun_UnavailableMetricsMeansMonitor(t *testing.T) {
	h := newHarness(t, controller.Config{})
	h.addWarehouse("wh-1", "analytics", models.WarehouseRunning, models.Shape{MaxClusters: 1, Size: "Small"})
	h.source.FailQueryHistory("wh-1", metrics.ErrFetchFailed)

	r, err := h.controller.Run(context.Background())
	require.NoError(t, err)

	row := r.Rows[0]
	assert.Equal(t, models.RecommendMonitor, row.Recommendation)
	assert.Equal(t, models.ActionNone, row.Action)
	assert.Empty(t, h.cp.Applied("wh-1"))
}

func TestRun_OneWarehouseFailureDoesNotAbortOthers(t *testing.T) {
	h := newHarness(t, controller.Config{})
	h.addWarehouse("wh-a", "alpha", models.WarehouseRunning, models.Shape{MaxClusters: 1, Size: "Small"})
	h.addWarehouse("wh-b", "beta", models.WarehouseRunning, models.Shape{MaxClusters: 1, Size: "Small"})
	h.addWarehouse("wh-c", "gamma", models.WarehouseRunning, models.Shape{MaxClusters: 1, Size: "Small"})
	h.busyHistory("wh-a")
	h.source.FailQueryHistory("wh-b", errors.New("backend 500"))
	h.busyHistory("wh-c")

	r, err := h.controller.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Rows, 3)

	assert.Equal(t, models.ActionScaledUp, rowFor(t, r, "wh-a").Action)
	assert.Equal(t, models.RecommendMonitor, rowFor(t, r, "wh-b").Recommendation)
	assert.Equal(t, models.ActionScaledUp, rowFor(t, r, "wh-c").Action)
}

func TestRun_RowsSortedByName(t *testing.T) {
	h := newHarness(t, controller.Config{})
	h.addWarehouse("wh-3", "zeta", models.WarehouseRunning, models.Shape{MaxClusters: 1, Size: "Small"})
	h.addWarehouse("wh-1", "alpha", models.WarehouseRunning, models.Shape{MaxClusters: 1, Size: "Small"})
	h.addWarehouse("wh-2", "mid", models.WarehouseRunning, models.Shape{MaxClusters: 1, Size: "Small"})

	r, err := h.controller.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Rows, 3)
	assert.Equal(t, "alpha", r.Rows[0].WarehouseName)
	assert.Equal(t, "mid", r.Rows[1].WarehouseName)
	assert.Equal(t, "zeta", r.Rows[2].WarehouseName)
}

func TestRun_CooldownBlocksRepeatScaling(t *testing.T) {
	h := newHarness(t, controller.Config{})
	h.addWarehouse("wh-1", "analytics", models.WarehouseRunning, models.Shape{MaxClusters: 1, Size: "Small"})
	h.busyHistory("wh-1")

	w := models.Warehouse{ID: "wh-1", Name: "analytics", Shape: models.Shape{MaxClusters: 1, Size: "Small"}}
	st := &models.ScalerState{}
	st.Append(models.NewScaleAction(&w, models.DirectionUp, models.Shape{MaxClusters: 2, Size: "Small"}, "seed", h.now.Add(-2*time.Minute)))
	require.NoError(t, h.store.Save(st, h.now))

	r, err := h.controller.Run(context.Background())
	require.NoError(t, err)

	row := r.Rows[0]
	assert.Equal(t, models.RecommendScaleUp, row.Recommendation)
	assert.Equal(t, models.ActionBlocked, row.Action)
	assert.Contains(t, row.Reason, "cooldown")
	assert.Empty(t, h.cp.Applied("wh-1"))
}

func TestRun_HourlyCapBlocksScaleUp(t *testing.T) {
	h := newHarness(t, controller.Config{})
	h.addWarehouse("wh-1", "analytics", models.WarehouseRunning, models.Shape{MaxClusters: 2, Size: "Small"})
	h.busyHistory("wh-1")

	// Three scale-ups inside the hour but outside the cooldown window.
	w := models.Warehouse{ID: "wh-1", Name: "analytics", Shape: models.Shape{MaxClusters: 1, Size: "Small"}}
	st := &models.ScalerState{}
	for i := 1; i <= 3; i++ {
		st.Append(models.NewScaleAction(&w, models.DirectionUp,
			models.Shape{MaxClusters: 2, Size: "Small"}, "seed", h.now.Add(-time.Duration(i*12)*time.Minute)))
	}
	require.NoError(t, h.store.Save(st, h.now))

	r, err := h.controller.Run(context.Background())
	require.NoError(t, err)

	row := r.Rows[0]
	assert.Equal(t, models.ActionBlocked, row.Action)
	assert.Contains(t, row.Reason, "cap")
	assert.Empty(t, h.cp.Applied("wh-1"))
}

func TestRun_NoStepAvailableAtCeiling(t *testing.T) {
	h := newHarness(t, controller.Config{})
	h.addWarehouse("wh-1", "analytics", models.WarehouseRunning, models.Shape{MaxClusters: 4, Size: "Medium"})
	h.busyHistory("wh-1")

	r, err := h.controller.Run(context.Background())
	require.NoError(t, err)

	row := r.Rows[0]
	assert.Equal(t, models.RecommendScaleUp, row.Recommendation)
	assert.Equal(t, models.ActionNone, row.Action)
	assert.Contains(t, row.Reason, "no UP step available")
	assert.Empty(t, h.cp.Applied("wh-1"))
}

func TestRun_UnknownTierSkipped(t *testing.T) {
	h := newHarness(t, controller.Config{})
	h.addWarehouse("wh-1", "analytics", models.WarehouseRunning, models.Shape{MaxClusters: 1, Size: "Mega"})
	h.busyHistory("wh-1")

	r, err := h.controller.Run(context.Background())
	require.NoError(t, err)

	row := r.Rows[0]
	assert.Equal(t, models.ActionSkip, row.Action)
	assert.Empty(t, h.cp.Applied("wh-1"))
}

func TestRun_DryRunDecidesButNeverApplies(t *testing.T) {
	h := newHarness(t, controller.Config{DryRun: true})
	h.addWarehouse("wh-1", "analytics", models.WarehouseRunning, models.Shape{MaxClusters: 1, Size: "Small"})
	h.busyHistory("wh-1")

	r, err := h.controller.Run(context.Background())
	require.NoError(t, err)

	row := r.Rows[0]
	assert.Equal(t, models.RecommendScaleUp, row.Recommendation)
	assert.Equal(t, models.ActionNone, row.Action)
	assert.Contains(t, row.Reason, "dry run")
	assert.Empty(t, h.cp.Applied("wh-1"))

	persisted, err := h.store.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted.Actions)
}

func TestRun_ApplyFailureReportedAndConsumesNoBudget(t *testing.T) {
	h := newHarness(t, controller.Config{})
	h.addWarehouse("wh-1", "analytics", models.WarehouseRunning, models.Shape{MaxClusters: 1, Size: "Small"})
	h.busyHistory("wh-1")
	h.cp.Fail(errors.New("resize rejected"))

	r, err := h.controller.Run(context.Background())
	require.NoError(t, err)

	row := r.Rows[0]
	assert.Equal(t, models.ActionFailed, row.Action)
	assert.Contains(t, row.Reason, "apply failed")

	persisted, err := h.store.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted.Actions)
}

func TestRun_ListFailureAbortsRun(t *testing.T) {
	h := newHarness(t, controller.Config{})
	h.source.FailList(errors.New("inventory unavailable"))

	_, err := h.controller.Run(context.Background())
	assert.Error(t, err)
}
