package executor_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylift/warehouse-autoscaler/internal/controlplane"
	"github.com/skylift/warehouse-autoscaler/internal/executor"
	"github.com/skylift/warehouse-autoscaler/internal/state"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

func testWarehouse() *models.Warehouse {
	return &models.Warehouse{
		ID:          "wh-1",
		Name:        "analytics",
		State:       models.WarehouseRunning,
		MinClusters: 1,
		Shape:       models.Shape{MaxClusters: 1, Size: "Small"},
	}
}

func newTestExecutor(t *testing.T) (*executor.Executor, *controlplane.Mock, *state.Store) {
	t.Helper()
	cp := controlplane.NewMock()
	store := state.New(state.Config{Path: filepath.Join(t.TempDir(), "state.json")})
	return executor.New(cp, store), cp, store
}

func TestExecute_SuccessAppendsAndPersists(t *testing.T) {
	exec, cp, store := newTestExecutor(t)
	w := testWarehouse()
	st := &models.ScalerState{}
	now := time.Now()
	target := models.Shape{MaxClusters: 2, Size: "Small"}

	action, err := exec.Execute(context.Background(), w, models.DirectionUp, target, "queue depth high", st, now)
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, w.ID, action.WarehouseID)
	assert.Equal(t, w.Shape, action.From)
	assert.Equal(t, target, action.To)
	assert.Equal(t, models.DirectionUp, action.Direction)

	assert.Equal(t, []models.Shape{target}, cp.Applied(w.ID))

	require.Len(t, st.Actions, 1)

	persisted, err := store.Load()
	require.NoError(t, err)
	require.Len(t, persisted.Actions, 1)
	assert.Equal(t, action.ID, persisted.Actions[0].ID)
}

func TestExecute_ApplyFailureMutatesNothing(t *testing.T) {
	exec, cp, store := newTestExecutor(t)
	cp.Fail(errors.New("control plane unavailable"))
	w := testWarehouse()
	st := &models.ScalerState{}

	action, err := exec.Execute(context.Background(), w, models.DirectionUp,
		models.Shape{MaxClusters: 2, Size: "Small"}, "queue depth high", st, time.Now())

	assert.Error(t, err)
	assert.Nil(t, action)
	assert.Empty(t, st.Actions)

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, persisted.Actions)
}

func TestExecute_FailedApplyIsRetryableNextCycle(t *testing.T) {
	exec, cp, _ := newTestExecutor(t)
	cp.Fail(nil)
	w := testWarehouse()
	st := &models.ScalerState{}
	target := models.Shape{MaxClusters: 2, Size: "Small"}

	_, err := exec.Execute(context.Background(), w, models.DirectionUp, target, "queue depth high", st, time.Now())
	require.Error(t, err)

	cp.Succeed()
	action, err := exec.Execute(context.Background(), w, models.DirectionUp, target, "queue depth high", st, time.Now())
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Len(t, st.Actions, 1)
}
