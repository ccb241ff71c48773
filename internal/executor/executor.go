package executor

import (
	"context"
	"time"

	"github.com/skylift/warehouse-autoscaler/internal/controlplane"
	"github.com/skylift/warehouse-autoscaler/internal/logger"
	"github.com/skylift/warehouse-autoscaler/internal/state"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

// Executor applies authorized scaling decisions and records the outcome.
// State mutates only on confirmed success: a failed apply consumes no
// cooldown or rate-cap budget and is safe to retry next cycle. Each
// successful action is persisted immediately so a mid-run crash never loses
// completed actions.
type Executor struct {
	controlPlane controlplane.ControlPlane
	store        *state.Store
}

func New(cp controlplane.ControlPlane, store *state.Store) *Executor {
	return &Executor{
		controlPlane: cp,
		store:        store,
	}
}

// Execute applies the target shape and, on success, appends the action to
// the state and persists it. The returned action is nil when the apply
// failed.
func (e *Executor) Execute(
	ctx context.Context,
	w *models.Warehouse,
	dir models.Direction,
	target models.Shape,
	reason string,
	st *models.ScalerState,
	now time.Time,
) (*models.ScaleAction, error) {
	if err := e.controlPlane.ApplyShape(ctx, w.ID, target); err != nil {
		logger.WithWarehouse(w.ID).Errorf("Shape apply failed: %s -> %s: %v", w.Shape, target, err)
		return nil, err
	}

	action := models.NewScaleAction(w, dir, target, reason, now)
	st.Append(action)

	if err := e.store.Save(st, now); err != nil {
		// The change is live even though the record could not be written;
		// surface it loudly, the guard's accounting is now behind reality.
		logger.WithWarehouse(w.ID).Errorf("Applied %s -> %s but failed to persist state: %v", w.Shape, target, err)
		return &action, err
	}

	logger.WithWarehouse(w.ID).Infof("Scaled %s: %s -> %s (%s)", dir, w.Shape, target, reason)
	return &action, nil
}
