package guard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skylift/warehouse-autoscaler/internal/guard"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

func action(warehouseID string, dir models.Direction, at time.Time) models.ScaleAction {
	return models.ScaleAction{
		ID:          models.NewUUID(),
		Timestamp:   at,
		WarehouseID: warehouseID,
		Direction:   dir,
		From:        models.Shape{MaxClusters: 1, Size: "Small"},
		To:          models.Shape{MaxClusters: 2, Size: "Small"},
	}
}

func TestCheck_Cooldown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := guard.New(guard.Config{Cooldown: 10 * time.Minute, MaxScaleUpsPerHour: 3})

	tests := []struct {
		name    string
		actions []models.ScaleAction
		dir     models.Direction
		allowed bool
	}{
		{
			name:    "no history allows",
			actions: nil,
			dir:     models.DirectionUp,
			allowed: true,
		},
		{
			name:    "recent action blocks up",
			actions: []models.ScaleAction{action("wh-1", models.DirectionUp, now.Add(-5*time.Minute))},
			dir:     models.DirectionUp,
			allowed: false,
		},
		{
			name:    "recent down action blocks up too",
			actions: []models.ScaleAction{action("wh-1", models.DirectionDown, now.Add(-5*time.Minute))},
			dir:     models.DirectionUp,
			allowed: false,
		},
		{
			name:    "recent up action blocks down",
			actions: []models.ScaleAction{action("wh-1", models.DirectionUp, now.Add(-5*time.Minute))},
			dir:     models.DirectionDown,
			allowed: false,
		},
		{
			name:    "action outside cooldown allows",
			actions: []models.ScaleAction{action("wh-1", models.DirectionUp, now.Add(-11*time.Minute))},
			dir:     models.DirectionDown,
			allowed: true,
		},
		{
			name:    "other warehouse history is ignored",
			actions: []models.ScaleAction{action("wh-2", models.DirectionUp, now.Add(-1*time.Minute))},
			dir:     models.DirectionUp,
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &models.ScalerState{Actions: tt.actions}
			allowed, reason := g.Check("wh-1", tt.dir, st, now)
			assert.Equal(t, tt.allowed, allowed)
			if !tt.allowed {
				assert.Contains(t, reason, "cooldown")
			}
		})
	}
}

func TestCheck_RateCap(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := guard.New(guard.Config{Cooldown: 10 * time.Minute, MaxScaleUpsPerHour: 2})

	// Two scale-ups well outside the cooldown but inside the trailing hour.
	st := &models.ScalerState{Actions: []models.ScaleAction{
		action("wh-1", models.DirectionUp, now.Add(-50*time.Minute)),
		action("wh-1", models.DirectionUp, now.Add(-30*time.Minute)),
	}}

	allowed, reason := g.Check("wh-1", models.DirectionUp, st, now)
	assert.False(t, allowed)
	assert.Contains(t, reason, "scale-up cap")

	// Scaling down is not rate limited.
	allowed, _ = g.Check("wh-1", models.DirectionDown, st, now)
	assert.True(t, allowed)
}

func TestCheck_RateCapCountsOnlyUps(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := guard.New(guard.Config{Cooldown: 5 * time.Minute, MaxScaleUpsPerHour: 2})

	st := &models.ScalerState{Actions: []models.ScaleAction{
		action("wh-1", models.DirectionDown, now.Add(-50*time.Minute)),
		action("wh-1", models.DirectionDown, now.Add(-40*time.Minute)),
		action("wh-1", models.DirectionUp, now.Add(-30*time.Minute)),
	}}

	allowed, _ := g.Check("wh-1", models.DirectionUp, st, now)
	assert.True(t, allowed)
}

func TestCheck_UpOutsideHourDoesNotCount(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := guard.New(guard.Config{Cooldown: 5 * time.Minute, MaxScaleUpsPerHour: 2})

	st := &models.ScalerState{Actions: []models.ScaleAction{
		action("wh-1", models.DirectionUp, now.Add(-90*time.Minute)),
		action("wh-1", models.DirectionUp, now.Add(-70*time.Minute)),
		action("wh-1", models.DirectionUp, now.Add(-30*time.Minute)),
	}}

	allowed, _ := g.Check("wh-1", models.DirectionUp, st, now)
	assert.True(t, allowed)
}

func TestCheck_ReadOnly(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := guard.New(guard.Config{Cooldown: 10 * time.Minute, MaxScaleUpsPerHour: 3})

	st := &models.ScalerState{Actions: []models.ScaleAction{
		action("wh-1", models.DirectionUp, now.Add(-5*time.Minute)),
	}}

	g.Check("wh-1", models.DirectionUp, st, now)
	assert.Len(t, st.Actions, 1)
}
