package guard

import (
	"fmt"
	"time"

	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

type Config struct {
	Cooldown           time.Duration
	MaxScaleUpsPerHour int
}

// Guard authorizes proposed scale actions against the persisted action
// history. Both gates are read-only; the guard never mutates state.
type Guard struct {
	config Config
}

func New(cfg Config) *Guard {
	if cfg.Cooldown == 0 {
		cfg.Cooldown = 10 * time.Minute
	}
	if cfg.MaxScaleUpsPerHour == 0 {
		cfg.MaxScaleUpsPerHour = 3
	}
	return &Guard{config: cfg}
}

// Check returns whether the proposed action may proceed. The cooldown gate
// considers actions in either direction; the hourly rate cap counts scale-ups
// only.
func (g *Guard) Check(warehouseID string, dir models.Direction, state *models.ScalerState, now time.Time) (bool, string) {
	cooldownCutoff := now.Add(-g.config.Cooldown)
	rateCutoff := now.Add(-time.Hour)

	upsInWindow := 0
	for _, a := range state.ActionsFor(warehouseID) {
		if a.Timestamp.After(cooldownCutoff) {
			remaining := g.config.Cooldown - now.Sub(a.Timestamp)
			return false, fmt.Sprintf("cooldown active (%s remaining)", remaining.Round(time.Second))
		}
		if a.Direction == models.DirectionUp && a.Timestamp.After(rateCutoff) {
			upsInWindow++
		}
	}

	if dir == models.DirectionUp && upsInWindow >= g.config.MaxScaleUpsPerHour {
		return false, fmt.Sprintf("hourly scale-up cap reached (%d/%d)", upsInWindow, g.config.MaxScaleUpsPerHour)
	}

	return true, ""
}
