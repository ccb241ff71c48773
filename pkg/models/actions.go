package models

import "time"

// ScaleAction is an immutable record of one applied scaling change. It is
// created only after the control plane confirms the change, and is pruned
// once older than the retention horizon.
type ScaleAction struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	WarehouseID   string    `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name"`
	Direction     Direction `json:"direction"`
	From          Shape     `json:"from"`
	To            Shape     `json:"to"`
	Reason        string    `json:"reason"`
}

func NewScaleAction(w *Warehouse, dir Direction, to Shape, reason string, now time.Time) ScaleAction {
	return ScaleAction{
		ID:            NewUUID(),
		Timestamp:     now,
		WarehouseID:   w.ID,
		WarehouseName: w.Name,
		Direction:     dir,
		From:          w.Shape,
		To:            to,
		Reason:        reason,
	}
}

// ScalerState is the aggregate persisted object: the chronological log of
// past scale actions. It is the only state carried across invocations.
type ScalerState struct {
	Actions []ScaleAction `json:"actions"`
}

func (s *ScalerState) Append(a ScaleAction) {
	s.Actions = append(s.Actions, a)
}

// Prune drops actions older than retention, keeping insertion order.
func (s *ScalerState) Prune(now time.Time, retention time.Duration) {
	cutoff := now.Add(-retention)
	kept := s.Actions[:0]
	for _, a := range s.Actions {
		if a.Timestamp.After(cutoff) {
			kept = append(kept, a)
		}
	}
	s.Actions = kept
}

// ActionsFor returns all retained actions for one warehouse, oldest first.
func (s *ScalerState) ActionsFor(warehouseID string) []ScaleAction {
	var out []ScaleAction
	for _, a := range s.Actions {
		if a.WarehouseID == warehouseID {
			out = append(out, a)
		}
	}
	return out
}

// LastActionFor returns the most recent action for a warehouse, or nil.
func (s *ScalerState) LastActionFor(warehouseID string) *ScaleAction {
	for i := len(s.Actions) - 1; i >= 0; i-- {
		if s.Actions[i].WarehouseID == warehouseID {
			a := s.Actions[i]
			return &a
		}
	}
	return nil
}
