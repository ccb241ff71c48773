package models

type Recommendation string

const (
	RecommendScaleUp   Recommendation = "SCALE_UP"
	RecommendScaleDown Recommendation = "SCALE_DOWN"
	RecommendMonitor   Recommendation = "MONITOR"
	RecommendNone      Recommendation = "NONE"
)

type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// Decision is the output of the decision engine for one warehouse.
type Decision struct {
	WarehouseID    string         `json:"warehouse_id"`
	Recommendation Recommendation `json:"recommendation"`
	Reason         string         `json:"reason"`
}

func (d *Decision) Actionable() bool {
	return d.Recommendation == RecommendScaleUp || d.Recommendation == RecommendScaleDown
}

func (d *Decision) Direction() Direction {
	if d.Recommendation == RecommendScaleDown {
		return DirectionDown
	}
	return DirectionUp
}
