package models

import "time"

// Action is the final per-warehouse outcome of a control cycle, as surfaced
// to the reporting layer. Blocked and skipped outcomes carry a reason so an
// operator can always answer "why didn't it scale?".
type Action string

const (
	ActionScaledUp   Action = "SCALED_UP"
	ActionScaledDown Action = "SCALED_DOWN"
	ActionBlocked    Action = "BLOCKED"
	ActionNone       Action = "NONE"
	ActionSkip       Action = "SKIP"
	ActionFailed     Action = "FAILED"
)

// OutcomeRow is one warehouse's row in a run report.
type OutcomeRow struct {
	WarehouseID    string         `json:"warehouse_id"`
	WarehouseName  string         `json:"warehouse_name"`
	Sample         MetricSample   `json:"sample"`
	Recommendation Recommendation `json:"recommendation"`
	Reason         string         `json:"reason"`
	Action         Action         `json:"action"`
	Target         *Shape         `json:"target,omitempty"`
}

// RunReport collects the outcome of one controller invocation.
type RunReport struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Rows       []OutcomeRow `json:"rows"`
}

func NewRunReport(now time.Time) *RunReport {
	return &RunReport{
		RunID:     NewUUID(),
		StartedAt: now,
	}
}

func (r *RunReport) Add(row OutcomeRow) {
	r.Rows = append(r.Rows, row)
}
