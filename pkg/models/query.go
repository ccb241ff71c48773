package models

import "time"

type QueryStatus string

const (
	QueryFinished QueryStatus = "FINISHED"
	QueryQueued   QueryStatus = "QUEUED"
	QueryRunning  QueryStatus = "RUNNING"
	QueryFailed   QueryStatus = "FAILED"
	QueryCanceled QueryStatus = "CANCELED"
)

// QueryRecord is a single entry from the warehouse query history.
type QueryRecord struct {
	QueryID     string        `json:"query_id"`
	WarehouseID string        `json:"warehouse_id"`
	Status      QueryStatus   `json:"status"`
	Duration    time.Duration `json:"duration"`
	StartTime   time.Time     `json:"start_time"`
}
