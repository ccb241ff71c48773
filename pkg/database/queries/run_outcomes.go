package queries

import (
	"context"
	"database/sql"
	"time"
)

type RunOutcomeRepository struct {
	db *sql.DB
}

func NewRunOutcomeRepository(db *sql.DB) *RunOutcomeRepository {
	return &RunOutcomeRepository{db: db}
}

type RunOutcomeRecord struct {
	ID             int       `json:"id"`
	RunID          string    `json:"run_id"`
	WarehouseID    string    `json:"warehouse_id"`
	WarehouseName  string    `json:"warehouse_name"`
	Recommendation string    `json:"recommendation"`
	Reason         string    `json:"reason"`
	Action         string    `json:"action"`
	AvgDurationMS  int64     `json:"avg_duration_ms"`
	P95DurationMS  int64     `json:"p95_duration_ms"`
	QueueDepth     int       `json:"queue_depth"`
	QueryCount     int       `json:"query_count"`
	TargetShape    *string   `json:"target_shape,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (r *RunOutcomeRepository) Insert(ctx context.Context, rec RunOutcomeRecord) error {
	query := `
		INSERT INTO run_outcomes
			(run_id, warehouse_id, warehouse_name, recommendation, reason, action,
			 avg_duration_ms, p95_duration_ms, queue_depth, query_count, target_shape)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		rec.RunID,
		rec.WarehouseID,
		rec.WarehouseName,
		rec.Recommendation,
		rec.Reason,
		rec.Action,
		rec.AvgDurationMS,
		rec.P95DurationMS,
		rec.QueueDepth,
		rec.QueryCount,
		rec.TargetShape,
	)
	return err
}

func (r *RunOutcomeRepository) GetByWarehouse(ctx context.Context, warehouseID string, from, to time.Time, limit int) ([]RunOutcomeRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, run_id, warehouse_id, warehouse_name, recommendation, reason, action,
			   avg_duration_ms, p95_duration_ms, queue_depth, query_count, target_shape, created_at
		FROM run_outcomes
		WHERE warehouse_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at DESC
		LIMIT $4`

	rows, err := r.db.QueryContext(ctx, query, warehouseID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOutcomes(rows)
}

func (r *RunOutcomeRepository) GetRecent(ctx context.Context, limit int) ([]RunOutcomeRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, run_id, warehouse_id, warehouse_name, recommendation, reason, action,
			   avg_duration_ms, p95_duration_ms, queue_depth, query_count, target_shape, created_at
		FROM run_outcomes
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOutcomes(rows)
}

func scanOutcomes(rows *sql.Rows) ([]RunOutcomeRecord, error) {
	var records []RunOutcomeRecord
	for rows.Next() {
		var rec RunOutcomeRecord
		err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.WarehouseID, &rec.WarehouseName,
			&rec.Recommendation, &rec.Reason, &rec.Action,
			&rec.AvgDurationMS, &rec.P95DurationMS, &rec.QueueDepth,
			&rec.QueryCount, &rec.TargetShape, &rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
