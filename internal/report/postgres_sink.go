package report

import (
	"context"
	"fmt"

	"github.com/skylift/warehouse-autoscaler/pkg/database"
	"github.com/skylift/warehouse-autoscaler/pkg/database/queries"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

// PostgresSink persists outcome rows so the external report layer can query
// scaling history across runs.
type PostgresSink struct {
	repo *queries.RunOutcomeRepository
}

func NewPostgresSink(db *database.DB) *PostgresSink {
	return &PostgresSink{
		repo: queries.NewRunOutcomeRepository(db.DB),
	}
}

func (s *PostgresSink) Name() string {
	return "postgres"
}

func (s *PostgresSink) Emit(ctx context.Context, r *models.RunReport) error {
	for _, row := range r.Rows {
		rec := queries.RunOutcomeRecord{
			RunID:          r.RunID,
			WarehouseID:    row.WarehouseID,
			WarehouseName:  row.WarehouseName,
			Recommendation: string(row.Recommendation),
			Reason:         row.Reason,
			Action:         string(row.Action),
			AvgDurationMS:  row.Sample.AvgDuration.Milliseconds(),
			P95DurationMS:  row.Sample.P95Duration.Milliseconds(),
			QueueDepth:     row.Sample.QueueDepth,
			QueryCount:     row.Sample.QueryCount,
		}
		if row.Target != nil {
			shape := row.Target.String()
			rec.TargetShape = &shape
		}

		if err := s.repo.Insert(ctx, rec); err != nil {
			return fmt.Errorf("failed to persist outcome for %s: %w", row.WarehouseID, err)
		}
	}
	return nil
}
