package report

import (
	"context"

	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

// Sink receives the outcome rows of a finished run. The surrounding report
// layer (HTML, dashboards) consumes these records; the controller only
// guarantees that every warehouse produces a reasoned row.
type Sink interface {
	Name() string
	Emit(ctx context.Context, r *models.RunReport) error
}
