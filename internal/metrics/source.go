package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

var (
	ErrFetchFailed       = errors.New("metric fetch failed")
	ErrTimeout           = errors.New("metric fetch timeout")
	ErrWarehouseNotFound = errors.New("warehouse not found")
	ErrInvalidResponse   = errors.New("invalid response from metrics source")
)

// Source is the upstream metrics interface: the warehouse inventory and the
// per-warehouse query history used to build metric samples.
type Source interface {
	// ListWarehouses returns the known warehouses.
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)

	// QueryHistory returns query records whose start time falls in [start, end].
	QueryHistory(ctx context.Context, warehouseID string, start, end time.Time) ([]models.QueryRecord, error)

	// HealthCheck verifies the source can be reached.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the source.
	Close() error
}
