package metrics

import (
	"context"
	"time"

	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

// MockSource serves canned warehouses and query histories. Failures can be
// injected per warehouse to exercise the unavailable path.
type MockSource struct {
	warehouses []models.Warehouse
	histories  map[string][]models.QueryRecord
	failFor    map[string]error
	listErr    error
}

func NewMockSource() *MockSource {
	return &MockSource{
		histories: make(map[string][]models.QueryRecord),
		failFor:   make(map[string]error),
	}
}

func (m *MockSource) AddWarehouse(w models.Warehouse) {
	m.warehouses = append(m.warehouses, w)
}

func (m *MockSource) SetHistory(warehouseID string, records []models.QueryRecord) {
	m.histories[warehouseID] = records
}

func (m *MockSource) FailQueryHistory(warehouseID string, err error) {
	if err == nil {
		err = ErrFetchFailed
	}
	m.failFor[warehouseID] = err
}

func (m *MockSource) FailList(err error) {
	m.listErr = err
}

func (m *MockSource) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Warehouse, len(m.warehouses))
	copy(out, m.warehouses)
	return out, nil
}

func (m *MockSource) QueryHistory(ctx context.Context, warehouseID string, start, end time.Time) ([]models.QueryRecord, error) {
	if err, ok := m.failFor[warehouseID]; ok {
		return nil, err
	}

	var out []models.QueryRecord
	for _, r := range m.histories[warehouseID] {
		if r.StartTime.Before(start) || r.StartTime.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *MockSource) HealthCheck(ctx context.Context) error {
	return m.listErr
}

func (m *MockSource) Close() error {
	return nil
}
