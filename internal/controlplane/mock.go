package controlplane

import (
	"context"
	"sync"

	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

// Mock records applied shapes in memory and can be told to fail.
type Mock struct {
	mu      sync.Mutex
	applied map[string][]models.Shape
	failErr error
}

func NewMock() *Mock {
	return &Mock{
		applied: make(map[string][]models.Shape),
	}
}

func (m *Mock) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		err = ErrApplyFailed
	}
	m.failErr = err
}

func (m *Mock) Succeed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = nil
}

func (m *Mock) ApplyShape(ctx context.Context, warehouseID string, shape models.Shape) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return m.failErr
	}

	m.applied[warehouseID] = append(m.applied[warehouseID], shape)
	return nil
}

// Applied returns the shapes applied to a warehouse, in order.
func (m *Mock) Applied(warehouseID string) []models.Shape {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Shape, len(m.applied[warehouseID]))
	copy(out, m.applied[warehouseID])
	return out
}

func (m *Mock) Close() error {
	return nil
}
