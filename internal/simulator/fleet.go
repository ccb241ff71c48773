package simulator

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/skylift/warehouse-autoscaler/internal/logger"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

var ErrWarehouseNotFound = errors.New("warehouse not found")

// Fleet is an in-memory warehouse inventory backing the simulator API. It
// serves both interfaces the controller consumes: the metrics side (listing
// and query history) and the control-plane side (resize).
type Fleet struct {
	mu         sync.RWMutex
	warehouses map[string]*simWarehouse
}

type simWarehouse struct {
	warehouse models.Warehouse
	workload  Workload
}

func NewFleet() *Fleet {
	return &Fleet{
		warehouses: make(map[string]*simWarehouse),
	}
}

func (f *Fleet) Add(w models.Warehouse, workload Workload) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.warehouses[w.ID] = &simWarehouse{warehouse: w, workload: workload}
	logger.WithWarehouse(w.ID).Infof("Simulated warehouse %s added (%s, workload %s)", w.Name, w.Shape, workload.Name())
}

func (f *Fleet) List() []models.Warehouse {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]models.Warehouse, 0, len(f.warehouses))
	for _, sw := range f.warehouses {
		out = append(out, sw.warehouse)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *Fleet) Get(warehouseID string) (models.Warehouse, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	sw, ok := f.warehouses[warehouseID]
	if !ok {
		return models.Warehouse{}, false
	}
	return sw.warehouse, true
}

// Resize applies a new shape, mirroring the real control plane.
func (f *Fleet) Resize(warehouseID string, shape models.Shape) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sw, ok := f.warehouses[warehouseID]
	if !ok {
		return ErrWarehouseNotFound
	}

	old := sw.warehouse.Shape
	sw.warehouse.Shape = shape
	logger.WithWarehouse(warehouseID).Infof("Resized: %s -> %s", old, shape)
	return nil
}

// QueryHistory generates the warehouse's workload over a window.
func (f *Fleet) QueryHistory(warehouseID string, start, end time.Time) ([]models.QueryRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	sw, ok := f.warehouses[warehouseID]
	if !ok {
		return nil, ErrWarehouseNotFound
	}

	return sw.workload.Records(warehouseID, start, end), nil
}

// SetWorkload swaps the workload pattern at runtime, so a local run can walk
// a warehouse through busy and idle phases.
func (f *Fleet) SetWorkload(warehouseID string, workload Workload) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sw, ok := f.warehouses[warehouseID]
	if !ok {
		return ErrWarehouseNotFound
	}

	sw.workload = workload
	logger.WithWarehouse(warehouseID).Infof("Workload set to %s", workload.Name())
	return nil
}
