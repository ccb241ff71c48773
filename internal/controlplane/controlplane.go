package controlplane

import (
	"context"
	"errors"

	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

var (
	ErrApplyFailed       = errors.New("shape apply failed")
	ErrWarehouseNotFound = errors.New("warehouse not found")
	ErrTimeout           = errors.New("shape apply timeout")
)

// ControlPlane applies scaling changes to warehouses.
type ControlPlane interface {
	// ApplyShape resizes a warehouse to the target shape. It returns an
	// error unless the control plane confirmed the change.
	ApplyShape(ctx context.Context, warehouseID string, shape models.Shape) error

	// Close releases resources.
	Close() error
}
