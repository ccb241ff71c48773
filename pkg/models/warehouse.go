package models

import "fmt"

type WarehouseState string

const (
	WarehouseRunning  WarehouseState = "RUNNING"
	WarehouseStopped  WarehouseState = "STOPPED"
	WarehouseStarting WarehouseState = "STARTING"
	WarehouseStopping WarehouseState = "STOPPING"
	WarehouseDeleted  WarehouseState = "DELETED"
)

// Shape is a warehouse's position on the scaling ladder: the cluster-count
// ceiling it may autoscale to, and its node size tier.
type Shape struct {
	MaxClusters int    `json:"max_clusters"`
	Size        string `json:"size"`
}

func (s Shape) String() string {
	return fmt.Sprintf("%s x%d", s.Size, s.MaxClusters)
}

func (s Shape) Equal(other Shape) bool {
	return s.MaxClusters == other.MaxClusters && s.Size == other.Size
}

// Warehouse represents a named elastic compute resource. It is a read-only
// input to each control cycle; only the executor mutates it, through the
// control plane.
type Warehouse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	State       WarehouseState `json:"state"`
	MinClusters int            `json:"min_clusters"`
	Shape       Shape          `json:"shape"`
}

func (w *Warehouse) IsRunning() bool {
	return w.State == WarehouseRunning
}
