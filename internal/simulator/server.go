package simulator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skylift/warehouse-autoscaler/internal/logger"
	"github.com/skylift/warehouse-autoscaler/pkg/config"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

// Server exposes the fleet over the same HTTP surface the controller
// consumes, so a local end-to-end run needs no real warehouse API.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.SimulatorConfig
	fleet      *Fleet
}

func NewServer(cfg config.SimulatorConfig, fleet *Fleet) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		router: router,
		config: cfg,
		fleet:  fleet,
	}

	router.Use(gin.Recovery())
	router.Use(requestLogger())
	s.setupRoutes()

	return s
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.WithFields(map[string]interface{}{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"latency_ms": time.Since(start).Milliseconds(),
		}).Debug("Request handled")
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)

	api := s.router.Group("/api/2.0")
	{
		api.GET("/warehouses", s.listWarehouses)
		api.GET("/warehouses/:id/queries", s.queryHistory)
		api.POST("/warehouses/:id/resize", s.resize)
		api.POST("/warehouses/:id/workload", s.setWorkload)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type warehouseResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	State          string `json:"state"`
	ClusterSize    string `json:"cluster_size"`
	MinNumClusters int    `json:"min_num_clusters"`
	MaxNumClusters int    `json:"max_num_clusters"`
}

func toWarehouseResponse(w models.Warehouse) warehouseResponse {
	return warehouseResponse{
		ID:             w.ID,
		Name:           w.Name,
		State:          string(w.State),
		ClusterSize:    w.Shape.Size,
		MinNumClusters: w.MinClusters,
		MaxNumClusters: w.Shape.MaxClusters,
	}
}

func (s *Server) listWarehouses(c *gin.Context) {
	warehouses := s.fleet.List()
	out := make([]warehouseResponse, len(warehouses))
	for i, w := range warehouses {
		out[i] = toWarehouseResponse(w)
	}
	c.JSON(http.StatusOK, gin.H{"warehouses": out})
}

type queryRecordResponse struct {
	QueryID    string `json:"query_id"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	StartTime  string `json:"start_time"`
}

func (s *Server) queryHistory(c *gin.Context) {
	warehouseID := c.Param("id")

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start parameter"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end parameter"})
		return
	}

	records, err := s.fleet.QueryHistory(warehouseID, start, end)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	out := make([]queryRecordResponse, len(records))
	for i, r := range records {
		out[i] = queryRecordResponse{
			QueryID:    r.QueryID,
			Status:     string(r.Status),
			DurationMS: r.Duration.Milliseconds(),
			StartTime:  r.StartTime.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, gin.H{"queries": out})
}

type resizeRequest struct {
	ClusterSize    string `json:"cluster_size" binding:"required"`
	MaxNumClusters int    `json:"max_num_clusters" binding:"required,min=1"`
}

func (s *Server) resize(c *gin.Context) {
	warehouseID := c.Param("id")

	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shape := models.Shape{MaxClusters: req.MaxNumClusters, Size: req.ClusterSize}
	if err := s.fleet.Resize(warehouseID, shape); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type workloadRequest struct {
	Workload string `json:"workload" binding:"required"`
}

func (s *Server) setWorkload(c *gin.Context) {
	warehouseID := c.Param("id")

	var req workloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.fleet.SetWorkload(warehouseID, ParseWorkload(req.Workload)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
