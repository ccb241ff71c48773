package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/skylift/warehouse-autoscaler/internal/logger"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

type HTTPSource struct {
	client   *http.Client
	endpoint string
	token    string
}

type HTTPSourceConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

func NewHTTPSource(cfg HTTPSourceConfig) *HTTPSource {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &HTTPSource{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
	}
}

// Wire shapes for the warehouse API. Responses are dynamic JSON upstream;
// they are mapped to typed structs here, at the boundary, and required
// fields fail fast instead of propagating zero values into the decision path.
type warehouseListResponse struct {
	Warehouses []warehouseResponse `json:"warehouses"`
}

type warehouseResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	State          string `json:"state"`
	ClusterSize    string `json:"cluster_size"`
	MinNumClusters int    `json:"min_num_clusters"`
	MaxNumClusters int    `json:"max_num_clusters"`
}

type queryListResponse struct {
	Queries []queryResponse `json:"queries"`
}

type queryResponse struct {
	QueryID    string `json:"query_id"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	StartTime  string `json:"start_time"`
}

func (s *HTTPSource) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	var resp warehouseListResponse
	if err := s.getJSON(ctx, s.endpoint+"/api/2.0/warehouses", &resp); err != nil {
		return nil, err
	}

	warehouses := make([]models.Warehouse, 0, len(resp.Warehouses))
	for _, w := range resp.Warehouses {
		converted, err := convertWarehouse(w)
		if err != nil {
			return nil, err
		}
		warehouses = append(warehouses, converted)
	}

	logger.Debugf("Listed %d warehouses", len(warehouses))
	return warehouses, nil
}

func (s *HTTPSource) QueryHistory(ctx context.Context, warehouseID string, start, end time.Time) ([]models.QueryRecord, error) {
	u := fmt.Sprintf("%s/api/2.0/warehouses/%s/queries?start=%s&end=%s",
		s.endpoint,
		url.PathEscape(warehouseID),
		url.QueryEscape(start.Format(time.RFC3339)),
		url.QueryEscape(end.Format(time.RFC3339)),
	)

	var resp queryListResponse
	if err := s.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	records := make([]models.QueryRecord, 0, len(resp.Queries))
	for _, q := range resp.Queries {
		converted, err := convertQuery(warehouseID, q)
		if err != nil {
			return nil, err
		}
		records = append(records, converted)
	}

	logger.WithWarehouse(warehouseID).Debugf("Fetched %d query records", len(records))
	return records, nil
}

func convertWarehouse(w warehouseResponse) (models.Warehouse, error) {
	if w.ID == "" {
		return models.Warehouse{}, fmt.Errorf("%w: warehouse missing id", ErrInvalidResponse)
	}
	if w.ClusterSize == "" {
		return models.Warehouse{}, fmt.Errorf("%w: warehouse %s missing cluster_size", ErrInvalidResponse, w.ID)
	}
	if w.MaxNumClusters <= 0 {
		return models.Warehouse{}, fmt.Errorf("%w: warehouse %s has invalid max_num_clusters %d", ErrInvalidResponse, w.ID, w.MaxNumClusters)
	}

	return models.Warehouse{
		ID:          w.ID,
		Name:        w.Name,
		State:       models.WarehouseState(w.State),
		MinClusters: w.MinNumClusters,
		Shape: models.Shape{
			MaxClusters: w.MaxNumClusters,
			Size:        w.ClusterSize,
		},
	}, nil
}

func convertQuery(warehouseID string, q queryResponse) (models.QueryRecord, error) {
	if q.Status == "" {
		return models.QueryRecord{}, fmt.Errorf("%w: query %s missing status", ErrInvalidResponse, q.QueryID)
	}

	startTime, err := time.Parse(time.RFC3339, q.StartTime)
	if err != nil {
		return models.QueryRecord{}, fmt.Errorf("%w: query %s has invalid start_time: %v", ErrInvalidResponse, q.QueryID, err)
	}

	return models.QueryRecord{
		QueryID:     q.QueryID,
		WarehouseID: warehouseID,
		Status:      models.QueryStatus(q.Status),
		Duration:    time.Duration(q.DurationMS) * time.Millisecond,
		StartTime:   startTime,
	}, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrFetchFailed, err)
	}

	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrWarehouseNotFound
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status code %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", ErrFetchFailed, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return nil
}

func (s *HTTPSource) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
