package controlplane

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/skylift/warehouse-autoscaler/internal/logger"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

type HTTPClient struct {
	client   *http.Client
	endpoint string
	token    string
}

type HTTPClientConfig struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
	}
}

type resizeRequest struct {
	ClusterSize    string `json:"cluster_size"`
	MaxNumClusters int    `json:"max_num_clusters"`
}

func (c *HTTPClient) ApplyShape(ctx context.Context, warehouseID string, shape models.Shape) error {
	u := fmt.Sprintf("%s/api/2.0/warehouses/%s/resize", c.endpoint, url.PathEscape(warehouseID))

	body, err := json.Marshal(resizeRequest{
		ClusterSize:    shape.Size,
		MaxNumClusters: shape.MaxClusters,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to encode request: %v", ErrApplyFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrApplyFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	logger.WithWarehouse(warehouseID).Debugf("Applying shape %s", shape)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return fmt.Errorf("%w: %v", ErrApplyFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return nil
	case http.StatusNotFound:
		return ErrWarehouseNotFound
	default:
		return fmt.Errorf("%w: unexpected status code %d", ErrApplyFailed, resp.StatusCode)
	}
}

func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
