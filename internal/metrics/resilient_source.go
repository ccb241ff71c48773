package metrics

import (
	"context"
	"time"

	"github.com/skylift/warehouse-autoscaler/internal/logger"
	"github.com/skylift/warehouse-autoscaler/internal/resilience"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

// ResilientSource wraps a Source with per-call retries and a shared circuit
// breaker so a flapping upstream does not hammer the API on every warehouse.
type ResilientSource struct {
	source         Source
	circuitBreaker *resilience.CircuitBreaker
	retryAttempts  int
	retryDelay     time.Duration
}

type ResilientSourceConfig struct {
	Source        Source
	MaxFailures   int
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	OnStateChange func(name string, from, to resilience.State)
}

func NewResilientSource(cfg ResilientSourceConfig) *ResilientSource {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 1 * time.Second
	}

	cb := resilience.NewCircuitBreaker(resilience.Config{
		Name:          "metrics-source",
		MaxFailures:   cfg.MaxFailures,
		Timeout:       cfg.Timeout,
		OnStateChange: cfg.OnStateChange,
	})

	return &ResilientSource{
		source:         cfg.Source,
		circuitBreaker: cb,
		retryAttempts:  cfg.RetryAttempts,
		retryDelay:     cfg.RetryDelay,
	}
}

func (s *ResilientSource) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	err := s.execute(ctx, "list warehouses", func() error {
		var err error
		warehouses, err = s.source.ListWarehouses(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return warehouses, nil
}

func (s *ResilientSource) QueryHistory(ctx context.Context, warehouseID string, start, end time.Time) ([]models.QueryRecord, error) {
	var records []models.QueryRecord
	err := s.execute(ctx, "query history", func() error {
		var err error
		records, err = s.source.QueryHistory(ctx, warehouseID, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *ResilientSource) execute(ctx context.Context, op string, fn func() error) error {
	return s.circuitBreaker.Execute(func() error {
		var lastErr error
		for attempt := 1; attempt <= s.retryAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if lastErr = fn(); lastErr == nil {
				return nil
			}

			logger.Warnf("%s attempt %d/%d failed: %v", op, attempt, s.retryAttempts, lastErr)

			if attempt < s.retryAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(s.retryDelay):
				}
			}
		}
		return lastErr
	})
}

func (s *ResilientSource) HealthCheck(ctx context.Context) error {
	return s.source.HealthCheck(ctx)
}

func (s *ResilientSource) Close() error {
	return s.source.Close()
}

func (s *ResilientSource) CircuitState() resilience.State {
	return s.circuitBreaker.State()
}
