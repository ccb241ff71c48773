package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/skylift/warehouse-autoscaler/internal/controller"
	"github.com/skylift/warehouse-autoscaler/internal/controlplane"
	"github.com/skylift/warehouse-autoscaler/internal/decision"
	"github.com/skylift/warehouse-autoscaler/internal/executor"
	"github.com/skylift/warehouse-autoscaler/internal/guard"
	"github.com/skylift/warehouse-autoscaler/internal/ladder"
	"github.com/skylift/warehouse-autoscaler/internal/logger"
	"github.com/skylift/warehouse-autoscaler/internal/metrics"
	"github.com/skylift/warehouse-autoscaler/internal/report"
	"github.com/skylift/warehouse-autoscaler/internal/resilience"
	"github.com/skylift/warehouse-autoscaler/internal/state"
	"github.com/skylift/warehouse-autoscaler/pkg/config"
	"github.com/skylift/warehouse-autoscaler/pkg/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	statePath := flag.String("state", "", "override state file path")
	dryRun := flag.Bool("dry-run", false, "classify and report without applying changes")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *statePath != "" {
		cfg.State.Path = *statePath
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	if *migrate {
		return runMigrations(cfg)
	}

	l, err := ladder.New(ladder.Config{
		Sizes:   cfg.Scaler.SizeLadder,
		Floor:   cfg.Scaler.MinClusters,
		Ceiling: cfg.Scaler.MaxClusters,
	})
	if err != nil {
		return fmt.Errorf("invalid scaling ladder: %w", err)
	}

	source, err := buildSource(cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	controlPlane := controlplane.NewHTTPClient(controlplane.HTTPClientConfig{
		Endpoint: cfg.ControlPlane.Endpoint,
		Token:    cfg.ControlPlane.Token,
		Timeout:  cfg.ControlPlane.Timeout,
	})
	defer controlPlane.Close()

	store := state.New(state.Config{
		Path:      cfg.State.Path,
		Retention: cfg.Scaler.StateRetention,
	})

	sinks := []report.Sink{report.NewLogSink()}
	if cfg.Report.PostgresEnabled {
		db, err := database.New(dbConfig(cfg))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		sinks = append(sinks, report.NewPostgresSink(db))
	}

	ctrl := controller.New(
		controller.Config{
			WarehouseTimeout: cfg.Scaler.WarehouseTimeout,
			DryRun:           *dryRun,
		},
		controller.Deps{
			Source:     source,
			Aggregator: metrics.NewAggregator(metrics.AggregatorConfig{Source: source, Lookback: cfg.Scaler.LookbackWindow}),
			Engine: decision.NewEngine(decision.Config{
				LatencyHigh:    cfg.Scaler.LatencyHigh,
				LatencyLow:     cfg.Scaler.LatencyLow,
				QueueDepthHigh: cfg.Scaler.QueueDepthHigh,
			}, l),
			Ladder: l,
			Guard: guard.New(guard.Config{
				Cooldown:           cfg.Scaler.Cooldown,
				MaxScaleUpsPerHour: cfg.Scaler.MaxScaleUpsPerHour,
			}),
			Executor: executor.New(controlPlane, store),
			Store:    store,
			Sinks:    sinks,
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	runReport, err := ctrl.Run(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	logger.WithRun(runReport.RunID).Infof("Processed %d warehouses", len(runReport.Rows))
	return nil
}

func buildSource(cfg *config.Config) (metrics.Source, error) {
	var base metrics.Source
	switch cfg.Source.Type {
	case "http":
		base = metrics.NewHTTPSource(metrics.HTTPSourceConfig{
			Endpoint: cfg.Source.Endpoint,
			Token:    cfg.Source.Token,
			Timeout:  cfg.Source.Timeout,
		})
	case "mock":
		base = metrics.NewMockSource()
	default:
		return nil, fmt.Errorf("unsupported source type %q", cfg.Source.Type)
	}

	return metrics.NewResilientSource(metrics.ResilientSourceConfig{
		Source:        base,
		MaxFailures:   cfg.Source.CircuitBreaker.MaxFailures,
		Timeout:       cfg.Source.CircuitBreaker.Timeout,
		RetryAttempts: cfg.Source.RetryAttempts,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warnf("Circuit %s: %s -> %s", name, from, to)
		},
	}), nil
}

func runMigrations(cfg *config.Config) error {
	db, err := database.New(dbConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := database.NewMigrator(db).Run(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Migrations completed successfully")
	return nil
}

func dbConfig(cfg *config.Config) database.Config {
	return database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Name:            cfg.Database.Name,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		MaxConnections:  cfg.Database.MaxConnections,
		SSLMode:         cfg.Database.SSLMode,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		PingTimeout:     cfg.Database.PingTimeout,
	}
}
