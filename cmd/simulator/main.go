package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/skylift/warehouse-autoscaler/internal/logger"
	"github.com/skylift/warehouse-autoscaler/internal/simulator"
	"github.com/skylift/warehouse-autoscaler/pkg/config"
	"github.com/skylift/warehouse-autoscaler/pkg/models"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)

	fleet := simulator.NewFleet()
	seedFleet(fleet)

	server := simulator.NewServer(cfg.Simulator, fleet)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("Simulator listening on port %d", cfg.Simulator.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Simulator stopped gracefully")
	return nil
}

func seedFleet(fleet *simulator.Fleet) {
	fleet.Add(models.Warehouse{
		ID:          "wh-analytics",
		Name:        "analytics",
		State:       models.WarehouseRunning,
		MinClusters: 1,
		Shape:       models.Shape{MaxClusters: 1, Size: "Small"},
	}, simulator.ParseWorkload("busy"))

	fleet.Add(models.Warehouse{
		ID:          "wh-etl",
		Name:        "etl",
		State:       models.WarehouseRunning,
		MinClusters: 1,
		Shape:       models.Shape{MaxClusters: 2, Size: "Medium"},
	}, simulator.ParseWorkload("steady"))

	fleet.Add(models.Warehouse{
		ID:          "wh-reporting",
		Name:        "reporting",
		State:       models.WarehouseRunning,
		MinClusters: 1,
		Shape:       models.Shape{MaxClusters: 1, Size: "2X-Small"},
	}, simulator.ParseWorkload("light"))

	fleet.Add(models.Warehouse{
		ID:          "wh-sandbox",
		Name:        "sandbox",
		State:       models.WarehouseStopped,
		MinClusters: 1,
		Shape:       models.Shape{MaxClusters: 1, Size: "X-Small"},
	}, simulator.ParseWorkload("idle"))
}
