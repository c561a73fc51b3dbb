package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docker/docker/client"

	"github.com/ridgeline-systems/autoscaler/internal/collector"
	"github.com/ridgeline-systems/autoscaler/internal/decision"
	"github.com/ridgeline-systems/autoscaler/internal/fleet"
	"github.com/ridgeline-systems/autoscaler/internal/history"
	"github.com/ridgeline-systems/autoscaler/internal/httpapi"
	"github.com/ridgeline-systems/autoscaler/internal/logger"
	"github.com/ridgeline-systems/autoscaler/internal/loop"
	"github.com/ridgeline-systems/autoscaler/internal/resilience"
	"github.com/ridgeline-systems/autoscaler/internal/telemetry"
	"github.com/ridgeline-systems/autoscaler/pkg/config"
	"github.com/ridgeline-systems/autoscaler/pkg/models"
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

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.LogLevel, cfg.AppMode)
	logger.Infof("starting autoscaler in %s mode", cfg.AppMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fleetAdapter := fleet.Resolve(ctx, fleet.DockerFleetConfig{
		Host:       cfg.DockerHost,
		APIVersion: cfg.DockerAPIVersion,
	})
	defer fleetAdapter.Close()

	if fleetAdapter.MonitoringOnly() {
		logger.Warn("running in monitoring-only mode: no scaling actions will be applied")
	}

	var dockerClient *client.Client
	if docker, ok := fleetAdapter.(*fleet.DockerFleet); ok {
		dockerClient = docker.Client()
	}

	appService := models.ServiceDescriptor{
		ServiceID:   cfg.AppServiceName,
		Role:        models.RoleApplication,
		MinReplicas: cfg.MinReplicas,
		MaxReplicas: cfg.MaxReplicas,
	}
	dbService := models.ServiceDescriptor{
		ServiceID:   cfg.DatabaseServiceName,
		Role:        models.RoleDatabase,
		MinReplicas: cfg.DatabaseMinReplicas,
		MaxReplicas: cfg.DatabaseMaxReplicas,
	}
	cacheService := models.ServiceDescriptor{
		ServiceID:   cfg.CacheServiceName,
		Role:        models.RoleCache,
		MinReplicas: cfg.CacheMinReplicas,
		MaxReplicas: cfg.CacheMaxReplicas,
	}

	appReplicaSource := &fleetReplicaSource{fleet: fleetAdapter, serviceID: appService.ServiceID}

	appCollector := collector.NewAppCollector(collector.AppCollectorConfig{
		HealthURL:    cfg.AppHealthURL,
		ServiceLabel: cfg.AppServiceName,
		DockerClient: dockerClient,
		Timeout:      cfg.RequestTimeout,
	})

	dbCollector, err := collector.NewDatabaseCollector(collector.DatabaseCollectorConfig{
		DSN:         cfg.DatabaseDSN(),
		Mode:        collector.ParseMetricsMode(cfg.DatabaseMetricsMode),
		AppReplicas: appReplicaSource,
		Timeout:     cfg.DataStoreTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to build database collector: %w", err)
	}

	cacheCollector := collector.NewCacheCollector(collector.CacheCollectorConfig{
		Addr:        cfg.CacheAddr,
		Mode:        collector.ParseMetricsMode(cfg.CacheMetricsMode),
		AppReplicas: appReplicaSource,
		Timeout:     cfg.DataStoreTimeout,
	})

	metricsRegistry := telemetry.NewRegistry()

	onCircuitChange := func(name string, from, to resilience.State) {
		logger.Warnf("collector circuit %s: %s -> %s", name, from, to)
	}

	resilientApp := collector.NewResilientCollector(collector.ResilientCollectorConfig{
		Collector:     appCollector,
		Name:          "app",
		MaxFailures:   5,
		Timeout:       cfg.CheckInterval * 3,
		OnStateChange: onCircuitChange,
	})
	resilientDB := collector.NewResilientCollector(collector.ResilientCollectorConfig{
		Collector:     dbCollector,
		Name:          "database",
		MaxFailures:   5,
		Timeout:       cfg.CheckInterval * 3,
		OnStateChange: onCircuitChange,
	})
	resilientCache := collector.NewResilientCollector(collector.ResilientCollectorConfig{
		Collector:     cacheCollector,
		Name:          "cache",
		MaxFailures:   5,
		Timeout:       cfg.CheckInterval * 3,
		OnStateChange: onCircuitChange,
	})

	algorithm := models.ParseScalingAlgorithm(cfg.ScalingAlgorithm)

	engine := decision.NewEngine(decision.Config{
		CooldownPeriod:            cfg.CooldownPeriod,
		CPUScaleUp:                cfg.CPUScaleUp,
		CPUScaleDown:              cfg.CPUScaleDown,
		MemoryScaleUp:             cfg.MemoryScaleUp,
		MemoryScaleDown:           cfg.MemoryScaleDown,
		ResponseTimeScaleUp:       cfg.ResponseTimeScaleUp,
		ResponseTimeScaleDown:     cfg.ResponseTimeScaleDown,
		ExpScaleUpThreshold:       cfg.ExpScaleUpThreshold,
		ExpScaleDownThreshold:     cfg.ExpScaleDownThreshold,
		DatabaseConnectionScaleUp: cfg.DatabaseConnectionScaleUp,
		CacheMemoryScaleUp:        cfg.CacheMemoryScaleUp,
	})

	historyStore := history.NewStore(cfg.PredictionSamples)
	activity := loop.NewActivityFeed(50)

	scheduler := loop.NewScheduler(loop.SchedulerConfig{
		Interval: cfg.CheckInterval,
		Tiers: []loop.Tier{
			{Service: appService, Collector: resilientApp, Algorithm: algorithm},
			{Service: dbService, Collector: resilientDB, Algorithm: algorithm},
			{Service: cacheService, Collector: resilientCache, Algorithm: algorithm},
		},
		Fleet:    fleetAdapter,
		Engine:   engine,
		History:  historyStore,
		Metrics:  metricsRegistry,
		Activity: activity,
	})

	go scheduler.Run(ctx)

	state := func() httpapi.StateSnapshot {
		return httpapi.StateSnapshot{
			ServicesMonitored: 3,
			ScalingAlgorithm:  algorithm,
			DockerAvailable:   !fleetAdapter.MonitoringOnly(),
			MetricsPort:       cfg.MetricsPort,
		}
	}

	healthServer, err := httpapi.Serve(fmt.Sprintf(":%d", cfg.HealthPort), httpapi.NewHealthServer(state, activity))
	if err != nil {
		logger.Errorf("health server failed to bind: %v", err)
	}

	metricsServer, err := httpapi.Serve(fmt.Sprintf(":%d", cfg.MetricsPort), httpapi.NewMetricsServer())
	if err != nil {
		logger.Errorf("metrics server failed to bind: %v", err)
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdownChan
	logger.Infof("received signal %v, shutting down", sig)

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer shutdownCancel()

	if healthServer != nil {
		_ = healthServer.Shutdown(shutdownCtx)
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	time.Sleep(100 * time.Millisecond)
	logger.Info("shutdown complete")
	return nil
}

// fleetReplicaSource adapts the orchestrator adapter's GetReplicas call
// into the collector.AppReplicaSource interface the database and cache
// collectors' simulate mode consult.
type fleetReplicaSource struct {
	fleet     fleet.Adapter
	serviceID string
}

func (s *fleetReplicaSource) AppReplicas(ctx context.Context) (int, error) {
	return s.fleet.GetReplicas(ctx, s.serviceID)
}
