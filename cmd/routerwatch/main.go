/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/carverauto/routerwatch/pkg/api"
	"github.com/carverauto/routerwatch/pkg/config"
	"github.com/carverauto/routerwatch/pkg/events"
	"github.com/carverauto/routerwatch/pkg/inventory"
	"github.com/carverauto/routerwatch/pkg/lifecycle"
	"github.com/carverauto/routerwatch/pkg/logger"
	"github.com/carverauto/routerwatch/pkg/metrics"
	"github.com/carverauto/routerwatch/pkg/models"
	"github.com/carverauto/routerwatch/pkg/ping"
	"github.com/carverauto/routerwatch/pkg/scheduler"
	"github.com/carverauto/routerwatch/pkg/sshexec"
	"github.com/carverauto/routerwatch/pkg/statuscache"
	"github.com/carverauto/routerwatch/pkg/telemetry"
	"github.com/carverauto/routerwatch/pkg/version"
)

const shutdownTimeout = 30 * time.Second

var (
	errFailedToLoadConfig = errors.New("failed to load config")
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/routerwatch/routerwatch.json", "Path to routerwatch config file")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetFullVersion())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Step 1: Load configuration
	var cfg models.Config

	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	// Step 2: Create logger from loaded config
	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = logger.DefaultConfig()
	}

	if err := lifecycle.InitializeLogger(logConfig); err != nil {
		return err
	}

	mainLogger, err := lifecycle.CreateComponentLogger("routerwatch", logConfig)
	if err != nil {
		return err
	}

	tp, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName:    "routerwatch",
		ServiceVersion: version.GetVersion(),
		Logger:         mainLogger,
		OTel:           cfg.Tracing,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			mainLogger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	// Step 3: Wire collaborators
	devices, closeInventory, err := inventory.New(ctx, &cfg.Inventory, mainLogger)
	if err != nil {
		return fmt.Errorf("failed to open inventory: %w", err)
	}
	defer closeInventory()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	collector, err := metrics.NewCollector(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	executor, err := sshexec.NewExecutor(&cfg.SSH, mainLogger, sshexec.WithRecorder(collector))
	if err != nil {
		return fmt.Errorf("failed to create SSH executor: %w", err)
	}

	prober, err := ping.NewFromConfig(&cfg.Ping, cfg.SSH.DefaultPort, mainLogger)
	if err != nil {
		return fmt.Errorf("failed to create prober: %w", err)
	}

	cache := statuscache.New()

	schedOpts := []scheduler.Option{
		scheduler.WithLogger(mainLogger),
		scheduler.WithMetrics(collector),
	}

	if cfg.NATS.URL != "" {
		publisher, nc, err := events.Connect(ctx, &cfg.NATS, mainLogger)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Close()

		schedOpts = append(schedOpts, scheduler.WithObserver(publisher))
	}

	sched := scheduler.New(prober, cache, schedOpts...)

	service := telemetry.NewService(devices, executor, cfg.SSH.CommandTimeout.Std(), mainLogger)

	serverOpts := []func(*api.Server){
		api.WithCache(cache),
		api.WithProber(prober),
		api.WithScheduler(sched),
		api.WithDevices(devices),
		api.WithTelemetry(service),
		api.WithBaseContext(ctx),
		api.WithSweepInterval(cfg.Ping.Interval.Std()),
		api.WithLogger(mainLogger),
	}

	if cfg.Metrics.IsEnabled() {
		serverOpts = append(serverOpts, api.WithMetricsHandler(cfg.Metrics.Path, collector.Handler()))
	}

	server := api.NewServer(cfg.CORS, serverOpts...)

	// Step 4: Run
	if cfg.Ping.ShouldAutoStart() {
		sched.Start(ctx, devices, cfg.Ping.Interval.Std())
	}

	mainLogger.Info().
		Str("version", version.GetFullVersion()).
		Str("inventory", cfg.Inventory.Source).
		Str("probe_method", string(cfg.Ping.Method)).
		Msg("routerwatch started")

	err = server.Serve(ctx, cfg.ListenAddr)

	sched.Stop()

	waitCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if waitErr := sched.Wait(waitCtx); waitErr != nil {
		mainLogger.Warn().Err(waitErr).Msg("Sweep loop did not exit cleanly")
	}

	return err
}
