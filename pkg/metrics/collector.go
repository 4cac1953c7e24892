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

// Package metrics exposes Prometheus collectors for sweeps and command
// executions.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "routerwatch"

var errIncompatibleCollector = errors.New("collector already registered with incompatible type")

// Collector bundles the service metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	SweepDuration    prometheus.Histogram
	SweepsTotal      prometheus.Counter
	DevicesSwept     prometheus.Gauge
	DevicesAlive     prometheus.Gauge
	ProbeFailures    prometheus.Counter
	CommandsTotal    *prometheus.CounterVec
	CommandDurations *prometheus.HistogramVec
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Metrics already registered under the same name are
// reused.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	sweepDuration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of reachability sweeps.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}))
	if err != nil {
		return nil, err
	}

	sweeps, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweeps_total",
		Help:      "Completed reachability sweeps.",
	}))
	if err != nil {
		return nil, err
	}

	swept, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "devices_swept",
		Help:      "Devices probed by the most recent sweep.",
	}))
	if err != nil {
		return nil, err
	}

	alive, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "devices_alive",
		Help:      "Devices reachable in the most recent sweep.",
	}))
	if err != nil {
		return nil, err
	}

	failures, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "probe_failures_total",
		Help:      "Reachability probes that found the device unreachable.",
	}))
	if err != nil {
		return nil, err
	}

	commands, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "command_executions_total",
		Help:      "SSH command executions, labeled by command and outcome.",
	}, []string{"command", "outcome"}))
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "command_duration_seconds",
		Help:      "SSH command execution latency in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"command"}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		SweepDuration:    sweepDuration,
		SweepsTotal:      sweeps,
		DevicesSwept:     swept,
		DevicesAlive:     alive,
		ProbeFailures:    failures,
		CommandsTotal:    commands,
		CommandDurations: durations,
	}, nil
}

// register adds c to reg or returns the collector already registered under
// the same descriptor.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}

			return c, fmt.Errorf("%w: %w", errIncompatibleCollector, err)
		}

		return c, err
	}

	return c, nil
}

// ObserveSweep records one completed sweep.
func (c *Collector) ObserveSweep(devices, alive int, elapsed time.Duration) {
	if c == nil {
		return
	}

	c.SweepsTotal.Inc()
	c.SweepDuration.Observe(elapsed.Seconds())
	c.DevicesSwept.Set(float64(devices))
	c.DevicesAlive.Set(float64(alive))

	if failed := devices - alive; failed > 0 {
		c.ProbeFailures.Add(float64(failed))
	}
}

// ObserveCommand records one SSH command execution.
func (c *Collector) ObserveCommand(command, outcome string, d time.Duration) {
	if c == nil {
		return
	}

	c.CommandsTotal.WithLabelValues(command, outcome).Inc()
	c.CommandDurations.WithLabelValues(command).Observe(d.Seconds())
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}

	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.Gatherer()
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
