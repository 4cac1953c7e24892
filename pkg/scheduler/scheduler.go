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

// Package scheduler drives the periodic reachability sweep.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/routerwatch/pkg/logger"
	"github.com/carverauto/routerwatch/pkg/models"
	"github.com/carverauto/routerwatch/pkg/statuscache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultInterval is used when Start is given a non-positive interval.
const DefaultInterval = 5 * time.Minute

var (
	// ErrInventory wraps failures to fetch the device list.
	ErrInventory = errors.New("inventory unavailable")

	errSweepAborted = errors.New("sweep aborted")
)

// State is the scheduler lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Status is a point-in-time view of the scheduler.
type Status struct {
	State            State           `json:"state"`
	Interval         models.Duration `json:"interval"`
	StartedAt        *time.Time      `json:"started_at,omitempty"`
	LastSweepAt      *time.Time      `json:"last_sweep_at,omitempty"`
	LastSweepDevices int             `json:"last_sweep_devices"`
	Sweeps           int64           `json:"sweeps"`
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Devices  int             `json:"devices"`
	Alive    int             `json:"alive"`
	Offline  int             `json:"offline"`
	Duration models.Duration `json:"duration"`
}

// Scheduler runs sweeps on a single goroutine: fetch active devices, probe
// them, write the results into the status cache. Sweeps never overlap.
type Scheduler struct {
	prober   BatchProber
	cache    *statuscache.Store
	clock    Clock
	observer SweepObserver
	metrics  SweepRecorder
	logger   logger.Logger
	tracer   trace.Tracer

	// sweepMu serializes sweeps from the loop and from SweepNow.
	sweepMu sync.Mutex

	mu               sync.Mutex
	state            State
	interval         time.Duration
	startedAt        time.Time
	lastSweepAt      time.Time
	lastSweepDevices int
	sweeps           int64
	generation       uint64
	stop             chan struct{}
	done             chan struct{}
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithObserver registers a reachability transition hook.
func WithObserver(o SweepObserver) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

func WithMetrics(m SweepRecorder) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

func WithLogger(log logger.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger.Component(log, "scheduler")
	}
}

func New(prober BatchProber, cache *statuscache.Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		prober: prober,
		cache:  cache,
		clock:  realClock{},
		logger: logger.NewTestLogger(),
		tracer: logger.GetTracer("routerwatch/scheduler"),
		state:  StateIdle,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start moves the scheduler to Running, sweeps immediately and then every
// interval. It returns false with the current status if the scheduler is
// already running. The loop ends on Stop or when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context, provider DeviceListProvider, interval time.Duration) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return s.statusLocked(), false
	}

	if interval <= 0 {
		interval = DefaultInterval
	}

	s.generation++
	s.state = StateRunning
	s.interval = interval
	s.startedAt = s.clock.Now()

	previous := s.done
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop = stop
	s.done = done

	ticker := s.clock.Ticker(interval)

	go s.loop(ctx, loopState{
		provider: provider,
		ticker:   ticker,
		previous: previous,
		stop:     stop,
		done:     done,
		gen:      s.generation,
	})

	s.logger.Info().Dur("interval", interval).Msg("Sweep scheduler started")

	return s.statusLocked(), true
}

type loopState struct {
	provider DeviceListProvider
	ticker   Ticker
	previous <-chan struct{}
	stop     <-chan struct{}
	done     chan<- struct{}
	gen      uint64
}

func (s *Scheduler) loop(ctx context.Context, ls loopState) {
	defer close(ls.done)
	defer ls.ticker.Stop()
	defer s.loopExited(ls.gen)

	// a loop from an earlier Start may still be finishing its sweep
	if ls.previous != nil {
		select {
		case <-ls.previous:
		case <-ls.stop:
			return
		case <-ctx.Done():
			return
		}
	}

	s.runSweep(ctx, ls.provider)

	for {
		select {
		case <-ls.stop:
			return
		case <-ctx.Done():
			return
		case <-ls.ticker.Chan():
			select {
			case <-ls.stop:
				return
			default:
			}

			s.runSweep(ctx, ls.provider)
		}
	}
}

func (s *Scheduler) loopExited(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation == gen && s.state == StateRunning {
		s.state = StateIdle
		s.logger.Info().Msg("Sweep scheduler exited with its context")
	}
}

func (s *Scheduler) runSweep(ctx context.Context, provider DeviceListProvider) {
	res, err := s.sweep(ctx, provider)
	if err != nil {
		s.logger.Error().Err(err).Msg("Sweep failed")
		return
	}

	s.logger.Info().
		Int("devices", res.Devices).
		Int("alive", res.Alive).
		Int("offline", res.Offline).
		Dur("duration", res.Duration.Std()).
		Msg("Sweep completed")
}

// Stop cancels the timer and returns immediately. A sweep already in
// progress finishes and its results are still cached.
func (s *Scheduler) Stop() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return s.statusLocked()
	}

	close(s.stop)
	s.state = StateIdle

	s.logger.Info().Msg("Sweep scheduler stopped")

	return s.statusLocked()
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.statusLocked()
}

func (s *Scheduler) statusLocked() Status {
	st := Status{
		State:            s.state,
		Interval:         models.Duration(s.interval),
		LastSweepDevices: s.lastSweepDevices,
		Sweeps:           s.sweeps,
	}

	if !s.startedAt.IsZero() {
		t := s.startedAt
		st.StartedAt = &t
	}

	if !s.lastSweepAt.IsZero() {
		t := s.lastSweepAt
		st.LastSweepAt = &t
	}

	return st
}

// Wait blocks until the most recent loop goroutine has exited.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SweepNow runs one sweep synchronously on the caller's goroutine. It waits
// for any sweep already in progress.
func (s *Scheduler) SweepNow(ctx context.Context, provider DeviceListProvider) (SweepResult, error) {
	return s.sweep(ctx, provider)
}

func (s *Scheduler) sweep(ctx context.Context, provider DeviceListProvider) (SweepResult, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	ctx, span := s.tracer.Start(ctx, "scheduler.sweep")
	defer span.End()

	start := s.clock.Now()

	devices, err := provider.ActiveDevices(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "inventory")

		return SweepResult{}, fmt.Errorf("%w: %w", ErrInventory, err)
	}

	active := make([]models.Device, 0, len(devices))

	for i := range devices {
		if devices[i].IsActive {
			active = append(active, devices[i])
		}
	}

	span.SetAttributes(attribute.Int("devices", len(active)))

	results := s.prober.ProbeAll(ctx, active)

	// results gathered under a cancelled context say nothing about the devices
	if ctx.Err() != nil {
		span.SetStatus(codes.Error, "aborted")

		return SweepResult{}, fmt.Errorf("%w: %w", errSweepAborted, ctx.Err())
	}

	res := SweepResult{Devices: len(results)}

	for i := range results {
		current := &results[i]

		if current.IsAlive {
			res.Alive++
		} else {
			res.Offline++
		}

		previous, seen := s.cache.Swap(current.DeviceID, current)

		if seen && previous.IsAlive == current.IsAlive {
			continue
		}

		s.notify(ctx, seen, &previous, current)
	}

	end := s.clock.Now()
	res.Duration = models.Duration(end.Sub(start))

	s.mu.Lock()
	s.lastSweepAt = end
	s.lastSweepDevices = res.Devices
	s.sweeps++
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveSweep(res.Devices, res.Alive, res.Duration.Std())
	}

	span.SetAttributes(attribute.Int("alive", res.Alive))

	return res, nil
}

func (s *Scheduler) notify(ctx context.Context, seen bool, previous, current *models.PingStatus) {
	if s.observer == nil {
		return
	}

	if !seen {
		previous = nil
	}

	if err := s.observer.OnTransition(ctx, previous, current); err != nil {
		s.logger.Warn().
			Err(err).
			Int64("device_id", current.DeviceID).
			Bool("is_alive", current.IsAlive).
			Msg("Failed to publish reachability transition")
	}
}
