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

// Package ping implements the reachability prober used by the sweep.
package ping

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/carverauto/routerwatch/pkg/logger"
	"github.com/carverauto/routerwatch/pkg/models"
	"golang.org/x/sync/errgroup"
)

const (
	collectionGrace = 2 * time.Second
	msPerSecond     = 1000
)

// Prober turns Pinger results into PingStatus records. Probe and ProbeAll
// never fail; every problem is reported inside the status.
type Prober struct {
	pinger   Pinger
	method   models.ProbeMethod
	timeout  time.Duration
	workers  int
	grace    time.Duration
	target   func(device *models.Device, addr string) string
	resolver *net.Resolver
	now      func() time.Time
	logger   logger.Logger
}

// ProberOption customizes a Prober.
type ProberOption func(*Prober)

// WithTimeout sets the per-probe timeout.
func WithTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithWorkers bounds the number of concurrent probes in ProbeAll.
func WithWorkers(n int) ProberOption {
	return func(p *Prober) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithMethod labels the statuses produced by the prober.
func WithMethod(m models.ProbeMethod) ProberOption {
	return func(p *Prober) {
		p.method = m
	}
}

// WithTarget rewrites the resolved address before it is handed to the
// Pinger, for example to add a port.
func WithTarget(fn func(device *models.Device, addr string) string) ProberOption {
	return func(p *Prober) {
		p.target = fn
	}
}

// WithResolver replaces net.DefaultResolver for hostname lookups.
func WithResolver(r *net.Resolver) ProberOption {
	return func(p *Prober) {
		p.resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = logger.Component(log, "prober")
	}
}

func NewProber(pinger Pinger, opts ...ProberOption) *Prober {
	p := &Prober{
		pinger:   pinger,
		method:   models.ProbeICMP,
		timeout:  models.DefaultProbeTimeout,
		workers:  models.DefaultProbeWorkers,
		grace:    collectionGrace,
		resolver: net.DefaultResolver,
		now:      time.Now,
		logger:   logger.NewTestLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// NewFromConfig builds the Prober for the configured probe method.
func NewFromConfig(cfg *models.PingConfig, sshPort int, log logger.Logger) (*Prober, error) {
	opts := []ProberOption{
		WithTimeout(cfg.Timeout.Std()),
		WithWorkers(cfg.Concurrency),
		WithLogger(log),
	}

	var pinger Pinger

	switch cfg.Method {
	case models.ProbeICMP, "":
		pinger = NewICMPPinger(cfg.Count, cfg.Privileged)
		opts = append(opts, WithMethod(models.ProbeICMP))
	case models.ProbeTCP:
		pinger = NewTCPPinger(cfg.Count, sshPort, log)
		opts = append(opts,
			WithMethod(models.ProbeTCP),
			WithTarget(func(d *models.Device, addr string) string {
				return net.JoinHostPort(addr, strconv.Itoa(d.SSHPort(sshPort)))
			}))
	case models.ProbeSNMP:
		pinger = NewSNMPPinger(cfg.Count, cfg.SNMPCommunity, cfg.SNMPPort)
		opts = append(opts, WithMethod(models.ProbeSNMP))
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownMethod, cfg.Method)
	}

	return NewProber(pinger, opts...), nil
}

// Timeout returns the per-probe timeout.
func (p *Prober) Timeout() time.Duration {
	return p.timeout
}

// Probe checks one device. It always returns a status with LastChecked set.
func (p *Prober) Probe(ctx context.Context, device *models.Device) (status models.PingStatus) {
	status = models.PingStatus{Method: p.method}

	defer func() {
		if r := recover(); r != nil {
			status = p.failed(status, fmt.Errorf("%w: %v", errProbePanic, r))
		}
	}()

	if device == nil {
		return p.failed(status, errNoDevice)
	}

	status.DeviceID = device.ID
	status.Hostname = device.Hostname
	status.IPAddress = device.IPAddress

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	addr, err := p.resolve(probeCtx, device)
	if err != nil {
		return p.failed(status, err)
	}

	if status.IPAddress == "" {
		status.IPAddress = addr
	}

	host := addr
	if p.target != nil {
		host = p.target(device, addr)
	}

	stats, err := p.pinger.Ping(probeCtx, host)

	return p.fromStats(status, &stats, err)
}

func (p *Prober) resolve(ctx context.Context, device *models.Device) (string, error) {
	if device.IPAddress != "" {
		return device.Address(), nil
	}

	host := device.Address()
	if host == "" {
		return "", errNoAddress
	}

	addrs, err := p.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", host, err)
	}

	if len(addrs) == 0 {
		return "", fmt.Errorf("resolve %s: %w", host, errNoAddress)
	}

	return addrs[0].Unmap().String(), nil
}

func (p *Prober) fromStats(status models.PingStatus, stats *Stats, err error) models.PingStatus {
	if stats.Received == 0 {
		if err == nil {
			err = errNoReply
		}

		return p.failed(status, err)
	}

	status.IsAlive = true
	status.PacketLossPercent = models.Float64Ptr(stats.LossPercent())

	if rtt, ok := stats.MeanRTT(); ok {
		status.ResponseTimeMs = models.Float64Ptr(rtt.Seconds() * msPerSecond)
	}

	status.LastChecked = p.now().UTC()

	return status
}

func (p *Prober) failed(status models.PingStatus, err error) models.PingStatus {
	status.IsAlive = false
	status.ResponseTimeMs = nil
	status.PacketLossPercent = models.Float64Ptr(100)
	status.Error = err.Error()
	status.LastChecked = p.now().UTC()

	p.logger.Debug().
		Int64("device_id", status.DeviceID).
		Str("hostname", status.Hostname).
		Err(err).
		Msg("Probe failed")

	return status
}

// collectionDeadline allows one probe timeout per wave of workers plus grace.
func (p *Prober) collectionDeadline(n int) time.Duration {
	waves := (n + p.workers - 1) / p.workers

	return time.Duration(waves)*p.timeout + p.grace
}

// ProbeAll probes the devices concurrently and returns one status per
// device in input order. Probes still running at the collection deadline
// are reported as failed.
func (p *Prober) ProbeAll(ctx context.Context, devices []models.Device) []models.PingStatus {
	results := make([]models.PingStatus, len(devices))
	if len(devices) == 0 {
		return results
	}

	collectCtx, cancel := context.WithTimeout(ctx, p.collectionDeadline(len(devices)))
	defer cancel()

	var (
		mu     sync.Mutex
		done   = make([]bool, len(devices))
		closed bool
	)

	finished := make(chan struct{})

	go func() {
		defer close(finished)

		var g errgroup.Group

		g.SetLimit(p.workers)

		for i := range devices {
			if collectCtx.Err() != nil {
				break
			}

			g.Go(func() error {
				if collectCtx.Err() != nil {
					return nil
				}

				st := p.Probe(collectCtx, &devices[i])

				mu.Lock()
				defer mu.Unlock()

				if !closed {
					results[i] = st
					done[i] = true
				}

				return nil
			})
		}

		_ = g.Wait()
	}()

	select {
	case <-finished:
	case <-collectCtx.Done():
	}

	mu.Lock()
	defer mu.Unlock()

	closed = true

	for i := range devices {
		if done[i] {
			continue
		}

		results[i] = p.failed(models.PingStatus{
			DeviceID:  devices[i].ID,
			Hostname:  devices[i].Hostname,
			IPAddress: devices[i].IPAddress,
			Method:    p.method,
		}, fmt.Errorf("%w: %w", errProbeAbandoned, context.Cause(collectCtx)))
	}

	return results
}
