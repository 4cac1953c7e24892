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

// Package telemetry serves on-demand router telemetry: it looks a device up,
// runs the command for its dialect over SSH and parses the output. Results
// are returned to the caller and never cached.
package telemetry

import (
	"context"
	"time"

	"github.com/carverauto/routerwatch/pkg/logger"
	"github.com/carverauto/routerwatch/pkg/models"
	"github.com/carverauto/routerwatch/pkg/parsers"
)

// Runner executes a single command on a device.
type Runner interface {
	Execute(ctx context.Context, device *models.Device, command string, timeout time.Duration) (string, error)
	TestConnection(ctx context.Context, device *models.Device) bool
}

// DeviceSource resolves device ids. inventory.Provider satisfies it.
type DeviceSource interface {
	Device(ctx context.Context, id int64) (*models.Device, error)
}

type Service struct {
	devices DeviceSource
	runner  Runner
	timeout time.Duration
	logger  logger.Logger
}

// NewService builds a Service. A non-positive timeout defers to the
// runner's configured default.
func NewService(devices DeviceSource, runner Runner, timeout time.Duration, log logger.Logger) *Service {
	return &Service{
		devices: devices,
		runner:  runner,
		timeout: timeout,
		logger:  logger.Component(log, "telemetry"),
	}
}

func (s *Service) OSPFNeighbors(ctx context.Context, id int64) (models.OSPFNeighborTable, error) {
	out, err := s.run(ctx, id, KindOSPFNeighbors, "")
	if err != nil {
		return models.OSPFNeighborTable{}, err
	}

	return parsers.ParseOSPFNeighbors(out), nil
}

func (s *Service) BGPSummary(ctx context.Context, id int64) (models.BGPSummary, error) {
	out, err := s.run(ctx, id, KindBGPSummary, "")
	if err != nil {
		return models.BGPSummary{}, err
	}

	return parsers.ParseBGPSummary(out), nil
}

// SFPInfo reads transceiver details. When the output does not name the
// interface, iface is used.
func (s *Service) SFPInfo(ctx context.Context, id int64, iface string) (models.SFPReading, error) {
	out, err := s.run(ctx, id, KindSFPInfo, iface)
	if err != nil {
		return models.SFPReading{}, err
	}

	reading := parsers.ParseSFPInfo(out)
	if reading.Interface == "" {
		reading.Interface = iface
	}

	return reading, nil
}

func (s *Service) SFPStats(ctx context.Context, id int64, iface string) (models.SFPLaneStats, error) {
	out, err := s.run(ctx, id, KindSFPStats, iface)
	if err != nil {
		return models.SFPLaneStats{}, err
	}

	stats := parsers.ParseSFPStats(out)
	if stats.Interface == "" {
		stats.Interface = iface
	}

	return stats, nil
}

// Transceivers reads transceiver details for every interface of the device.
func (s *Service) Transceivers(ctx context.Context, id int64) ([]models.SFPReading, error) {
	out, err := s.run(ctx, id, KindSFPInfo, "")
	if err != nil {
		return nil, err
	}

	return parsers.ParseSFPInfoAll(out), nil
}

// TransceiverStats reads per-lane transceiver statistics for every interface
// of the device.
func (s *Service) TransceiverStats(ctx context.Context, id int64) ([]models.SFPLaneStats, error) {
	out, err := s.run(ctx, id, KindSFPStats, "")
	if err != nil {
		return nil, err
	}

	return parsers.ParseSFPStatsAll(out), nil
}

// TestConnection reports whether the device accepts a session and runs the
// probe command. The error is only set when the device is unknown.
func (s *Service) TestConnection(ctx context.Context, id int64) (bool, error) {
	device, err := s.devices.Device(ctx, id)
	if err != nil {
		return false, err
	}

	return s.runner.TestConnection(ctx, device), nil
}

func (s *Service) run(ctx context.Context, id int64, kind CommandKind, iface string) (string, error) {
	device, err := s.devices.Device(ctx, id)
	if err != nil {
		return "", err
	}

	command, err := Command(device.NormalizedDialect(), kind, iface)
	if err != nil {
		return "", err
	}

	out, err := s.runner.Execute(ctx, device, command, s.timeout)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int64("device_id", id).
			Str("command", command).
			Msg("Telemetry command failed")

		return "", err
	}

	return out, nil
}
