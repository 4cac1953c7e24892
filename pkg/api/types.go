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

package api

import (
	"context"
	"time"

	"github.com/carverauto/routerwatch/pkg/models"
	"github.com/carverauto/routerwatch/pkg/scheduler"
)

// Prober runs on-demand reachability probes.
type Prober interface {
	Probe(ctx context.Context, device *models.Device) models.PingStatus
	ProbeAll(ctx context.Context, devices []models.Device) []models.PingStatus
}

// SweepController is the part of *scheduler.Scheduler driven over HTTP.
type SweepController interface {
	Start(ctx context.Context, provider scheduler.DeviceListProvider, interval time.Duration) (scheduler.Status, bool)
	Stop() scheduler.Status
	Status() scheduler.Status
	SweepNow(ctx context.Context, provider scheduler.DeviceListProvider) (scheduler.SweepResult, error)
}

// Telemetry serves parsed device telemetry.
type Telemetry interface {
	OSPFNeighbors(ctx context.Context, id int64) (models.OSPFNeighborTable, error)
	BGPSummary(ctx context.Context, id int64) (models.BGPSummary, error)
	SFPInfo(ctx context.Context, id int64, iface string) (models.SFPReading, error)
	SFPStats(ctx context.Context, id int64, iface string) (models.SFPLaneStats, error)
	Transceivers(ctx context.Context, id int64) ([]models.SFPReading, error)
	TransceiverStats(ctx context.Context, id int64) ([]models.SFPLaneStats, error)
	TestConnection(ctx context.Context, id int64) (bool, error)
}

// StartRequest is the optional body of POST /api/v1/scheduler/start.
type StartRequest struct {
	Interval models.Duration `json:"interval"`
}

// StartResponse reports the outcome of a start request.
type StartResponse struct {
	Started bool             `json:"started"`
	Message string           `json:"message"`
	Status  scheduler.Status `json:"status"`
}

// BatchRequest is the optional body of POST /api/v1/ping/batch. An empty
// list probes every active device.
type BatchRequest struct {
	DeviceIDs []int64 `json:"device_ids"`
}

type BatchResponse struct {
	Results []models.PingStatus `json:"results"`
	Total   int                 `json:"total"`
	Alive   int                 `json:"alive"`
}

type ConnectionResponse struct {
	DeviceID  int64 `json:"device_id"`
	Connected bool  `json:"connected"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
