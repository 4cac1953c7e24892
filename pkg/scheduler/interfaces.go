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

package scheduler

//go:generate mockgen -destination=mock_scheduler.go -package=scheduler github.com/carverauto/routerwatch/pkg/scheduler Clock,Ticker,DeviceListProvider,BatchProber,SweepObserver

import (
	"context"
	"time"

	"github.com/carverauto/routerwatch/pkg/models"
)

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker abstracts the ticker behavior.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// DeviceListProvider supplies the devices to sweep.
type DeviceListProvider interface {
	ActiveDevices(ctx context.Context) ([]models.Device, error)
}

// BatchProber probes a batch of devices and returns one status per device,
// in input order.
type BatchProber interface {
	ProbeAll(ctx context.Context, devices []models.Device) []models.PingStatus
}

// SweepObserver is told when a device changes reachability. previous is
// nil the first time a device is seen.
type SweepObserver interface {
	OnTransition(ctx context.Context, previous, current *models.PingStatus) error
}

// SweepRecorder receives per-sweep measurements.
type SweepRecorder interface {
	ObserveSweep(devices, alive int, elapsed time.Duration)
}
