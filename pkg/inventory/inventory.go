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

// Package inventory adapts the device inventory collaborator.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/carverauto/routerwatch/pkg/logger"
	"github.com/carverauto/routerwatch/pkg/models"
)

var (
	// ErrDeviceNotFound is returned by Provider.Device for unknown ids.
	ErrDeviceNotFound = errors.New("device not found")

	errUnknownSource = errors.New("unknown inventory source")
)

// Provider reads devices from the inventory.
type Provider interface {
	// ActiveDevices returns the devices that should be swept.
	ActiveDevices(ctx context.Context) ([]models.Device, error)
	Device(ctx context.Context, id int64) (*models.Device, error)
}

// New builds the provider selected by cfg.Source. The returned close
// function releases any connections and is never nil.
func New(ctx context.Context, cfg *models.InventoryConfig, log logger.Logger) (Provider, func(), error) {
	switch cfg.Source {
	case models.InventorySourceStatic, "":
		return NewStatic(cfg.Devices), func() {}, nil
	case models.InventorySourceCNPG:
		pool, err := NewCNPGPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}

		provider, err := NewCNPG(pool, cfg.Table, log)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		return provider, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnknownSource, cfg.Source)
	}
}
