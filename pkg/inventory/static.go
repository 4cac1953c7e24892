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

package inventory

import (
	"context"
	"fmt"
	"slices"

	"github.com/carverauto/routerwatch/pkg/models"
)

// Static serves the devices declared in the configuration file.
type Static struct {
	devices []models.Device
	byID    map[int64]int
}

var _ Provider = (*Static)(nil)

func NewStatic(devices []models.Device) *Static {
	s := &Static{
		devices: slices.Clone(devices),
		byID:    make(map[int64]int, len(devices)),
	}

	for i := range s.devices {
		s.byID[s.devices[i].ID] = i
	}

	return s
}

func (s *Static) ActiveDevices(_ context.Context) ([]models.Device, error) {
	out := make([]models.Device, 0, len(s.devices))

	for i := range s.devices {
		if s.devices[i].IsActive {
			out = append(out, s.devices[i])
		}
	}

	return out, nil
}

func (s *Static) Device(_ context.Context, id int64) (*models.Device, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrDeviceNotFound, id)
	}

	d := s.devices[i]

	return &d, nil
}
