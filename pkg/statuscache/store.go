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

// Package statuscache holds the latest reachability status per device.
package statuscache

import (
	"slices"
	"sync"

	"github.com/carverauto/routerwatch/pkg/models"
)

// Store is an in-memory, last-write-wins map of device id to PingStatus.
// Values are copied on the way in and on the way out. There is no TTL;
// callers judge staleness from LastChecked.
type Store struct {
	mu       sync.RWMutex
	statuses map[int64]models.PingStatus
}

func New() *Store {
	return &Store{
		statuses: make(map[int64]models.PingStatus),
	}
}

// Get returns the cached status for id. ok is false when the device has
// never been probed.
func (s *Store) Get(id int64) (models.PingStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.statuses[id]
	if !ok {
		return models.PingStatus{}, false
	}

	return st.Clone(), true
}

// GetAll returns every cached status ordered by device id.
func (s *Store) GetAll() []models.PingStatus {
	s.mu.RLock()

	out := make([]models.PingStatus, 0, len(s.statuses))
	for _, st := range s.statuses {
		out = append(out, st.Clone())
	}

	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b models.PingStatus) int {
		switch {
		case a.DeviceID < b.DeviceID:
			return -1
		case a.DeviceID > b.DeviceID:
			return 1
		default:
			return 0
		}
	})

	return out
}

// Set replaces the status for id.
func (s *Store) Set(id int64, status *models.PingStatus) {
	s.Swap(id, status)
}

// Swap replaces the status for id and returns the value it replaced.
func (s *Store) Swap(id int64, status *models.PingStatus) (models.PingStatus, bool) {
	c := status.Clone()
	c.DeviceID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.statuses[id]
	s.statuses[id] = c

	return prev, ok
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.statuses)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.statuses)
}

// Summary counts cached devices by reachability.
func (s *Store) Summary() models.StatusSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := models.StatusSummary{Total: len(s.statuses)}

	for _, st := range s.statuses {
		if st.IsAlive {
			summary.Alive++
		} else {
			summary.Offline++
		}
	}

	return summary
}
