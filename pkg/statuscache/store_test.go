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

package statuscache

import (
	"sync"
	"testing"
	"time"

	"github.com/carverauto/routerwatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func status(id int64, alive bool) *models.PingStatus {
	st := &models.PingStatus{
		DeviceID:          id,
		Hostname:          "edge",
		IPAddress:         "192.0.2.1",
		IsAlive:           alive,
		PacketLossPercent: models.Float64Ptr(100),
		LastChecked:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if alive {
		st.ResponseTimeMs = models.Float64Ptr(1.5)
		st.PacketLossPercent = models.Float64Ptr(0)
	}

	return st
}

func TestGetMissing(t *testing.T) {
	s := New()

	_, ok := s.Get(42)
	assert.False(t, ok)
	assert.Empty(t, s.GetAll())
	assert.Equal(t, models.StatusSummary{}, s.Summary())
}

func TestSetOverwrites(t *testing.T) {
	s := New()

	s.Set(1, status(1, true))
	s.Set(1, status(1, false))

	got, ok := s.Get(1)
	require.True(t, ok)
	assert.False(t, got.IsAlive)
	assert.Nil(t, got.ResponseTimeMs)
	assert.Equal(t, 1, s.Len())
}

func TestSetKeepsPrivateCopy(t *testing.T) {
	s := New()

	in := status(7, true)
	s.Set(7, in)

	*in.ResponseTimeMs = 999
	in.Hostname = "mutated"

	got, ok := s.Get(7)
	require.True(t, ok)
	assert.InDelta(t, 1.5, *got.ResponseTimeMs, 1e-9)
	assert.Equal(t, "edge", got.Hostname)

	*got.ResponseTimeMs = 500

	again, _ := s.Get(7)
	assert.InDelta(t, 1.5, *again.ResponseTimeMs, 1e-9)
}

func TestSetUsesKey(t *testing.T) {
	s := New()
	s.Set(9, status(3, true))

	got, ok := s.Get(9)
	require.True(t, ok)
	assert.Equal(t, int64(9), got.DeviceID)

	_, ok = s.Get(3)
	assert.False(t, ok)
}

func TestSwap(t *testing.T) {
	s := New()

	_, existed := s.Swap(1, status(1, true))
	assert.False(t, existed)

	prev, existed := s.Swap(1, status(1, false))
	require.True(t, existed)
	assert.True(t, prev.IsAlive)
}

func TestGetAllSortedByID(t *testing.T) {
	s := New()

	for _, id := range []int64{30, 2, 17, 5} {
		s.Set(id, status(id, id%2 == 0))
	}

	all := s.GetAll()
	require.Len(t, all, 4)

	ids := make([]int64, 0, len(all))
	for _, st := range all {
		ids = append(ids, st.DeviceID)
	}

	assert.Equal(t, []int64{2, 5, 17, 30}, ids)
}

func TestSummaryAndClear(t *testing.T) {
	s := New()
	s.Set(1, status(1, true))
	s.Set(2, status(2, false))
	s.Set(3, status(3, true))

	assert.Equal(t, models.StatusSummary{Total: 3, Alive: 2, Offline: 1}, s.Summary())

	s.Clear()

	assert.Zero(t, s.Len())
	assert.Empty(t, s.GetAll())
	assert.Equal(t, models.StatusSummary{}, s.Summary())
}

func TestConcurrentAccess(t *testing.T) {
	s := New()

	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)

		go func(w int) {
			defer wg.Done()

			for i := 0; i < 200; i++ {
				id := int64(i % 20)
				s.Set(id, status(id, (i+w)%2 == 0))
				_, _ = s.Get(id)
				_ = s.GetAll()
				_ = s.Summary()
			}
		}(w)
	}

	wg.Wait()

	assert.Equal(t, 20, s.Len())
}
