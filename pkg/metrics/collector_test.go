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

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSweep(t *testing.T) {
	reg := prometheus.NewRegistry()

	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveSweep(10, 7, 2*time.Second)
	c.ObserveSweep(10, 10, time.Second)

	assert.InDelta(t, 2.0, testutil.ToFloat64(c.SweepsTotal), 1e-9)
	assert.InDelta(t, 10.0, testutil.ToFloat64(c.DevicesSwept), 1e-9)
	assert.InDelta(t, 10.0, testutil.ToFloat64(c.DevicesAlive), 1e-9)
	assert.InDelta(t, 3.0, testutil.ToFloat64(c.ProbeFailures), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(c.SweepDuration))
}

func TestObserveCommand(t *testing.T) {
	reg := prometheus.NewRegistry()

	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveCommand("show ip bgp summary", "success", 300*time.Millisecond)
	c.ObserveCommand("show ip bgp summary", "success", 200*time.Millisecond)
	c.ObserveCommand("show ip bgp summary", "timeout", 30*time.Second)

	assert.InDelta(t, 2.0, testutil.ToFloat64(c.CommandsTotal.WithLabelValues("show ip bgp summary", "success")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(c.CommandsTotal.WithLabelValues("show ip bgp summary", "timeout")), 1e-9)
	assert.Equal(t, 2, testutil.CollectAndCount(c.CommandsTotal))
}

func TestNewCollectorReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewCollector(reg)
	require.NoError(t, err)

	second, err := NewCollector(reg)
	require.NoError(t, err)

	second.ObserveSweep(1, 1, time.Millisecond)

	assert.InDelta(t, 1.0, testutil.ToFloat64(first.SweepsTotal), 1e-9)
}

func TestNewCollectorIncompatible(t *testing.T) {
	reg := prometheus.NewRegistry()

	require.NoError(t, reg.Register(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of reachability sweeps.",
	})))

	_, err := NewCollector(reg)
	require.Error(t, err)
}

func TestNilCollector(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveSweep(1, 0, time.Second)
		c.ObserveCommand("show version", "success", time.Second)
	})
	assert.Nil(t, c.Gatherer())
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()

	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveSweep(4, 3, time.Second)

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.True(t, strings.Contains(body, "routerwatch_devices_alive 3"), body)
	assert.Contains(t, body, "routerwatch_sweeps_total 1")
}
