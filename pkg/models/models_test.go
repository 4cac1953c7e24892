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

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"5m"`, want: 5 * time.Minute},
		{name: "nanoseconds", input: `1500000000`, want: 1500 * time.Millisecond},
		{name: "empty string", input: `""`, want: 0},
		{name: "garbage", input: `"soon"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Std())
		})
	}
}

func TestDurationMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration(90 * time.Second))
	require.NoError(t, err)
	assert.JSONEq(t, `"1m30s"`, string(b))
}

func TestDeviceDefaults(t *testing.T) {
	var d Device
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "hostname": "pe-3"}`), &d))

	assert.True(t, d.IsActive)
	assert.Equal(t, "pe-3", d.Address())
	assert.Equal(t, DefaultAdminPort, d.SSHPort(0))
	assert.Equal(t, 2222, d.SSHPort(2222))
	assert.Equal(t, DialectIOS, d.NormalizedDialect())

	require.NoError(t, json.Unmarshal([]byte(`{"id": 4, "ip_address": " 192.0.2.4 ", "admin_port": 830,
		"dialect": "NXOS", "is_active": false}`), &d))

	assert.False(t, d.IsActive)
	assert.Equal(t, "192.0.2.4", d.Address())
	assert.Equal(t, 830, d.SSHPort(22))
	assert.Equal(t, DialectNXOS, d.NormalizedDialect())
}

func TestDevicePublicOmitsCredential(t *testing.T) {
	d := Device{ID: 1, Hostname: "edge", Username: "ops", Credential: "s3cret"}

	b, err := json.Marshal(d.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "s3cret")
	assert.NotContains(t, string(b), "ops")
}

func TestDeviceLabel(t *testing.T) {
	assert.Equal(t, "edge", (&Device{ID: 1, Hostname: "edge", IPAddress: "192.0.2.1"}).Label())
	assert.Equal(t, "192.0.2.1", (&Device{ID: 1, IPAddress: "192.0.2.1"}).Label())
	assert.Equal(t, "device-9", (&Device{ID: 9}).Label())
}

func TestPingStatusClone(t *testing.T) {
	orig := PingStatus{DeviceID: 1, IsAlive: true, ResponseTimeMs: Float64Ptr(1.5)}

	c := orig.Clone()
	*c.ResponseTimeMs = 99

	assert.InDelta(t, 1.5, *orig.ResponseTimeMs, 0.0001)
	assert.Nil(t, c.PacketLossPercent)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "defaults"},
		{
			name:    "bad method",
			cfg:     Config{Ping: PingConfig{Method: "arp"}},
			wantErr: errInvalidProbeMethod,
		},
		{
			name:    "bad source",
			cfg:     Config{Inventory: InventoryConfig{Source: "ldap"}},
			wantErr: errInvalidInventorySource,
		},
		{
			name:    "negative interval",
			cfg:     Config{Ping: PingConfig{Interval: Duration(-time.Second)}},
			wantErr: errNegativeDuration,
		},
		{
			name: "duplicate ids",
			cfg: Config{Inventory: InventoryConfig{Devices: []Device{
				{ID: 1, Hostname: "a"}, {ID: 1, Hostname: "b"},
			}}},
			wantErr: errDuplicateDeviceID,
		},
		{
			name:    "zero id",
			cfg:     Config{Inventory: InventoryConfig{Devices: []Device{{Hostname: "a"}}}},
			wantErr: errInvalidDeviceID,
		},
		{
			name:    "cnpg without database",
			cfg:     Config{Inventory: InventoryConfig{Source: "cnpg"}},
			wantErr: errDatabaseRequired,
		},
		{
			name:    "cnpg without host",
			cfg:     Config{Inventory: InventoryConfig{Source: "cnpg", Database: &CNPGDatabase{Database: "inv"}}},
			wantErr: errDatabaseHostRequired,
		},
		{
			name:    "cnpg without database name",
			cfg:     Config{Inventory: InventoryConfig{Source: "cnpg", Database: &CNPGDatabase{Host: "db"}}},
			wantErr: errDatabaseNameRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, DefaultListenAddr, tt.cfg.ListenAddr)
			assert.Equal(t, DefaultSweepInterval, tt.cfg.Ping.Interval.Std())
			assert.Equal(t, DefaultProbeTimeout, tt.cfg.Ping.Timeout.Std())
			assert.Equal(t, ProbeICMP, tt.cfg.Ping.Method)
			assert.Equal(t, DefaultCommandTimeout, tt.cfg.SSH.CommandTimeout.Std())
			assert.Equal(t, DefaultAdminPort, tt.cfg.SSH.DefaultPort)
			assert.Equal(t, InventorySourceStatic, tt.cfg.Inventory.Source)
			assert.Equal(t, DefaultNATSSubject, tt.cfg.NATS.Subject)
			assert.True(t, tt.cfg.Metrics.IsEnabled())
		})
	}
}

func TestReachabilityState(t *testing.T) {
	assert.Equal(t, ReachabilityOnline, ReachabilityState(true))
	assert.Equal(t, ReachabilityOffline, ReachabilityState(false))
}
