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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/routerwatch/pkg/logger"
)

const (
	DefaultListenAddr     = ":8090"
	DefaultSweepInterval  = 5 * time.Minute
	DefaultProbeTimeout   = 3 * time.Second
	DefaultProbeCount     = 3
	DefaultProbeWorkers   = 64
	DefaultCommandTimeout = 30 * time.Second
	DefaultProbeCommand   = "show version"
	DefaultDeviceTable    = "devices"
	DefaultNATSStream     = "events"
	DefaultNATSSubject    = "events.devices.reachability"
	DefaultMetricsPath    = "/metrics"
	DefaultSNMPCommunity  = "public"
	DefaultSNMPPort       = 161

	InventorySourceStatic = "static"
	InventorySourceCNPG   = "cnpg"
)

var (
	errInvalidProbeMethod     = errors.New("invalid ping method")
	errInvalidInventorySource = errors.New("invalid inventory source")
	errDatabaseRequired       = errors.New("inventory.database is required for the cnpg source")
	errDatabaseHostRequired   = errors.New("inventory.database.host is required")
	errDatabaseNameRequired   = errors.New("inventory.database.database is required")
	errDuplicateDeviceID      = errors.New("duplicate device id")
	errInvalidDeviceID        = errors.New("device id must be positive")
	errNegativeDuration       = errors.New("duration must not be negative")
)

// Config is the routerwatch service configuration.
type Config struct {
	ListenAddr string             `json:"listen_addr"`
	Logging    *logger.Config     `json:"logging"`
	Tracing    *logger.OTelConfig `json:"tracing,omitempty"`
	Ping       PingConfig         `json:"ping"`
	SSH        SSHConfig          `json:"ssh"`
	Inventory  InventoryConfig    `json:"inventory"`
	NATS       NATSConfig         `json:"nats"`
	Metrics    MetricsConfig      `json:"metrics"`
	CORS       CORSConfig         `json:"cors"`
}

// PingConfig controls the availability sweep.
type PingConfig struct {
	AutoStart     *bool       `json:"auto_start,omitempty"`
	Interval      Duration    `json:"interval"`
	Timeout       Duration    `json:"timeout"`
	Count         int         `json:"count"`
	Method        ProbeMethod `json:"method"`
	Privileged    bool        `json:"privileged"`
	Concurrency   int         `json:"concurrency"`
	SNMPCommunity string      `json:"snmp_community,omitempty"`
	SNMPPort      int         `json:"snmp_port,omitempty"`
}

// ShouldAutoStart reports whether the sweep starts with the service.
func (p *PingConfig) ShouldAutoStart() bool {
	return p.AutoStart == nil || *p.AutoStart
}

// SSHConfig controls the on-demand command executor.
type SSHConfig struct {
	CommandTimeout   Duration `json:"command_timeout"`
	DefaultPort      int      `json:"default_port"`
	KnownHostsFile   string   `json:"known_hosts_file,omitempty"`
	LegacyAlgorithms bool     `json:"legacy_algorithms,omitempty"`
	ProbeCommand     string   `json:"probe_command,omitempty"`
}

// InventoryConfig selects where the device list comes from.
type InventoryConfig struct {
	Source   string        `json:"source"`
	Devices  []Device      `json:"devices,omitempty"`
	Table    string        `json:"table,omitempty"`
	Database *CNPGDatabase `json:"database,omitempty"`
}

// CNPGDatabase describes the PostgreSQL cluster holding the inventory tables.
type CNPGDatabase struct {
	Host               string            `json:"host"`
	Port               int               `json:"port"`
	Database           string            `json:"database"`
	Username           string            `json:"username"`
	Password           string            `json:"password"`
	SSLMode            string            `json:"ssl_mode,omitempty"`
	ApplicationName    string            `json:"application_name,omitempty"`
	MaxConnections     int32             `json:"max_connections,omitempty"`
	MinConnections     int32             `json:"min_connections,omitempty"`
	MaxConnLifetime    Duration          `json:"max_conn_lifetime,omitempty"`
	HealthCheckPeriod  Duration          `json:"health_check_period,omitempty"`
	StatementTimeout   Duration          `json:"statement_timeout,omitempty"`
	ExtraRuntimeParams map[string]string `json:"extra_runtime_params,omitempty"`
}

// NATSConfig enables reachability event publishing when URL is set.
type NATSConfig struct {
	URL     string `json:"url,omitempty"`
	Stream  string `json:"stream,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled *bool  `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// IsEnabled defaults to true.
func (m *MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// CORSConfig represents CORS configuration for the HTTP API.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials"`
}

// Validate implements config.Validator. Missing values are replaced with defaults.
func (c *Config) Validate() error {
	c.applyDefaults()

	if c.Ping.Interval < 0 || c.Ping.Timeout < 0 || c.SSH.CommandTimeout < 0 {
		return errNegativeDuration
	}

	switch c.Ping.Method {
	case ProbeICMP, ProbeTCP, ProbeSNMP:
	default:
		return fmt.Errorf("%w: %q", errInvalidProbeMethod, c.Ping.Method)
	}

	switch c.Inventory.Source {
	case InventorySourceStatic:
		return validateDevices(c.Inventory.Devices)
	case InventorySourceCNPG:
		return validateDatabase(c.Inventory.Database)
	default:
		return fmt.Errorf("%w: %q", errInvalidInventorySource, c.Inventory.Source)
	}
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}

	if c.Ping.Interval == 0 {
		c.Ping.Interval = Duration(DefaultSweepInterval)
	}

	if c.Ping.Timeout == 0 {
		c.Ping.Timeout = Duration(DefaultProbeTimeout)
	}

	if c.Ping.Count <= 0 {
		c.Ping.Count = DefaultProbeCount
	}

	if c.Ping.Concurrency <= 0 {
		c.Ping.Concurrency = DefaultProbeWorkers
	}

	c.Ping.Method = ProbeMethod(strings.ToLower(string(c.Ping.Method)))
	if c.Ping.Method == "" {
		c.Ping.Method = ProbeICMP
	}

	if c.Ping.SNMPCommunity == "" {
		c.Ping.SNMPCommunity = DefaultSNMPCommunity
	}

	if c.Ping.SNMPPort <= 0 {
		c.Ping.SNMPPort = DefaultSNMPPort
	}

	if c.SSH.CommandTimeout == 0 {
		c.SSH.CommandTimeout = Duration(DefaultCommandTimeout)
	}

	if c.SSH.DefaultPort <= 0 {
		c.SSH.DefaultPort = DefaultAdminPort
	}

	if c.SSH.ProbeCommand == "" {
		c.SSH.ProbeCommand = DefaultProbeCommand
	}

	c.Inventory.Source = strings.ToLower(c.Inventory.Source)
	if c.Inventory.Source == "" {
		c.Inventory.Source = InventorySourceStatic
	}

	if c.Inventory.Table == "" {
		c.Inventory.Table = DefaultDeviceTable
	}

	if c.NATS.Stream == "" {
		c.NATS.Stream = DefaultNATSStream
	}

	if c.NATS.Subject == "" {
		c.NATS.Subject = DefaultNATSSubject
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func validateDevices(devices []Device) error {
	seen := make(map[int64]struct{}, len(devices))

	for i := range devices {
		id := devices[i].ID
		if id <= 0 {
			return fmt.Errorf("%w: %s", errInvalidDeviceID, devices[i].Label())
		}

		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %d", errDuplicateDeviceID, id)
		}

		seen[id] = struct{}{}
	}

	return nil
}

func validateDatabase(db *CNPGDatabase) error {
	if db == nil {
		return errDatabaseRequired
	}

	if db.Host == "" {
		return errDatabaseHostRequired
	}

	if db.Database == "" {
		return errDatabaseNameRequired
	}

	return nil
}
