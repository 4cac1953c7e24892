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

// Package models provides data models shared by the routerwatch services.
package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CommandDialect selects the vendor CLI flavour used when building command strings.
type CommandDialect string

const (
	DialectIOS   CommandDialect = "ios"
	DialectIOSXE CommandDialect = "iosxe"
	DialectNXOS  CommandDialect = "nxos"
	DialectIOSXR CommandDialect = "iosxr"
	DialectEOS   CommandDialect = "eos"
)

// DefaultAdminPort is the SSH port used when a device does not declare one.
const DefaultAdminPort = 22

// Device is a router as described by the inventory collaborator.
// The telemetry core only ever reads it.
type Device struct {
	ID         int64          `json:"id"`
	Hostname   string         `json:"hostname"`
	IPAddress  string         `json:"ip_address"`
	Username   string         `json:"username"`
	Credential string         `json:"credential"`
	AdminPort  int            `json:"admin_port,omitempty"`
	Dialect    CommandDialect `json:"dialect,omitempty"`
	IsActive   bool           `json:"is_active"`
}

// UnmarshalJSON treats a missing is_active as true so statically declared
// devices are swept unless explicitly disabled.
func (d *Device) UnmarshalJSON(b []byte) error {
	type device Device

	aux := device{IsActive: true}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	*d = Device(aux)

	return nil
}

// Address returns the address used to reach the device, preferring the
// management IP over the hostname.
func (d *Device) Address() string {
	if ip := strings.TrimSpace(d.IPAddress); ip != "" {
		return ip
	}

	return strings.TrimSpace(d.Hostname)
}

// SSHPort returns the administrative port, or def when none is set.
func (d *Device) SSHPort(def int) int {
	if d.AdminPort > 0 {
		return d.AdminPort
	}

	if def > 0 {
		return def
	}

	return DefaultAdminPort
}

// NormalizedDialect returns the device dialect, defaulting to IOS.
func (d *Device) NormalizedDialect() CommandDialect {
	dialect := CommandDialect(strings.ToLower(strings.TrimSpace(string(d.Dialect))))
	if dialect == "" {
		return DialectIOS
	}

	return dialect
}

// Label is a short human readable identifier for logs.
func (d *Device) Label() string {
	if d.Hostname != "" {
		return d.Hostname
	}

	if d.IPAddress != "" {
		return d.IPAddress
	}

	return "device-" + strconv.FormatInt(d.ID, 10)
}

// PublicDevice is the credential-free view of a Device returned to API callers.
type PublicDevice struct {
	ID        int64          `json:"id"`
	Hostname  string         `json:"hostname"`
	IPAddress string         `json:"ip_address"`
	AdminPort int            `json:"admin_port,omitempty"`
	Dialect   CommandDialect `json:"dialect,omitempty"`
	IsActive  bool           `json:"is_active"`
}

// Public strips the connection secrets from the device.
func (d *Device) Public() PublicDevice {
	return PublicDevice{
		ID:        d.ID,
		Hostname:  d.Hostname,
		IPAddress: d.IPAddress,
		AdminPort: d.AdminPort,
		Dialect:   d.Dialect,
		IsActive:  d.IsActive,
	}
}
