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

import "time"

// ProbeMethod identifies how reachability was checked.
type ProbeMethod string

const (
	ProbeICMP ProbeMethod = "icmp"
	ProbeTCP  ProbeMethod = "tcp"
	ProbeSNMP ProbeMethod = "snmp"
)

// PingStatus is the normalized result of a single reachability probe.
type PingStatus struct {
	DeviceID          int64       `json:"device_id"`
	Hostname          string      `json:"hostname"`
	IPAddress         string      `json:"ip_address"`
	IsAlive           bool        `json:"is_alive"`
	ResponseTimeMs    *float64    `json:"response_time_ms"`
	PacketLossPercent *float64    `json:"packet_loss_percent"`
	LastChecked       time.Time   `json:"last_checked"`
	Error             string      `json:"error,omitempty"`
	Method            ProbeMethod `json:"method,omitempty"`
}

// Clone returns a copy that shares no pointers with s.
func (s *PingStatus) Clone() PingStatus {
	out := *s
	out.ResponseTimeMs = cloneFloat(s.ResponseTimeMs)
	out.PacketLossPercent = cloneFloat(s.PacketLossPercent)

	return out
}

// StatusSummary aggregates the cached statuses.
type StatusSummary struct {
	Total   int `json:"total"`
	Alive   int `json:"alive"`
	Offline int `json:"offline"`
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}

	c := *v

	return &c
}
