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

// CloudEvent represents a CloudEvents v1.0 message.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype,omitempty"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// Reachability states carried by ReachabilityEventData.
const (
	ReachabilityUnknown = "unknown"
	ReachabilityOnline  = "online"
	ReachabilityOffline = "offline"
)

// ReachabilityEventData describes a device changing reachability between sweeps.
type ReachabilityEventData struct {
	DeviceID       int64     `json:"device_id"`
	Hostname       string    `json:"hostname"`
	IPAddress      string    `json:"ip_address"`
	PreviousState  string    `json:"previous_state"`
	CurrentState   string    `json:"current_state"`
	Timestamp      time.Time `json:"timestamp"`
	ResponseTimeMs *float64  `json:"response_time_ms,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// ReachabilityState maps an is_alive flag to a state string.
func ReachabilityState(alive bool) string {
	if alive {
		return ReachabilityOnline
	}

	return ReachabilityOffline
}
