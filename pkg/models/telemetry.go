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

const (
	DefaultOSPFArea      = "0.0.0.0"
	DefaultBFDStatus     = "Disabled"
	ForwardingActive     = "Active"
	ForwardingInactive   = "Inactive"
	BGPEstablishedMarker = "Established"
)

// OSPFNeighbor is one row of an OSPF neighbor table.
type OSPFNeighbor struct {
	NeighborID string `json:"neighbor_id"`
	Priority   *int   `json:"priority"`
	State      string `json:"state"`
	DeadTime   string `json:"dead_time"`
	Address    string `json:"address"`
	Interface  string `json:"interface"`
	AreaID     string `json:"area_id"`
	BFDStatus  string `json:"bfd_status"`
}

// OSPFNeighborTable is the parsed output of an OSPF neighbor command.
type OSPFNeighborTable struct {
	NeighborCount int            `json:"neighbor_count"`
	Neighbors     []OSPFNeighbor `json:"neighbors"`
}

// BGPSummary is the parsed output of a BGP summary command.
// EstablishedCount never exceeds ConfiguredCount.
type BGPSummary struct {
	RouterID         string `json:"router_id"`
	LocalAS          *int64 `json:"local_as"`
	ConfiguredCount  int    `json:"configured_count"`
	EstablishedCount int    `json:"established_count"`
	ForwardingState  string `json:"forwarding_state"`
}

// SFPReading holds the optical telemetry of one transceiver.
type SFPReading struct {
	Interface    string   `json:"interface"`
	LaserStatus  string   `json:"laser_status"`
	RxPowerDBm   *float64 `json:"rx_power_dbm"`
	TxPowerDBm   *float64 `json:"tx_power_dbm"`
	TemperatureC *float64 `json:"temperature_c"`
	VoltageV     *float64 `json:"voltage_v"`
	Vendor       string   `json:"vendor"`
	PartNumber   string   `json:"part_number"`
	SerialNumber string   `json:"serial_number"`
}

// SFPLaneStats extends SFPReading with per-lane power for multi-lane optics.
// The averages only cover lanes that produced a reading.
type SFPLaneStats struct {
	SFPReading

	RxPowerLane0 *float64 `json:"rx_power_lane0"`
	RxPowerLane1 *float64 `json:"rx_power_lane1"`
	RxPowerLane2 *float64 `json:"rx_power_lane2"`
	RxPowerLane3 *float64 `json:"rx_power_lane3"`
	TxPowerLane0 *float64 `json:"tx_power_lane0"`
	TxPowerLane1 *float64 `json:"tx_power_lane1"`
	TxPowerLane2 *float64 `json:"tx_power_lane2"`
	TxPowerLane3 *float64 `json:"tx_power_lane3"`
	RxPowerAvg   *float64 `json:"rx_power_avg"`
	TxPowerAvg   *float64 `json:"tx_power_avg"`
}

// RxLanes returns pointers to the rx lane fields in lane order.
func (s *SFPLaneStats) RxLanes() [4]**float64 {
	return [4]**float64{&s.RxPowerLane0, &s.RxPowerLane1, &s.RxPowerLane2, &s.RxPowerLane3}
}

// TxLanes returns pointers to the tx lane fields in lane order.
func (s *SFPLaneStats) TxLanes() [4]**float64 {
	return [4]**float64{&s.TxPowerLane0, &s.TxPowerLane1, &s.TxPowerLane2, &s.TxPowerLane3}
}
