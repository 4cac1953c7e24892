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

package parsers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carverauto/routerwatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, name string) string {
	t.Helper()

	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	return string(b)
}

func TestParseOSPFNeighborsEmpty(t *testing.T) {
	table := ParseOSPFNeighbors("")

	assert.Equal(t, 0, table.NeighborCount)
	require.NotNil(t, table.Neighbors)
	assert.Empty(t, table.Neighbors)
}

func TestParseOSPFNeighborsSingleLine(t *testing.T) {
	table := ParseOSPFNeighbors("10.1.1.1  1  FULL/DR  00:00:35  10.1.1.1  Gi0/0  0.0.0.0  Enabled")

	require.Equal(t, 1, table.NeighborCount)

	n := table.Neighbors[0]
	assert.Equal(t, "10.1.1.1", n.NeighborID)
	require.NotNil(t, n.Priority)
	assert.Equal(t, 1, *n.Priority)
	assert.Equal(t, "FULL/DR", n.State)
	assert.Equal(t, "00:00:35", n.DeadTime)
	assert.Equal(t, "Gi0/0", n.Interface)
	assert.Equal(t, "0.0.0.0", n.AreaID)
	assert.Equal(t, "Enabled", n.BFDStatus)
}

func TestParseOSPFNeighborsFixture(t *testing.T) {
	table := ParseOSPFNeighbors(fixture(t, "ospf_ios.txt"))

	require.Equal(t, 3, table.NeighborCount)
	require.Len(t, table.Neighbors, 3)

	p2p := table.Neighbors[1]
	assert.Equal(t, "10.2.2.2", p2p.NeighborID)
	require.NotNil(t, p2p.Priority)
	assert.Equal(t, 0, *p2p.Priority)
	assert.Equal(t, "FULL/-", p2p.State)
	assert.Equal(t, "192.168.12.2", p2p.Address)
	assert.Equal(t, "GigabitEthernet0/1", p2p.Interface)
	assert.Equal(t, models.DefaultOSPFArea, p2p.AreaID)
	assert.Equal(t, models.DefaultBFDStatus, p2p.BFDStatus)

	assert.Equal(t, "2WAY/DROTHER", table.Neighbors[2].State)
	assert.Equal(t, "0.0.0.1", table.Neighbors[2].AreaID)
	assert.Equal(t, models.DefaultBFDStatus, table.Neighbors[2].BFDStatus)
}

func TestParseOSPFNeighborsSkipsGarbage(t *testing.T) {
	table := ParseOSPFNeighbors(fixture(t, "ospf_garbled.txt"))

	require.Equal(t, 1, table.NeighborCount)
	assert.Equal(t, "10.9.9.9", table.Neighbors[0].NeighborID)
	assert.Nil(t, table.Neighbors[0].Priority)
	assert.Equal(t, "Vlan10", table.Neighbors[0].Interface)
}

func TestParseBGPSummary(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		routerID    string
		localAS     *int64
		configured  int
		established int
		forwarding  string
	}{
		{
			name:        "ios fixture",
			input:       fixture(t, "bgp_ios.txt"),
			routerID:    "10.0.0.1",
			localAS:     int64Ptr(65000),
			configured:  3,
			established: 2,
			forwarding:  models.ForwardingActive,
		},
		{
			name:        "asdot on separate line",
			input:       fixture(t, "bgp_xr_asdot.txt"),
			routerID:    "172.16.0.1",
			localAS:     int64Ptr(65546),
			configured:  1,
			established: 0,
			forwarding:  models.ForwardingInactive,
		},
		{
			name:       "empty",
			input:      "",
			forwarding: models.ForwardingInactive,
		},
		{
			name:       "identity without peers",
			input:      "BGP router identifier 10.255.0.1, local AS number 4200000001",
			routerID:   "10.255.0.1",
			localAS:    int64Ptr(4200000001),
			forwarding: models.ForwardingInactive,
		},
		{
			name:       "invalid router id and asdot overflow",
			input:      "BGP router identifier 300.1.1.1, local AS number 70000.1",
			forwarding: models.ForwardingInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseBGPSummary(tt.input)

			assert.Equal(t, tt.routerID, got.RouterID)
			assert.Equal(t, tt.localAS, got.LocalAS)
			assert.Equal(t, tt.configured, got.ConfiguredCount)
			assert.Equal(t, tt.established, got.EstablishedCount)
			assert.Equal(t, tt.forwarding, got.ForwardingState)
			assert.LessOrEqual(t, got.EstablishedCount, got.ConfiguredCount)
		})
	}
}

func TestParseSFPInfoFixture(t *testing.T) {
	info := ParseSFPInfo(fixture(t, "sfp_nxos_detail.txt"))

	assert.Equal(t, "Ethernet1/1", info.Interface)
	assert.Equal(t, "On", info.LaserStatus)
	assert.Equal(t, "CISCO-FINISAR", info.Vendor)
	assert.Equal(t, "FTLX8571D3BCL-C2", info.PartNumber)
	assert.Equal(t, "FNS17221234", info.SerialNumber)

	require.NotNil(t, info.TemperatureC)
	assert.InDelta(t, 35.12, *info.TemperatureC, 1e-9)
	require.NotNil(t, info.VoltageV)
	assert.InDelta(t, 3.29, *info.VoltageV, 1e-9)
	require.NotNil(t, info.TxPowerDBm)
	assert.InDelta(t, -2.41, *info.TxPowerDBm, 1e-9)
	require.NotNil(t, info.RxPowerDBm)
	assert.InDelta(t, -2.83, *info.RxPowerDBm, 1e-9)
}

func TestParseSFPInfoMissingValuesStayNil(t *testing.T) {
	info := ParseSFPInfo("Rx Power   N/A\nTemperature  (Celsius)\nTx Power  0.00 dBm\n")

	assert.Nil(t, info.RxPowerDBm)
	assert.Nil(t, info.TemperatureC)
	assert.Nil(t, info.VoltageV)
	require.NotNil(t, info.TxPowerDBm)
	assert.Zero(t, *info.TxPowerDBm)
}

func TestParseSFPStatsLaneRows(t *testing.T) {
	stats := ParseSFPStats(fixture(t, "sfp_stats_lanes.txt"))

	assert.Equal(t, "HundredGigE0/0/0/1", stats.Interface)
	assert.Equal(t, "FINISAR CORP.", stats.Vendor)
	assert.Equal(t, "FTLC1151RDPL", stats.PartNumber)
	assert.Equal(t, "X7YA1234", stats.SerialNumber)
	require.NotNil(t, stats.TemperatureC)
	assert.InDelta(t, 41.5, *stats.TemperatureC, 1e-9)

	require.NotNil(t, stats.RxPowerLane0)
	require.NotNil(t, stats.RxPowerLane2)
	assert.Nil(t, stats.RxPowerLane1)
	assert.Nil(t, stats.RxPowerLane3)
	assert.Nil(t, stats.TxPowerLane1)

	require.NotNil(t, stats.RxPowerAvg)
	assert.InDelta(t, (-1.20+-1.80)/2, *stats.RxPowerAvg, 1e-9)
	require.NotNil(t, stats.TxPowerAvg)
	assert.InDelta(t, 0.60, *stats.TxPowerAvg, 1e-9)
}

func TestParseSFPStatsLaneSections(t *testing.T) {
	stats := ParseSFPStats(fixture(t, "sfp_stats_sections.txt"))

	assert.Equal(t, "Eth1/49", stats.Interface)
	assert.Nil(t, stats.RxPowerDBm)
	assert.Nil(t, stats.TxPowerDBm)

	require.NotNil(t, stats.TxPowerLane1)
	assert.InDelta(t, -1.09, *stats.TxPowerLane1, 1e-9)
	assert.Nil(t, stats.RxPowerLane1)
	assert.Nil(t, stats.RxPowerLane2)

	require.NotNil(t, stats.RxPowerAvg)
	assert.InDelta(t, -2.0, *stats.RxPowerAvg, 1e-9)
	require.NotNil(t, stats.TxPowerAvg)
	assert.InDelta(t, -1.0, *stats.TxPowerAvg, 1e-9)
}

func TestParseSFPStatsLaneRowColumnsDoNotBleed(t *testing.T) {
	stats := ParseSFPStats("Lane 0  Tx power: N/A  Rx power: -1.00 dBm")

	assert.Nil(t, stats.TxPowerLane0)
	require.NotNil(t, stats.RxPowerLane0)
	assert.InDelta(t, -1.0, *stats.RxPowerLane0, 1e-9)
	assert.Nil(t, stats.TxPowerAvg)
}

func TestParseSFPStatsNoLanes(t *testing.T) {
	stats := ParseSFPStats("")

	assert.Nil(t, stats.RxPowerAvg)
	assert.Nil(t, stats.TxPowerAvg)
	assert.Empty(t, stats.Interface)
}

func TestParseSFPInfoAllSplitsInterfaces(t *testing.T) {
	readings := ParseSFPInfoAll(fixture(t, "sfp_nxos_detail_all.txt"))
	require.Len(t, readings, 3)

	first, second, absent := readings[0], readings[1], readings[2]

	assert.Equal(t, "Ethernet1/1", first.Interface)
	assert.Equal(t, "CISCO-A", first.Vendor)
	assert.Equal(t, "AAA111", first.SerialNumber)
	assert.Equal(t, "On", first.LaserStatus)
	require.NotNil(t, first.RxPowerDBm)
	assert.InDelta(t, -2.83, *first.RxPowerDBm, 1e-9)

	assert.Equal(t, "Ethernet1/2", second.Interface)
	assert.Equal(t, "CISCO-B", second.Vendor)
	assert.Equal(t, "SFP-10G-LR", second.PartNumber)
	assert.Equal(t, "BBB222", second.SerialNumber)
	assert.Equal(t, "Off", second.LaserStatus)
	require.NotNil(t, second.RxPowerDBm)
	assert.InDelta(t, -7.15, *second.RxPowerDBm, 1e-9)
	require.NotNil(t, second.TemperatureC)
	assert.InDelta(t, 29.5, *second.TemperatureC, 1e-9)

	assert.Equal(t, "Ethernet1/3", absent.Interface)
	assert.Nil(t, absent.RxPowerDBm)
	assert.Empty(t, absent.Vendor)
}

func TestParseSFPInfoAllWithoutHeaders(t *testing.T) {
	assert.Empty(t, ParseSFPInfoAll(""))
	assert.NotNil(t, ParseSFPInfoAll(""))

	readings := ParseSFPInfoAll("Temperature: 30.0 C\n")
	require.Len(t, readings, 1)
	assert.Empty(t, readings[0].Interface)
	require.NotNil(t, readings[0].TemperatureC)
	assert.InDelta(t, 30.0, *readings[0].TemperatureC, 1e-9)
}

func TestParseSFPInfoAllDropsPreamble(t *testing.T) {
	readings := ParseSFPInfoAll("Transceiver diagnostics\nTemperature: 99.0 C\nInterface: Gi0/1\nTemperature: 31.0 C\n")
	require.Len(t, readings, 1)
	assert.Equal(t, "Gi0/1", readings[0].Interface)
	require.NotNil(t, readings[0].TemperatureC)
	assert.InDelta(t, 31.0, *readings[0].TemperatureC, 1e-9)
}

func TestParseSFPStatsAllSplitsInterfaces(t *testing.T) {
	stats := ParseSFPStatsAll(fixture(t, "sfp_stats_all.txt"))
	require.Len(t, stats, 2)

	assert.Equal(t, "Eth1/49", stats[0].Interface)
	assert.Equal(t, "FINISAR CORP.", stats[0].Vendor)
	require.NotNil(t, stats[0].RxPowerAvg)
	assert.InDelta(t, -2.0, *stats[0].RxPowerAvg, 1e-9)

	assert.Equal(t, "Eth1/50", stats[1].Interface)
	assert.Equal(t, "CISCO-INNOLIGHT", stats[1].Vendor)
	require.NotNil(t, stats[1].RxPowerLane0)
	assert.InDelta(t, -3.0, *stats[1].RxPowerLane0, 1e-9)
	assert.Nil(t, stats[1].RxPowerLane1)
	require.NotNil(t, stats[1].RxPowerAvg)
	assert.InDelta(t, -3.0, *stats[1].RxPowerAvg, 1e-9)
}

func TestParseSFPVendorName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"oui before name", "Vendor OUI: 00.90.65\nVendor Name: FINISAR CORP.\n", "FINISAR CORP."},
		{"revision before name", "Vendor Rev: A\nVendor Name: FINISAR CORP.\n", "FINISAR CORP."},
		{"bare vendor with colon", "Vendor: Arista Networks\n", "Arista Networks"},
		{"vendor is", "vendor is CISCO-AVAGO\n", "CISCO-AVAGO"},
		{"name is", "name is CISCO-FINISAR\n", "CISCO-FINISAR"},
		{"manufacturer", "Manufacturer: Innolight\n", "Innolight"},
		{"oui only", "Vendor OUI: 00.90.65\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSFPInfo(tt.input).Vendor)
		})
	}
}

func TestParseSFPStatsAggregateAfterLaneSections(t *testing.T) {
	input := "Lane 0\n  Rx Power -1.0 dBm\nLane 1\n  Rx Power -2.0 dBm\nAggregate\n  Rx Power -5.0 dBm\n  Tx Power 0.5 dBm\n"

	stats := ParseSFPStats(input)

	require.NotNil(t, stats.RxPowerDBm)
	assert.InDelta(t, -5.0, *stats.RxPowerDBm, 1e-9)
	require.NotNil(t, stats.TxPowerDBm)
	assert.InDelta(t, 0.5, *stats.TxPowerDBm, 1e-9)
	require.NotNil(t, stats.RxPowerLane1)
	assert.InDelta(t, -2.0, *stats.RxPowerLane1, 1e-9)
	assert.Nil(t, stats.TxPowerLane1)
}

func TestParsersAreTotal(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"----\n====\n",
		"\x00\xff\xfe garbage \x01",
		"10.0.0.1",
		"Lane",
		"Lane 9 Rx power: 1 dBm",
		"router identifier",
		"local AS number .",
		strings.Repeat("10.0.0.1 ", 200),
		"Interface:\nPort\n",
		"Temperature -\nVoltage V\nRx power dBm",
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			table := ParseOSPFNeighbors(in)
			assert.Equal(t, len(table.Neighbors), table.NeighborCount)

			bgp := ParseBGPSummary(in)
			assert.LessOrEqual(t, bgp.EstablishedCount, bgp.ConfiguredCount)

			_ = ParseSFPInfo(in)
			_ = ParseSFPStats(in)
			_ = ParseSFPInfoAll(in)
			_ = ParseSFPStatsAll(in)
		})
	}
}

func TestTokenizerHelpers(t *testing.T) {
	assert.True(t, isSeparator("-------  ----- ==="))
	assert.False(t, isSeparator("--"))
	assert.False(t, isSeparator("--- a ---"))
	assert.Equal(t, []string{"a", "b"}, contentLines("a\r\n\r\n-----\r\nb"))
	assert.True(t, isIPv4("192.0.2.1"))
	assert.False(t, isIPv4("192.0.2"))
	assert.False(t, isIPv4("2001:db8::1"))
	assert.Nil(t, mean(nil, nil))
}

func int64Ptr(v int64) *int64 {
	return &v
}
