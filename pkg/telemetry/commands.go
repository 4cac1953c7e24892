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

package telemetry

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/carverauto/routerwatch/pkg/models"
)

// CommandKind names a telemetry command independent of vendor syntax.
type CommandKind string

const (
	KindOSPFNeighbors CommandKind = "ospf_neighbors"
	KindBGPSummary    CommandKind = "bgp_summary"
	KindSFPInfo       CommandKind = "sfp_info"
	KindSFPStats      CommandKind = "sfp_stats"
	KindVersion       CommandKind = "version"
)

// ErrInvalidInterface is returned for interface names that are not safe to
// splice into a CLI command.
var ErrInvalidInterface = errors.New("invalid interface name")

var interfaceNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9/._:-]{0,63}$`)

type dialectCommands struct {
	fixed  map[CommandKind]string
	scoped map[CommandKind]string // format strings taking the interface name
}

var defaultCommands = dialectCommands{
	fixed: map[CommandKind]string{
		KindOSPFNeighbors: "show ip ospf neighbor",
		KindBGPSummary:    "show ip bgp summary",
		KindSFPInfo:       "show interfaces transceiver detail",
		KindSFPStats:      "show interfaces transceiver statistics",
		KindVersion:       "show version",
	},
	scoped: map[CommandKind]string{
		KindSFPInfo:  "show interfaces %s transceiver detail",
		KindSFPStats: "show interfaces %s transceiver statistics",
	},
}

// overrides replace individual entries of defaultCommands.
var overrides = map[models.CommandDialect]dialectCommands{
	models.DialectNXOS: {
		fixed: map[CommandKind]string{
			KindOSPFNeighbors: "show ip ospf neighbors",
			KindBGPSummary:    "show bgp all summary",
			KindSFPInfo:       "show interface transceiver details",
			KindSFPStats:      "show interface transceiver details",
		},
		scoped: map[CommandKind]string{
			KindSFPInfo:  "show interface %s transceiver details",
			KindSFPStats: "show interface %s transceiver details",
		},
	},
	models.DialectIOSXR: {
		fixed: map[CommandKind]string{
			KindOSPFNeighbors: "show ospf neighbor",
			KindBGPSummary:    "show bgp summary",
		},
		scoped: map[CommandKind]string{
			KindSFPInfo:  "show controllers %s phy",
			KindSFPStats: "show controllers %s phy",
		},
	},
	models.DialectEOS: {
		fixed: map[CommandKind]string{
			KindSFPStats: "show interfaces transceiver dom",
		},
		scoped: map[CommandKind]string{
			KindSFPInfo:  "show interfaces %s transceiver detail",
			KindSFPStats: "show interfaces %s transceiver dom",
		},
	},
}

// Command returns the CLI command for kind in the given dialect. A
// non-empty iface scopes transceiver commands to that interface.
func Command(dialect models.CommandDialect, kind CommandKind, iface string) (string, error) {
	if iface != "" {
		if !interfaceNameRe.MatchString(iface) {
			return "", fmt.Errorf("%w: %q", ErrInvalidInterface, iface)
		}

		if format, ok := lookup(dialect, kind, true); ok {
			return fmt.Sprintf(format, iface), nil
		}
	}

	if cmd, ok := lookup(dialect, kind, false); ok {
		return cmd, nil
	}

	return "", fmt.Errorf("no command for %s", kind)
}

func lookup(dialect models.CommandDialect, kind CommandKind, scoped bool) (string, bool) {
	pick := func(dc dialectCommands) map[CommandKind]string {
		if scoped {
			return dc.scoped
		}

		return dc.fixed
	}

	if o, ok := overrides[dialect]; ok {
		if cmd, ok := pick(o)[kind]; ok {
			return cmd, true
		}
	}

	cmd, ok := pick(defaultCommands)[kind]

	return cmd, ok
}
