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
	"strings"

	"github.com/carverauto/routerwatch/pkg/models"
)

const minOSPFNeighborFields = 6

var ospfRules = []lineRule[models.OSPFNeighborTable]{
	{
		name: "header",
		match: func(line string, _ []string) bool {
			return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "neighbor id")
		},
	},
	{
		name: "neighbor",
		match: func(_ string, fields []string) bool {
			return startsWithIPv4(fields) && len(joinDetachedState(fields)) >= minOSPFNeighborFields
		},
		apply: func(rec *models.OSPFNeighborTable, _ string, fields []string) {
			rec.Neighbors = append(rec.Neighbors, ospfNeighborFromFields(joinDetachedState(fields)))
		},
	},
}

// ParseOSPFNeighbors parses "show ip ospf neighbor" style output. Rows are
// identified by a dotted IPv4 neighbor id followed by priority, state, dead
// time, address and interface; an area id and BFD status may trail.
func ParseOSPFNeighbors(text string) models.OSPFNeighborTable {
	table := models.OSPFNeighborTable{Neighbors: []models.OSPFNeighbor{}}

	applyRules(text, &table, ospfRules)

	table.NeighborCount = len(table.Neighbors)

	return table
}

func ospfNeighborFromFields(fields []string) models.OSPFNeighbor {
	n := models.OSPFNeighbor{
		NeighborID: fields[0],
		Priority:   parseIntPtr(fields[1]),
		State:      fields[2],
		DeadTime:   fields[3],
		Address:    fields[4],
		Interface:  fields[5],
		AreaID:     models.DefaultOSPFArea,
		BFDStatus:  models.DefaultBFDStatus,
	}

	if len(fields) > 6 {
		n.AreaID = fields[6]
	}

	if len(fields) > 7 {
		n.BFDStatus = fields[7]
	}

	return n
}

// joinDetachedState folds the "FULL/  -" form printed on point-to-point
// links back into a single state token.
func joinDetachedState(fields []string) []string {
	if len(fields) < 4 || !strings.HasSuffix(fields[2], "/") || fields[3] != "-" {
		return fields
	}

	out := make([]string, 0, len(fields)-1)
	out = append(out, fields[0], fields[1], fields[2]+fields[3])

	return append(out, fields[4:]...)
}
