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
	"regexp"
	"strconv"
	"strings"

	"github.com/carverauto/routerwatch/pkg/models"
)

const asdotBase = 65536

var (
	routerIDRe = regexp.MustCompile(`(?i)router identifier\s+(\d{1,3}(?:\.\d{1,3}){3})`)
	localASRe  = regexp.MustCompile(`(?i)local AS number\s+(\d+(?:\.\d+)?)`)
)

var bgpRules = []lineRule[models.BGPSummary]{
	{
		name: "identity",
		match: func(line string, _ []string) bool {
			lower := strings.ToLower(line)

			return strings.Contains(lower, "router identifier") || strings.Contains(lower, "local as number")
		},
		apply: func(rec *models.BGPSummary, line string, _ []string) {
			if m := routerIDRe.FindStringSubmatch(line); m != nil && rec.RouterID == "" && isIPv4(m[1]) {
				rec.RouterID = m[1]
			}

			if m := localASRe.FindStringSubmatch(line); m != nil && rec.LocalAS == nil {
				rec.LocalAS = parseASN(m[1])
			}
		},
	},
	{
		name: "peer",
		match: func(_ string, fields []string) bool {
			return startsWithIPv4(fields)
		},
		apply: func(rec *models.BGPSummary, line string, _ []string) {
			rec.ConfiguredCount++

			if strings.Contains(line, models.BGPEstablishedMarker) {
				rec.EstablishedCount++
			}
		},
	},
}

// ParseBGPSummary parses "show ip bgp summary" style output. Every line that
// starts with a dotted IPv4 address is a configured peer; peers whose line
// carries the literal "Established" marker count as established.
func ParseBGPSummary(text string) models.BGPSummary {
	var summary models.BGPSummary

	applyRules(text, &summary, bgpRules)

	summary.ForwardingState = models.ForwardingInactive
	if summary.EstablishedCount > 0 {
		summary.ForwardingState = models.ForwardingActive
	}

	return summary
}

// parseASN accepts asplain ("65000") and asdot ("1.10") notation and returns
// the asplain value.
func parseASN(s string) *int64 {
	high, low, dotted := strings.Cut(s, ".")

	h, err := strconv.ParseInt(high, 10, 64)
	if err != nil {
		return nil
	}

	if !dotted {
		return &h
	}

	l, err := strconv.ParseInt(low, 10, 64)
	if err != nil || h >= asdotBase || l >= asdotBase {
		return nil
	}

	v := h*asdotBase + l

	return &v
}
