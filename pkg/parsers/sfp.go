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

const laneCount = 4

const numberPattern = `([-+]?\d+(?:\.\d+)?)`

var (
	dbmRe     = regexp.MustCompile(`(?i)` + numberPattern + `\s*dBm\b`)
	celsiusRe = regexp.MustCompile(`(?i)` + numberPattern + `\s*(?:°\s*)?(?:C|Celsius)\b`)
	voltRe    = regexp.MustCompile(`(?i)` + numberPattern + `\s*(?:V|Volts?)\b`)

	interfaceHeaderRe = regexp.MustCompile(`(?i)^\s*(?:interface|port)\s*(?:name)?\s*(?:is|:|=)?\s*([A-Za-z][\w\-/.:]*\d)\s*$`)
	bareInterfaceRe   = regexp.MustCompile(`^([A-Za-z][A-Za-z\-]*\d+(?:/\d+)*(?:\.\d+)?)$`)
	laneRe            = regexp.MustCompile(`(?i)\blane(?:\s+number)?\s*[:#]?\s*([0-3])\b`)

	serialKeyRe = regexp.MustCompile(`(?i)\b(?:serial\s*(?:number|no\.?|num)?|sn)\b`)
	partKeyRe   = regexp.MustCompile(`(?i)\b(?:part\s*(?:number|no\.?|num)|product\s*id|pid)\b`)
	vendorKeyRe = regexp.MustCompile(`(?i)\b(?:vendor\s*name\b|manufacturer\b|name\s+is\b|vendor\s*(?:[:=]|is\b))`)
	laserRe     = regexp.MustCompile(`(?i)\blaser\s*(?:status|state|output)?\s*(?:is|:|=)\s*([A-Za-z]+)`)
	rxKeyRe     = regexp.MustCompile(`(?i)\b(?:rx|receive|input)\b`)
	txKeyRe     = regexp.MustCompile(`(?i)\b(?:tx|transmit|output)\b`)
	powerKeyRe  = regexp.MustCompile(`(?i)\bpower\b`)
	tempKeyRe   = regexp.MustCompile(`(?i)\btemp(?:erature)?\b`)
	voltKeyRe   = regexp.MustCompile(`(?i)\b(?:voltage|vcc)\b`)
)

// sfpState carries the record being built plus the lane section the scanner
// is currently inside, or -1 outside any lane section.
type sfpState struct {
	stats models.SFPLaneStats
	lane  int
}

var sfpRules = []lineRule[sfpState]{
	{
		name: "interface",
		match: isInterfaceHeader,
		apply: func(rec *sfpState, line string, fields []string) {
			if rec.stats.Interface != "" {
				return
			}

			if m := interfaceHeaderRe.FindStringSubmatch(line); m != nil {
				rec.stats.Interface = m[1]
				return
			}

			rec.stats.Interface = fields[0]
		},
	},
	{
		name: "lane",
		match: func(line string, _ []string) bool {
			return laneRe.MatchString(line)
		},
		apply: applyLaneLine,
	},
	{
		name: "serial",
		match: func(line string, _ []string) bool {
			return serialKeyRe.MatchString(line)
		},
		apply: func(rec *sfpState, line string, _ []string) {
			setText(&rec.stats.SerialNumber, firstToken(valueAfter(serialKeyRe, line)))
		},
	},
	{
		name: "part",
		match: func(line string, _ []string) bool {
			return partKeyRe.MatchString(line)
		},
		apply: func(rec *sfpState, line string, _ []string) {
			setText(&rec.stats.PartNumber, firstToken(valueAfter(partKeyRe, line)))
		},
	},
	{
		name: "vendor",
		match: func(line string, _ []string) bool {
			return vendorKeyRe.MatchString(line)
		},
		apply: func(rec *sfpState, line string, _ []string) {
			setText(&rec.stats.Vendor, valueAfter(vendorKeyRe, line))
		},
	},
	{
		name: "laser",
		match: func(line string, _ []string) bool {
			return laserRe.MatchString(line)
		},
		apply: func(rec *sfpState, line string, _ []string) {
			if m := laserRe.FindStringSubmatch(line); m != nil {
				setText(&rec.stats.LaserStatus, m[1])
			}
		},
	},
	{
		name: "rx power",
		match: func(line string, _ []string) bool {
			return rxKeyRe.MatchString(line) && powerKeyRe.MatchString(line)
		},
		apply: func(rec *sfpState, line string, _ []string) {
			rec.setPower(true, unitValueAfter(rxKeyRe, dbmRe, line))
		},
	},
	{
		name: "tx power",
		match: func(line string, _ []string) bool {
			return txKeyRe.MatchString(line) && powerKeyRe.MatchString(line)
		},
		apply: func(rec *sfpState, line string, _ []string) {
			rec.setPower(false, unitValueAfter(txKeyRe, dbmRe, line))
		},
	},
	{
		name: "temperature",
		match: func(line string, _ []string) bool {
			return tempKeyRe.MatchString(line)
		},
		apply: func(rec *sfpState, line string, _ []string) {
			setNumber(&rec.stats.TemperatureC, unitValueAfter(tempKeyRe, celsiusRe, line))
		},
	},
	{
		name: "voltage",
		match: func(line string, _ []string) bool {
			return voltKeyRe.MatchString(line)
		},
		apply: func(rec *sfpState, line string, _ []string) {
			setNumber(&rec.stats.VoltageV, unitValueAfter(voltKeyRe, voltRe, line))
		},
	},
}

// ParseSFPInfo parses "show interfaces transceiver detail" style output for
// a single interface. Use ParseSFPInfoAll for whole-device output.
func ParseSFPInfo(text string) models.SFPReading {
	return scanSFP(contentLines(text)).SFPReading
}

// ParseSFPInfoAll parses whole-device transceiver detail output into one
// reading per interface block, in output order.
func ParseSFPInfoAll(text string) []models.SFPReading {
	blocks := interfaceBlocks(contentLines(text))
	out := make([]models.SFPReading, 0, len(blocks))

	for _, block := range blocks {
		out = append(out, scanSFP(block).SFPReading)
	}

	return out
}

// ParseSFPStats parses "show interfaces transceiver statistics" style output,
// including per-lane power for multi-lane optics. Lanes are announced by
// "Lane 0".."Lane 3", either as a row carrying its own readings or as a
// section header for the lines that follow.
func ParseSFPStats(text string) models.SFPLaneStats {
	return laneAverages(scanSFP(contentLines(text)))
}

// ParseSFPStatsAll parses whole-device transceiver statistics into one
// record per interface block, in output order.
func ParseSFPStatsAll(text string) []models.SFPLaneStats {
	blocks := interfaceBlocks(contentLines(text))
	out := make([]models.SFPLaneStats, 0, len(blocks))

	for _, block := range blocks {
		out = append(out, laneAverages(scanSFP(block)))
	}

	return out
}

func laneAverages(stats models.SFPLaneStats) models.SFPLaneStats {
	rx := stats.RxLanes()
	tx := stats.TxLanes()
	stats.RxPowerAvg = mean(*rx[0], *rx[1], *rx[2], *rx[3])
	stats.TxPowerAvg = mean(*tx[0], *tx[1], *tx[2], *tx[3])

	return stats
}

// scanSFP runs the rule table over lines. A lane section ends at the first
// unindented line that is not itself a lane header.
func scanSFP(lines []string) models.SFPLaneStats {
	state := sfpState{lane: -1}

	for _, line := range lines {
		if state.lane >= 0 && !isIndented(line) && !laneRe.MatchString(line) {
			state.lane = -1
		}

		applyLine(&state, line, sfpRules)
	}

	return state.stats
}

func isInterfaceHeader(line string, fields []string) bool {
	return interfaceHeaderRe.MatchString(line) || (len(fields) == 1 && bareInterfaceRe.MatchString(fields[0]))
}

func isIndented(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

// interfaceBlocks splits content lines at each interface header. Lines
// ahead of the first header are dropped when any header exists; output
// without headers is a single block. Empty input yields no blocks.
func interfaceBlocks(lines []string) [][]string {
	var (
		blocks  [][]string
		current []string
		started bool
	)

	for _, line := range lines {
		if isInterfaceHeader(line, tokens(line)) {
			if started {
				blocks = append(blocks, current)
			}

			current = []string{line}
			started = true

			continue
		}

		current = append(current, line)
	}

	if len(current) > 0 {
		blocks = append(blocks, current)
	}

	return blocks
}

func applyLaneLine(rec *sfpState, line string, _ []string) {
	m := laneRe.FindStringSubmatchIndex(line)
	if m == nil {
		return
	}

	lane, err := strconv.Atoi(line[m[2]:m[3]])
	if err != nil || lane < 0 || lane >= laneCount {
		return
	}

	rest := line[m[1]:]
	if !rxKeyRe.MatchString(rest) && !txKeyRe.MatchString(rest) {
		// section header, readings follow on later lines
		rec.lane = lane
		return
	}

	rxLanes := rec.stats.RxLanes()
	txLanes := rec.stats.TxLanes()

	setNumber(rxLanes[lane], unitValueAfter(rxKeyRe, dbmRe, segment(rest, rxKeyRe, txKeyRe)))
	setNumber(txLanes[lane], unitValueAfter(txKeyRe, dbmRe, segment(rest, txKeyRe, rxKeyRe)))
}

// segment cuts line at the first match of stop that follows key, so a
// reading is never borrowed from the neighbouring column.
func segment(line string, key, stop *regexp.Regexp) string {
	loc := key.FindStringIndex(line)
	if loc == nil {
		return line
	}

	if end := stop.FindStringIndex(line[loc[1]:]); end != nil {
		return line[:loc[1]+end[0]]
	}

	return line
}

func (s *sfpState) setPower(rx bool, v *float64) {
	if v == nil {
		return
	}

	if s.lane >= 0 {
		lanes := s.stats.TxLanes()
		if rx {
			lanes = s.stats.RxLanes()
		}

		setNumber(lanes[s.lane], v)

		return
	}

	if rx {
		setNumber(&s.stats.RxPowerDBm, v)
	} else {
		setNumber(&s.stats.TxPowerDBm, v)
	}
}

// valueAfter returns the text following the first key match with any
// ":", "=", "is" or "." glue removed.
func valueAfter(key *regexp.Regexp, line string) string {
	loc := key.FindStringIndex(line)
	if loc == nil {
		return ""
	}

	rest := strings.TrimSpace(line[loc[1]:])
	rest = strings.TrimLeft(rest, ".:= \t")

	if lower := strings.ToLower(rest); strings.HasPrefix(lower, "is ") {
		rest = strings.TrimSpace(rest[3:])
	}

	return strings.TrimRight(rest, ", \t")
}

// unitValueAfter extracts the first number carrying the unit matched by unit
// that follows the key.
func unitValueAfter(key, unit *regexp.Regexp, line string) *float64 {
	loc := key.FindStringIndex(line)
	if loc == nil {
		return nil
	}

	m := unit.FindStringSubmatch(line[loc[1]:])
	if m == nil {
		return nil
	}

	return parseFloatPtr(m[1])
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}

	return strings.TrimRight(fields[0], ",;")
}

func setText(dst *string, v string) {
	if *dst == "" && v != "" {
		*dst = v
	}
}

func setNumber(dst **float64, v *float64) {
	if *dst == nil && v != nil {
		*dst = v
	}
}
