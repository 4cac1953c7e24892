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

// Package parsers turns vendor CLI output into telemetry records.
//
// Every parser is total: any input, including empty or garbled text, yields a
// record. Input is handled one line at a time. Blank and separator lines are
// dropped, each remaining line is offered to an ordered table of rules, the
// first matching rule consumes it, and lines no rule matches are skipped.
// Numeric fields that could not be read stay nil.
package parsers

import (
	"net/netip"
	"strconv"
	"strings"
)

// lineRule is one entry of a parser's rule table.
type lineRule[T any] struct {
	name  string
	match func(line string, fields []string) bool
	apply func(rec *T, line string, fields []string)
}

// applyRules feeds every content line of text to the first matching rule.
func applyRules[T any](text string, rec *T, rules []lineRule[T]) {
	for _, line := range contentLines(text) {
		applyLine(rec, line, rules)
	}
}

func applyLine[T any](rec *T, line string, rules []lineRule[T]) {
	// a rule that trips over a malformed line loses only that line
	defer func() { _ = recover() }()

	fields := tokens(line)

	for i := range rules {
		if !rules[i].match(line, fields) {
			continue
		}

		if rules[i].apply != nil {
			rules[i].apply(rec, line, fields)
		}

		return
	}
}

// contentLines splits text into lines, dropping blank and separator lines.
func contentLines(text string) []string {
	raw := splitLines(text)
	out := make([]string, 0, len(raw))

	for _, line := range raw {
		if isBlank(line) || isSeparator(line) {
			continue
		}

		out = append(out, line)
	}

	return out
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	return strings.Split(text, "\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// isSeparator reports lines drawn only from rule characters, such as
// "-----  ------" under a table header.
func isSeparator(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}

	for _, r := range trimmed {
		switch r {
		case '-', '=', '*', '+', '_', ' ', '\t':
		default:
			return false
		}
	}

	return true
}

func tokens(line string) []string {
	return strings.Fields(line)
}

// isIPv4 reports whether s is a dotted-quad IPv4 address.
func isIPv4(s string) bool {
	addr, err := netip.ParseAddr(s)

	return err == nil && addr.Is4()
}

func startsWithIPv4(fields []string) bool {
	return len(fields) > 0 && isIPv4(fields[0])
}

func parseIntPtr(s string) *int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}

	return &v
}

func parseFloatPtr(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	return &v
}

// mean averages the non-nil values, returning nil when there are none.
func mean(values ...*float64) *float64 {
	var (
		sum float64
		n   int
	)

	for _, v := range values {
		if v == nil {
			continue
		}

		sum += *v
		n++
	}

	if n == 0 {
		return nil
	}

	avg := sum / float64(n)

	return &avg
}
