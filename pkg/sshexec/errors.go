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

package sshexec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConnectionFailure     = errors.New("connection failure")
	ErrAuthenticationFailure = errors.New("authentication failure")
	ErrCommandFailure        = errors.New("command failure")
	ErrTimeout               = errors.New("timeout")

	errNoAddress = errors.New("device has no address")
)

// NoExitStatus marks a CommandError raised from CLI error text rather than
// a non-zero exit status.
const NoExitStatus = -1

// cliErrorMarkers are printed by network operating systems that still exit 0
// after rejecting a command.
var cliErrorMarkers = []string{
	"% Invalid input",
	"% Incomplete command",
	"% Ambiguous command",
	"% Unknown command",
	"syntax error",
}

// CommandError is returned when the remote side rejected the command.
// It matches ErrCommandFailure with errors.Is.
type CommandError struct {
	Command    string
	ExitStatus int
	Output     string
}

func (e *CommandError) Error() string {
	if e.ExitStatus != NoExitStatus {
		return fmt.Sprintf("%v: %q exited with status %d", ErrCommandFailure, e.Command, e.ExitStatus)
	}

	return fmt.Sprintf("%v: %q: %s", ErrCommandFailure, e.Command, firstCLIError(e.Output))
}

func (*CommandError) Unwrap() error {
	return ErrCommandFailure
}

// firstCLIError returns the output line carrying a CLI error marker.
func firstCLIError(output string) string {
	for _, line := range strings.Split(output, "\n") {
		for _, marker := range cliErrorMarkers {
			if strings.Contains(line, marker) {
				return strings.TrimSpace(line)
			}
		}
	}

	return ""
}

func hasCLIError(output string) bool {
	return firstCLIError(output) != ""
}

// Kind names the error class for API responses and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrAuthenticationFailure):
		return "authentication"
	case errors.Is(err, ErrCommandFailure):
		return "command"
	case errors.Is(err, ErrConnectionFailure):
		return "connection"
	default:
		return "unknown"
	}
}
