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

package ping

import (
	"context"
	"errors"
	"time"
)

var (
	errNoReply        = errors.New("no reply")
	errNoAddress      = errors.New("device has no address")
	errNoDevice       = errors.New("no device")
	errProbePanic     = errors.New("probe panicked")
	errProbeAbandoned = errors.New("probe abandoned at collection deadline")
	errUnknownMethod  = errors.New("unknown probe method")
)

// defaultAttemptWindow bounds one attempt when the context has no deadline.
const defaultAttemptWindow = time.Second

// Stats is the raw outcome of one Ping call.
type Stats struct {
	Sent     int
	Received int
	RTTs     []time.Duration
}

// LossPercent is (sent-received)/sent*100, or 100 when nothing was sent.
func (s *Stats) LossPercent() float64 {
	if s.Sent == 0 {
		return 100
	}

	return float64(s.Sent-s.Received) / float64(s.Sent) * 100
}

// MeanRTT averages the recorded round trips.
func (s *Stats) MeanRTT() (time.Duration, bool) {
	if len(s.RTTs) == 0 {
		return 0, false
	}

	var total time.Duration
	for _, rtt := range s.RTTs {
		total += rtt
	}

	return total / time.Duration(len(s.RTTs)), true
}

func (s *Stats) record(rtt time.Duration) {
	s.Received++
	s.RTTs = append(s.RTTs, rtt)
}

// Pinger checks reachability of a single host. Implementations return the
// statistics gathered so far together with any error that stopped them.
type Pinger interface {
	Ping(ctx context.Context, host string) (Stats, error)
}

// attemptWindow splits the time left before the ctx deadline evenly across
// the remaining attempts.
func attemptWindow(ctx context.Context, remaining int) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return defaultAttemptWindow
	}

	if remaining < 1 {
		remaining = 1
	}

	return time.Until(deadline) / time.Duration(remaining)
}
