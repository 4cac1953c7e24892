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
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/carverauto/routerwatch/pkg/logger"
	"github.com/carverauto/routerwatch/pkg/models"
)

const defaultTCPPort = 22

// TCPPinger treats a completed TCP handshake as a reply. Hosts given
// without a port are dialed on the default port.
type TCPPinger struct {
	count       int
	defaultPort int
	logger      logger.Logger
}

var _ Pinger = (*TCPPinger)(nil)

func NewTCPPinger(count, defaultPort int, log logger.Logger) *TCPPinger {
	if count <= 0 {
		count = models.DefaultProbeCount
	}

	if defaultPort <= 0 {
		defaultPort = defaultTCPPort
	}

	return &TCPPinger{
		count:       count,
		defaultPort: defaultPort,
		logger:      logger.Component(log, "tcp-pinger"),
	}
}

func (p *TCPPinger) Ping(ctx context.Context, host string) (Stats, error) {
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, strconv.Itoa(p.defaultPort))
	}

	var (
		stats   Stats
		lastErr error
	)

	for i := 0; i < p.count; i++ {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		stats.Sent++

		rtt, err := p.checkPort(ctx, addr, attemptWindow(ctx, p.count-i))
		if err != nil {
			lastErr = err
			continue
		}

		stats.record(rtt)
	}

	if stats.Received == 0 && lastErr != nil {
		return stats, lastErr
	}

	return stats, nil
}

func (p *TCPPinger) checkPort(ctx context.Context, addr string, window time.Duration) (time.Duration, error) {
	probeCtx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	start := time.Now()

	var dialer net.Dialer

	conn, err := dialer.DialContext(probeCtx, "tcp", addr)
	if err != nil {
		if probeCtx.Err() != nil {
			return 0, fmt.Errorf("connect %s: %w", addr, probeCtx.Err())
		}

		return 0, fmt.Errorf("connect %s: %w", addr, err)
	}

	rtt := time.Since(start)

	if err := conn.Close(); err != nil {
		p.logger.Debug().Err(err).Str("addr", addr).Msg("failed to close connection")
	}

	return rtt, nil
}
