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
	"time"

	"github.com/carverauto/routerwatch/pkg/models"
	"github.com/gosnmp/gosnmp"
)

// SysUpTimeOID is polled by SNMPPinger.
const SysUpTimeOID = ".1.3.6.1.2.1.1.3.0"

// SNMPPinger uses an SNMPv2c GET of sysUpTime.0 as the echo. Any response,
// including an SNMP error status, proves the agent is reachable.
type SNMPPinger struct {
	count     int
	community string
	port      uint16
}

var _ Pinger = (*SNMPPinger)(nil)

func NewSNMPPinger(count int, community string, port int) *SNMPPinger {
	if count <= 0 {
		count = models.DefaultProbeCount
	}

	if community == "" {
		community = models.DefaultSNMPCommunity
	}

	if port <= 0 || port > 65535 {
		port = models.DefaultSNMPPort
	}

	return &SNMPPinger{
		count:     count,
		community: community,
		port:      uint16(port),
	}
}

func (p *SNMPPinger) Ping(ctx context.Context, host string) (Stats, error) {
	var (
		stats   Stats
		lastErr error
	)

	for i := 0; i < p.count; i++ {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		stats.Sent++

		rtt, err := p.get(ctx, host, attemptWindow(ctx, p.count-i))
		if err != nil {
			lastErr = err
			continue
		}

		stats.record(rtt)
	}

	if stats.Received == 0 {
		if lastErr == nil {
			lastErr = errNoReply
		}

		return stats, lastErr
	}

	return stats, nil
}

func (p *SNMPPinger) get(ctx context.Context, host string, window time.Duration) (time.Duration, error) {
	client := &gosnmp.GoSNMP{
		Target:    host,
		Port:      p.port,
		Community: p.community,
		Version:   gosnmp.Version2c,
		Timeout:   window,
		Retries:   0,
		MaxOids:   gosnmp.MaxOids,
		Context:   ctx,
	}

	if err := client.Connect(); err != nil {
		return 0, fmt.Errorf("snmp connect %s: %w", host, err)
	}
	defer func() { _ = client.Conn.Close() }()

	start := time.Now()

	if _, err := client.Get([]string{SysUpTimeOID}); err != nil {
		return 0, fmt.Errorf("snmp get %s: %w", host, err)
	}

	return time.Since(start), nil
}
