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
	"net"
	"testing"
	"time"

	"github.com/carverauto/routerwatch/pkg/logger"
	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAgent answers every GET with sysUpTime until the test ends.
func fakeAgent(t *testing.T) int {
	t.Helper()

	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, 4096)

		for {
			n, peer, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}

			req, err := gosnmp.Default.SnmpDecodePacket(buf[:n])
			if err != nil {
				continue
			}

			req.PDUType = gosnmp.GetResponse
			req.Variables = []gosnmp.SnmpPDU{{
				Name:  SysUpTimeOID,
				Type:  gosnmp.TimeTicks,
				Value: uint32(424242),
			}}

			out, err := req.MarshalMsg()
			if err != nil {
				continue
			}

			_, _ = conn.WriteTo(out, peer)
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr).Port
}

func TestSNMPPinger(t *testing.T) {
	port := fakeAgent(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	stats, err := NewSNMPPinger(2, "public", port).Ping(ctx, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Sent)
	assert.Equal(t, 2, stats.Received)
	assert.Len(t, stats.RTTs, 2)
}

func TestSNMPPingerNoAgent(t *testing.T) {
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)

	port := conn.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, conn.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	stats, err := NewSNMPPinger(1, "", port).Ping(ctx, "127.0.0.1")
	require.Error(t, err)
	assert.Zero(t, stats.Received)
	assert.InDelta(t, 100.0, stats.LossPercent(), 1e-9)
}

func TestNewSNMPPingerDefaults(t *testing.T) {
	p := NewSNMPPinger(0, "", 0)

	assert.Equal(t, 3, p.count)
	assert.Equal(t, "public", p.community)
	assert.Equal(t, uint16(161), p.port)
}

func TestTCPPinger(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}

			_ = conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	t.Run("explicit port", func(t *testing.T) {
		stats, err := NewTCPPinger(3, 1, logger.NewTestLogger()).Ping(ctx, ln.Addr().String())
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Sent)
		assert.Equal(t, 3, stats.Received)
	})

	t.Run("default port", func(t *testing.T) {
		stats, err := NewTCPPinger(1, port, nil).Ping(ctx, "127.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Received)
	})
}

func TestTCPPingerRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stats, err := NewTCPPinger(2, 0, nil).Ping(ctx, addr)
	require.Error(t, err)
	assert.Equal(t, 2, stats.Sent)
	assert.Zero(t, stats.Received)
}

func TestICMPPingerLoopback(t *testing.T) {
	p := NewICMPPinger(2, false)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stats, err := p.Ping(ctx, "127.0.0.1")
	if err != nil {
		// unprivileged echo sockets depend on net.ipv4.ping_group_range
		t.Skipf("ICMP echo unavailable: %v", err)
	}

	assert.Equal(t, 2, stats.Sent)
	assert.Positive(t, stats.Received)
}

func TestICMPPingerRejectsHostname(t *testing.T) {
	_, err := NewICMPPinger(1, false).Ping(context.Background(), "router.example.net")
	assert.ErrorIs(t, err, errNotIP)
}

func TestAttemptWindow(t *testing.T) {
	assert.Equal(t, defaultAttemptWindow, attemptWindow(context.Background(), 3))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	w := attemptWindow(ctx, 3)
	assert.LessOrEqual(t, w, time.Second)
	assert.Greater(t, w, 900*time.Millisecond)

	assert.Greater(t, attemptWindow(ctx, 0), 2*time.Second)
}
