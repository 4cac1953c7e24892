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
	"fmt"
	"math/rand/v2"
	"net"
	"net/netip"
	"os"
	"sync/atomic"
	"time"

	"github.com/carverauto/routerwatch/pkg/models"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	protocolICMP     = 1
	protocolIPv6ICMP = 58
	maxReplySize     = 1500
	seqMask          = 0xffff
)

var (
	echoPayload = []byte("routerwatch-probe")

	errNotIP = errors.New("not an IP address")
)

// ICMPPinger sends echo requests with golang.org/x/net/icmp. Unprivileged
// mode uses datagram sockets, where the kernel owns the echo identifier, so
// replies are matched on sequence number and peer only.
type ICMPPinger struct {
	count      int
	privileged bool
	id         int
	seq        atomic.Uint32
}

var _ Pinger = (*ICMPPinger)(nil)

func NewICMPPinger(count int, privileged bool) *ICMPPinger {
	if count <= 0 {
		count = models.DefaultProbeCount
	}

	p := &ICMPPinger{
		count:      count,
		privileged: privileged,
		id:         (os.Getpid() ^ rand.IntN(seqMask)) & seqMask,
	}
	p.seq.Store(rand.Uint32() & seqMask)

	return p
}

type icmpEndpoint struct {
	network   string
	listen    string
	protocol  int
	echoType  icmp.Type
	replyType icmp.Type
	dst       net.Addr
}

func (p *ICMPPinger) endpoint(ip netip.Addr) icmpEndpoint {
	ep := icmpEndpoint{
		network:   "udp4",
		listen:    "0.0.0.0",
		protocol:  protocolICMP,
		echoType:  ipv4.ICMPTypeEcho,
		replyType: ipv4.ICMPTypeEchoReply,
	}

	if ip.Is6() && !ip.Is4In6() {
		ep = icmpEndpoint{
			network:   "udp6",
			listen:    "::",
			protocol:  protocolIPv6ICMP,
			echoType:  ipv6.ICMPTypeEchoRequest,
			replyType: ipv6.ICMPTypeEchoReply,
		}
	}

	if p.privileged {
		if ep.protocol == protocolICMP {
			ep.network = "ip4:icmp"
		} else {
			ep.network = "ip6:ipv6-icmp"
		}

		ep.dst = &net.IPAddr{IP: ip.AsSlice()}
	} else {
		ep.dst = &net.UDPAddr{IP: ip.AsSlice()}
	}

	return ep
}

func (p *ICMPPinger) Ping(ctx context.Context, host string) (Stats, error) {
	var stats Stats

	ip, err := netip.ParseAddr(host)
	if err != nil {
		return stats, fmt.Errorf("%w: %s", errNotIP, host)
	}

	ip = ip.Unmap()
	ep := p.endpoint(ip)

	conn, err := icmp.ListenPacket(ep.network, ep.listen)
	if err != nil {
		return stats, fmt.Errorf("icmp listen %s: %w", ep.network, err)
	}
	defer func() { _ = conn.Close() }()

	// unblock reads when the probe is cancelled
	stop := context.AfterFunc(ctx, func() { _ = conn.SetReadDeadline(time.Now()) })
	defer stop()

	buf := make([]byte, maxReplySize)

	for i := 0; i < p.count; i++ {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		seq := int(p.seq.Add(1) & seqMask)

		msg := icmp.Message{
			Type: ep.echoType,
			Body: &icmp.Echo{ID: p.id, Seq: seq, Data: echoPayload},
		}

		wire, err := msg.Marshal(nil)
		if err != nil {
			return stats, fmt.Errorf("marshal echo: %w", err)
		}

		start := time.Now()

		if _, err := conn.WriteTo(wire, ep.dst); err != nil {
			return stats, fmt.Errorf("icmp send to %s: %w", ip, err)
		}

		stats.Sent++

		if err := conn.SetReadDeadline(start.Add(attemptWindow(ctx, p.count-i))); err != nil {
			return stats, err
		}

		ok, err := p.awaitReply(conn, buf, ep, ip, seq)
		if err != nil {
			return stats, err
		}

		if ok {
			stats.record(time.Since(start))
		}
	}

	if stats.Received == 0 {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		return stats, errNoReply
	}

	return stats, nil
}

// awaitReply reads until the reply for seq arrives or the read deadline
// passes. A deadline is a lost packet, not an error.
func (p *ICMPPinger) awaitReply(conn *icmp.PacketConn, buf []byte, ep icmpEndpoint, ip netip.Addr, seq int) (bool, error) {
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return false, nil
			}

			return false, fmt.Errorf("icmp read: %w", err)
		}

		if !samePeer(peer, ip) {
			continue
		}

		reply, err := icmp.ParseMessage(ep.protocol, buf[:n])
		if err != nil || reply.Type != ep.replyType {
			continue
		}

		echo, ok := reply.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq {
			continue
		}

		if p.privileged && echo.ID != p.id {
			continue
		}

		return true, nil
	}
}

func samePeer(peer net.Addr, want netip.Addr) bool {
	var ip net.IP

	switch a := peer.(type) {
	case *net.UDPAddr:
		ip = a.IP
	case *net.IPAddr:
		ip = a.IP
	default:
		return false
	}

	got, ok := netip.AddrFromSlice(ip)

	return ok && got.Unmap() == want
}
