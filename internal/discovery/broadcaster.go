// Package discovery implements server advertisement over UDP broadcast:
// the serving side periodically announces its ephemeral ports on a
// well-known port, and clients listen there for valid offers.
package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"lanblast/internal/protocol"
	"lanblast/internal/util"
)

// Broadcaster periodically emits one Offer packet advertising the server's
// ephemeral UDP and TCP ports.
type Broadcaster struct {
	Addr     string        // broadcast address, e.g. 255.255.255.255
	Port     int           // well-known discovery port
	Interval time.Duration // one Offer per tick
	UDPPort  uint16        // advertised ephemeral UDP port
	TCPPort  uint16        // advertised ephemeral TCP port
}

// Run broadcasts offers until ctx is cancelled. Broadcasting is best-effort:
// a failed send is logged and the loop continues at the next tick.
func (b *Broadcaster) Run(ctx context.Context) error {
	dest, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", b.Addr, b.Port))
	if err != nil {
		return fmt.Errorf("failed to resolve broadcast addr: %w", err)
	}

	conn, err := net.DialUDP("udp4", nil, dest)
	if err != nil {
		return fmt.Errorf("failed to dial broadcast addr: %w", err)
	}
	defer conn.Close()

	packet := protocol.EncodeOffer(&protocol.Offer{UDPPort: b.UDPPort, TCPPort: b.TCPPort})

	b.send(conn, packet)

	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.send(conn, packet)
		case <-ctx.Done():
			return nil
		}
	}
}

func (b *Broadcaster) send(conn *net.UDPConn, packet []byte) {
	if _, err := conn.Write(packet); err != nil {
		util.LogWarning("failed to broadcast offer: %v", err)
	}
}
