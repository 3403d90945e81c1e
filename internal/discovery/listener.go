package discovery

import (
	"context"
	"net"
	"time"

	"lanblast/internal/protocol"
	"lanblast/internal/util"
)

// pollInterval bounds how long a blocked read can delay shutdown.
const pollInterval = 500 * time.Millisecond

// Listener receives candidate Offer packets on the well-known discovery port
// and filters them down to protocol-valid ones.
//
// OnOffer must hand off to concurrent work and return quickly — it is called
// inline from the receive loop, and a slow callback would miss subsequent
// offers from this or other servers.
type Listener struct {
	Port    int
	OnOffer func(from *net.UDPAddr, offer *protocol.Offer)
}

// Run listens for offers until ctx is cancelled. Datagrams that fail to
// decode, carry a foreign cookie, or carry the wrong type are discarded
// silently; nothing a peer sends can terminate the loop.
func (l *Listener) Run(ctx context.Context) error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: l.Port})
	if err != nil {
		return err
	}
	defer conn.Close()

	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		conn.SetReadDeadline(time.Now().Add(pollInterval))
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			util.LogWarning("failed to read from discovery socket: %v", err)
			continue
		}

		offer, err := protocol.DecodeOffer(buf[:n])
		if err != nil {
			// Foreign or malformed traffic on the shared port.
			continue
		}

		l.OnOffer(from, offer)
	}
}
