package client

import (
	"fmt"
	"net"
	"time"

	"lanblast/internal/protocol"
	"lanblast/internal/stats"
)

// udpDownload runs one UDP session: send a single Request, then collect
// Payload packets until the socket stays idle for the configured timeout —
// an idle window is the normal "server is done sending" signal, not an error.
//
// The expected segment count is latched from the first valid Payload and not
// re-checked against later packets. Counting is order-independent: segments
// may arrive reordered, duplicated, or not at all; only counts and byte
// totals matter.
func (c *Client) udpDownload(addr *net.UDPAddr, connID int) (stats.UDPResult, error) {
	res := stats.UDPResult{ConnID: connID}

	start := time.Now()
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return res, fmt.Errorf("failed to open UDP socket for %s: %w", addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write(protocol.EncodeRequest(&protocol.Request{FileSize: c.params.FileSize})); err != nil {
		res.Elapsed = time.Since(start)
		return res, fmt.Errorf("failed to send request: %w", err)
	}

	latched := false
	buf := make([]byte, 65535)
	for {
		conn.SetReadDeadline(time.Now().Add(c.cfg.IdleTimeout))
		n, err := conn.Read(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				break
			}
			res.Elapsed = time.Since(start)
			return res, fmt.Errorf("read failed: %w", err)
		}

		pkt, err := protocol.DecodePayload(buf[:n])
		if err != nil {
			// Malformed or foreign; drop and keep listening.
			continue
		}

		if !latched {
			res.SegmentsExpected = pkt.TotalSegments
			latched = true
		}
		res.SegmentsReceived++
		res.Bytes += int64(len(pkt.Data))
	}

	res.Elapsed = time.Since(start)
	return res, nil
}
