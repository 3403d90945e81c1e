package server

import (
	"bytes"
	"context"
	"net"
	"time"

	"lanblast/internal/protocol"
	"lanblast/internal/stats"
	"lanblast/internal/util"
)

// pollInterval bounds how long a blocked read can delay shutdown.
const pollInterval = 500 * time.Millisecond

// requestLoop receives Request packets on the server's UDP socket. Each valid
// request is served on its own goroutine so multiple clients (or multiple
// sessions from one client) run simultaneously. Invalid datagrams are dropped.
func (s *Server) requestLoop(ctx context.Context) {
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.udpConn.SetReadDeadline(time.Now().Add(pollInterval))
		n, addr, err := s.udpConn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			select {
			case <-ctx.Done():
				return
			default:
				util.LogWarning("failed to read from UDP socket: %v", err)
				continue
			}
		}

		req, err := protocol.DecodeRequest(buf[:n])
		if err != nil {
			continue
		}

		go s.serveUDP(addr, req.FileSize)
	}
}

// serveUDP answers one Request with a fire-and-forget burst of numbered
// Payload packets: segments 1..ceil(fileSize/segmentSize) in order, each
// carrying segmentSize bytes except the last, which carries the remainder.
// No pacing, no acknowledgment. The reply goes out through the server's UDP
// socket, which is safe for concurrent writes.
func (s *Server) serveUDP(addr *net.UDPAddr, fileSize uint64) {
	segSize := uint64(s.cfg.SegmentSize)
	totalSegments := (fileSize + segSize - 1) / segSize
	segment := bytes.Repeat([]byte{'a'}, s.cfg.SegmentSize)

	var sent uint64
	for idx := uint64(1); idx <= totalSegments; idx++ {
		n := min(segSize, fileSize-sent)
		packet := protocol.EncodePayload(&protocol.Payload{
			TotalSegments: totalSegments,
			SegmentIndex:  idx,
			Data:          segment[:n],
		})

		if _, err := s.udpConn.WriteToUDP(packet, addr); err != nil {
			util.LogWarning("UDP send to %s failed at segment %d: %v", addr, idx, err)
		}
		sent += n
	}

	stats.Counters.AddUDP()
	stats.Counters.AddSent(int(sent))
	util.LogSuccess("UDP transfer to %s complete, total bytes sent: %d", addr, sent)
}
