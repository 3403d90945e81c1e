package server

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"

	"lanblast/internal/stats"
	"lanblast/internal/util"
)

// acceptLoop accepts TCP connections and hands each to its own goroutine.
// The loop never blocks on an individual transfer; the semaphore only caps
// how many transfers run at once.
func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.tcpLn.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				util.LogWarning("failed to accept TCP connection: %v", err)
				continue
			}
		}

		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			conn.Close()
			return
		}

		go func(conn net.Conn) {
			defer func() { <-s.sem }()
			s.handleTCP(conn)
		}(conn)
	}
}

// handleTCP serves one connection: it reads a newline-terminated ASCII
// decimal byte count, then streams exactly that many filler bytes in
// fixed-size chunks and closes. A connection that fails to produce a
// parsable request is aborted.
func (s *Server) handleTCP(conn net.Conn) {
	defer conn.Close()

	util.LogInfo("incoming TCP connection from %s", conn.RemoteAddr())
	util.TuneTCP(conn, s.cfg.DSCP)

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		util.LogWarning("TCP client %s: failed to read request: %v", conn.RemoteAddr(), err)
		return
	}

	size, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		util.LogWarning("TCP client %s: invalid request %q", conn.RemoteAddr(), strings.TrimSpace(line))
		return
	}
	if size < 0 {
		// Treat as a zero-length, immediately-complete transfer.
		size = 0
	}

	chunk := int64(len(s.filler))
	var sent int64
	for sent < size {
		n := min(chunk, size-sent)
		if _, err := conn.Write(s.filler[:n]); err != nil {
			util.LogWarning("TCP client %s: write failed after %d bytes: %v", conn.RemoteAddr(), sent, err)
			return
		}
		sent += n
		stats.Counters.AddSent(int(n))
	}

	stats.Counters.AddTCP()
	util.LogSuccess("completed TCP transfer to %s, %d bytes sent", conn.RemoteAddr(), sent)
}
