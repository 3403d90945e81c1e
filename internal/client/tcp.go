package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"lanblast/internal/stats"
	"lanblast/internal/util"
)

// readBufferSize is the client-side TCP read chunk.
const readBufferSize = 32 * 1024

// tcpDownload runs one TCP session: connect, send the requested size as a
// newline-terminated decimal, then read until the requested count is reached
// or the peer closes. An early peer close is a completed transfer with the
// actual byte count, not an error. The clock runs from just before the
// connect to just after the read loop.
func (c *Client) tcpDownload(addr string, connID int) (stats.TCPResult, error) {
	res := stats.TCPResult{ConnID: connID}

	start := time.Now()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return res, fmt.Errorf("connect to %s failed: %w", addr, err)
	}
	defer conn.Close()

	util.TuneTCP(conn, c.cfg.DSCP)

	if _, err := fmt.Fprintf(conn, "%d\n", c.params.FileSize); err != nil {
		res.Elapsed = time.Since(start)
		return res, fmt.Errorf("failed to send request: %w", err)
	}

	buf := make([]byte, readBufferSize)
	var received uint64
	for received < c.params.FileSize {
		// Never read past the requested count.
		chunk := uint64(len(buf))
		if remaining := c.params.FileSize - received; remaining < chunk {
			chunk = remaining
		}

		n, err := conn.Read(buf[:chunk])
		received += uint64(n)

		if err != nil {
			res.Elapsed = time.Since(start)
			res.Bytes = int64(received)
			if errors.Is(err, io.EOF) {
				// Stream ended before the target count; keep what we got.
				return res, nil
			}
			return res, fmt.Errorf("read failed after %d bytes: %w", received, err)
		}
	}

	res.Elapsed = time.Since(start)
	res.Bytes = int64(received)
	return res, nil
}
