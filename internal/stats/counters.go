package stats

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

// ──────────────────────────────────────────────────────────────────────────────
// Global counters singleton
// ──────────────────────────────────────────────────────────────────────────────

// Counters is the process-wide transfer counter, fed by the serving side.
var Counters = &counters{}

type counters struct {
	TCPTransfers atomic.Int64 // cumulative completed TCP transfers
	UDPTransfers atomic.Int64 // cumulative completed UDP transfers
	BytesSent    atomic.Int64 // cumulative payload bytes written to clients
}

func (c *counters) AddTCP()       { c.TCPTransfers.Add(1) }
func (c *counters) AddUDP()       { c.UDPTransfers.Add(1) }
func (c *counters) AddSent(n int) { c.BytesSent.Add(int64(n)) }

// ──────────────────────────────────────────────────────────────────────────────
// Periodic reporter
// ──────────────────────────────────────────────────────────────────────────────

// StartReporter launches a goroutine that logs serving statistics every
// 10 seconds while there is activity. It stops when ctx is cancelled.
func StartReporter(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		var prevSent, prevTCP, prevUDP int64
		for {
			select {
			case <-ticker.C:
				sent := Counters.BytesSent.Load()
				tcp := Counters.TCPTransfers.Load()
				udp := Counters.UDPTransfers.Load()

				outS := float64(sent-prevSent) / 10.0
				dTCP := tcp - prevTCP
				dUDP := udp - prevUDP

				if dTCP > 0 || dUDP > 0 || outS > 10 {
					pterm.DefaultLogger.Info(fmt.Sprintf("Out: %s/s | Transfers: %2d tcp %2d udp",
						FormatBytes(outS), dTCP, dUDP))
				}

				prevSent = sent
				prevTCP = tcp
				prevUDP = udp

			case <-ctx.Done():
				return
			}
		}
	}()
}

// byteUnits defines the units for formatting byte counts in a human-readable way.
var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// FormatBytes formats a byte count into a human-readable string with fixed width
// (exactly 8 chars), for example: "99.0   B", " 1.5 KiB", "98.9 GiB".
func FormatBytes(b float64) string {
	unitIdx := 0

	// to prevent "100.0 KiB", which is 9 chars
	for b > 99 && unitIdx < 5 {
		b /= 1024
		unitIdx++
	}

	return fmt.Sprintf("%4.1f %3s", b, byteUnits[unitIdx])
}
