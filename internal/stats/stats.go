// Package stats holds per-session transfer results and the process-wide
// transfer counters.
package stats

import "time"

// minElapsed substitutes for a zero elapsed time so bitrate computation
// never divides by zero (sub-microsecond transfers round to it).
const minElapsed = 1e-6 // seconds

// TCPResult is the outcome of one TCP download session.
type TCPResult struct {
	ConnID  int
	Bytes   int64
	Elapsed time.Duration
}

// BitsPerSecond returns the measured TCP throughput.
func (r TCPResult) BitsPerSecond() float64 {
	return bitsPerSecond(r.Bytes, r.Elapsed)
}

// UDPResult is the outcome of one UDP download session.
//
// SegmentsExpected is latched from the first valid Payload packet of the
// session; later packets are not cross-checked, so a misbehaving sender can
// skew the loss figure. That looseness is kept on purpose — see DESIGN.md.
type UDPResult struct {
	ConnID           int
	Bytes            int64
	Elapsed          time.Duration
	SegmentsReceived uint64
	SegmentsExpected uint64
}

// BitsPerSecond returns the measured UDP throughput.
func (r UDPResult) BitsPerSecond() float64 {
	return bitsPerSecond(r.Bytes, r.Elapsed)
}

// LossPercent returns 100 × (1 − received/expected). When nothing was ever
// received the expected count falls back to the received count, so an empty
// transfer reports 0% loss instead of dividing by zero. Duplicated segments
// can push the result below zero; the value is reported as-is, not clamped.
func (r UDPResult) LossPercent() float64 {
	expected := r.SegmentsExpected
	if expected == 0 {
		expected = r.SegmentsReceived
	}
	if expected == 0 {
		return 0
	}
	return 100 * (1 - float64(r.SegmentsReceived)/float64(expected))
}

// SuccessPercent is the complement of LossPercent, used in session reports.
func (r UDPResult) SuccessPercent() float64 {
	return 100 - r.LossPercent()
}

func bitsPerSecond(bytes int64, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		secs = minElapsed
	}
	return 8 * float64(bytes) / secs
}
