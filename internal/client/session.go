package client

import (
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"lanblast/internal/stats"
	"lanblast/internal/util"
)

// RunResult aggregates every session of one offer-triggered test run.
// Slot i holds connection id i+1; a non-nil error in the matching Errs slot
// marks that session as failed (its result still carries whatever was
// measured before the failure).
type RunResult struct {
	TCP     []stats.TCPResult
	TCPErrs []error
	UDP     []stats.UDPResult
	UDPErrs []error
}

// RunTest executes one full test run against a server: it spawns the
// configured number of TCP and UDP sessions concurrently, tags each with a
// small connection id, and waits for all of them before returning. A failed
// session never affects its siblings — each logs its own outcome.
func (c *Client) RunTest(serverIP net.IP, udpPort, tcpPort uint16) RunResult {
	runID := uuid.NewString()[:8]
	util.LogInfo("[%s] connecting to server %s on UDP=%d, TCP=%d", runID, serverIP, udpPort, tcpPort)

	res := RunResult{
		TCP:     make([]stats.TCPResult, c.params.TCPConns),
		TCPErrs: make([]error, c.params.TCPConns),
		UDP:     make([]stats.UDPResult, c.params.UDPConns),
		UDPErrs: make([]error, c.params.UDPConns),
	}

	tcpAddr := fmt.Sprintf("%s:%d", serverIP, tcpPort)
	udpAddr := &net.UDPAddr{IP: serverIP, Port: int(udpPort)}

	var wg sync.WaitGroup

	for i := range c.params.TCPConns {
		wg.Add(1)
		go func(connID int) {
			defer wg.Done()

			result, err := c.tcpDownload(tcpAddr, connID)
			res.TCP[connID-1] = result
			res.TCPErrs[connID-1] = err
			if err != nil {
				util.LogError("[%s] TCP #%d failed: %v", runID, connID, err)
				return
			}

			util.LogSuccess("[%s] TCP #%d finished. Time: %.2fs, Speed: %.2f bps, Bytes: %d",
				runID, connID, result.Elapsed.Seconds(), result.BitsPerSecond(), result.Bytes)
		}(i + 1)
	}

	for i := range c.params.UDPConns {
		wg.Add(1)
		go func(connID int) {
			defer wg.Done()

			result, err := c.udpDownload(udpAddr, connID)
			res.UDP[connID-1] = result
			res.UDPErrs[connID-1] = err
			if err != nil {
				util.LogError("[%s] UDP #%d failed: %v", runID, connID, err)
				return
			}

			util.LogSuccess("[%s] UDP #%d finished. Time: %.2fs, Speed: %.2f bps, Bytes: %d, Packets: %d/%d (%.2f%% OK)",
				runID, connID, result.Elapsed.Seconds(), result.BitsPerSecond(), result.Bytes,
				result.SegmentsReceived, result.SegmentsExpected, result.SuccessPercent())
		}(i + 1)
	}

	wg.Wait()

	util.LogSuccess("[%s] all transfers complete, listening for offer requests...", runID)
	return res
}
