// Package server implements the serving side of the speed test. A Server
// binds ephemeral TCP and UDP sockets, advertises their ports via the
// discovery broadcaster, and serves concurrent TCP streams and UDP segment
// bursts until cancelled.
package server

import (
	"bytes"
	"context"
	"fmt"
	"net"

	"lanblast/internal/config"
	"lanblast/internal/discovery"
	"lanblast/internal/stats"
	"lanblast/internal/util"
)

// Server owns its listening sockets outright; ports are read-only after
// Listen and the sockets are shared with the serving goroutines by handle,
// never through a lookup table.
type Server struct {
	cfg *config.Config

	tcpLn   *net.TCPListener
	udpConn *net.UDPConn

	sem    chan struct{} // bounds concurrent TCP transfers
	filler []byte        // reusable 'a'-filled TCP write chunk
}

// New creates an unbound server from the resolved configuration.
func New(cfg *config.Config) *Server {
	return &Server{
		cfg:    cfg,
		sem:    make(chan struct{}, cfg.MaxTCPConnections),
		filler: bytes.Repeat([]byte{'a'}, cfg.TCPChunkSize),
	}
}

// Listen binds the TCP and UDP sockets to ephemeral ports.
func (s *Server) Listen() error {
	tcpLn, err := net.ListenTCP("tcp4", &net.TCPAddr{})
	if err != nil {
		return fmt.Errorf("failed to bind TCP socket: %w", err)
	}

	udpConn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		tcpLn.Close()
		return fmt.Errorf("failed to bind UDP socket: %w", err)
	}

	s.tcpLn = tcpLn
	s.udpConn = udpConn
	return nil
}

// TCPPort returns the ephemeral TCP port bound by Listen.
func (s *Server) TCPPort() uint16 {
	return uint16(s.tcpLn.Addr().(*net.TCPAddr).Port)
}

// UDPPort returns the ephemeral UDP port bound by Listen.
func (s *Server) UDPPort() uint16 {
	return uint16(s.udpConn.LocalAddr().(*net.UDPAddr).Port)
}

// Serve starts the broadcaster, the TCP accept loop, and the UDP request
// loop, then blocks until ctx is cancelled. The sockets are closed on exit
// so the blocked loops unwind.
func (s *Server) Serve(ctx context.Context) error {
	util.LogSuccess("Server started, listening on IP address %s (TCP Port=%d, UDP Port=%d)",
		util.LocalIP(), s.TCPPort(), s.UDPPort())

	broadcaster := &discovery.Broadcaster{
		Addr:     s.cfg.BroadcastAddr,
		Port:     s.cfg.BroadcastPort,
		Interval: s.cfg.BroadcastInterval,
		UDPPort:  s.UDPPort(),
		TCPPort:  s.TCPPort(),
	}

	go func() {
		if err := broadcaster.Run(ctx); err != nil {
			util.LogError("broadcaster failed: %v", err)
		}
	}()

	stats.StartReporter(ctx)

	go s.acceptLoop(ctx)
	go s.requestLoop(ctx)

	<-ctx.Done()

	s.tcpLn.Close()
	s.udpConn.Close()
	return nil
}

// Run binds and serves. This is the cmd-facing entry point.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}
