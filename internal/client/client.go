// Package client implements the measuring side of the speed test: it listens
// for server offers and, for each one, drives concurrent TCP and UDP download
// sessions and reports their statistics.
package client

import (
	"context"
	"net"

	"lanblast/internal/config"
	"lanblast/internal/discovery"
	"lanblast/internal/protocol"
	"lanblast/internal/util"
)

// Params are the test parameters resolved by the prompting layer. They arrive
// pre-validated; the engine only guards against non-positive sizes by treating
// them as zero-length transfers.
type Params struct {
	FileSize uint64 // bytes requested per session
	TCPConns int    // concurrent TCP sessions per offer
	UDPConns int    // concurrent UDP sessions per offer
}

// Client runs speed tests against every server whose offer it hears.
type Client struct {
	cfg    *config.Config
	params Params
}

// New creates a client from the resolved configuration and test parameters.
func New(cfg *config.Config, params Params) *Client {
	return &Client{cfg: cfg, params: params}
}

// Run listens for offers until ctx is cancelled. Each accepted offer starts a
// full test run on its own goroutine, so the receive loop keeps hearing
// offers while tests are in progress. Offers are not deduplicated: hearing
// the same server again starts another concurrent run against it.
func (c *Client) Run(ctx context.Context) error {
	util.LogSuccess("Client started, listening for offer requests...")

	listener := &discovery.Listener{
		Port: c.cfg.BroadcastPort,
		OnOffer: func(from *net.UDPAddr, offer *protocol.Offer) {
			util.LogInfo("received offer from %s (UDP port %d, TCP port %d)",
				from.IP, offer.UDPPort, offer.TCPPort)
			go c.RunTest(from.IP, offer.UDPPort, offer.TCPPort)
		},
	}

	return listener.Run(ctx)
}
