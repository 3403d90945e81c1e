package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lanblast/internal/protocol"
)

// freeUDPPort asks the kernel for an unused UDP port.
func freeUDPPort(t *testing.T) int {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to probe for a free port: %v", err)
	}
	port := conn.LocalAddr().(*net.UDPAddr).Port
	conn.Close()
	return port
}

// TestBroadcasterToListener runs a broadcaster against a listener over
// loopback and checks that a valid offer arrives with the advertised ports.
func TestBroadcasterToListener(t *testing.T) {
	port := freeUDPPort(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	offers := make(chan *protocol.Offer, 8)
	listener := &Listener{
		Port: port,
		OnOffer: func(from *net.UDPAddr, offer *protocol.Offer) {
			offers <- offer
		},
	}
	go listener.Run(ctx)

	// Give the listener time to bind before the first send.
	time.Sleep(50 * time.Millisecond)

	broadcaster := &Broadcaster{
		Addr:     "127.0.0.1",
		Port:     port,
		Interval: 50 * time.Millisecond,
		UDPPort:  41234,
		TCPPort:  35678,
	}
	go broadcaster.Run(ctx)

	select {
	case offer := <-offers:
		assert.Equal(t, uint16(41234), offer.UDPPort)
		assert.Equal(t, uint16(35678), offer.TCPPort)
	case <-time.After(3 * time.Second):
		t.Fatal("no offer received")
	}
}

// TestListenerDiscardsForeignTraffic sends garbage and a wrong-type packet to
// the listener and verifies neither reaches the callback, while a valid offer
// sent afterwards still does.
func TestListenerDiscardsForeignTraffic(t *testing.T) {
	port := freeUDPPort(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	offers := make(chan *protocol.Offer, 8)
	listener := &Listener{
		Port: port,
		OnOffer: func(from *net.UDPAddr, offer *protocol.Offer) {
			offers <- offer
		},
	}
	go listener.Run(ctx)

	time.Sleep(50 * time.Millisecond)

	dest := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
	conn, err := net.DialUDP("udp4", nil, dest)
	assert.Nil(t, err)
	defer conn.Close()

	conn.Write([]byte("not a speed test packet"))
	conn.Write(protocol.EncodeRequest(&protocol.Request{FileSize: 1}))

	select {
	case <-offers:
		t.Fatal("listener accepted foreign traffic")
	case <-time.After(200 * time.Millisecond):
	}

	conn.Write(protocol.EncodeOffer(&protocol.Offer{UDPPort: 7, TCPPort: 8}))

	select {
	case offer := <-offers:
		assert.Equal(t, uint16(7), offer.UDPPort)
	case <-time.After(3 * time.Second):
		t.Fatal("listener stopped accepting valid offers after foreign traffic")
	}
}

// TestListenerStopsOnCancel verifies the receive loop observes cancellation.
func TestListenerStopsOnCancel(t *testing.T) {
	port := freeUDPPort(t)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	listener := &Listener{Port: port, OnOffer: func(*net.UDPAddr, *protocol.Offer) {}}
	go func() { done <- listener.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Nil(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("listener did not stop after cancellation")
	}
}
