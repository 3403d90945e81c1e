package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lanblast/internal/config"
	"lanblast/internal/protocol"
)

func testConfig() *config.Config {
	return &config.Config{
		BroadcastAddr:     "127.0.0.1",
		BroadcastPort:     config.DefaultBroadcastPort,
		BroadcastInterval: time.Second,
		MaxTCPConnections: 16,
		SegmentSize:       1024,
		IdleTimeout:       time.Second,
		TCPChunkSize:      4096,
		DSCP:              config.DefaultDSCP,
	}
}

// startTestServer binds a server and runs its accept and request loops
// without the discovery broadcaster.
func startTestServer(t *testing.T) *Server {
	t.Helper()

	s := New(testConfig())
	if err := s.Listen(); err != nil {
		t.Fatalf("failed to bind server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go s.acceptLoop(ctx)
	go s.requestLoop(ctx)

	t.Cleanup(func() {
		cancel()
		s.tcpLn.Close()
		s.udpConn.Close()
	})

	return s
}

func TestTCPServesExactByteCount(t *testing.T) {
	s := startTestServer(t)

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", s.TCPPort()))
	assert.Nil(t, err)
	defer conn.Close()

	_, err = fmt.Fprintf(conn, "%d\n", 100_000)
	assert.Nil(t, err)

	data, err := io.ReadAll(conn)
	assert.Nil(t, err)
	assert.Equal(t, 100_000, len(data))
	assert.Equal(t, byte('a'), data[0])
	assert.Equal(t, byte('a'), data[len(data)-1])
}

func TestTCPZeroByteRequest(t *testing.T) {
	s := startTestServer(t)

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", s.TCPPort()))
	assert.Nil(t, err)
	defer conn.Close()

	fmt.Fprintf(conn, "0\n")

	data, err := io.ReadAll(conn)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(data))
}

func TestTCPInvalidRequestAborts(t *testing.T) {
	s := startTestServer(t)

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", s.TCPPort()))
	assert.Nil(t, err)
	defer conn.Close()

	fmt.Fprintf(conn, "not a number\n")

	data, err := io.ReadAll(conn)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(data))
}

// collectPayloads drains payload packets until the socket goes idle.
func collectPayloads(t *testing.T, conn *net.UDPConn) []*protocol.Payload {
	t.Helper()

	var payloads []*protocol.Payload
	buf := make([]byte, 65535)
	for {
		conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, err := conn.Read(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return payloads
			}
			t.Fatalf("UDP read failed: %v", err)
		}

		pkt, err := protocol.DecodePayload(buf[:n])
		if err != nil {
			continue
		}
		payloads = append(payloads, pkt)
	}
}

func TestUDPBurstCoversRequestedSize(t *testing.T) {
	s := startTestServer(t)

	conn, err := net.DialUDP("udp4", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: int(s.UDPPort())})
	assert.Nil(t, err)
	defer conn.Close()

	const fileSize = 10_000 // 9 full segments + 784-byte remainder

	_, err = conn.Write(protocol.EncodeRequest(&protocol.Request{FileSize: fileSize}))
	assert.Nil(t, err)

	payloads := collectPayloads(t, conn)
	assert.Equal(t, 10, len(payloads))

	var total int
	for _, pkt := range payloads {
		assert.Equal(t, uint64(10), pkt.TotalSegments)
		total += len(pkt.Data)
	}
	assert.Equal(t, fileSize, total)

	last := payloads[len(payloads)-1]
	assert.Equal(t, uint64(10), last.SegmentIndex)
	assert.Equal(t, 10_000-9*1024, len(last.Data))
}

func TestUDPZeroSizeRequestSendsNothing(t *testing.T) {
	s := startTestServer(t)

	conn, err := net.DialUDP("udp4", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: int(s.UDPPort())})
	assert.Nil(t, err)
	defer conn.Close()

	conn.Write(protocol.EncodeRequest(&protocol.Request{FileSize: 0}))

	payloads := collectPayloads(t, conn)
	assert.Equal(t, 0, len(payloads))
}

func TestUDPIgnoresMalformedRequest(t *testing.T) {
	s := startTestServer(t)

	conn, err := net.DialUDP("udp4", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: int(s.UDPPort())})
	assert.Nil(t, err)
	defer conn.Close()

	conn.Write([]byte("garbage"))
	conn.Write(protocol.EncodeOffer(&protocol.Offer{UDPPort: 1, TCPPort: 2}))

	payloads := collectPayloads(t, conn)
	assert.Equal(t, 0, len(payloads))
}
