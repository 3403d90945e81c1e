// Package util provides shared utility functions.
package util

import (
	"net"

	"golang.org/x/net/ipv4"
)

// LocalIP returns the local address for the default route. The dialed
// address does not need to be reachable; it only forces the OS to pick
// the outbound interface.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}

// TuneTCP applies throughput-oriented socket options to a transfer
// connection: TCP_NODELAY plus a DSCP marking on the IP header.
// NOTE: On Windows the TOS value is not applied by default.
func TuneTCP(conn net.Conn, dscp int) {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
	}
	ipv4.NewConn(conn).SetTOS(dscp)
}
