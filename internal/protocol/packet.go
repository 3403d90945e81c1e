// Package protocol defines the packet formats for the speed-test wire protocol.
package protocol

// MagicCookie is the sentinel carried by every packet. Datagrams whose first
// four bytes differ are foreign traffic and must be dropped.
const MagicCookie uint32 = 0xabcddcba

// Message type constants.
const (
	TypeOffer   uint8 = 0x2 // server → broadcast: ephemeral port advertisement
	TypeRequest uint8 = 0x3 // client → server: desired UDP transfer size
	TypePayload uint8 = 0x4 // server → client: one numbered segment
)

// Fixed wire sizes. Payload packets carry a variable trailing payload after
// the fixed header; its length is never encoded explicitly.
const (
	OfferSize         = 9  // cookie(4) + type(1) + udpPort(2) + tcpPort(2)
	RequestSize       = 13 // cookie(4) + type(1) + fileSize(8)
	PayloadHeaderSize = 21 // cookie(4) + type(1) + totalSegments(8) + segmentIndex(8)
)

// Offer advertises a server's ephemeral UDP and TCP listening ports.
// It carries no session identity — every received Offer starts a fresh run.
type Offer struct {
	UDPPort uint16
	TCPPort uint16
}

// Request asks a server for a UDP transfer of FileSize payload bytes.
type Request struct {
	FileSize uint64
}

// Payload is one segment of a UDP transfer. SegmentIndex is 1-based and
// TotalSegments is fixed for the whole transfer.
type Payload struct {
	TotalSegments uint64
	SegmentIndex  uint64
	Data          []byte
}
