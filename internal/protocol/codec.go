package protocol

import (
	"encoding/binary"
	"fmt"
)

// EncodeOffer serializes an Offer into a 9-byte slice.
func EncodeOffer(o *Offer) []byte {
	buf := make([]byte, OfferSize)
	binary.BigEndian.PutUint32(buf[0:4], MagicCookie)
	buf[4] = TypeOffer
	binary.BigEndian.PutUint16(buf[5:7], o.UDPPort)
	binary.BigEndian.PutUint16(buf[7:9], o.TCPPort)
	return buf
}

// DecodeOffer deserializes a byte slice into an Offer. It fails on short
// buffers, a wrong cookie, or a wrong message type; callers drop the packet.
func DecodeOffer(data []byte) (*Offer, error) {
	if err := checkHeader(data, OfferSize, TypeOffer); err != nil {
		return nil, err
	}
	return &Offer{
		UDPPort: binary.BigEndian.Uint16(data[5:7]),
		TCPPort: binary.BigEndian.Uint16(data[7:9]),
	}, nil
}

// EncodeRequest serializes a Request into a 13-byte slice.
func EncodeRequest(r *Request) []byte {
	buf := make([]byte, RequestSize)
	binary.BigEndian.PutUint32(buf[0:4], MagicCookie)
	buf[4] = TypeRequest
	binary.BigEndian.PutUint64(buf[5:13], r.FileSize)
	return buf
}

// DecodeRequest deserializes a byte slice into a Request.
func DecodeRequest(data []byte) (*Request, error) {
	if err := checkHeader(data, RequestSize, TypeRequest); err != nil {
		return nil, err
	}
	return &Request{FileSize: binary.BigEndian.Uint64(data[5:13])}, nil
}

// EncodePayload serializes a Payload into a header plus trailing payload bytes.
func EncodePayload(p *Payload) []byte {
	buf := make([]byte, PayloadHeaderSize+len(p.Data))
	binary.BigEndian.PutUint32(buf[0:4], MagicCookie)
	buf[4] = TypePayload
	binary.BigEndian.PutUint64(buf[5:13], p.TotalSegments)
	binary.BigEndian.PutUint64(buf[13:21], p.SegmentIndex)
	if len(p.Data) > 0 {
		copy(buf[PayloadHeaderSize:], p.Data)
	}
	return buf
}

// DecodePayload deserializes a byte slice into a Payload. Everything past the
// fixed header is the segment data (payload length = len(data) − header).
func DecodePayload(data []byte) (*Payload, error) {
	if err := checkHeader(data, PayloadHeaderSize, TypePayload); err != nil {
		return nil, err
	}
	p := &Payload{
		TotalSegments: binary.BigEndian.Uint64(data[5:13]),
		SegmentIndex:  binary.BigEndian.Uint64(data[13:21]),
	}
	if len(data) > PayloadHeaderSize {
		p.Data = make([]byte, len(data)-PayloadHeaderSize)
		copy(p.Data, data[PayloadHeaderSize:])
	}
	return p, nil
}

// checkHeader validates the common prefix of every message: length, cookie,
// then type — in that order, so nothing else is trusted first.
func checkHeader(data []byte, minSize int, wantType uint8) error {
	if len(data) < minSize {
		return fmt.Errorf("packet too short: %d bytes (need at least %d)", len(data), minSize)
	}
	if cookie := binary.BigEndian.Uint32(data[0:4]); cookie != MagicCookie {
		return fmt.Errorf("bad magic cookie: 0x%08x", cookie)
	}
	if data[4] != wantType {
		return fmt.Errorf("unexpected message type: 0x%x (want 0x%x)", data[4], wantType)
	}
	return nil
}
