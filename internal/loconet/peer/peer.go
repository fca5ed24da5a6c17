// Package peer encodes and decodes the SV programming protocol carried in
// peer-transfer messages.
//
// A transfer frame is 16 bytes: opcode, size, source, destination low,
// destination high, control byte 1, data 1-4, control byte 2, data 5-8,
// checksum. Payload bytes keep bit 7 clear on the wire; the stripped high
// bits of the eight data bytes travel in bits 0-3 of the two control bytes.
package peer

import (
	"errors"

	"github.com/danmuck/lnioctl/internal/loconet"
)

// FrameSize is the fixed transfer frame length, also carried in the size byte.
const FrameSize = 0x10

const (
	offSrc     = 2
	offDstLow  = 3
	offDstHigh = 4
	offPXCT1   = 5
	offD1      = 6
	offPXCT2   = 10
	offD5      = 11
)

var (
	ErrNotPeerTransfer = errors.New("peer: not a peer transfer frame")
	ErrBadFrameSize    = errors.New("peer: bad transfer frame size")
)

// Commands carried in data byte 1.
const (
	CmdWrite byte = 1
	CmdRead  byte = 2
)

// Packet is a decoded transfer frame. The data bytes are kept exactly as
// received (bit 7 clear); Data restores the high bits on demand. The
// destination filter intentionally runs on the raw bytes.
type Packet struct {
	Src     byte
	DstLow  byte
	DstHigh byte
	PXCT1   byte
	PXCT2   byte
	D       [8]byte // raw wire values, bit 7 clear
}

// Decode parses a peer transfer frame. Framing (length class, checksum) is
// the transport's job; Decode only checks the transfer layout.
func Decode(m loconet.Message) (Packet, error) {
	if m.Opcode() != loconet.OpcPeerXfer {
		return Packet{}, ErrNotPeerTransfer
	}
	if len(m) != FrameSize || m[1] != FrameSize {
		return Packet{}, ErrBadFrameSize
	}
	p := Packet{
		Src:     m[offSrc],
		DstLow:  m[offDstLow],
		DstHigh: m[offDstHigh],
		PXCT1:   m[offPXCT1],
		PXCT2:   m[offPXCT2],
	}
	copy(p.D[0:4], m[offD1:offD1+4])
	copy(p.D[4:8], m[offD5:offD5+4])
	return p, nil
}

// Matches reports whether the packet targets the module at (addrLow,
// addrHigh). Three patterns are accepted: broadcast (dstLow 0, d5 0),
// high-byte only (dstLow 0x7F, d5 = addrHigh) and exact (dstLow = addrLow,
// d5 = addrHigh). The comparison uses the raw d5 byte, before high-bit
// restoration.
func (p Packet) Matches(addrLow, addrHigh byte) bool {
	d5 := p.D[4]
	switch {
	case p.DstLow == 0 && d5 == 0:
		return true
	case p.DstLow == 0x7F && d5 == addrHigh:
		return true
	case p.DstLow == addrLow && d5 == addrHigh:
		return true
	default:
		return false
	}
}

// Data returns data byte i (1-based, 1..8) with bit 7 restored from the
// matching control byte bit.
func (p Packet) Data(i int) byte {
	v := p.D[i-1]
	ctrl := p.PXCT1
	bit := uint(i - 1)
	if i > 4 {
		ctrl = p.PXCT2
		bit = uint(i - 5)
	}
	if ctrl&(1<<bit) != 0 {
		v |= 0x80
	}
	return v
}

// Response is the logical reply to an SV command. The eight data bytes hold
// full 8-bit values; Encode distributes their high bits into the control
// bytes.
type Response struct {
	Src     byte
	DstLow  byte
	DstHigh byte
	D       [8]byte
}

// Encode builds the wire frame for the response, checksum included.
func (r Response) Encode() loconet.Message {
	body := make([]byte, FrameSize-1)
	body[0] = loconet.OpcPeerXfer
	body[1] = FrameSize
	body[offSrc] = r.Src & 0x7F
	body[offDstLow] = r.DstLow & 0x7F
	body[offDstHigh] = r.DstHigh & 0x7F
	var pxct1, pxct2 byte
	for i := 0; i < 4; i++ {
		if r.D[i]&0x80 != 0 {
			pxct1 |= 1 << uint(i)
		}
		body[offD1+i] = r.D[i] & 0x7F
	}
	for i := 0; i < 4; i++ {
		if r.D[4+i]&0x80 != 0 {
			pxct2 |= 1 << uint(i)
		}
		body[offD5+i] = r.D[4+i] & 0x7F
	}
	body[offPXCT1] = pxct1
	body[offPXCT2] = pxct2
	return loconet.Seal(body)
}
