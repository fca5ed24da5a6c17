package loconet

// Well-known opcodes handled by this module. Every opcode has bit 7 set;
// bits 6-5 select the length class.
const (
	OpcSwReq    byte = 0xB0 // switch request
	OpcSwRep    byte = 0xB1 // switch report
	OpcInputRep byte = 0xB2 // sensor input report
	OpcSwState  byte = 0xBC // switch state
	OpcPeerXfer byte = 0xE5 // peer to peer transfer
)

// Message is one framed bus packet: opcode first, checksum last. All bytes
// after the opcode keep bit 7 clear; the checksum makes the XOR over the
// whole message equal 0xFF.
type Message []byte

// Opcode returns the message opcode, or 0 for an empty message.
func (m Message) Opcode() byte {
	if len(m) == 0 {
		return 0
	}
	return m[0]
}

// ExpectedLen returns the total message length implied by the opcode length
// class. Variable-length opcodes carry the total length in the second byte.
func ExpectedLen(opcode, second byte) int {
	switch opcode & 0x60 {
	case 0x00:
		return 2
	case 0x20:
		return 4
	case 0x40:
		return 6
	default:
		return int(second)
	}
}

// Checksum returns the checksum byte for body, which must not already
// include one.
func Checksum(body []byte) byte {
	x := byte(0)
	for _, b := range body {
		x ^= b
	}
	return x ^ 0xFF
}

// Validate checks framing invariants: opcode bit, declared length and
// checksum. The transport runs this before handing a message to the module.
func (m Message) Validate() error {
	if len(m) == 0 {
		return ErrEmptyMessage
	}
	if m[0]&0x80 == 0 {
		return ErrNotAnOpcode
	}
	second := byte(0)
	if len(m) > 1 {
		second = m[1]
	}
	if len(m) != ExpectedLen(m[0], second) {
		return ErrLengthMismatch
	}
	if Checksum(m[:len(m)-1]) != m[len(m)-1] {
		return ErrBadChecksum
	}
	return nil
}

// Seal appends the checksum to body and returns it as a Message.
func Seal(body []byte) Message {
	return Message(append(body, Checksum(body)))
}

// InputReport builds a sensor input report carrying the two argument bytes
// verbatim (bit 7 cleared). The channel engine passes a record's value1 and
// value2 bytes straight through.
func InputReport(sn1, sn2 byte) Message {
	return Seal([]byte{OpcInputRep, sn1 & 0x7F, sn2 & 0x7F})
}

// SwitchRequest builds a switch request for a 1-based address.
func SwitchRequest(address uint16, output, direction bool) Message {
	a := address - 1
	sw1 := byte(a & 0x7F)
	sw2 := byte((a >> 7) & 0x0F)
	if output {
		sw2 |= 0x10
	}
	if direction {
		sw2 |= 0x20
	}
	return Seal([]byte{OpcSwReq, sw1, sw2})
}
