// Package transport moves framed bus messages between the module and the
// physical network. Framing, checksum and bus access timing live here; the
// module core never sees a malformed message.
package transport

import "github.com/danmuck/lnioctl/internal/loconet"

// Transport is the module's view of the bus.
type Transport interface {
	// PollReceive returns at most one buffered inbound message without
	// blocking.
	PollReceive() (loconet.Message, bool)
	Send(loconet.Message) error
	Close() error
}

// rxBuffer is how many validated inbound messages a transport holds while
// the dispatch loop is busy, e.g. during a pulse dwell. Overflow is dropped.
const rxBuffer = 64
