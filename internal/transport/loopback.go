package transport

import (
	"errors"
	"sync"

	"github.com/danmuck/lnioctl/internal/loconet"
)

var ErrClosed = errors.New("transport: closed")

// Loopback is an in-memory transport pair: what one end sends, the other
// end receives. Used by tests and simulated runs.
type Loopback struct {
	mu     sync.Mutex
	peer   *Loopback
	rx     chan loconet.Message
	closed bool
}

// NewLoopbackPair returns two connected endpoints.
func NewLoopbackPair() (*Loopback, *Loopback) {
	a := &Loopback{rx: make(chan loconet.Message, rxBuffer)}
	b := &Loopback{rx: make(chan loconet.Message, rxBuffer)}
	a.peer = b
	b.peer = a
	return a, b
}

func (l *Loopback) PollReceive() (loconet.Message, bool) {
	select {
	case m := <-l.rx:
		return m, true
	default:
		return nil, false
	}
}

func (l *Loopback) Send(m loconet.Message) error {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if err := m.Validate(); err != nil {
		return err
	}
	select {
	case l.peer.rx <- m:
		return nil
	default:
		return errors.New("transport: peer buffer full")
	}
}

func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
