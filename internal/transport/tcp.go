package transport

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/danmuck/lnioctl/internal/loconet"
)

// TCP is a client of a LocoNet-over-TCP bridge. A background reader frames
// and validates inbound traffic into a bounded buffer; PollReceive never
// blocks, so the single-threaded dispatch loop keeps its shape.
type TCP struct {
	conn net.Conn
	rx   chan loconet.Message
	log  zerolog.Logger

	wmu    sync.Mutex
	closed sync.Once
	done   chan struct{}
}

// DialTCP connects to the bridge and starts the reader.
func DialTCP(addr string, log zerolog.Logger) (*TCP, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial bus bridge (%s): %w", addr, err)
	}
	t := &TCP{
		conn: conn,
		rx:   make(chan loconet.Message, rxBuffer),
		log:  log,
		done: make(chan struct{}),
	}
	go t.readLoop()
	return t, nil
}

func (t *TCP) PollReceive() (loconet.Message, bool) {
	select {
	case m := <-t.rx:
		return m, true
	default:
		return nil, false
	}
}

func (t *TCP) Send(m loconet.Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	t.wmu.Lock()
	defer t.wmu.Unlock()
	if _, err := t.conn.Write(m); err != nil {
		return fmt.Errorf("send bus message: %w", err)
	}
	return nil
}

func (t *TCP) Close() error {
	var err error
	t.closed.Do(func() {
		close(t.done)
		err = t.conn.Close()
	})
	return err
}

// readLoop frames the byte stream into messages. A byte without the opcode
// bit outside a message is noise from joining a live bus mid-message; it is
// skipped until the next opcode.
func (t *TCP) readLoop() {
	r := bufio.NewReader(t.conn)
	for {
		m, err := readMessage(r)
		if err != nil {
			select {
			case <-t.done:
				return
			default:
			}
			if err != io.EOF {
				t.log.Error().Err(err).Msg("bus read failed")
			}
			return
		}
		if err := m.Validate(); err != nil {
			t.log.Warn().Err(err).Hex("frame", m).Msg("dropping invalid frame")
			continue
		}
		select {
		case t.rx <- m:
		default:
			t.log.Warn().Hex("frame", m).Msg("rx buffer full, dropping frame")
		}
	}
}

func readMessage(r *bufio.Reader) (loconet.Message, error) {
	opcode, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	for opcode&0x80 == 0 {
		opcode, err = r.ReadByte()
		if err != nil {
			return nil, err
		}
	}
	second, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	total := loconet.ExpectedLen(opcode, second)
	if total < 2 {
		return loconet.Message{opcode, second}, nil
	}
	m := make(loconet.Message, total)
	m[0], m[1] = opcode, second
	if total > 2 {
		if _, err := io.ReadFull(r, m[2:]); err != nil {
			return nil, err
		}
	}
	return m, nil
}
