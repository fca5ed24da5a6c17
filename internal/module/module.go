// Package module is the single-threaded orchestration of the I/O endpoint:
// poll the bus, recognize switch/sensor traffic, fall through to the SV
// programming path, then sweep the inputs.
package module

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/lnioctl/internal/engine"
	"github.com/danmuck/lnioctl/internal/gpio"
	"github.com/danmuck/lnioctl/internal/loconet"
	"github.com/danmuck/lnioctl/internal/loconet/peer"
	"github.com/danmuck/lnioctl/internal/observability"
	"github.com/danmuck/lnioctl/internal/sv"
	"github.com/danmuck/lnioctl/internal/transport"
)

// DefaultIdleInterval paces the dispatch loop when the bus is quiet.
const DefaultIdleInterval = time.Millisecond

// Module glues the configuration table, channel engine and transport into
// one dispatch loop. Everything mutating runs on the Run goroutine; Status
// is the only concurrent reader.
type Module struct {
	table     *sv.Table
	engine    *engine.Engine
	transport transport.Transport
	log       zerolog.Logger
	idle      time.Duration
	started   time.Time
}

func New(table *sv.Table, driver gpio.Driver, tr transport.Transport, log zerolog.Logger) *Module {
	m := &Module{
		table:     table,
		transport: tr,
		log:       log,
		idle:      DefaultIdleInterval,
		started:   time.Now(),
	}
	m.engine = engine.New(table, driver, m.sendReport, log)
	return m
}

// SetIdleInterval tunes how long Run sleeps when the bus is quiet.
func (m *Module) SetIdleInterval(d time.Duration) {
	if d > 0 {
		m.idle = d
	}
}

func (m *Module) sendReport(msg loconet.Message) {
	if err := m.transport.Send(msg); err != nil {
		m.log.Error().Err(err).Msg("input report send failed")
		return
	}
	observability.RecordMessageSent("input_report")
}

// Boot loads and validates the stored configuration. On a version mismatch
// the identity bytes are factory-reset and the channels stay unconfigured
// until the next boot; pin init is skipped for that run.
func (m *Module) Boot() error {
	if err := m.table.Load(); err != nil {
		return err
	}
	reset, err := m.table.Validate()
	if err != nil {
		return err
	}
	if reset {
		m.log.Warn().
			Uint8("version", sv.FirmwareVersion).
			Uint8("addr_low", sv.DefaultAddrLow).
			Uint8("addr_high", sv.DefaultAddrHigh).
			Msg("stored configuration invalid, identity reset to defaults")
		return nil
	}
	m.engine.Init()
	m.log.Info().
		Uint8("addr_low", m.table.AddrLow()).
		Uint8("addr_high", m.table.AddrHigh()).
		Msg("configuration loaded")
	return nil
}

// Run drives the dispatch loop until the context is canceled.
func (m *Module) Run(ctx context.Context) error {
	m.log.Info().Msg("dispatch loop running")
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("dispatch loop stopped")
			return ctx.Err()
		default:
		}
		if !m.Iterate() {
			time.Sleep(m.idle)
		}
	}
}

// Iterate runs one loop turn: at most one inbound message, then a full
// input sweep. Returns whether a message was handled, so Run can idle on a
// quiet bus.
func (m *Module) Iterate() bool {
	msg, ok := m.transport.PollReceive()
	if ok {
		m.handleMessage(msg)
	}
	m.engine.PollInputs()
	return ok
}

func (m *Module) handleMessage(msg loconet.Message) {
	m.log.Debug().Hex("frame", msg).Msg("rx")

	switch ev := loconet.Recognize(msg).(type) {
	case loconet.SensorChanged:
		observability.RecordMessageReceived("sensor")
		m.log.Debug().Uint16("address", ev.Address).Bool("active", ev.Active).Msg("sensor changed")
	case loconet.SwitchRequested:
		observability.RecordMessageReceived("switch_request")
		m.log.Debug().Uint16("address", ev.Address).Bool("output", ev.Output).Bool("direction", ev.Direction).Msg("switch requested")
		m.engine.HandleSwitchRequest(ev)
	case loconet.SwitchReport:
		observability.RecordMessageReceived("switch_report")
		m.log.Debug().Uint16("address", ev.Address).Bool("output", ev.Output).Bool("direction", ev.Direction).Msg("switch report")
	case loconet.SwitchState:
		observability.RecordMessageReceived("switch_state")
		m.log.Debug().Uint16("address", ev.Address).Bool("output", ev.Output).Bool("direction", ev.Direction).Msg("switch state")
	case loconet.Unrecognized:
		if m.handlePeer(msg) {
			observability.RecordMessageReceived("peer")
		} else {
			observability.RecordMessageReceived("ignored")
		}
	}
}

// handlePeer runs the SV programming path. Foreign-addressed or unknown
// frames are dropped silently; a malformed frame must never take the loop
// down.
func (m *Module) handlePeer(msg loconet.Message) bool {
	p, err := peer.Decode(msg)
	if err != nil {
		return false
	}
	if !p.Matches(m.table.AddrLow(), m.table.AddrHigh()) {
		return false
	}

	reg := int(p.Data(2))
	switch p.Data(1) {
	case peer.CmdRead:
		observability.RecordSVCommand("read")
		payload := m.table.ReadRange(reg, 3)
		m.respond(p, payload[0], payload[1], payload[2])
		return true
	case peer.CmdWrite:
		observability.RecordSVCommand("write")
		value := p.Data(4)
		// Register 0 holds the firmware version and stays read-only.
		if reg > 0 {
			if err := m.table.WriteByte(reg, value); err != nil {
				m.log.Error().Err(err).Int("register", reg).Msg("sv write failed")
			} else {
				m.log.Debug().Int("register", reg).Uint8("value", value).Msg("sv written")
			}
		}
		m.respond(p, 0x00, 0x00, value)
		return true
	default:
		return false
	}
}

// respond echoes an SV command back to its requester with a 3-byte payload.
func (m *Module) respond(p peer.Packet, p0, p1, p2 byte) {
	r := peer.Response{
		Src:     m.table.AddrLow(),
		DstLow:  p.Src,
		DstHigh: p.DstHigh,
	}
	r.D[0] = p.D[0] // original command, as received
	r.D[1] = p.D[1] // requested register, as received
	r.D[2] = m.table.Version()
	r.D[3] = 0x00
	r.D[4] = m.table.AddrHigh()
	r.D[5] = p0
	r.D[6] = p1
	r.D[7] = p2
	if err := m.transport.Send(r.Encode()); err != nil {
		m.log.Error().Err(err).Msg("sv response send failed")
		return
	}
	observability.RecordMessageSent("sv_response")
}
