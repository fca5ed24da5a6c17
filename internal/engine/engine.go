// Package engine turns channel records into pin behavior: input edge
// reporting and the three output actuation policies.
package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/lnioctl/internal/gpio"
	"github.com/danmuck/lnioctl/internal/loconet"
	"github.com/danmuck/lnioctl/internal/observability"
	"github.com/danmuck/lnioctl/internal/sv"
)

// pinMap is the fixed channel index to physical pin binding.
var pinMap = [sv.NumChannels]int{2, 3, 4, 5, 6, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19}

// PulseDwell is how long a pulse output stays high. The dwell blocks the
// whole dispatch loop; the module is single-threaded on purpose.
const PulseDwell = 150 * time.Millisecond

// Engine owns the 16 channel pins. All methods run on the dispatch
// goroutine.
type Engine struct {
	table *sv.Table
	pins  [sv.NumChannels]gpio.Pin
	send  func(loconet.Message)
	dwell time.Duration
	sleep func(time.Duration)
	log   zerolog.Logger
}

// New resolves the channel pins through the driver. send carries input
// reports to the transport.
func New(table *sv.Table, driver gpio.Driver, send func(loconet.Message), log zerolog.Logger) *Engine {
	e := &Engine{
		table: table,
		send:  send,
		dwell: PulseDwell,
		sleep: time.Sleep,
		log:   log,
	}
	for i := range e.pins {
		e.pins[i] = driver.Pin(pinMap[i])
	}
	return e
}

// Init configures pin directions from the channel records and seeds each
// input's level memory from the current electrical state, so the first poll
// after boot does not report a phantom transition. Only called on a
// valid-configuration boot.
func (e *Engine) Init() {
	for i := 0; i < sv.NumChannels; i++ {
		ch := e.table.Channel(i)
		if ch.IsOutput() {
			e.pins[i].SetDirection(gpio.DirectionOutput)
			continue
		}
		e.pins[i].SetDirection(gpio.DirectionInput)
		e.table.SetChannelLevel(i, e.pins[i].Read())
	}
}

// PollInputs compares every input channel's electrical level against its
// level memory and reports each change exactly once. The report carries the
// record's value1/value2 bytes as-is, before the memory update.
func (e *Engine) PollInputs() {
	for i := 0; i < sv.NumChannels; i++ {
		ch := e.table.Channel(i)
		if ch.IsOutput() {
			continue
		}
		level := e.pins[i].Read()
		if level == ch.Level() {
			continue
		}
		e.log.Debug().
			Int("channel", i).
			Int("pin", pinMap[i]).
			Bool("level", level).
			Uint16("address", ch.Address()).
			Msg("input changed")
		e.send(loconet.InputReport(ch.Value1, ch.Value2))
		observability.RecordInputReport()
		e.table.SetChannelLevel(i, level)
	}
}

// HandleSwitchRequest actuates the first output channel bound to the
// event's address whose policy accepts the event. Channels whose policy
// ignores the event do not stop the scan; at most one channel fires.
func (e *Engine) HandleSwitchRequest(ev loconet.SwitchRequested) {
	for i := 0; i < sv.NumChannels; i++ {
		ch := e.table.Channel(i)
		if !ch.IsOutput() || ch.Address() != ev.Address {
			continue
		}
		switch {
		case ch.IsPulse():
			// Pulse listens to ON messages for its polarity only and
			// always self-resets.
			if ch.Polarity() == ev.Direction && ev.Output {
				e.pins[i].Write(true)
				e.sleep(e.dwell)
				e.pins[i].Write(false)
				e.actuated(i, ch, ev)
				return
			}
		case ch.HardwareReset():
			// Continuous with electrical reset: one record per direction,
			// pin follows the output flag.
			if ch.Polarity() == ev.Direction {
				e.pins[i].Write(ev.Output)
				e.actuated(i, ch, ev)
				return
			}
		default:
			// Continuous with software reset: one record serves both
			// directions as a toggle, OFF messages are ignored.
			if ev.Output {
				e.pins[i].Write(!ev.Direction)
				e.actuated(i, ch, ev)
				return
			}
		}
	}
}

func (e *Engine) actuated(i int, ch sv.Channel, ev loconet.SwitchRequested) {
	policy := ch.Policy()
	e.log.Debug().
		Int("channel", i).
		Int("pin", pinMap[i]).
		Uint16("address", ev.Address).
		Bool("direction", ev.Direction).
		Bool("output", ev.Output).
		Stringer("policy", policy).
		Msg("output actuated")
	observability.RecordActuation(policy.String())
}
