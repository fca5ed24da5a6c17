package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/lnioctl/internal/gpio"
	"github.com/danmuck/lnioctl/internal/loconet"
	"github.com/danmuck/lnioctl/internal/sv"
	"github.com/danmuck/lnioctl/internal/testutil/testlog"
)

type fixture struct {
	engine *Engine
	driver *gpio.SimDriver
	table  *sv.Table
	sent   []loconet.Message
	slept  []time.Duration
}

func newFixture(t *testing.T, channels map[int]sv.Channel) *fixture {
	t.Helper()
	testlog.Start(t)

	store := sv.NewMemStore()
	seed := make([]byte, sv.TableSize)
	seed[0] = sv.FirmwareVersion
	seed[1] = sv.DefaultAddrLow
	seed[2] = sv.DefaultAddrHigh
	for n, ch := range channels {
		b := ch.Bytes()
		copy(seed[3+3*n:], b[:])
	}
	store.Seed(seed)

	table := sv.NewTable(store)
	if err := table.Load(); err != nil {
		t.Fatalf("load table: %v", err)
	}

	f := &fixture{driver: gpio.NewSimDriver(), table: table}
	f.engine = New(table, f.driver, func(m loconet.Message) {
		f.sent = append(f.sent, m)
	}, zerolog.Nop())
	f.engine.sleep = func(d time.Duration) {
		f.slept = append(f.slept, d)
	}
	f.engine.Init()
	return f
}

func (f *fixture) pin(channel int) *gpio.SimPin {
	return f.driver.Pin(pinMap[channel]).(*gpio.SimPin)
}

func TestInitConfiguresDirectionsAndSeedsLevels(t *testing.T) {
	driver := gpio.NewSimDriver()
	driver.SetLevel(pinMap[1], true) // input pin already high at boot

	store := sv.NewMemStore()
	seed := make([]byte, sv.TableSize)
	seed[0] = sv.FirmwareVersion
	out := sv.MakeOutput(10, true, sv.PolicyPulse).Bytes()
	in := sv.MakeInput(20, false).Bytes()
	copy(seed[3:], out[:])
	copy(seed[6:], in[:])
	store.Seed(seed)

	table := sv.NewTable(store)
	if err := table.Load(); err != nil {
		t.Fatalf("load table: %v", err)
	}
	e := New(table, driver, func(loconet.Message) {}, zerolog.Nop())
	e.Init()

	if driver.Pin(pinMap[0]).(*gpio.SimPin).Direction() != gpio.DirectionOutput {
		t.Fatalf("channel 0 should be an output pin")
	}
	if driver.Pin(pinMap[1]).(*gpio.SimPin).Direction() != gpio.DirectionInput {
		t.Fatalf("channel 1 should be an input pin")
	}
	if !table.Channel(1).Level() {
		t.Fatalf("level memory not seeded from boot state")
	}

	// A poll right after boot must stay silent.
	var sent int
	e.send = func(loconet.Message) { sent++ }
	e.PollInputs()
	if sent != 0 {
		t.Fatalf("phantom report after boot: %d", sent)
	}
}

func TestPulseOutputDrivesHighThenLow(t *testing.T) {
	f := newFixture(t, map[int]sv.Channel{
		0: sv.MakeOutput(10, true, sv.PolicyPulse),
	})

	f.engine.HandleSwitchRequest(loconet.SwitchRequested{Address: 10, Output: true, Direction: true})

	p := f.pin(0)
	if len(p.History) != 2 || !p.History[0] || p.History[1] {
		t.Fatalf("expected high then low, got %v", p.History)
	}
	if p.Read() {
		t.Fatalf("pulse output must never stay latched high")
	}
	if len(f.slept) != 1 || f.slept[0] != PulseDwell {
		t.Fatalf("unexpected dwell: %v", f.slept)
	}
}

func TestPulseIgnoresOffAndWrongDirection(t *testing.T) {
	f := newFixture(t, map[int]sv.Channel{
		0: sv.MakeOutput(10, true, sv.PolicyPulse),
	})

	f.engine.HandleSwitchRequest(loconet.SwitchRequested{Address: 10, Output: false, Direction: true})
	f.engine.HandleSwitchRequest(loconet.SwitchRequested{Address: 10, Output: true, Direction: false})

	if got := f.pin(0).History; len(got) != 0 {
		t.Fatalf("expected no pin writes, got %v", got)
	}
}

func TestContinuousHardwareFollowsOutputFlag(t *testing.T) {
	f := newFixture(t, map[int]sv.Channel{
		0: sv.MakeOutput(10, true, sv.PolicyContinuousHardware),
		1: sv.MakeOutput(10, false, sv.PolicyContinuousHardware),
	})

	f.engine.HandleSwitchRequest(loconet.SwitchRequested{Address: 10, Output: true, Direction: true})
	if !f.pin(0).Read() {
		t.Fatalf("matching-polarity channel should be high")
	}
	f.engine.HandleSwitchRequest(loconet.SwitchRequested{Address: 10, Output: false, Direction: true})
	if f.pin(0).Read() {
		t.Fatalf("OFF message should drive the pin low")
	}

	// Opposite direction lands on the other record.
	f.engine.HandleSwitchRequest(loconet.SwitchRequested{Address: 10, Output: true, Direction: false})
	if !f.pin(1).Read() {
		t.Fatalf("opposite-polarity channel should be high")
	}
	if len(f.pin(0).History) != 2 {
		t.Fatalf("first channel touched by foreign direction: %v", f.pin(0).History)
	}
}

func TestContinuousSoftwareTogglesOnOnMessages(t *testing.T) {
	f := newFixture(t, map[int]sv.Channel{
		0: sv.MakeOutput(10, false, sv.PolicyContinuousSoftware),
	})

	f.engine.HandleSwitchRequest(loconet.SwitchRequested{Address: 10, Output: true, Direction: true})
	if f.pin(0).Read() {
		t.Fatalf("direction=true should drive the pin low")
	}
	f.engine.HandleSwitchRequest(loconet.SwitchRequested{Address: 10, Output: true, Direction: false})
	if !f.pin(0).Read() {
		t.Fatalf("direction=false should drive the pin high")
	}

	before := len(f.pin(0).History)
	f.engine.HandleSwitchRequest(loconet.SwitchRequested{Address: 10, Output: false, Direction: true})
	f.engine.HandleSwitchRequest(loconet.SwitchRequested{Address: 10, Output: false, Direction: false})
	if len(f.pin(0).History) != before {
		t.Fatalf("OFF messages must be ignored entirely")
	}
}

func TestFirstMatchingChannelWins(t *testing.T) {
	f := newFixture(t, map[int]sv.Channel{
		0: sv.MakeOutput(10, true, sv.PolicyPulse),
		1: sv.MakeOutput(10, true, sv.PolicyPulse),
	})

	f.engine.HandleSwitchRequest(loconet.SwitchRequested{Address: 10, Output: true, Direction: true})

	if len(f.pin(0).History) != 2 {
		t.Fatalf("first channel should have pulsed: %v", f.pin(0).History)
	}
	if len(f.pin(1).History) != 0 {
		t.Fatalf("duplicate record must be unreachable: %v", f.pin(1).History)
	}
}

func TestScanContinuesPastNonFiringRecord(t *testing.T) {
	// Channel 0 is bound to the address but its pulse polarity rejects the
	// event; channel 1 still fires.
	f := newFixture(t, map[int]sv.Channel{
		0: sv.MakeOutput(10, false, sv.PolicyPulse),
		1: sv.MakeOutput(10, true, sv.PolicyContinuousSoftware),
	})

	f.engine.HandleSwitchRequest(loconet.SwitchRequested{Address: 10, Output: true, Direction: true})

	if len(f.pin(0).History) != 0 {
		t.Fatalf("non-firing record wrote to its pin: %v", f.pin(0).History)
	}
	if len(f.pin(1).History) != 1 {
		t.Fatalf("later record should have fired: %v", f.pin(1).History)
	}
}

func TestInputEdgeReportedExactlyOnce(t *testing.T) {
	f := newFixture(t, map[int]sv.Channel{
		0: sv.MakeInput(33, true),
	})

	f.engine.PollInputs()
	if len(f.sent) != 0 {
		t.Fatalf("no edge yet, got %d reports", len(f.sent))
	}

	f.driver.SetLevel(pinMap[0], true)
	f.engine.PollInputs()
	f.engine.PollInputs()
	if len(f.sent) != 1 {
		t.Fatalf("expected exactly one report, got %d", len(f.sent))
	}

	// The report carries the record bytes from before the memory update:
	// address binding in byte 1, polarity set and stale level clear in byte 2.
	m := f.sent[0]
	if m.Opcode() != loconet.OpcInputRep {
		t.Fatalf("unexpected opcode %02X", m.Opcode())
	}
	if m[1] != 32 {
		t.Fatalf("unexpected address byte %d", m[1])
	}
	if m[2]&0x20 == 0 || m[2]&0x10 != 0 {
		t.Fatalf("unexpected flags byte %02X", m[2])
	}

	// The falling edge reports once more, now with the remembered high level.
	f.driver.SetLevel(pinMap[0], false)
	f.engine.PollInputs()
	if len(f.sent) != 2 {
		t.Fatalf("expected second report, got %d", len(f.sent))
	}
	if f.sent[1][2]&0x10 == 0 {
		t.Fatalf("second report should carry the stale high level")
	}
}
