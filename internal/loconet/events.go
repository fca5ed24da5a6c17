package loconet

// Event is one recognized switch/sensor message. Consumers switch over the
// concrete variants; Unrecognized marks traffic the recognizer does not
// claim, which the dispatch loop then offers to the peer-transfer path.
type Event interface {
	event()
}

// SensorChanged reports another module's sensor transition. Observation
// only; it never changes this module's state.
type SensorChanged struct {
	Address uint16
	Active  bool
}

// SwitchRequested asks some module to actuate an output bound to Address.
type SwitchRequested struct {
	Address   uint16
	Output    bool
	Direction bool
}

// SwitchReport is a feedback report for a switch. Observation only.
type SwitchReport struct {
	Address   uint16
	Output    bool
	Direction bool
}

// SwitchState is a switch state announcement. Observation only.
type SwitchState struct {
	Address   uint16
	Output    bool
	Direction bool
}

// Unrecognized is any message outside the standard switch/sensor opcodes.
type Unrecognized struct{}

func (SensorChanged) event()   {}
func (SwitchRequested) event() {}
func (SwitchReport) event()    {}
func (SwitchState) event()     {}
func (Unrecognized) event()    {}

// Recognize decodes the standard switch/sensor opcodes into their event
// variants. The caller is expected to have validated framing already.
func Recognize(m Message) Event {
	if len(m) < 4 {
		return Unrecognized{}
	}
	switch m.Opcode() {
	case OpcInputRep:
		in1, in2 := m[1], m[2]
		addr := (uint16(in1)|uint16(in2&0x0F)<<7)<<1 + uint16(in2>>5&0x01) + 1
		return SensorChanged{Address: addr, Active: in2&0x10 != 0}
	case OpcSwReq:
		addr, output, direction := switchArgs(m[1], m[2])
		return SwitchRequested{Address: addr, Output: output, Direction: direction}
	case OpcSwRep:
		addr, output, direction := switchArgs(m[1], m[2])
		return SwitchReport{Address: addr, Output: output, Direction: direction}
	case OpcSwState:
		addr, output, direction := switchArgs(m[1], m[2])
		return SwitchState{Address: addr, Output: output, Direction: direction}
	default:
		return Unrecognized{}
	}
}

func switchArgs(sw1, sw2 byte) (addr uint16, output, direction bool) {
	addr = (uint16(sw1) | uint16(sw2&0x0F)<<7) + 1
	return addr, sw2&0x10 != 0, sw2&0x20 != 0
}
