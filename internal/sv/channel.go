package sv

// Channel record bit layout. cnfg selects role and output policy, value1
// binds the bus address, value2 carries polarity and the ephemeral
// level-memory bit.
const (
	cnfgOutput        byte = 0x80 // bit 7: 1 output, 0 input
	cnfgPulse         byte = 0x08 // bit 3: 1 pulse, 0 continuous
	cnfgHardwareReset byte = 0x04 // bit 2: continuous only

	value2Polarity byte = 0x20 // bit 5
	value2Level    byte = 0x10 // bit 4, input edge memory
)

// Channel is one decoded 3-byte channel record.
type Channel struct {
	Cnfg   byte
	Value1 byte
	Value2 byte
}

// IsOutput reports whether the channel drives a pin rather than reading one.
func (c Channel) IsOutput() bool { return c.Cnfg&cnfgOutput != 0 }

// IsPulse reports the self-resetting output policy. Pulse overrides the
// reset-policy bit entirely.
func (c Channel) IsPulse() bool { return c.Cnfg&cnfgPulse != 0 }

// HardwareReset reports the electrical-state-driven reset policy for
// continuous outputs. Meaningless for pulse outputs.
func (c Channel) HardwareReset() bool { return c.Cnfg&cnfgHardwareReset != 0 }

// Address returns the bound 1-based bus address. value1 stores it minus one.
func (c Channel) Address() uint16 { return uint16(c.Value1) + 1 }

// Polarity reports which logical direction this record responds to.
func (c Channel) Polarity() bool { return c.Value2&value2Polarity != 0 }

// Level returns the last observed electrical level for an input channel.
func (c Channel) Level() bool { return c.Value2&value2Level != 0 }

// MakeInput builds an input record bound to a 1-based address, for tests
// and tooling.
func MakeInput(address uint16, polarity bool) Channel {
	c := Channel{Value1: byte(address - 1)}
	if polarity {
		c.Value2 |= value2Polarity
	}
	return c
}

// OutputPolicy selects one of the three actuation policies of an output
// record.
type OutputPolicy int

const (
	PolicyPulse OutputPolicy = iota
	PolicyContinuousHardware
	PolicyContinuousSoftware
)

func (p OutputPolicy) String() string {
	switch p {
	case PolicyPulse:
		return "pulse"
	case PolicyContinuousHardware:
		return "continuous-hardware"
	case PolicyContinuousSoftware:
		return "continuous-software"
	default:
		return "unknown"
	}
}

// Policy returns the output policy encoded in cnfg.
func (c Channel) Policy() OutputPolicy {
	switch {
	case c.IsPulse():
		return PolicyPulse
	case c.HardwareReset():
		return PolicyContinuousHardware
	default:
		return PolicyContinuousSoftware
	}
}

// MakeOutput builds an output record bound to a 1-based address, for tests
// and tooling.
func MakeOutput(address uint16, polarity bool, policy OutputPolicy) Channel {
	c := Channel{Cnfg: cnfgOutput, Value1: byte(address - 1)}
	switch policy {
	case PolicyPulse:
		c.Cnfg |= cnfgPulse
	case PolicyContinuousHardware:
		c.Cnfg |= cnfgHardwareReset
	}
	if polarity {
		c.Value2 |= value2Polarity
	}
	return c
}

// Bytes returns the record in table order.
func (c Channel) Bytes() [3]byte {
	return [3]byte{c.Cnfg, c.Value1, c.Value2}
}
