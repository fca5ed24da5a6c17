package loconet

import "testing"

func TestRecognizeSwitchOpcodes(t *testing.T) {
	// Address 300 (1-based): a = 299 = 0b100101011, sw1 = 0x2B, sw2 low nibble = 0x02.
	cases := []struct {
		name   string
		opcode byte
		sw2    byte
	}{
		{"request", OpcSwReq, 0x32},
		{"report", OpcSwRep, 0x32},
		{"state", OpcSwState, 0x32},
	}
	for _, tc := range cases {
		m := Seal([]byte{tc.opcode, 0x2B, tc.sw2})
		var addr uint16
		var output, direction bool
		switch ev := Recognize(m).(type) {
		case SwitchRequested:
			addr, output, direction = ev.Address, ev.Output, ev.Direction
		case SwitchReport:
			addr, output, direction = ev.Address, ev.Output, ev.Direction
		case SwitchState:
			addr, output, direction = ev.Address, ev.Output, ev.Direction
		default:
			t.Fatalf("%s: unexpected event %T", tc.name, ev)
		}
		if addr != 300 {
			t.Fatalf("%s: unexpected address %d", tc.name, addr)
		}
		if !output || !direction {
			t.Fatalf("%s: expected output and direction set", tc.name)
		}
	}
}

func TestRecognizeSensorReport(t *testing.T) {
	// in1=0x05, in2 has level set (bit 4) and odd bit set (bit 5).
	m := Seal([]byte{OpcInputRep, 0x05, 0x30})
	ev, ok := Recognize(m).(SensorChanged)
	if !ok {
		t.Fatalf("expected SensorChanged, got %T", Recognize(m))
	}
	if ev.Address != 12 {
		t.Fatalf("unexpected sensor address: %d", ev.Address)
	}
	if !ev.Active {
		t.Fatalf("expected active sensor")
	}
}

func TestRecognizeLeavesForeignOpcodesAlone(t *testing.T) {
	cases := []Message{
		Seal([]byte{0x83}),                         // global power on
		Seal([]byte{OpcPeerXfer, 0x10, 0x51, 0x00, 0x01, 0x00, 0x02, 0x05, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}),
		Seal([]byte{0xA0, 0x01, 0x20}),             // loco speed
	}
	for _, m := range cases {
		if _, ok := Recognize(m).(Unrecognized); !ok {
			t.Fatalf("expected Unrecognized for opcode 0x%02X, got %T", m.Opcode(), Recognize(m))
		}
	}
}
