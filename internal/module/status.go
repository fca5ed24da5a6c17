package module

import (
	"time"

	"github.com/danmuck/lnioctl/internal/sv"
)

// ChannelStatus is one decoded channel record for the status surface.
type ChannelStatus struct {
	Index    int    `json:"index"`
	Role     string `json:"role"`
	Address  uint16 `json:"address"`
	Polarity bool   `json:"polarity"`
	Policy   string `json:"policy,omitempty"`
	Level    bool   `json:"level,omitempty"`
}

// Status is a read-only snapshot of the module for the HTTP surface.
type Status struct {
	Version  uint8           `json:"version"`
	AddrLow  uint8           `json:"addr_low"`
	AddrHigh uint8           `json:"addr_high"`
	Uptime   string          `json:"uptime"`
	Channels []ChannelStatus `json:"channels"`
}

func (m *Module) Status() Status {
	s := Status{
		Version:  m.table.Version(),
		AddrLow:  m.table.AddrLow(),
		AddrHigh: m.table.AddrHigh(),
		Uptime:   time.Since(m.started).String(),
		Channels: make([]ChannelStatus, 0, sv.NumChannels),
	}
	for i := 0; i < sv.NumChannels; i++ {
		ch := m.table.Channel(i)
		cs := ChannelStatus{
			Index:    i,
			Address:  ch.Address(),
			Polarity: ch.Polarity(),
		}
		if ch.IsOutput() {
			cs.Role = "output"
			cs.Policy = ch.Policy().String()
		} else {
			cs.Role = "input"
			cs.Level = ch.Level()
		}
		s.Channels = append(s.Channels, cs)
	}
	return s
}

// SVTable returns a copy of the raw configuration bytes.
func (m *Module) SVTable() []byte {
	snap := m.table.Snapshot()
	return snap[:]
}
