// Package sv owns the module's system-variable table: the in-memory mirror
// of the persisted configuration bytes, addressed the same way the SV
// programming protocol addresses them.
package sv

import "sync"

// FirmwareVersion is the running firmware version byte. A stored table whose
// version byte differs is treated as invalid configuration on boot.
const FirmwareVersion byte = 101

// Factory defaults applied when the stored version does not match.
const (
	DefaultAddrLow  byte = 81
	DefaultAddrHigh byte = 1
)

const (
	idxVersion  = 0
	idxAddrLow  = 1
	idxAddrHigh = 2
	channelBase = 3

	// NumChannels is the fixed channel count of the module.
	NumChannels = 16
)

// Table is the owned configuration state: module identity plus one 3-byte
// record per channel. All mutation happens on the dispatch goroutine; the
// lock only guards concurrent reads from the status surface.
type Table struct {
	mu    sync.RWMutex
	store ByteStore
	data  [TableSize]byte
}

func NewTable(store ByteStore) *Table {
	return &Table{store: store}
}

// Load populates the in-memory table from persistent storage.
func (t *Table) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 0; i < TableSize; i++ {
		b, err := t.store.Read(i)
		if err != nil {
			return err
		}
		t.data[i] = b
	}
	return nil
}

// Validate checks the stored version byte. On mismatch it resets the
// identity bytes to factory defaults and persists exactly those three
// bytes; channel records are left as found. Returns true when a reset
// happened.
func (t *Table) Validate() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.data[idxVersion] == FirmwareVersion {
		return false, nil
	}
	t.data[idxVersion] = FirmwareVersion
	t.data[idxAddrLow] = DefaultAddrLow
	t.data[idxAddrHigh] = DefaultAddrHigh
	for _, i := range []int{idxVersion, idxAddrLow, idxAddrHigh} {
		if err := t.store.Write(i, t.data[i]); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Byte returns one table byte. Out-of-range reads return zero; foreign SV
// register indexes must never take the module down.
func (t *Table) Byte(index int) byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if index < 0 || index >= TableSize {
		return 0
	}
	return t.data[index]
}

// ReadRange returns count bytes starting at index, zero-padded past the end
// of the table.
func (t *Table) ReadRange(index, count int) []byte {
	out := make([]byte, count)
	for i := 0; i < count; i++ {
		out[i] = t.Byte(index + i)
	}
	return out
}

// WriteByte updates one table byte and persists it synchronously.
func (t *Table) WriteByte(index int, value byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= TableSize {
		return ErrIndexOutOfRange
	}
	t.data[index] = value
	return t.store.Write(index, value)
}

func (t *Table) Version() byte  { return t.Byte(idxVersion) }
func (t *Table) AddrLow() byte  { return t.Byte(idxAddrLow) }
func (t *Table) AddrHigh() byte { return t.Byte(idxAddrHigh) }

// Channel returns a copy of channel n's 3-byte record.
func (t *Table) Channel(n int) Channel {
	t.mu.RLock()
	defer t.mu.RUnlock()
	base := channelBase + 3*n
	return Channel{
		Cnfg:   t.data[base],
		Value1: t.data[base+1],
		Value2: t.data[base+2],
	}
}

// SetChannelLevel updates channel n's level-memory bit in memory only. The
// bit rides in the persisted record but level transitions are deliberately
// never pushed to the store.
func (t *Table) SetChannelLevel(n int, level bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := channelBase + 3*n + 2
	if level {
		t.data[idx] |= value2Level
	} else {
		t.data[idx] &^= value2Level
	}
}

// Snapshot copies the whole table, for the status surface.
func (t *Table) Snapshot() [TableSize]byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.data
}
