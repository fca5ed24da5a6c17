package sv

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// TableSize is the persisted table length: identity bytes plus 16 channel
// records of 3 bytes each.
const TableSize = 51

var ErrIndexOutOfRange = errors.New("sv: store index out of range")

// ByteStore is the persistent byte table behind the configuration store.
// Writes are synchronous; durability is best effort, there is no
// transactional guarantee.
type ByteStore interface {
	Read(index int) (byte, error)
	Write(index int, value byte) error
}

// FileStore persists the table in one small file, standing in for the
// original EEPROM. The whole file is rewritten on every byte write.
type FileStore struct {
	mu   sync.Mutex
	path string
	data []byte
}

// OpenFileStore opens or creates the backing file, padding it to TableSize
// with zero bytes.
func OpenFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open store file (%s): %w", path, err)
		}
		data = nil
	}
	if len(data) < TableSize {
		data = append(data, make([]byte, TableSize-len(data))...)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("init store file (%s): %w", path, err)
		}
	}
	return &FileStore{path: path, data: data}, nil
}

func (fs *FileStore) Read(index int) (byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if index < 0 || index >= len(fs.data) {
		return 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return fs.data[index], nil
}

func (fs *FileStore) Write(index int, value byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if index < 0 || index >= len(fs.data) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	fs.data[index] = value
	return os.WriteFile(fs.path, fs.data, 0o644)
}

// MemStore is an in-memory ByteStore for tests and simulated runs. It
// records the order of writes so tests can assert persistence behavior.
type MemStore struct {
	mu     sync.Mutex
	data   [TableSize]byte
	Writes []int
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

// Seed fills the store contents without recording writes.
func (ms *MemStore) Seed(data []byte) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	copy(ms.data[:], data)
}

func (ms *MemStore) Read(index int) (byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if index < 0 || index >= TableSize {
		return 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return ms.data[index], nil
}

func (ms *MemStore) Write(index int, value byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if index < 0 || index >= TableSize {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	ms.data[index] = value
	ms.Writes = append(ms.Writes, index)
	return nil
}

// Byte returns the current stored value, for assertions.
func (ms *MemStore) Byte(index int) byte {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.data[index]
}
