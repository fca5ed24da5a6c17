package sv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenFileStoreCreatesAndPads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sv.bin")
	fs, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	b, err := fs.Read(TableSize - 1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if b != 0 {
		t.Fatalf("fresh store not zeroed: %02X", b)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != TableSize {
		t.Fatalf("unexpected file size: %d", info.Size())
	}
}

func TestFileStoreWriteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sv.bin")
	fs, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := fs.Write(5, 0x2A); err != nil {
		t.Fatalf("write: %v", err)
	}

	again, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	b, err := again.Read(5)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if b != 0x2A {
		t.Fatalf("write lost across reopen: %02X", b)
	}
}

func TestFileStoreBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sv.bin")
	fs, err := OpenFileStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := fs.Read(TableSize); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected out of range read, got %v", err)
	}
	if err := fs.Write(-1, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected out of range write, got %v", err)
	}
}
