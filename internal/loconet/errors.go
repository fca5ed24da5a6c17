package loconet

import "errors"

var (
	ErrEmptyMessage   = errors.New("loconet: empty message")
	ErrNotAnOpcode    = errors.New("loconet: first byte is not an opcode")
	ErrLengthMismatch = errors.New("loconet: message length mismatch")
	ErrBadChecksum    = errors.New("loconet: checksum mismatch")
)
