// Package loconet owns the raw bus message contract.
//
// Ownership boundary:
// - message framing primitives (opcode length classes, checksum)
// - switch/sensor opcode recognition into typed events
// - builders for the messages this module originates
package loconet
