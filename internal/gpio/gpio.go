// Package gpio abstracts the physical pins behind the module's channels.
package gpio

// Direction configures a pin's electrical role. Inputs always get the
// internal pull-up, matching the module's wiring assumptions.
type Direction int

const (
	DirectionInput Direction = iota
	DirectionOutput
)

// Pin is one physical pin. The module treats pin access as infallible;
// drivers absorb hardware errors and log them.
type Pin interface {
	SetDirection(Direction)
	Read() bool
	Write(bool)
}

// Driver resolves logical pin numbers to pins and owns the underlying
// hardware handle.
type Driver interface {
	Pin(number int) Pin
	Close() error
}
