package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPIODriver drives Raspberry Pi header pins through /dev/gpiomem.
type RPIODriver struct{}

func NewRPIODriver() (*RPIODriver, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio memory: %w", err)
	}
	return &RPIODriver{}, nil
}

func (d *RPIODriver) Pin(number int) Pin {
	return rpioPin(rpio.Pin(number))
}

func (d *RPIODriver) Close() error {
	return rpio.Close()
}

type rpioPin rpio.Pin

func (p rpioPin) SetDirection(dir Direction) {
	pin := rpio.Pin(p)
	if dir == DirectionOutput {
		pin.Output()
		return
	}
	pin.Input()
	pin.PullUp()
}

func (p rpioPin) Read() bool {
	return rpio.Pin(p).Read() == rpio.High
}

func (p rpioPin) Write(level bool) {
	pin := rpio.Pin(p)
	if level {
		pin.High()
	} else {
		pin.Low()
	}
}
