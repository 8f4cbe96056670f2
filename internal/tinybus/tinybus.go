// Package tinybus adapts tinygo I2C peripherals to seesaw.Bus.
package tinybus

import "tinygo.org/x/drivers"

// Bus talks to one device through a tinygo drivers.I2C, such as
// machine.I2C0 on a microcontroller.
//
// Tx with both w and r performs a repeated start without any pause, which
// the firmware cannot serve, so each phase is its own Tx.
type Bus struct {
	i2c  drivers.I2C
	addr uint16
}

func New(i2c drivers.I2C, addr uint16) *Bus {
	return &Bus{i2c: i2c, addr: addr}
}

func (t *Bus) Write(b []byte, stop bool) error {
	return t.i2c.Tx(t.addr, b, nil)
}

func (t *Bus) Read(n int) ([]byte, error) {
	r := make([]byte, n)
	if err := t.i2c.Tx(t.addr, nil, r); err != nil {
		return nil, err
	}
	return r, nil
}
