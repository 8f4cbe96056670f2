// Package bus adapts concrete I2C stacks to seesaw.Bus.
package bus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
)

// Periph talks to one device through a periph.io I2C bus.
//
// Linux i2c-dev cannot hold the bus between two transfers, so the stop flag
// of Write is not expressible; the firmware accepts a stop after the address
// write as long as the settle delay is respected.
type Periph struct {
	dev    *i2c.Dev
	closer i2c.BusCloser
}

// NewPeriph wraps an already opened bus.
func NewPeriph(b i2c.Bus, addr uint16) *Periph {
	return &Periph{dev: &i2c.Dev{Bus: b, Addr: addr}}
}

// Open opens the named bus ("" for the first one) and optionally sets its
// clock. host.Init must have been called.
func Open(name string, addr uint16, speed physic.Frequency) (*Periph, error) {
	bc, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	if speed > 0 {
		if err := bc.SetSpeed(speed); err != nil {
			_ = bc.Close()
			return nil, fmt.Errorf("i2c bus %q: set speed %s: %w", name, speed, err)
		}
	}
	p := NewPeriph(bc, addr)
	p.closer = bc
	return p, nil
}

func (p *Periph) String() string {
	return fmt.Sprintf("%s@0x%02X", p.dev.Bus, p.dev.Addr)
}

// Write sends b in one transfer. stop is ignored: i2c-dev always ends the
// transfer with a stop condition.
func (p *Periph) Write(b []byte, stop bool) error {
	return p.dev.Tx(b, nil)
}

func (p *Periph) Read(n int) ([]byte, error) {
	r := make([]byte, n)
	if err := p.dev.Tx(nil, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases the bus when it was opened by Open.
func (p *Periph) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
