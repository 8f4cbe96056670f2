package seesaw

import "encoding/binary"

// ReadGPIOBulk returns the level of all 32 pins, bit n being pin n.
func (d *Device) ReadGPIOBulk() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readGPIOBulkLocked()
}

func (d *Device) readGPIOBulkLocked() (uint32, error) {
	if d.state != Ready {
		return 0, ErrNotReady
	}
	b, err := d.t.ReadRegister(GPIOBase, GPIOBulk, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ConfigureGPIOInput makes the pins in mask inputs.
func (d *Device) ConfigureGPIOInput(mask uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Ready {
		return ErrNotReady
	}
	return d.t.WriteRegister(GPIOBase, GPIODirClrBulk, maskBytes(mask)...)
}

// ConfigureGPIOInputPullup makes the pins in mask inputs with pull-ups.
//
// Setting the output bits while the pull is enabled selects pull-up over
// pull-down. A failed step stops the sequence; earlier steps stay applied.
func (d *Device) ConfigureGPIOInputPullup(mask uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Ready {
		return ErrNotReady
	}
	b := maskBytes(mask)
	for _, r := range []Register{GPIODirClrBulk, GPIOPullEnSet, GPIOBulkSet} {
		if err := d.t.WriteRegister(GPIOBase, r, b...); err != nil {
			d.log.Error().Err(err).Uint32("mask", mask).Msg("pull-up configuration aborted")
			return err
		}
	}
	return nil
}

func maskBytes(mask uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], mask)
	return b[:]
}
