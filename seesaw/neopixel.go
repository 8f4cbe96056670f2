package seesaw

import (
	"encoding/binary"
	"fmt"
)

// MaxNeoPixelChunk is the largest pixel payload of one NeoPixelBuf write.
const MaxNeoPixelChunk = 30

// InitNeoPixel selects the output pin, the 800kHz data rate and the buffer
// length count*bpp. The first failing write aborts.
func (d *Device) InitNeoPixel(pin uint8, count uint16, bpp uint8) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Ready {
		return ErrNotReady
	}
	n := int(count) * int(bpp)
	if n > 0xFFFF {
		return fmt.Errorf("seesaw: neopixel buffer of %d bytes exceeds 16-bit length", n)
	}

	if err := d.t.WriteRegister(NeoPixelBase, NeoPixelPin, pin); err != nil {
		d.log.Error().Err(err).Msg("failed to set neopixel pin")
		return err
	}
	if err := d.t.WriteRegister(NeoPixelBase, NeoPixelSpeed, NeoPixelSpeed800kHz); err != nil {
		d.log.Error().Err(err).Msg("failed to set neopixel speed")
		return err
	}
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(n))
	if err := d.t.WriteRegister(NeoPixelBase, NeoPixelBufLength, l[:]...); err != nil {
		d.log.Error().Err(err).Msg("failed to set neopixel buffer length")
		return err
	}

	d.neoLen = n
	d.log.Debug().Uint8("pin", pin).Uint16("pixels", count).Uint8("bpp", bpp).
		Stringer("freq", NeoPixelFreq).Msg("neopixel initialized")
	return nil
}

// WriteNeoPixelBuffer stores data at offset in the device pixel buffer.
// The caller chunks: len(data) must not exceed MaxNeoPixelChunk.
//
// Writing past the length declared by InitNeoPixel is a programming error
// and panics.
func (d *Device) WriteNeoPixelBuffer(offset uint16, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Ready {
		return ErrNotReady
	}
	if len(data) > MaxNeoPixelChunk {
		panic(fmt.Sprintf("seesaw: neopixel chunk of %d bytes exceeds %d", len(data), MaxNeoPixelChunk))
	}
	if end := int(offset) + len(data); end > d.neoLen {
		panic(fmt.Sprintf("seesaw: neopixel write [%d:%d] beyond declared length %d", offset, end, d.neoLen))
	}
	p := make([]byte, 2, 2+len(data))
	binary.BigEndian.PutUint16(p, offset)
	p = append(p, data...)
	return d.t.WriteRegister(NeoPixelBase, NeoPixelBuf, p...)
}

// ShowNeoPixels latches the device buffer onto the LEDs.
func (d *Device) ShowNeoPixels() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Ready {
		return ErrNotReady
	}
	return d.t.WriteRegister(NeoPixelBase, NeoPixelShow)
}
