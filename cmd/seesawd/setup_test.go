package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-seesaw/neopixel"
)

type fakeSession struct {
	initErr error
	failed  error
}

func (f *fakeSession) InitNeoPixel(pin uint8, count uint16, bpp uint8) error { return f.initErr }
func (f *fakeSession) WriteNeoPixelBuffer(offset uint16, data []byte) error { return nil }
func (f *fakeSession) ShowNeoPixels() error { return nil }
func (f *fakeSession) Fail(err error) { f.failed = err }

func TestSetupLightInitFailureFailsSession(t *testing.T) {
	s := &fakeSession{initErr: errors.New("nack")}
	strip := neopixel.New(&neopixel.Opts{NumLEDs: 4, Order: neopixel.GRB})
	err := setupLight(strip, s)
	require.Error(t, err)
	assert.True(t, strip.Failed())
	assert.ErrorIs(t, s.failed, s.initErr)
}

func TestSetupLightAllocationStaysLocal(t *testing.T) {
	s := &fakeSession{}
	strip := neopixel.New(&neopixel.Opts{NumLEDs: 0, Order: neopixel.GRB})
	err := setupLight(strip, s)
	assert.ErrorIs(t, err, neopixel.ErrAllocation)
	assert.True(t, strip.Failed())
	assert.NoError(t, s.failed)
}

func TestSetupLightOK(t *testing.T) {
	s := &fakeSession{}
	strip := neopixel.New(&neopixel.Opts{NumLEDs: 4, Order: neopixel.GRB})
	require.NoError(t, setupLight(strip, s))
	assert.False(t, strip.Failed())
	assert.NoError(t, s.failed)
}

func TestParseAddr(t *testing.T) {
	a, err := parseAddr(0x36)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x36), a)

	for _, v := range []uint{0x80, 0x10030} {
		_, err := parseAddr(v)
		assert.Error(t, err, "0x%X", v)
	}
}
