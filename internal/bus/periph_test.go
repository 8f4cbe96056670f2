package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/coreman2200/funtimes-seesaw/seesaw"
)

func TestPeriphSessionPlayback(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			// software reset
			{Addr: 0x30, W: []byte{0x00, 0x7F}},
			// hardware id
			{Addr: 0x30, W: []byte{0x00, 0x01}},
			{Addr: 0x30, R: []byte{0x87}},
			// pull-up configuration of pins 4..7
			{Addr: 0x30, W: []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0xF0}},
			{Addr: 0x30, W: []byte{0x01, 0x0B, 0x00, 0x00, 0x00, 0xF0}},
			{Addr: 0x30, W: []byte{0x01, 0x05, 0x00, 0x00, 0x00, 0xF0}},
			// bulk read
			{Addr: 0x30, W: []byte{0x01, 0x04}},
			{Addr: 0x30, R: []byte{0x00, 0x00, 0x00, 0xE0}},
		},
		DontPanic: true,
	}
	d := seesaw.New(NewPeriph(pb, 0x30), &seesaw.Opts{Addr: 0x30, SoftwareReset: true})

	require.NoError(t, d.Begin())
	assert.Equal(t, seesaw.HWIDTiny817, d.HardwareID())
	require.NoError(t, d.ConfigureGPIOInputPullup(seesaw.NeoKey1x4ButtonMask))
	v, err := d.ReadGPIOBulk()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xE0), v)
	require.NoError(t, pb.Close())
}

func TestPeriphNeoPixelPlayback(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x30, W: []byte{0x00, 0x01}},
			{Addr: 0x30, R: []byte{0x55}},
			{Addr: 0x30, W: []byte{0x0E, 0x01, 0x03}},
			{Addr: 0x30, W: []byte{0x0E, 0x02, 0x01}},
			{Addr: 0x30, W: []byte{0x0E, 0x03, 0x00, 0x0C}},
			{Addr: 0x30, W: []byte{0x0E, 0x04, 0x00, 0x00, 0x10, 0x20, 0x30}},
			{Addr: 0x30, W: []byte{0x0E, 0x05}},
		},
		DontPanic: true,
	}
	d := seesaw.New(NewPeriph(pb, 0x30), &seesaw.Opts{Addr: 0x30})

	require.NoError(t, d.Begin())
	require.NoError(t, d.InitNeoPixel(3, 4, 3))
	require.NoError(t, d.WriteNeoPixelBuffer(0, []byte{0x10, 0x20, 0x30}))
	require.NoError(t, d.ShowNeoPixels())
	require.NoError(t, pb.Close())
}

func TestPeriphMismatchIsBusError(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: 0x30, W: []byte{0x00, 0x01}}, {Addr: 0x30, R: []byte{0x55}}},
		DontPanic: true,
	}
	d := seesaw.New(NewPeriph(pb, 0x30), &seesaw.Opts{Addr: 0x30, SoftwareReset: true})

	err := d.Begin()
	var be *seesaw.BusError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, seesaw.PhaseWrite, be.Phase)
	assert.Equal(t, seesaw.Failed, d.State())
}

func TestPeriphString(t *testing.T) {
	p := NewPeriph(&i2ctest.Playback{}, 0x30)
	assert.Contains(t, p.String(), "0x30")
	assert.NoError(t, p.Close())
}

func TestPeriphWriteIgnoresStop(t *testing.T) {
	rec := &i2ctest.Record{}
	p := NewPeriph(rec, 0x36)
	require.NoError(t, p.Write([]byte{0x00, 0x01}, false))
	require.NoError(t, p.Write([]byte{0x00, 0x01}, true))
	require.Len(t, rec.Ops, 2)
	assert.Equal(t, rec.Ops[0], rec.Ops[1])
}
