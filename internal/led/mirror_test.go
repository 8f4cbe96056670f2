package led

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"
)

type fakeDrawer struct {
	n      int
	drawn  []image.Image
	halts  int
	failOn error
}

func (f *fakeDrawer) String() string { return "fake" }
func (f *fakeDrawer) Halt() error { f.halts++; return nil }
func (f *fakeDrawer) ColorModel() color.Model { return color.NRGBAModel }
func (f *fakeDrawer) Bounds() image.Rectangle { return image.Rect(0, 0, f.n, 1) }
func (f *fakeDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if f.failOn != nil {
		return f.failOn
	}
	f.drawn = append(f.drawn, src)
	return nil
}

func TestMirrorRender(t *testing.T) {
	f := &fakeDrawer{n: 4}
	m := NewMirror(f, DriverConsole)
	im := image.NewNRGBA(image.Rect(0, 0, 4, 1))

	require.NoError(t, m.Render(im))
	assert.Len(t, f.drawn, 1)
	assert.Equal(t, DriverConsole, m.Kind())
	assert.Contains(t, m.String(), "fake")

	require.NoError(t, m.Clear())
	require.NoError(t, m.Close())
	assert.Equal(t, 2, f.halts)
}

func TestMirrorRenderError(t *testing.T) {
	f := &fakeDrawer{n: 1, failOn: errors.New("spi")}
	m := NewMirror(f, DriverSPI)
	assert.Error(t, m.Render(image.NewNRGBA(image.Rect(0, 0, 1, 1))))
}

func TestOpenDrivers(t *testing.T) {
	m, err := Open(Opts{Driver: DriverNone})
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = Open(Opts{Driver: DriverConsole, NumPixels: 4})
	require.NoError(t, err)
	assert.Equal(t, DriverConsole, m.Kind())

	_, err = Open(Opts{Driver: "pwm"})
	assert.Error(t, err)
}

func TestMirrorOverNRZ(t *testing.T) {
	var buf bytes.Buffer
	d, err := nrzled.NewSPI(spitest.NewRecordRaw(&buf), &nrzled.Opts{NumPixels: 2, Channels: 3, Freq: 2500 * physic.KiloHertz})
	require.NoError(t, err)
	m := NewMirror(d, DriverSPI)
	assert.Contains(t, m.String(), "nrzled{recordraw}")

	im := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	im.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	require.NoError(t, m.Render(im))
	assert.NotZero(t, buf.Len())

	n := buf.Len()
	require.NoError(t, m.Clear())
	assert.Greater(t, buf.Len(), n)
}
