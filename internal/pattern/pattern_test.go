package pattern

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = color.NRGBA{A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func row(im *image.NRGBA) []color.NRGBA {
	var out []color.NRGBA
	for x := 0; x < im.Bounds().Dx(); x++ {
		out = append(out, im.NRGBAAt(x, 0))
	}
	return out
}

func TestIndexSweep(t *testing.T) {
	im := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	r := NewRunner(IndexSweep)

	require.True(t, r.Step(im))
	assert.Equal(t, []color.NRGBA{white, black, black}, row(im))
	require.True(t, r.Step(im))
	assert.Equal(t, []color.NRGBA{black, white, black}, row(im))
	require.True(t, r.Step(im))
	assert.Equal(t, []color.NRGBA{black, black, white}, row(im))
	assert.False(t, r.Step(im))
	assert.True(t, IndexSweep.Finite())
}

func TestRGBTestCycles(t *testing.T) {
	im := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	r := NewRunner(RGBTest)
	for i, want := range []color.NRGBA{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}, {R: 255, A: 255}} {
		require.True(t, r.Step(im), "step %d", i)
		assert.Equal(t, []color.NRGBA{want, want}, row(im), "step %d", i)
	}
}

func TestRainbowMoves(t *testing.T) {
	im := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	r := NewRunner(Rainbow)
	require.True(t, r.Step(im))
	first := row(im)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, first[0])
	assert.NotEqual(t, first[0], first[2])

	for i := 0; i < 10; i++ {
		r.Step(im)
	}
	assert.NotEqual(t, first, row(im))
}

func TestKeys(t *testing.T) {
	im := image.NewNRGBA(image.Rect(0, 0, 4, 1))
	r := NewRunner(Keys)
	r.SetKey(2, true)
	r.SetKey(70, true)
	require.True(t, r.Step(im))
	px := row(im)
	assert.Equal(t, black, px[0])
	assert.NotEqual(t, black, px[2])

	r.SetKey(2, false)
	r.Step(im)
	assert.Equal(t, []color.NRGBA{black, black, black, black}, row(im))
}

func TestOffIsBlack(t *testing.T) {
	im := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	im.SetNRGBA(1, 0, white)
	require.True(t, NewRunner(Off).Step(im))
	assert.Equal(t, []color.NRGBA{black, black}, row(im))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Rainbow")
	require.NoError(t, err)
	assert.Equal(t, Rainbow, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, Off, k)

	_, err = ParseKind("plane_z")
	assert.Error(t, err)
}
