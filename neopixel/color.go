package neopixel

import (
	"fmt"
	"image/color"
	"strings"
)

// ColorOrder is the byte order a strip expects on the wire.
type ColorOrder uint8

const (
	RGB ColorOrder = iota
	RBG
	GRB
	GBR
	BRG
	BGR
	RGBW
	RBGW
	GRBW
	GBRW
	BRGW
	BGRW
)

var orderNames = [...]string{"RGB", "RBG", "GRB", "GBR", "BRG", "BGR", "RGBW", "RBGW", "GRBW", "GBRW", "BRGW", "BGRW"}

// offsets of R, G, B within a pixel; W is always last.
var orderOffsets = [6][3]uint8{
	RGB: {0, 1, 2},
	RBG: {0, 2, 1},
	GRB: {1, 0, 2},
	GBR: {2, 0, 1},
	BRG: {1, 2, 0},
	BGR: {2, 1, 0},
}

func (o ColorOrder) String() string {
	if int(o) < len(orderNames) {
		return orderNames[o]
	}
	return fmt.Sprintf("order(%d)", uint8(o))
}

// ParseColorOrder accepts "GRB", "grbw", etc.
func ParseColorOrder(s string) (ColorOrder, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range orderNames {
		if n == u {
			return ColorOrder(i), nil
		}
	}
	return 0, fmt.Errorf("neopixel: unknown color order %q", s)
}

func (o ColorOrder) HasWhite() bool { return o >= RGBW && o <= BGRW }

func (o ColorOrder) BytesPerPixel() int {
	if o.HasWhite() {
		return 4
	}
	return 3
}

// Offsets returns the byte offset of red, green, blue and white inside one
// pixel. white is -1 for orders without a white channel. Unknown orders map
// like GRB.
// MaxLEDs is the largest pixel count whose buffer fits the chip's 16-bit
// buffer length.
func (o ColorOrder) MaxLEDs() int { return 0xFFFF / o.BytesPerPixel() }

func (o ColorOrder) Offsets() (r, g, b, w int) {
	base := o
	if o.HasWhite() {
		base = o - RGBW
	}
	if int(base) >= len(orderOffsets) {
		base = GRB
	}
	off := orderOffsets[base]
	w = -1
	if o.HasWhite() {
		w = 3
	}
	return int(off[0]), int(off[1]), int(off[2]), w
}

// ColorMode is what a strip can show, as reported to renderers.
type ColorMode string

const (
	ModeRGB   ColorMode = "rgb"
	ModeWhite ColorMode = "white"
)

// scale applies a 0..255 factor to an 8-bit channel.
func scale(v, brightness uint8) uint8 {
	return uint8(uint16(v) * uint16(brightness) / 255)
}

// toNRGBA flattens any color to opaque 8-bit channels, folding alpha in.
func toNRGBA(c color.Color) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return n
	}
	return color.NRGBA{
		R: scale(n.R, n.A),
		G: scale(n.G, n.A),
		B: scale(n.B, n.A),
		A: 255,
	}
}
