// Package pattern renders test and demo frames for a one-row strip.
package pattern

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
)

type Kind string

const (
	Off        Kind = "off"
	IndexSweep Kind = "index_sweep"
	RGBTest    Kind = "rgb_channels"
	Rainbow    Kind = "rainbow"
	Keys       Kind = "keys"
)

var kinds = []Kind{Off, IndexSweep, RGBTest, Rainbow, Keys}

// ParseKind accepts a Kind name; "" is Off.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return Off, nil
	}
	for _, v := range kinds {
		if v == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("pattern: unknown pattern %q", s)
}

// Finite reports whether the pattern ends on its own.
func (k Kind) Finite() bool { return k == IndexSweep }

// Runner steps one pattern. It is not safe for concurrent use.
type Runner struct {
	kind    Kind
	step    int
	phase   float64
	pressed uint64
}

func NewRunner(k Kind) *Runner { return &Runner{kind: k} }

func (r *Runner) Kind() Kind { return r.kind }

// SetKey records key i as pressed or released for the Keys pattern.
func (r *Runner) SetKey(i int, pressed bool) {
	if i < 0 || i >= 64 {
		return
	}
	if pressed {
		r.pressed |= 1 << i
	} else {
		r.pressed &^= 1 << i
	}
}

// Step draws the next frame into row 0 of im. It returns false once a finite
// pattern is complete, leaving im untouched.
func (r *Runner) Step(im *image.NRGBA) bool {
	b := im.Bounds()
	n := b.Dx()
	y := b.Min.Y
	set := func(i int, c color.NRGBA) { im.SetNRGBA(b.Min.X+i, y, c) }

	if r.kind == IndexSweep && r.step >= n {
		return false
	}
	for i := 0; i < n; i++ {
		set(i, color.NRGBA{A: 255})
	}

	switch r.kind {
	case IndexSweep:
		set(r.step, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	case RGBTest:
		var c color.NRGBA
		switch r.step % 3 {
		case 0:
			c = color.NRGBA{R: 255, A: 255}
		case 1:
			c = color.NRGBA{G: 255, A: 255}
		case 2:
			c = color.NRGBA{B: 255, A: 255}
		}
		for i := 0; i < n; i++ {
			set(i, c)
		}
	case Rainbow:
		for i := 0; i < n; i++ {
			u := float64(i) / float64(max(1, n))
			set(i, hsv(math.Mod(u+r.phase, 1.0), 1, 1))
		}
		r.phase = math.Mod(r.phase+0.01, 1.0)
	case Keys:
		for i := 0; i < n && i < 64; i++ {
			if r.pressed&(1<<i) != 0 {
				set(i, hsv(float64(i)/float64(max(1, n)), 1, 1))
			}
		}
	}
	r.step++
	return true
}

func hsv(h, s, v float64) color.NRGBA {
	r, g, b := hsvToRGB(h, s, v)
	return color.NRGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	i := int(h * 6.0)
	f := h*6.0 - float64(i)
	p := v * (1.0 - s)
	q := v * (1.0 - f*s)
	t := v * (1.0 - (1.0-f)*s)
	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
