package neopixel

// View is one pixel of a Strip, addressed by logical channel.
type View struct {
	px     []byte
	effect *byte
	order  ColorOrder
}

func (v View) RGB() (r, g, b uint8) {
	ro, gO, bo, _ := v.order.Offsets()
	return v.px[ro], v.px[gO], v.px[bo]
}

func (v View) SetRGB(r, g, b uint8) {
	ro, gO, bo, _ := v.order.Offsets()
	v.px[ro] = r
	v.px[gO] = g
	v.px[bo] = b
}

// White is 0 for orders without a white channel.
func (v View) White() uint8 {
	if _, _, _, w := v.order.Offsets(); w >= 0 {
		return v.px[w]
	}
	return 0
}

// SetWhite is a no-op for orders without a white channel.
func (v View) SetWhite(w uint8) {
	if _, _, _, o := v.order.Offsets(); o >= 0 {
		v.px[o] = w
	}
}

// Effect is the scratch byte renderers may keep per pixel.
func (v View) Effect() uint8 { return *v.effect }

func (v View) SetEffect(e uint8) { *v.effect = e }
