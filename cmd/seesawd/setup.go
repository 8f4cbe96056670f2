package main

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-seesaw/neopixel"
)

// lightSession is the part of seesaw.Device the light setup touches.
type lightSession interface {
	neopixel.Writer
	Fail(err error)
}

// setupLight declares strip to the chip. A buffer that cannot be sized only
// fails the strip; a failed init leaves the chip in an unknown state, so the
// whole session is failed with it.
func setupLight(strip *neopixel.Strip, s lightSession) error {
	err := strip.Setup(s)
	if err != nil && !errors.Is(err, neopixel.ErrAllocation) {
		s.Fail(err)
	}
	return err
}

// parseAddr checks the -addr flag before it is narrowed to an i2c address.
func parseAddr(v uint) (uint16, error) {
	if v > 0x7F {
		return 0, fmt.Errorf("address 0x%X is not a 7-bit i2c address", v)
	}
	return uint16(v), nil
}
