//go:build rp2040 || rp2350

// Command seesaw-pico runs a NeoKey 1x4 from a Pico: each key lights its own
// pixel while held.
package main

import (
	"image"
	"machine"
	"time"

	"github.com/coreman2200/funtimes-seesaw/binarysensor"
	"github.com/coreman2200/funtimes-seesaw/internal/pattern"
	"github.com/coreman2200/funtimes-seesaw/internal/tinybus"
	"github.com/coreman2200/funtimes-seesaw/neopixel"
	"github.com/coreman2200/funtimes-seesaw/seesaw"
)

const (
	pinSDA   = machine.GP4
	pinSCL   = machine.GP5
	busHz    = 400_000
	pollRate = 20 * time.Millisecond
)

func main() {
	pinSDA.Configure(machine.PinConfig{Mode: machine.PinI2C})
	pinSCL.Configure(machine.PinConfig{Mode: machine.PinI2C})
	if err := machine.I2C0.Configure(machine.I2CConfig{SCL: pinSCL, SDA: pinSDA, Frequency: busHz}); err != nil {
		halt("i2c: " + err.Error())
	}

	dev := seesaw.New(tinybus.New(machine.I2C0, seesaw.AddressNeoKey1x4), &seesaw.DefaultOpts)
	if err := dev.Begin(); err != nil {
		halt("seesaw: " + err.Error())
	}
	println("seesaw ready:", dev.HardwareID().String())

	runner := pattern.NewRunner(pattern.Keys)
	var sensors []*binarysensor.Sensor
	for i, pin := range seesaw.NeoKey1x4ButtonPins {
		idx := i
		s, err := binarysensor.New(binarysensor.DefaultConfig("key", pin), func(_ string, state bool) {
			runner.SetKey(idx, state)
		})
		if err != nil {
			halt(err.Error())
		}
		sensors = append(sensors, s)
		dev.AddListener(s)
	}
	if err := binarysensor.ConfigureAll(dev, sensors...); err != nil {
		halt("keys: " + err.Error())
	}

	strip := neopixel.New(&neopixel.Opts{NumLEDs: len(sensors), Pin: seesaw.NeoKey1x4NeoPixelPin, Order: neopixel.GRB, Brightness: 64})
	if err := strip.Setup(dev); err != nil {
		halt("neopixel: " + err.Error())
	}
	frame := image.NewNRGBA(strip.Bounds())

	for {
		if err := dev.Poll(); err != nil {
			println("poll:", err.Error())
		}
		runner.Step(frame)
		if err := strip.Draw(strip.Bounds(), frame, image.Point{}); err != nil {
			println("flush:", err.Error())
		}
		time.Sleep(pollRate)
	}
}

func halt(msg string) {
	for {
		println(msg)
		time.Sleep(time.Second)
	}
}
