package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-seesaw/binarysensor"
	"github.com/coreman2200/funtimes-seesaw/internal/pattern"
	"github.com/coreman2200/funtimes-seesaw/neopixel"
	"github.com/coreman2200/funtimes-seesaw/seesaw"
)

type BinarySensor struct {
	Name    string `yaml:"name"`
	Pin     uint8  `yaml:"pin"`
	PinMode string `yaml:"pin_mode,omitempty"` // INPUT | INPUT_PULLUP
	// Inverted defaults to true when omitted.
	Inverted *bool `yaml:"inverted,omitempty"`
}

type Light struct {
	NumLEDs    int     `yaml:"num_leds"`
	Pin        uint8   `yaml:"pin"`
	ColorOrder string  `yaml:"color_order"`
	Pattern    string  `yaml:"pattern,omitempty"`
	Brightness float64 `yaml:"brightness"`
}

type Mirror struct {
	Driver   string `yaml:"driver"`             // "" | console | spi
	SPIPort  string `yaml:"spi_port,omitempty"` // periph spireg name, "" for the first
	SpeedKHz int    `yaml:"speed_khz,omitempty"`
}

type Config struct {
	Bus           string        `yaml:"bus"`
	Address       uint16        `yaml:"address"`
	BusSpeedKHz   int           `yaml:"bus_speed_khz,omitempty"`
	SoftwareReset bool          `yaml:"software_reset"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	FrameInterval time.Duration `yaml:"frame_interval"`
	LogLevel      string        `yaml:"log_level"`
	HTTPAddr      string        `yaml:"http_addr,omitempty"`

	BinarySensors []BinarySensor `yaml:"binary_sensors"`
	Light         *Light         `yaml:"light,omitempty"`
	Mirror        Mirror         `yaml:"mirror,omitempty"`
}

// Default is a NeoKey 1x4 at its factory address with all four keys and
// pixels in use.
func Default() *Config {
	c := &Config{
		Address:       seesaw.AddressNeoKey1x4,
		BusSpeedKHz:   400,
		SoftwareReset: true,
		PollInterval:  20 * time.Millisecond,
		FrameInterval: 33 * time.Millisecond,
		LogLevel:      "info",
		HTTPAddr:      ":8080",
		Light: &Light{
			NumLEDs:    4,
			Pin:        seesaw.NeoKey1x4NeoPixelPin,
			ColorOrder: "GRB",
			Pattern:    string(pattern.Rainbow),
			Brightness: 0.5,
		},
	}
	for i, pin := range seesaw.NeoKey1x4ButtonPins {
		c.BinarySensors = append(c.BinarySensors, BinarySensor{
			Name:    fmt.Sprintf("key%d", i),
			Pin:     pin,
			PinMode: "INPUT_PULLUP",
		})
	}
	return c
}

// Load reads path over Default. Missing keys keep their default values; a
// binary_sensors list replaces the default keys.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Address > 0x7F {
		errs = append(errs, fmt.Errorf("address 0x%X is not a 7-bit i2c address", c.Address))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval))
	}
	if c.Light != nil && c.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("frame_interval must be positive, got %s", c.FrameInterval))
	}
	seen := map[string]bool{}
	for _, s := range c.BinarySensors {
		if s.Pin > binarysensor.MaxPin {
			errs = append(errs, fmt.Errorf("binary sensor %q: pin %d out of range 0..%d", s.Name, s.Pin, binarysensor.MaxPin))
		}
		if _, err := binarysensor.ParseMode(s.PinMode); err != nil {
			errs = append(errs, fmt.Errorf("binary sensor %q: %w", s.Name, err))
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("binary sensor %q: duplicate name", s.Name))
		}
		seen[s.Name] = true
	}
	if l := c.Light; l != nil {
		if l.NumLEDs <= 0 {
			errs = append(errs, fmt.Errorf("light: num_leds must be positive, got %d", l.NumLEDs))
		}
		if order, err := neopixel.ParseColorOrder(l.ColorOrder); err != nil {
			errs = append(errs, fmt.Errorf("light: %w", err))
		} else if l.NumLEDs > order.MaxLEDs() {
			errs = append(errs, fmt.Errorf("light: num_leds %d exceeds %d for %s", l.NumLEDs, order.MaxLEDs(), order))
		}
		if _, err := pattern.ParseKind(l.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("light: %w", err))
		}
		if l.Brightness < 0 || l.Brightness > 1 {
			errs = append(errs, fmt.Errorf("light: brightness %.2f out of range 0..1", l.Brightness))
		}
	}
	switch c.Mirror.Driver {
	case "", "console", "spi":
	default:
		errs = append(errs, fmt.Errorf("mirror: unknown driver %q", c.Mirror.Driver))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SensorConfigs converts the binary_sensors section. Validate must pass first.
func (c *Config) SensorConfigs() []binarysensor.Config {
	out := make([]binarysensor.Config, 0, len(c.BinarySensors))
	for _, s := range c.BinarySensors {
		mode, _ := binarysensor.ParseMode(s.PinMode)
		inv := true
		if s.Inverted != nil {
			inv = *s.Inverted
		}
		out = append(out, binarysensor.Config{Name: s.Name, Pin: s.Pin, Mode: mode, Inverted: inv})
	}
	return out
}

// StripOpts converts the light section. ok is false when no light is set.
func (c *Config) StripOpts() (opts neopixel.Opts, ok bool) {
	if c.Light == nil {
		return neopixel.Opts{}, false
	}
	order, _ := neopixel.ParseColorOrder(c.Light.ColorOrder)
	return neopixel.Opts{
		NumLEDs:    c.Light.NumLEDs,
		Pin:        c.Light.Pin,
		Order:      order,
		Brightness: BrightnessByte(c.Light.Brightness),
	}, true
}

// BrightnessByte maps 0..1 onto the strip's 1..255 scale.
func BrightnessByte(f float64) uint8 {
	switch {
	case f <= 0:
		return 1
	case f >= 1:
		return 255
	}
	return uint8(f*254) + 1
}
