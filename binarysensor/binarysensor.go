// Package binarysensor turns seesaw GPIO pins into on/off sensors.
//
// A Sensor is registered as a GPIO listener on a seesaw.Device. Each poll hands
// it the whole bulk word; the sensor extracts its own bit and publishes only on
// edges, plus once on the first read after setup.
package binarysensor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/coreman2200/funtimes-seesaw/diagnostics"
)

// Mode is the pin configuration applied at setup.
type Mode uint8

const (
	InputPullup Mode = iota
	Input
)

func (m Mode) String() string {
	switch m {
	case Input:
		return "INPUT"
	case InputPullup:
		return "INPUT_PULLUP"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMode accepts the names printed by Mode.String, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INPUT":
		return Input, nil
	case "INPUT_PULLUP", "":
		return InputPullup, nil
	}
	return 0, fmt.Errorf("binarysensor: unknown pin mode %q", s)
}

// MaxPin is the highest pin a bulk GPIO word can carry.
const MaxPin = 31

var ErrPin = errors.New("binarysensor: pin out of range")

// Configurator is the part of seesaw.Device a sensor needs at setup.
type Configurator interface {
	ConfigureGPIOInput(mask uint32) error
	ConfigureGPIOInputPullup(mask uint32) error
}

// Config describes one sensor.
type Config struct {
	Name     string
	Pin      uint8
	Mode     Mode
	Inverted bool
}

// DefaultConfig matches a NeoKey switch: pulled up and active low.
func DefaultConfig(name string, pin uint8) Config {
	return Config{Name: name, Pin: pin, Mode: InputPullup, Inverted: true}
}

// PublishFunc receives every state the sensor reports.
type PublishFunc func(name string, state bool)

// Sensor is one GPIO pin read from the bulk word.
type Sensor struct {
	mu      sync.Mutex
	cfg     Config
	publish PublishFunc

	state   bool
	first   bool
	failed  bool
	failure error
}

// New checks the pin and returns a sensor ready for Setup. publish may be nil.
func New(cfg Config, publish PublishFunc) (*Sensor, error) {
	if cfg.Pin > MaxPin {
		return nil, fmt.Errorf("%w: %s pin %d", ErrPin, cfg.Name, cfg.Pin)
	}
	if cfg.Mode != Input && cfg.Mode != InputPullup {
		return nil, fmt.Errorf("binarysensor %s: unknown pin mode %s", cfg.Name, cfg.Mode)
	}
	if publish == nil {
		publish = func(string, bool) {}
	}
	return &Sensor{cfg: cfg, publish: publish, first: true}, nil
}

func (s *Sensor) Name() string { return s.cfg.Name }

func (s *Sensor) Config() Config { return s.cfg }

// Mask is the bulk-word bit of this sensor.
func (s *Sensor) Mask() uint32 { return 1 << s.cfg.Pin }

// Setup configures the sensor's pin on its own. A failure marks only this
// sensor as failed.
func (s *Sensor) Setup(c Configurator) error {
	var err error
	switch s.cfg.Mode {
	case Input:
		err = c.ConfigureGPIOInput(s.Mask())
	default:
		err = c.ConfigureGPIOInputPullup(s.Mask())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.first = true
	if err != nil {
		s.markFailedLocked(err)
		return fmt.Errorf("binarysensor %s: setup pin %d: %w", s.cfg.Name, s.cfg.Pin, err)
	}
	return nil
}

func (s *Sensor) markFailedLocked(err error) {
	s.failed = true
	s.failure = err
}

// ProcessGPIO implements seesaw.GPIOListener.
func (s *Sensor) ProcessGPIO(word uint32) {
	s.mu.Lock()
	if s.failed {
		s.mu.Unlock()
		return
	}
	v := (word>>s.cfg.Pin)&1 == 1
	if s.cfg.Inverted {
		v = !v
	}
	if !s.first && v == s.state {
		s.mu.Unlock()
		return
	}
	s.first = false
	s.state = v
	s.mu.Unlock()

	s.publish(s.cfg.Name, v)
}

// State returns the last published state and whether any was published yet.
func (s *Sensor) State() (state, valid bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, !s.first
}

func (s *Sensor) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

func (s *Sensor) Describe() diagnostics.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := diagnostics.NewReport("binary_sensor").
		With("name", s.cfg.Name).
		With("pin", strconv.Itoa(int(s.cfg.Pin))).
		With("mode", s.cfg.Mode.String()).
		With("inverted", strconv.FormatBool(s.cfg.Inverted))
	if !s.first {
		r = r.With("state", strconv.FormatBool(s.state))
	}
	if s.failed {
		r.Failed = true
		r = r.With("error", s.failure.Error())
	}
	return r
}

// ConfigureAll configures every sensor with one combined write sequence per
// mode. The resulting register state is the same as calling Setup on each.
// When a batch fails, every sensor in it is marked failed and the other
// batch is still attempted.
func ConfigureAll(c Configurator, sensors ...*Sensor) error {
	var input, pullup uint32
	for _, s := range sensors {
		if s.cfg.Mode == Input {
			input |= s.Mask()
		} else {
			pullup |= s.Mask()
		}
	}

	var errs []error
	apply := func(mode Mode, mask uint32, fn func(uint32) error) {
		if mask == 0 {
			return
		}
		err := fn(mask)
		for _, s := range sensors {
			if s.cfg.Mode != mode {
				continue
			}
			s.mu.Lock()
			s.first = true
			if err != nil {
				s.markFailedLocked(err)
			}
			s.mu.Unlock()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("binarysensor: configure %s mask 0x%08X: %w", mode, mask, err))
		}
	}
	apply(Input, input, c.ConfigureGPIOInput)
	apply(InputPullup, pullup, c.ConfigureGPIOInputPullup)
	return errors.Join(errs...)
}
