// Package seesaw drives the Adafruit Seesaw I2C co-processor.
//
// Every transaction starts with a two-byte address [module, register]. Writes
// carry their payload in the same transfer; reads write the address, wait
// SettleDelay for the firmware to fetch the register, then read the data.
// Multi-byte values are big-endian on the wire.
//
// A Device must be started with Begin, which optionally resets the chip and
// verifies its hardware ID. Only a Ready device accepts GPIO and NeoPixel
// operations; the other states reject them with ErrNotReady without touching
// the bus.
//
// # Product Information
//
// https://learn.adafruit.com/adafruit-seesaw-atsamd09-breakout
package seesaw

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-seesaw/diagnostics"
)

// State of a Device session.
type State uint8

const (
	Uninitialized State = iota
	Verifying
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Verifying:
		return "verifying"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// GPIOListener receives the bulk GPIO word read by Poll.
type GPIOListener interface {
	ProcessGPIO(state uint32)
}

// Opts configures a Device.
type Opts struct {
	// Addr is only used for logs and Describe.
	Addr uint16
	// SoftwareReset issues a reset write in Begin before verification.
	SoftwareReset bool
	// SettleDelay defaults to SettleDelay.
	SettleDelay time.Duration
	// ResetDelay defaults to ResetDelay.
	ResetDelay time.Duration
	Logger     *zerolog.Logger
}

// DefaultOpts matches a NeoKey 1x4 at its factory address.
var DefaultOpts = Opts{
	Addr:          AddressNeoKey1x4,
	SoftwareReset: true,
	SettleDelay:   SettleDelay,
	ResetDelay:    ResetDelay,
}

// Device is one session with a Seesaw chip.
type Device struct {
	mu sync.Mutex

	t          *Transport
	opts       Opts
	log        zerolog.Logger
	state      State
	hwID       HardwareID
	failure    error
	listeners  []GPIOListener
	neoLen     int
	resetDelay time.Duration
}

// New returns an Uninitialized session over bus. It does not touch the bus.
func New(bus Bus, opts *Opts) *Device {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.ResetDelay <= 0 {
		o.ResetDelay = ResetDelay
	}
	l := zerolog.Nop()
	if o.Logger != nil {
		l = o.Logger.With().Str("component", "seesaw").Str("addr", fmt.Sprintf("0x%02X", o.Addr)).Logger()
	}
	return &Device{
		t:          NewTransport(bus, o.SettleDelay),
		opts:       o,
		log:        l,
		resetDelay: o.ResetDelay,
	}
}

func (d *Device) String() string {
	return fmt.Sprintf("seesaw{0x%02X}", d.opts.Addr)
}

// Begin runs the startup handshake. On error the session is Failed for good.
func (d *Device) Begin() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != Uninitialized {
		return fmt.Errorf("seesaw: begin called in state %s", d.state)
	}
	d.state = Verifying
	d.log.Info().Msg("setting up")

	if d.opts.SoftwareReset {
		d.log.Debug().Msg("software reset")
		if err := d.t.WriteRegister(StatusBase, StatusSWRST); err != nil {
			return d.failLocked(err)
		}
		// No completion signal exists; the wait is the contract.
		d.t.sleep(d.resetDelay)
	}

	b, err := d.t.ReadRegister(StatusBase, StatusHWID, 1)
	if err != nil {
		d.log.Error().Err(err).Msg("failed to read hardware id")
		return d.failLocked(err)
	}
	d.hwID = HardwareID(b[0])
	if !IsKnownHardwareID(b[0]) {
		d.log.Error().Hex("hw_id", b).Msg("unknown hardware id")
		return d.failLocked(fmt.Errorf("%w: 0x%02X", ErrUnknownHardwareID, b[0]))
	}

	d.state = Ready
	d.log.Info().Stringer("hw_id", d.hwID).Msg("initialized")
	return nil
}

func (d *Device) failLocked(err error) error {
	d.state = Failed
	d.failure = err
	return err
}

// Fail marks the session Failed. Used by the host when a dependent setup
// step, such as NeoPixel initialization, leaves the chip in an unknown state.
func (d *Device) Fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log.Error().Err(err).Msg("marked failed")
	d.failLocked(err)
}

// State returns the current session state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// HardwareID returns the code read during Begin.
func (d *Device) HardwareID() HardwareID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hwID
}

// Err returns the error that failed the session, if any.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failure
}

// AddListener registers l to be notified on every successful Poll.
func (d *Device) AddListener(l GPIOListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Poll reads the bulk GPIO word once and hands it to every listener in
// registration order. Without listeners it does nothing.
func (d *Device) Poll() error {
	d.mu.Lock()
	if len(d.listeners) == 0 {
		d.mu.Unlock()
		return nil
	}
	v, err := d.readGPIOBulkLocked()
	ls := append([]GPIOListener(nil), d.listeners...)
	d.mu.Unlock()

	if err != nil {
		if !errors.Is(err, ErrNotReady) {
			d.log.Warn().Err(err).Msg("failed to read gpio state")
		}
		return err
	}
	for _, l := range ls {
		l.ProcessGPIO(v)
	}
	return nil
}

// Describe dumps the session configuration.
func (d *Device) Describe() diagnostics.Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := diagnostics.NewReport("seesaw").
		With("address", fmt.Sprintf("0x%02X", d.opts.Addr)).
		With("state", d.state.String()).
		With("hardware_id", fmt.Sprintf("0x%02X (%s)", uint8(d.hwID), d.hwID)).
		With("software_reset", strconv.FormatBool(d.opts.SoftwareReset)).
		With("listeners", strconv.Itoa(len(d.listeners)))
	if d.failure != nil {
		r.Failed = true
		r = r.With("error", d.failure.Error())
	}
	return r
}
