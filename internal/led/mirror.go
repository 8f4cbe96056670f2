// Package led mirrors the frames sent to the seesaw strip onto a local
// output: a WS281x strip on a host SPI port, or the terminal.
package led

import (
	"fmt"
	"image"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
)

const (
	DriverNone    = ""
	DriverConsole = "console"
	DriverSPI     = "spi"
)

const DefaultSPIFreq = 800 * physic.KiloHertz

// Opts selects the mirror output.
type Opts struct {
	Driver    string
	SPIPort   string
	Freq      physic.Frequency
	NumPixels int
	Channels  int
	Logger    *zerolog.Logger
}

// Mirror draws frames onto a display.Drawer.
type Mirror struct {
	drawer display.Drawer
	port   spi.PortCloser
	kind   string
}

// NewMirror wraps an existing drawer.
func NewMirror(d display.Drawer, kind string) *Mirror {
	return &Mirror{drawer: d, kind: kind}
}

// Open builds the configured mirror. DriverNone returns nil. When no SPI port
// can be opened the frames go to the console instead. host.Init must have
// been called for DriverSPI.
func Open(o Opts) (*Mirror, error) {
	log := zerolog.Nop()
	if o.Logger != nil {
		log = o.Logger.With().Str("component", "mirror").Logger()
	}
	switch o.Driver {
	case DriverNone:
		return nil, nil
	case DriverConsole:
		return NewMirror(screen.New(o.NumPixels), DriverConsole), nil
	case DriverSPI:
	default:
		return nil, fmt.Errorf("led: unknown mirror driver %q", o.Driver)
	}

	p, err := spireg.Open(o.SPIPort)
	if err != nil {
		log.Warn().Err(err).Str("port", o.SPIPort).Msg("no SPI port, mirroring to the console")
		return NewMirror(screen.New(o.NumPixels), DriverConsole), nil
	}
	freq := o.Freq
	if freq <= 0 {
		freq = DefaultSPIFreq
	}
	ch := o.Channels
	if ch != 4 {
		ch = 3
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: o.NumPixels,
		Channels:  ch,
		Freq:      freq,
	})
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("led: nrzled on %s: %w", p, err)
	}
	if err := d.Halt(); err != nil {
		log.Debug().Err(err).Msg("halt")
	}
	m := NewMirror(d, DriverSPI)
	m.port = p
	return m, nil
}

func (m *Mirror) Kind() string { return m.kind }

func (m *Mirror) String() string { return fmt.Sprintf("mirror{%s %s}", m.kind, m.drawer) }

// Render draws im at the origin of the mirror.
func (m *Mirror) Render(im image.Image) error {
	return m.drawer.Draw(m.drawer.Bounds(), im, image.Point{})
}

// Clear blanks the output.
func (m *Mirror) Clear() error {
	return m.drawer.Halt()
}

func (m *Mirror) Close() error {
	err := m.drawer.Halt()
	if m.port != nil {
		if cerr := m.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
