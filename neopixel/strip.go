// Package neopixel keeps the pixel buffer of a strip driven by a seesaw chip.
//
// The Strip owns the bytes in wire order and sends them in bounded chunks on
// Flush. It is also a periph display.Drawer, so anything that draws images
// onto a one-row display can render to it.
package neopixel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/display"

	"github.com/coreman2200/funtimes-seesaw/diagnostics"
	"github.com/coreman2200/funtimes-seesaw/seesaw"
)

// MaxChunk is the payload ceiling of one buffer write.
const MaxChunk = seesaw.MaxNeoPixelChunk

// ErrAllocation is returned by Setup when the buffer cannot be sized.
var ErrAllocation = errors.New("neopixel: cannot allocate pixel buffer")

// Writer is the part of seesaw.Device a strip needs.
type Writer interface {
	InitNeoPixel(pin uint8, count uint16, bpp uint8) error
	WriteNeoPixelBuffer(offset uint16, data []byte) error
	ShowNeoPixels() error
}

// Opts configures a Strip.
type Opts struct {
	NumLEDs int
	Pin     uint8
	Order   ColorOrder
	// Brightness scales every color set through SetPixel, Fill and Draw.
	// Zero means full brightness.
	Brightness uint8
	Logger     *zerolog.Logger
}

// DefaultOpts is a NeoKey 1x4.
var DefaultOpts = Opts{NumLEDs: 4, Pin: 3, Order: GRB}

// Strip is the pixel and effect buffers of one NeoPixel output.
//
// Pixel access through View is not synchronized; views and Flush are meant to
// be used from one goroutine.
type Strip struct {
	mu   sync.Mutex
	opts Opts
	log  zerolog.Logger

	w       Writer
	buf     []byte
	effect  []byte
	failed  bool
	failure error

	// backing store of the inert view handed out before Setup.
	dummy       [4]byte
	dummyEffect byte
}

var _ display.Drawer = (*Strip)(nil)

func New(opts *Opts) *Strip {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.Brightness == 0 {
		o.Brightness = 255
	}
	l := zerolog.Nop()
	if o.Logger != nil {
		l = o.Logger.With().Str("component", "neopixel").Logger()
	}
	return &Strip{opts: o, log: l}
}

// Setup allocates the buffers and declares them to the chip. Any failure
// marks the strip failed; it will then ignore Flush.
func (s *Strip) Setup(w Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bpp := s.opts.Order.BytesPerPixel()
	if s.opts.NumLEDs <= 0 || s.opts.NumLEDs > s.opts.Order.MaxLEDs() {
		err := fmt.Errorf("%w: %d leds of %d bytes", ErrAllocation, s.opts.NumLEDs, bpp)
		s.failLocked(err)
		return err
	}
	s.buf = make([]byte, s.opts.NumLEDs*bpp)
	s.effect = make([]byte, s.opts.NumLEDs)
	s.w = w

	if err := w.InitNeoPixel(s.opts.Pin, uint16(s.opts.NumLEDs), uint8(bpp)); err != nil {
		s.failLocked(err)
		return fmt.Errorf("neopixel: init pin %d: %w", s.opts.Pin, err)
	}
	s.log.Debug().Int("leds", s.opts.NumLEDs).Stringer("order", s.opts.Order).Msg("strip ready")
	return nil
}

func (s *Strip) failLocked(err error) {
	s.failed = true
	s.failure = err
	s.log.Error().Err(err).Msg("strip failed")
}

func (s *Strip) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Size is the configured pixel count, valid before Setup.
func (s *Strip) Size() int { return s.opts.NumLEDs }

// Channels is 3 for RGB orders and 4 when a white channel exists.
func (s *Strip) Channels() int { return s.opts.Order.BytesPerPixel() }

func (s *Strip) ColorModes() []ColorMode {
	if s.opts.Order.HasWhite() {
		return []ColorMode{ModeRGB, ModeWhite}
	}
	return []ColorMode{ModeRGB}
}

func (s *Strip) Order() ColorOrder { return s.opts.Order }

// SetBrightness changes the scale used by later SetPixel, Fill and Draw calls.
func (s *Strip) SetBrightness(b uint8) {
	s.mu.Lock()
	s.opts.Brightness = b
	s.mu.Unlock()
}

// View returns pixel i. Before Setup, or for an index out of range, it
// returns a view over scratch storage that is never sent.
func (s *Strip) View(i int) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(i)
}

func (s *Strip) viewLocked(i int) View {
	bpp := s.opts.Order.BytesPerPixel()
	if s.buf == nil || i < 0 || i >= s.opts.NumLEDs {
		return View{px: s.dummy[:bpp], effect: &s.dummyEffect, order: s.opts.Order}
	}
	return View{px: s.buf[i*bpp : (i+1)*bpp], effect: &s.effect[i], order: s.opts.Order}
}

// SetPixel writes the red, green and blue channels of pixel i after brightness
// scaling. A white channel is left untouched.
func (s *Strip) SetPixel(i int, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPixelLocked(i, toNRGBA(c))
}

func (s *Strip) setPixelLocked(i int, n color.NRGBA) {
	b := s.opts.Brightness
	s.viewLocked(i).SetRGB(scale(n.R, b), scale(n.G, b), scale(n.B, b))
}

func (s *Strip) Fill(c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := toNRGBA(c)
	for i := 0; i < s.opts.NumLEDs; i++ {
		s.setPixelLocked(i, n)
	}
}

// ClearEffectData zeroes the per-pixel effect bytes.
func (s *Strip) ClearEffectData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.effect)
}

// Flush sends the buffer in chunks of at most MaxChunk bytes and latches it.
// The first failed write aborts the flush; the chip keeps showing its old
// frame. A failed or unallocated strip is left alone.
func (s *Strip) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Strip) flushLocked() error {
	if s.failed || s.buf == nil {
		return nil
	}
	for off := 0; off < len(s.buf); off += MaxChunk {
		end := min(off+MaxChunk, len(s.buf))
		if err := s.w.WriteNeoPixelBuffer(uint16(off), s.buf[off:end]); err != nil {
			s.log.Warn().Err(err).Int("offset", off).Msg("flush aborted")
			return fmt.Errorf("neopixel: write buffer at %d: %w", off, err)
		}
	}
	if err := s.w.ShowNeoPixels(); err != nil {
		return fmt.Errorf("neopixel: show: %w", err)
	}
	return nil
}

// Image renders the current buffer as a one-row image in RGB space.
func (s *Strip) Image() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	im := image.NewNRGBA(image.Rect(0, 0, s.opts.NumLEDs, 1))
	for x := 0; x < s.opts.NumLEDs; x++ {
		r, g, b := s.viewLocked(x).RGB()
		im.SetNRGBA(x, 0, color.NRGBA{R: r, G: g, B: b, A: 255})
	}
	return im
}

func (s *Strip) String() string {
	return fmt.Sprintf("neopixel{pin %d, %d leds, %s}", s.opts.Pin, s.opts.NumLEDs, s.opts.Order)
}

// ColorModel implements display.Drawer.
func (s *Strip) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements display.Drawer.
func (s *Strip) Bounds() image.Rectangle { return image.Rect(0, 0, s.opts.NumLEDs, 1) }

// Draw implements display.Drawer. Only the first row of r is used; the frame
// is flushed right away.
func (s *Strip) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r = r.Intersect(s.Bounds())
	if r.Empty() {
		return nil
	}
	srcR := src.Bounds()
	y := sp.Y
	if y < srcR.Min.Y || y >= srcR.Max.Y {
		return nil
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		sx := sp.X + x - r.Min.X
		if sx < srcR.Min.X || sx >= srcR.Max.X {
			continue
		}
		s.setPixelLocked(x, toNRGBA(src.At(sx, y)))
	}
	return s.flushLocked()
}

// Halt implements display.Drawer: every channel, white included, goes to zero.
func (s *Strip) Halt() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.buf)
	return s.flushLocked()
}

// Describe reports the configuration dump of the strip.
func (s *Strip) Describe() diagnostics.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := diagnostics.NewReport("neopixel").
		With("pin", strconv.Itoa(int(s.opts.Pin))).
		With("num_leds", strconv.Itoa(s.opts.NumLEDs)).
		With("color_order", s.opts.Order.String()).
		With("allocated", strconv.FormatBool(s.buf != nil))
	if s.failed {
		r.Failed = true
		r = r.With("error", s.failure.Error())
	}
	return r
}
