package seesaw

import (
	"fmt"
	"time"
)

// Bus is the raw access to one device on an I2C bus.
//
// Write sends p as one transfer. When stop is false the transfer must not be
// terminated with a stop condition, if the bus is able to express that.
// Read reads exactly n bytes.
type Bus interface {
	Write(p []byte, stop bool) error
	Read(n int) ([]byte, error)
}

// Phase identifies which half of a transaction failed.
type Phase uint8

const (
	PhaseWrite Phase = iota
	PhaseRead
)

func (p Phase) String() string {
	if p == PhaseRead {
		return "read"
	}
	return "write"
}

// BusError reports a failure of the underlying bus.
type BusError struct {
	Phase Phase
	Addr  Address
	Err   error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("seesaw: i2c %s failed at %s: %v", e.Phase, e.Addr, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// Transport executes two-byte-addressed transactions over a Bus.
type Transport struct {
	bus    Bus
	settle time.Duration
	sleep  func(time.Duration)
}

// NewTransport returns a Transport that waits settle between the address
// write and the data read of ReadRegister.
func NewTransport(bus Bus, settle time.Duration) *Transport {
	if settle <= 0 {
		settle = SettleDelay
	}
	return &Transport{bus: bus, settle: settle, sleep: time.Sleep}
}

// WriteRegister sends [m, r] ++ payload as a single bus write. An empty
// payload is an address-only write.
func (t *Transport) WriteRegister(m Module, r Register, payload ...byte) error {
	buf := make([]byte, 0, 2+len(payload))
	buf = append(buf, byte(m), byte(r))
	buf = append(buf, payload...)
	if err := t.bus.Write(buf, true); err != nil {
		return &BusError{Phase: PhaseWrite, Addr: Address{m, r}, Err: err}
	}
	return nil
}

// ReadRegister writes [m, r] without a stop, blocks for the settle delay and
// then reads n bytes.
func (t *Transport) ReadRegister(m Module, r Register, n int) ([]byte, error) {
	if err := t.bus.Write([]byte{byte(m), byte(r)}, false); err != nil {
		return nil, &BusError{Phase: PhaseWrite, Addr: Address{m, r}, Err: err}
	}
	t.sleep(t.settle)
	b, err := t.bus.Read(n)
	if err != nil {
		return nil, &BusError{Phase: PhaseRead, Addr: Address{m, r}, Err: err}
	}
	if len(b) != n {
		return nil, &BusError{Phase: PhaseRead, Addr: Address{m, r}, Err: fmt.Errorf("short read: got %d of %d bytes", len(b), n)}
	}
	return b, nil
}
