package tinybus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-seesaw/seesaw"
)

type tx struct {
	addr uint16
	w    []byte
	r    int
}

// fakeI2C satisfies drivers.I2C.
type fakeI2C struct {
	txs   []tx
	reply []byte
	err   error
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	f.txs = append(f.txs, tx{addr: addr, w: append([]byte(nil), w...), r: len(r)})
	if f.err != nil {
		return f.err
	}
	copy(r, f.reply)
	return nil
}

func TestPhasesAreSeparateTx(t *testing.T) {
	f := &fakeI2C{reply: []byte{0x86}}
	d := seesaw.New(New(f, 0x36), &seesaw.Opts{Addr: 0x36})

	require.NoError(t, d.Begin())
	assert.Equal(t, seesaw.HWIDTiny816, d.HardwareID())
	assert.Equal(t, []tx{
		{addr: 0x36, w: []byte{0x00, 0x01}},
		{addr: 0x36, r: 1},
	}, f.txs)
}

func TestErrorsPropagate(t *testing.T) {
	f := &fakeI2C{err: errors.New("timeout")}
	b := New(f, 0x30)

	assert.Error(t, b.Write([]byte{0x0E, 0x05}, true))
	_, err := b.Read(4)
	assert.Error(t, err)
}
