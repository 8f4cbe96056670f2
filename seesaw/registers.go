package seesaw

import (
	"fmt"
	"strings"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Module selects a functional block inside the co-processor.
type Module uint8

// Register selects a function inside a Module.
type Register uint8

// Address is the two-byte prefix of every transaction.
type Address struct {
	Module   Module
	Register Register
}

func (a Address) String() string {
	return fmt.Sprintf("0x%02X/0x%02X", uint8(a.Module), uint8(a.Register))
}

// Module base addresses.
const (
	StatusBase    Module = 0x00
	GPIOBase      Module = 0x01
	Sercom0Base   Module = 0x02
	TimerBase     Module = 0x08
	ADCBase       Module = 0x09
	DACBase       Module = 0x0A
	InterruptBase Module = 0x0B
	DAPBase       Module = 0x0C
	EEPROMBase    Module = 0x0D
	NeoPixelBase  Module = 0x0E
	TouchBase     Module = 0x0F
	EncoderBase   Module = 0x11
)

// Status module registers.
const (
	StatusHWID    Register = 0x01
	StatusVersion Register = 0x02
	StatusOptions Register = 0x03
	StatusTemp    Register = 0x04
	StatusSWRST   Register = 0x7F
)

// GPIO module registers.
const (
	GPIODirSetBulk Register = 0x02
	GPIODirClrBulk Register = 0x03
	GPIOBulk       Register = 0x04
	GPIOBulkSet    Register = 0x05
	GPIOBulkClr    Register = 0x06
	GPIOBulkToggle Register = 0x07
	GPIOIntEnSet   Register = 0x08
	GPIOIntEnClr   Register = 0x09
	GPIOIntFlag    Register = 0x0A
	GPIOPullEnSet  Register = 0x0B
	GPIOPullEnClr  Register = 0x0C
)

// NeoPixel module registers.
const (
	NeoPixelStatus    Register = 0x00
	NeoPixelPin       Register = 0x01
	NeoPixelSpeed     Register = 0x02
	NeoPixelBufLength Register = 0x03
	NeoPixelBuf       Register = 0x04
	NeoPixelShow      Register = 0x05
)

// NeoPixel speed selectors written to NeoPixelSpeed.
const (
	NeoPixelSpeed400kHz uint8 = 0x00
	NeoPixelSpeed800kHz uint8 = 0x01
)

// NeoPixelFreq is the data rate selected by NeoPixelSpeed800kHz.
const NeoPixelFreq = 800 * physic.KiloHertz

// HardwareID is the chip code reported by StatusHWID.
type HardwareID uint8

// Known chip codes.
const (
	HWIDSAMD09   HardwareID = 0x55
	HWIDTiny806  HardwareID = 0x84
	HWIDTiny807  HardwareID = 0x85
	HWIDTiny816  HardwareID = 0x86
	HWIDTiny817  HardwareID = 0x87
	HWIDTiny1616 HardwareID = 0x88
	HWIDTiny1617 HardwareID = 0x89
)

var hwNames = map[HardwareID]string{
	HWIDSAMD09:   "SAMD09",
	HWIDTiny806:  "ATtiny806",
	HWIDTiny807:  "ATtiny807",
	HWIDTiny816:  "ATtiny816",
	HWIDTiny817:  "ATtiny817",
	HWIDTiny1616: "ATtiny1616",
	HWIDTiny1617: "ATtiny1617",
}

func (h HardwareID) String() string {
	if n, ok := hwNames[h]; ok {
		return n
	}
	return fmt.Sprintf("unknown(0x%02X)", uint8(h))
}

// IsKnownHardwareID reports whether b is one of the supported chip codes.
func IsKnownHardwareID(b uint8) bool {
	_, ok := hwNames[HardwareID(b)]
	return ok
}

// Default I2C addresses of common boards.
const (
	AddressNeoKey1x4 uint16 = 0x30
	AddressNeoSlider uint16 = 0x30
	AddressRotary    uint16 = 0x36
)

// NeoKey 1x4 wiring.
const (
	NeoKey1x4NeoPixelPin uint8  = 3
	NeoKey1x4ButtonPin0  uint8  = 4
	NeoKey1x4ButtonPin1  uint8  = 5
	NeoKey1x4ButtonPin2  uint8  = 6
	NeoKey1x4ButtonPin3  uint8  = 7
	NeoKey1x4ButtonMask  uint32 = 0xF0
)

var NeoKey1x4ButtonPins = [4]uint8{NeoKey1x4ButtonPin0, NeoKey1x4ButtonPin1, NeoKey1x4ButtonPin2, NeoKey1x4ButtonPin3}

// Timing contract of the firmware.
const (
	// SettleDelay separates the address write from the data read.
	SettleDelay = 250 * time.Microsecond
	// ResetDelay is waited after a software reset.
	ResetDelay = 10 * time.Millisecond
)

var modules = map[string]Module{
	"status":    StatusBase,
	"gpio":      GPIOBase,
	"sercom0":   Sercom0Base,
	"timer":     TimerBase,
	"adc":       ADCBase,
	"dac":       DACBase,
	"interrupt": InterruptBase,
	"dap":       DAPBase,
	"eeprom":    EEPROMBase,
	"neopixel":  NeoPixelBase,
	"touch":     TouchBase,
	"encoder":   EncoderBase,
}

var registers = map[Module]map[string]Register{
	StatusBase: {
		"hw_id":   StatusHWID,
		"version": StatusVersion,
		"options": StatusOptions,
		"temp":    StatusTemp,
		"swrst":   StatusSWRST,
	},
	GPIOBase: {
		"dirset_bulk": GPIODirSetBulk,
		"dirclr_bulk": GPIODirClrBulk,
		"bulk":        GPIOBulk,
		"bulk_set":    GPIOBulkSet,
		"bulk_clr":    GPIOBulkClr,
		"bulk_toggle": GPIOBulkToggle,
		"intenset":    GPIOIntEnSet,
		"intenclr":    GPIOIntEnClr,
		"intflag":     GPIOIntFlag,
		"pullenset":   GPIOPullEnSet,
		"pullenclr":   GPIOPullEnClr,
	},
	NeoPixelBase: {
		"status":     NeoPixelStatus,
		"pin":        NeoPixelPin,
		"speed":      NeoPixelSpeed,
		"buf_length": NeoPixelBufLength,
		"buf":        NeoPixelBuf,
		"show":       NeoPixelShow,
	},
}

// ModuleBase looks up a module by its lower-case name, e.g. "gpio".
func ModuleBase(name string) (Module, bool) {
	m, ok := modules[strings.ToLower(name)]
	return m, ok
}

// RegisterOffset looks up a register of m by its lower-case name, e.g. "bulk_set".
func RegisterOffset(m Module, name string) (Register, bool) {
	regs, ok := registers[m]
	if !ok {
		return 0, false
	}
	r, ok := regs[strings.ToLower(name)]
	return r, ok
}

func (m Module) String() string {
	for n, v := range modules {
		if v == m {
			return n
		}
	}
	return fmt.Sprintf("module(0x%02X)", uint8(m))
}
