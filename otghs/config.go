package otghs

import (
	"fmt"

	"github.com/ardnew/otghs/device"
	"github.com/ardnew/otghs/otghs/hw"
	"github.com/ardnew/otghs/pkg"
)

// Speed is the device speed programmed into DCFG.DSPD and expected back in
// DSTS.ENUMSPD once enumeration completes.
type Speed uint8

// Supported device speeds.
const (
	SpeedHigh Speed = hw.SPEED_HIGH
	SpeedFull Speed = hw.SPEED_FULL_HS_PHY
)

func (s Speed) String() string {
	switch s {
	case SpeedHigh:
		return "high"
	case SpeedFull:
		return "full"
	default:
		return fmt.Sprintf("speed(%d)", uint8(s))
	}
}

// Default configuration values.
const (
	DefaultSetupPackets   = 3
	DefaultRxFIFOWords    = 0x200
	DefaultTxFIFO0Words   = 0x200
	DefaultTurnaroundTime = 0x9
	DefaultWaitLimit      = 1 << 16
	MaxQueuedFragments    = 8
)

// The receive FIFO must hold one endpoint 0 packet, two status words and
// ten words of SETUP traffic. The transmit FIFO must hold one packet.
const (
	minRxFIFOWords  = hw.MaxPacketSize0/4 + 2 + 10
	minTxFIFO0Words = hw.MaxPacketSize0 / 4
)

// Config holds the controller parameters applied by Init and the bus reset
// handler.
type Config struct {
	// Speed is the requested device speed.
	Speed Speed

	// SetupPackets is the number of back-to-back SETUP packets endpoint 0
	// accepts before it must be re-armed (DOEPTSIZ0.STUPCNT, 1..3).
	SetupPackets uint8

	// RxFIFOWords is the shared receive FIFO depth in 32-bit words.
	RxFIFOWords uint16

	// TxFIFO0Words is the endpoint 0 transmit FIFO depth in 32-bit words.
	// The FIFO starts right after the receive FIFO.
	TxFIFO0Words uint16

	// TurnaroundTime is the USB turnaround time in PHY clocks (GUSBCFG.TRDT).
	TurnaroundTime uint8

	// ForceDeviceMode sets GUSBCFG.FDMOD instead of relying on the ID pin.
	ForceDeviceMode bool

	// WaitLimit bounds every hardware readiness poll, in register reads.
	WaitLimit int

	// Descriptor is returned for GET_DESCRIPTOR(Device).
	Descriptor device.DeviceDescriptor
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		Speed:          SpeedHigh,
		SetupPackets:   DefaultSetupPackets,
		RxFIFOWords:    DefaultRxFIFOWords,
		TxFIFO0Words:   DefaultTxFIFO0Words,
		TurnaroundTime: DefaultTurnaroundTime,
		WaitLimit:      DefaultWaitLimit,
		Descriptor: device.DeviceDescriptor{
			USBVersion:        0x0200,
			DeviceClass:       device.ClassPerInterface,
			MaxPacketSize0:    hw.MaxPacketSize0,
			VendorID:          0x3412,
			ProductID:         0x7856,
			DeviceVersion:     0x5713,
			NumConfigurations: 1,
		},
	}
}

// Validate checks that every field can be programmed into the hardware.
func (c *Config) Validate() error {
	switch {
	case c.Speed != SpeedHigh && c.Speed != SpeedFull:
		return fmt.Errorf("%w: speed %d", pkg.ErrInvalidParameter, c.Speed)
	case c.SetupPackets == 0 || c.SetupPackets > hw.DOEPTSIZ0_STUPCNT_MASK:
		return fmt.Errorf("%w: setup packets %d", pkg.ErrInvalidParameter, c.SetupPackets)
	case c.RxFIFOWords < minRxFIFOWords:
		return fmt.Errorf("%w: rx fifo %d words", pkg.ErrInvalidParameter, c.RxFIFOWords)
	case c.TxFIFO0Words < minTxFIFO0Words:
		return fmt.Errorf("%w: tx fifo %d words", pkg.ErrInvalidParameter, c.TxFIFO0Words)
	case c.TurnaroundTime == 0 || c.TurnaroundTime > 0xf:
		return fmt.Errorf("%w: turnaround time %d", pkg.ErrInvalidParameter, c.TurnaroundTime)
	case c.WaitLimit <= 0:
		return fmt.Errorf("%w: wait limit %d", pkg.ErrInvalidParameter, c.WaitLimit)
	case c.Descriptor.MaxPacketSize0 != hw.MaxPacketSize0:
		return fmt.Errorf("%w: endpoint 0 max packet size %d", pkg.ErrInvalidParameter, c.Descriptor.MaxPacketSize0)
	}
	return nil
}
