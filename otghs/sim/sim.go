package sim

import (
	"encoding/binary"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/ardnew/otghs/device"
	"github.com/ardnew/otghs/otghs/hw"
	"github.com/ardnew/otghs/pkg"
	"github.com/ardnew/otghs/reg"
)

// Config tunes how the simulated core responds.
type Config struct {
	// ResetDelay is the number of GRSTCTL reads before a core soft reset
	// completes.
	ResetDelay int

	// ModeDelay is the number of GINTSTS reads before the core reports
	// device mode.
	ModeDelay int

	// TxSpace is the free space reported by DTXFSTS0, in words.
	TxSpace uint32

	// StuckReset keeps GRSTCTL.CSRST set forever.
	StuckReset bool

	// StuckHostMode keeps GINTSTS.CMOD set forever.
	StuckHostMode bool

	// HoldTx keeps IN transfers from completing, leaving DIEPTSIZ0.XFRSIZ
	// non-zero.
	HoldTx bool
}

// DefaultConfig returns a core that behaves like healthy hardware.
func DefaultConfig() Config {
	return Config{
		ResetDelay: 3,
		ModeDelay:  2,
		TxSpace:    0x200,
	}
}

type rxEntry struct {
	status uint32
	data   []uint32
}

// Core simulates the OTG_HS peripheral in device mode. It exposes the
// global and device register blocks through [Core.Global] and
// [Core.Device] and lets the caller act as the USB host.
//
// Only the behavior the control transfer engine relies on is modelled:
// core reset, mode reporting, write-1-to-clear status registers, the
// receive FIFO status/pop protocol, SETUP phase done signaling and single
// packet IN transfers on endpoint 0.
type Core struct {
	mu  sync.Mutex
	cfg Config

	global map[uint32]uint32
	device map[uint32]uint32

	gintsts    uint32 // latched GINTSTS bits
	resetReads int
	modeReads  int

	rx    []rxEntry
	rxOut []uint32 // payload words of the entry last popped

	txArmed bool
	txWords []uint32
	sent    [][]byte

	fifoWrites int
}

// New returns a simulated core in its post power-on state.
func New(cfg Config) *Core {
	return &Core{
		cfg:    cfg,
		global: map[uint32]uint32{hw.GRSTCTL: 1 << hw.GRSTCTL_AHBIDL},
		device: map[uint32]uint32{hw.DCTL: 1 << hw.DCTL_SDIS},
	}
}

// Global returns the global register block.
func (c *Core) Global() reg.Block {
	return globalBlock{c}
}

// Device returns the device register block.
func (c *Core) Device() reg.Block {
	return deviceBlock{c}
}

type globalBlock struct{ c *Core }

func (b globalBlock) Read(off uint32) uint32 {
	b.c.mu.Lock()
	defer b.c.mu.Unlock()
	return b.c.readGlobal(off)
}

func (b globalBlock) Write(off uint32, val uint32) {
	b.c.mu.Lock()
	defer b.c.mu.Unlock()
	b.c.writeGlobal(off, val)
}

type deviceBlock struct{ c *Core }

func (b deviceBlock) Read(off uint32) uint32 {
	b.c.mu.Lock()
	defer b.c.mu.Unlock()
	return b.c.readDevice(off)
}

func (b deviceBlock) Write(off uint32, val uint32) {
	b.c.mu.Lock()
	defer b.c.mu.Unlock()
	b.c.writeDevice(off, val)
}

// status computes GINTSTS without side effects.
func (c *Core) status() uint32 {
	v := c.gintsts

	if len(c.rx) > 0 {
		v |= 1 << hw.GINTSTS_RXFLVL
	}
	if c.global[hw.GOTGINT] != 0 {
		v |= 1 << hw.GINTSTS_OTGINT
	}

	daint := c.daint()
	if daint&(1<<hw.DAINT_IEP) != 0 {
		v |= 1 << hw.GINTSTS_IEPINT
	}
	if daint&(1<<hw.DAINT_OEP) != 0 {
		v |= 1 << hw.GINTSTS_OEPINT
	}

	return v
}

// daint computes the endpoint 0 bits of DAINT, filtered by DAINTMSK.
func (c *Core) daint() uint32 {
	var v uint32

	in := c.diepint0() & (c.device[hw.DIEPMSK] | c.device[hw.DIEPEMPMSK]&1<<hw.DIEPINT_TXFE)
	if in != 0 {
		v |= 1 << hw.DAINT_IEP
	}
	if c.device[hw.DOEPINT0]&c.device[hw.DOEPMSK] != 0 {
		v |= 1 << hw.DAINT_OEP
	}

	return v & c.device[hw.DAINTMSK]
}

// diepint0 adds the read-only TXFE bit, set whenever no packet is being
// written into the transmit FIFO.
func (c *Core) diepint0() uint32 {
	v := c.device[hw.DIEPINT0]
	if !c.txArmed {
		v |= 1 << hw.DIEPINT_TXFE
	}
	return v
}

func (c *Core) readGlobal(off uint32) uint32 {
	switch off {
	case hw.GINTSTS:
		v := c.status()
		if c.cfg.StuckHostMode || c.modeReads < c.cfg.ModeDelay {
			c.modeReads++
			v |= 1 << hw.GINTSTS_CMOD
		}
		return v

	case hw.GRSTCTL:
		v := c.global[hw.GRSTCTL]
		if v&(1<<hw.GRSTCTL_CSRST) != 0 && !c.cfg.StuckReset {
			if c.resetReads >= c.cfg.ResetDelay {
				v &^= 1 << hw.GRSTCTL_CSRST
				c.global[hw.GRSTCTL] = v
			}
			c.resetReads++
		}
		return v

	case hw.GRXSTSR:
		if len(c.rx) == 0 {
			return 0
		}
		return c.rx[0].status

	case hw.GRXSTSP:
		return c.popRx()

	case hw.FIFO0:
		if len(c.rxOut) == 0 {
			return 0
		}
		w := c.rxOut[0]
		c.rxOut = c.rxOut[1:]
		return w
	}

	return c.global[off]
}

func (c *Core) writeGlobal(off uint32, val uint32) {
	switch off {
	case hw.GINTSTS:
		c.gintsts &^= val & hw.GINTSTS_RW_CLEAR

	case hw.GOTGINT:
		c.global[off] &^= val

	case hw.GRSTCTL:
		if val&(1<<hw.GRSTCTL_CSRST) != 0 {
			c.resetReads = 0
		}
		c.global[off] = val | 1<<hw.GRSTCTL_AHBIDL

	case hw.FIFO0:
		c.fifoWrites++
		if !c.txArmed {
			pkg.LogWarn(pkg.ComponentSim, "fifo write without enabled endpoint", "word", val)
			return
		}
		c.txWords = append(c.txWords, val)
		c.checkTx()

	default:
		c.global[off] = val
	}
}

func (c *Core) readDevice(off uint32) uint32 {
	switch off {
	case hw.DAINT:
		return c.daint()
	case hw.DIEPINT0:
		return c.diepint0()
	case hw.DTXFSTS0:
		return c.cfg.TxSpace & hw.DTXFSTS_INEPTFSAV_MASK
	}
	return c.device[off]
}

func (c *Core) writeDevice(off uint32, val uint32) {
	switch off {
	case hw.DAINT:
		// read-only

	case hw.DIEPINT0, hw.DOEPINT0:
		c.device[off] &^= val

	case hw.DIEPCTL0:
		c.device[off] = val
		if val&(1<<hw.DEPCTL_EPENA) != 0 && !c.txArmed {
			c.txArmed = true
			c.txWords = nil
			c.checkTx()
		}

	default:
		c.device[off] = val
	}
}

// popRx removes the oldest receive entry and exposes its payload on the
// FIFO window. Popping a SETUP done entry raises DOEPINT0.STUP.
func (c *Core) popRx() uint32 {
	if len(c.rx) == 0 {
		return 0
	}

	e := c.rx[0]
	c.rx = slices.Delete(c.rx, 0, 1)
	c.rxOut = e.data

	if e.status>>hw.GRXSTSP_PKTSTS&hw.GRXSTSP_PKTSTS_MASK == hw.PKTSTS_SETUP_DONE {
		c.device[hw.DOEPINT0] |= 1 << hw.DOEPINT_STUP
	}

	return e.status
}

func (c *Core) xfrsiz() int {
	return int(c.device[hw.DIEPTSIZ0] >> hw.DEPTSIZ0_XFRSIZ & hw.DEPTSIZ0_XFRSIZ_MASK)
}

// checkTx completes the armed IN transfer once the FIFO holds every byte.
func (c *Core) checkTx() {
	n := c.xfrsiz()
	if !c.txArmed || c.cfg.HoldTx || len(c.txWords)*4 < n {
		return
	}

	packet := make([]byte, len(c.txWords)*4)
	for i, w := range c.txWords {
		binary.LittleEndian.PutUint32(packet[i*4:], w)
	}
	c.sent = append(c.sent, packet[:n])

	c.device[hw.DIEPTSIZ0] &^= hw.DEPTSIZ0_XFRSIZ_MASK<<hw.DEPTSIZ0_XFRSIZ |
		hw.DIEPTSIZ0_PKTCNT_MASK<<hw.DEPTSIZ0_PKTCNT
	c.device[hw.DIEPCTL0] &^= 1 << hw.DEPCTL_EPENA
	c.device[hw.DIEPINT0] |= 1 << hw.DEPINT_XFRC
	c.txArmed = false
	c.txWords = nil

	pkg.LogDebug(pkg.ComponentSim, "IN packet sent", "bytes", n)
}

// Reset signals a USB bus reset.
func (c *Core) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gintsts |= 1 << hw.GINTSTS_USBRST
}

// EnumerationDone completes speed enumeration at the given DSTS.ENUMSPD
// value.
func (c *Core) EnumerationDone(speed uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.device[hw.DSTS] &^= hw.DSTS_ENUMSPD_MASK << hw.DSTS_ENUMSPD
	c.device[hw.DSTS] |= speed & hw.DSTS_ENUMSPD_MASK << hw.DSTS_ENUMSPD
	c.gintsts |= 1 << hw.GINTSTS_ENUMDNE
}

// Setup delivers a SETUP packet on endpoint 0, as the SETUP data entry
// followed by the SETUP done entry.
func (c *Core) Setup(p device.SetupPacket) {
	b := p.Bytes()
	c.PushSetupData(b[:])
	c.PushSetupDone()
}

// PushSetupData queues a SETUP data entry carrying data. Each entry
// consumes one of the SETUP packets endpoint 0 is armed for.
func (c *Core) PushSetupData(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tsiz := c.device[hw.DOEPTSIZ0]
	if cnt := tsiz >> hw.DOEPTSIZ0_STUPCNT & hw.DOEPTSIZ0_STUPCNT_MASK; cnt > 0 {
		tsiz &^= hw.DOEPTSIZ0_STUPCNT_MASK << hw.DOEPTSIZ0_STUPCNT
		tsiz |= (cnt - 1) << hw.DOEPTSIZ0_STUPCNT
		c.device[hw.DOEPTSIZ0] = tsiz
	}

	c.pushRx(hw.PKTSTS_SETUP_DATA, 0, data)
}

// PushSetupDone queues the SETUP done marker entry.
func (c *Core) PushSetupDone() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushRx(hw.PKTSTS_SETUP_DONE, 0, nil)
}

// PushEntry queues an arbitrary receive FIFO entry on endpoint 0.
func (c *Core) PushEntry(pktsts, dpid uint8, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushRx(pktsts, dpid, data)
}

func (c *Core) pushRx(pktsts, dpid uint8, data []byte) {
	status := uint32(len(data))&hw.GRXSTSP_BCNT_MASK<<hw.GRXSTSP_BCNT |
		uint32(dpid)&hw.GRXSTSP_DPID_MASK<<hw.GRXSTSP_DPID |
		uint32(pktsts)&hw.GRXSTSP_PKTSTS_MASK<<hw.GRXSTSP_PKTSTS

	words := make([]uint32, (len(data)+3)/4)
	for i := range words {
		var w [4]byte
		copy(w[:], data[i*4:])
		words[i] = binary.LittleEndian.Uint32(w[:])
	}

	c.rx = append(c.rx, rxEntry{status: status, data: words})
}

// RaiseSetupDone sets DOEPINT0.STUP without queueing a receive entry.
func (c *Core) RaiseSetupDone() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.device[hw.DOEPINT0] |= 1 << hw.DOEPINT_STUP
}

// ModeMismatch raises GINTSTS.MMIS.
func (c *Core) ModeMismatch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gintsts |= 1 << hw.GINTSTS_MMIS
}

// OTGEvent latches events into GOTGINT.
func (c *Core) OTGEvent(events uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.global[hw.GOTGINT] |= events
}

// Suspend raises the early suspend and suspend interrupts.
func (c *Core) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gintsts |= 1<<hw.GINTSTS_ESUSP | 1<<hw.GINTSTS_USBSUSP
}

// Pending reports whether an enabled interrupt is asserted, that is,
// whether the interrupt line would be raised.
func (c *Core) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.global[hw.GAHBCFG]&(1<<hw.GAHBCFG_GINT) != 0 &&
		c.status()&c.global[hw.GINTMSK] != 0
}

// Sent returns a copy of every IN packet transmitted on endpoint 0.
func (c *Core) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := slices.Clone(c.sent)
	for i := range out {
		out[i] = slices.Clone(out[i])
	}
	return out
}

// Address returns DCFG.DAD.
func (c *Core) Address() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint8(c.device[hw.DCFG] >> hw.DCFG_DAD & hw.DCFG_DAD_MASK)
}

// Connected reports whether the soft disconnect has been released.
func (c *Core) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device[hw.DCTL]&(1<<hw.DCTL_SDIS) == 0
}

// RxQueued returns the number of receive entries not yet popped.
func (c *Core) RxQueued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rx)
}

// RxUnread returns the payload words of the last popped entry that have
// not been read from the FIFO window.
func (c *Core) RxUnread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rxOut)
}

// FIFOWrites returns the number of words written to the transmit FIFO.
func (c *Core) FIFOWrites() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fifoWrites
}

// GlobalReg returns the stored value of a global register, bypassing read
// side effects.
func (c *Core) GlobalReg(off uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.global[off]
}

// DeviceReg returns the stored value of a device register, bypassing read
// side effects.
func (c *Core) DeviceReg(off uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device[off]
}

// SetDeviceReg overwrites a stored device register.
func (c *Core) SetDeviceReg(off uint32, val uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.device[off] = val
}
