package otghs

import (
	"fmt"

	"github.com/ardnew/otghs/device"
	"github.com/ardnew/otghs/pkg"
	"github.com/ardnew/otghs/reg"
)

// Controller owns the OTG_HS register blocks and all state touched from
// interrupt context. It is created by Init and afterwards must only be used
// by the interrupt handler calling Service; it performs no locking.
type Controller struct {
	global reg.Block
	device reg.Block
	cfg    Config

	handlers [NumSources]handler
	rx       Reassembler

	// descriptor is built on the first GET_DESCRIPTOR(Device).
	descriptor    [device.DeviceDescriptorSize]byte
	hasDescriptor bool

	txPending      bool
	address        uint8
	pendingAddress uint8
	addressPending bool

	halted error
	stats  Stats
}

func newController(global, dev reg.Block, cfg Config) *Controller {
	return &Controller{
		global:   global,
		device:   dev,
		cfg:      cfg,
		handlers: defaultHandlers,
	}
}

// Config returns the configuration the controller was initialized with.
func (c *Controller) Config() Config {
	return c.cfg
}

// Stats returns a snapshot of the debug counters.
func (c *Controller) Stats() Stats {
	return c.stats
}

// Reassembly returns the SETUP reassembly state.
func (c *Controller) Reassembly() *Reassembler {
	return &c.rx
}

// TxPending reports whether an IN packet is waiting for its transfer
// complete notification.
func (c *Controller) TxPending() bool {
	return c.txPending
}

// Address returns the device address latched into DCFG.DAD.
func (c *Controller) Address() uint8 {
	return c.address
}

// Halted returns the error that stopped the controller, or nil.
func (c *Controller) Halted() error {
	return c.halted
}

func (c *Controller) halt(err error) error {
	c.halted = err
	pkg.LogError(pkg.ComponentISR, "controller halted", "err", err)
	return err
}

// wait polls a register field of block b until it equals val, giving up
// after the configured number of reads.
func (c *Controller) wait(b reg.Block, name string, off uint32, pos int, mask int, val uint32) error {
	if !reg.Wait(b, off, pos, mask, val, c.cfg.WaitLimit) {
		return fmt.Errorf("%w: %s", pkg.ErrTimeout, name)
	}
	return nil
}

// waitUntil polls register off of block b until cond holds.
func (c *Controller) waitUntil(b reg.Block, name string, off uint32, cond func(uint32) bool) error {
	if !reg.WaitUntil(b, off, c.cfg.WaitLimit, cond) {
		return fmt.Errorf("%w: %s", pkg.ErrTimeout, name)
	}
	return nil
}
