package otghs

import (
	"fmt"

	"github.com/ardnew/otghs/otghs/hw"
	"github.com/ardnew/otghs/pkg"
	"github.com/ardnew/otghs/reg"
)

// handleReset prepares endpoint 0 after a USB bus reset: every other OUT
// endpoint is NAKed, endpoint 0 interrupts are unmasked, the FIFOs are
// partitioned and SETUP reception is armed. Device state from before the
// reset is discarded.
func (c *Controller) handleReset() error {
	for n := 1; n < hw.OutEndpoints; n++ {
		reg.Set(c.device, hw.DOEPCTL(n), hw.DEPCTL_SNAK)
	}

	reg.Update(c.device, hw.DAINTMSK, func(v *uint32) {
		*v |= 1<<hw.DAINT_IEP | 1<<hw.DAINT_OEP
	})
	reg.Update(c.device, hw.DOEPMSK, func(v *uint32) {
		*v |= 1<<hw.DOEPMSK_STUPM | 1<<hw.DEPMSK_XFRCM
	})
	reg.Update(c.device, hw.DIEPMSK, func(v *uint32) {
		*v |= 1<<hw.DEPMSK_XFRCM | 1<<hw.DIEPMSK_TOM
	})

	reg.SetN(c.global, hw.GRXFSIZ, hw.GRXFSIZ_RXFD, hw.FIFO_DEPTH_MASK, uint32(c.cfg.RxFIFOWords))
	reg.Write(c.global, hw.DIEPTXF0,
		uint32(c.cfg.TxFIFO0Words)<<hw.DIEPTXF0_TX0FD|uint32(c.cfg.RxFIFOWords)<<hw.DIEPTXF0_TX0FSA)

	c.armSetup()

	reg.SetN(c.device, hw.DCFG, hw.DCFG_DAD, hw.DCFG_DAD_MASK, 0)
	c.address = 0
	c.addressPending = false
	c.txPending = false
	c.rx = Reassembler{}

	c.stats.Resets++
	pkg.LogInfo(pkg.ComponentBus, "bus reset")

	return nil
}

// handleEnumerationDone checks the negotiated speed and sizes endpoint 0.
// Receive FIFO interrupts are enabled from here on.
func (c *Controller) handleEnumerationDone() error {
	speed := reg.Get(c.device, hw.DSTS, hw.DSTS_ENUMSPD, hw.DSTS_ENUMSPD_MASK)

	if !c.speedMatches(speed) {
		return pkg.NewFault("enumeration", fmt.Errorf("%w: got %d, configured %s",
			pkg.ErrEnumerationSpeed, speed, c.cfg.Speed))
	}

	reg.SetN(c.device, hw.DIEPCTL0, hw.DEPCTL_MPSIZ, hw.DEPCTL_MPSIZ0_MASK, 0)
	reg.Set(c.global, hw.GINTMSK, hw.GINTSTS_RXFLVL)

	pkg.LogInfo(pkg.ComponentBus, "enumeration done", "speed", c.cfg.Speed.String())

	return nil
}

func (c *Controller) speedMatches(enumspd uint32) bool {
	switch c.cfg.Speed {
	case SpeedHigh:
		return enumspd == hw.SPEED_HIGH
	case SpeedFull:
		return enumspd == hw.SPEED_FULL_HS_PHY || enumspd == hw.SPEED_FULL_EMBEDDED
	}
	return false
}

// handleOTG acknowledges OTG events. Role switching is not supported, so
// the events are only cleared.
func (c *Controller) handleOTG() error {
	events := reg.Read(c.global, hw.GOTGINT)
	reg.Write(c.global, hw.GOTGINT, events)

	pkg.LogDebug(pkg.ComponentBus, "otg event", "gotgint", events)

	return nil
}

func (c *Controller) handleModeMismatch() error {
	return pkg.NewFault("mode", pkg.ErrModeMismatch)
}

func (c *Controller) handleSuspend() error {
	c.stats.Suspends++
	pkg.LogInfo(pkg.ComponentBus, "suspend")
	return nil
}
