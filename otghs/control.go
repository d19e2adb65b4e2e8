package otghs

import (
	"fmt"

	"github.com/ardnew/otghs/device"
	"github.com/ardnew/otghs/otghs/hw"
	"github.com/ardnew/otghs/pkg"
	"github.com/ardnew/otghs/reg"
)

// handleOutEndpoint services endpoint 0 OUT events. On SETUP phase done it
// reconstructs the pending SETUP transaction, answers it and re-arms the
// endpoint for further SETUP packets.
func (c *Controller) handleOutEndpoint() error {
	if !reg.IsSet(c.device, hw.DAINT, hw.DAINT_OEP) {
		return nil
	}

	events := reg.Read(c.device, hw.DOEPINT0)

	if events&(1<<hw.DEPINT_XFRC) != 0 {
		reg.Write(c.device, hw.DOEPINT0, 1<<hw.DEPINT_XFRC)
	}

	if events&(1<<hw.DOEPINT_STUP) == 0 {
		return nil
	}

	reg.Write(c.device, hw.DOEPINT0, 1<<hw.DOEPINT_STUP)

	if n := reg.Get(c.device, hw.DOEPTSIZ0, hw.DOEPTSIZ0_STUPCNT, hw.DOEPTSIZ0_STUPCNT_MASK); n > uint32(c.cfg.SetupPackets) {
		return pkg.NewFault("setup", fmt.Errorf("%w: %d > %d", pkg.ErrSetupCount, n, c.cfg.SetupPackets))
	}

	req, res := c.rx.Next()

	switch res {
	case ResultIncomplete:
		c.stats.Deferred++
		pkg.LogDebug(pkg.ComponentControl, "setup deferred", "queued", c.rx.Queue().Len())
		return nil
	case ResultComplete:
		if err := c.handleRequest(req); err != nil {
			return err
		}
	}

	c.armSetup()

	return nil
}

// armSetup allows endpoint 0 to accept the configured number of
// back-to-back SETUP packets.
func (c *Controller) armSetup() {
	reg.SetN(c.device, hw.DOEPTSIZ0, hw.DOEPTSIZ0_STUPCNT, hw.DOEPTSIZ0_STUPCNT_MASK, uint32(c.cfg.SetupPackets))
}

func (c *Controller) handleRequest(req ControlRequest) error {
	c.stats.Requests++
	c.stats.LastRequest = req

	pkg.LogDebug(pkg.ComponentControl, "request", "setup", req.String())

	switch req.Request {
	case device.RequestGetDescriptor:
		if req.DescriptorType() == device.DescriptorTypeDevice {
			return c.sendDeviceDescriptor(req.Length)
		}
	case device.RequestSetAddress:
		return c.setAddress(req.Address())
	}

	c.stats.Unhandled++
	pkg.LogDebug(pkg.ComponentControl, "request ignored",
		"request", req.Request,
		"value", req.Value)

	return nil
}

// sendDeviceDescriptor answers GET_DESCRIPTOR(Device) with at most length
// bytes of the descriptor.
func (c *Controller) sendDeviceDescriptor(length uint16) error {
	if !c.hasDescriptor {
		c.cfg.Descriptor.MarshalTo(c.descriptor[:])
		c.hasDescriptor = true
	}

	n := min(int(length), len(c.descriptor))

	var words [(device.DeviceDescriptorSize + 3) / 4]uint32
	packWords(words[:], c.descriptor[:n])

	return c.transmit(words[:], n)
}

// setAddress holds the new address until the zero-length status stage has
// been sent, after which the IN endpoint handler latches it into DCFG.
func (c *Controller) setAddress(addr uint8) error {
	c.pendingAddress = addr
	c.addressPending = true

	pkg.LogDebug(pkg.ComponentControl, "address pending", "address", addr)

	return c.transmit(nil, 0)
}

// latchAddress programs a pending SET_ADDRESS into DCFG.DAD.
func (c *Controller) latchAddress() {
	if !c.addressPending {
		return
	}

	reg.SetN(c.device, hw.DCFG, hw.DCFG_DAD, hw.DCFG_DAD_MASK, uint32(c.pendingAddress))

	c.address = c.pendingAddress
	c.addressPending = false

	pkg.LogInfo(pkg.ComponentControl, "address set", "address", c.address)
}
