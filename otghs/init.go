package otghs

import (
	"fmt"

	"github.com/ardnew/otghs/otghs/hw"
	"github.com/ardnew/otghs/pkg"
	"github.com/ardnew/otghs/reg"
)

// initMask is the set of interrupt sources unmasked by Init. OEPINT carries
// SETUP phase done and is not unmasked anywhere else. RXFLVL stays masked
// until enumeration completes and endpoint 0 is configured.
const initMask = 1<<hw.GINTSTS_MMIS |
	1<<hw.GINTSTS_OTGINT |
	1<<hw.GINTSTS_ESUSP |
	1<<hw.GINTSTS_USBSUSP |
	1<<hw.GINTSTS_USBRST |
	1<<hw.GINTSTS_ENUMDNE |
	1<<hw.GINTSTS_OEPINT

// Init brings the OTG_HS core into device mode and returns the controller
// that owns both register blocks from then on. It must run before the
// peripheral interrupt is enabled.
//
// Every hardware poll is bounded by cfg.WaitLimit; a poll that runs out
// returns an error wrapping pkg.ErrTimeout and the core is left in an
// undefined state.
func Init(global, dev reg.Block, cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := newController(global, dev, cfg)

	steps := []struct {
		name string
		fn   func() error
	}{
		{"clear status", c.clearStatus},
		{"core reset", c.resetCore},
		{"global config", c.configureCore},
		{"device mode", c.waitDeviceMode},
		{"vbus sensing", c.enableVBUS},
		{"device config", c.configureDevice},
		{"unmask", c.unmask},
		{"connect", c.connect},
	}

	for _, s := range steps {
		if err := s.fn(); err != nil {
			pkg.LogError(pkg.ComponentInit, "initialization failed", "step", s.name, "err", err)
			return nil, fmt.Errorf("init %s: %w", s.name, err)
		}
		pkg.LogDebug(pkg.ComponentInit, "step done", "step", s.name)
	}

	pkg.LogInfo(pkg.ComponentInit, "controller ready",
		"speed", cfg.Speed.String(),
		"setupPackets", cfg.SetupPackets)

	return c, nil
}

func (c *Controller) clearStatus() error {
	reg.Write(c.global, hw.GINTSTS, reg.Read(c.global, hw.GINTSTS))
	return nil
}

// resetCore selects the internal high-speed PHY and performs a core soft
// reset once the AHB master is idle.
func (c *Controller) resetCore() error {
	reg.Clear(c.global, hw.GCCFG, hw.GCCFG_PWRDWN)

	reg.Update(c.global, hw.GUSBCFG, func(v *uint32) {
		*v &^= 1<<hw.GUSBCFG_PHYSEL |
			1<<hw.GUSBCFG_TSDPS |
			1<<hw.GUSBCFG_ULPIFSLS |
			1<<hw.GUSBCFG_ULPIEVBUSD |
			1<<hw.GUSBCFG_ULPIEVBUSI
	})

	if err := c.wait(c.global, "AHB idle", hw.GRSTCTL, hw.GRSTCTL_AHBIDL, 1, 1); err != nil {
		return err
	}

	reg.Set(c.global, hw.GRSTCTL, hw.GRSTCTL_CSRST)

	return c.wait(c.global, "core soft reset", hw.GRSTCTL, hw.GRSTCTL_CSRST, 1, 0)
}

func (c *Controller) configureCore() error {
	reg.Update(c.global, hw.GAHBCFG, func(v *uint32) {
		*v |= 1<<hw.GAHBCFG_GINT | 1<<hw.GAHBCFG_TXFELVL
	})

	reg.Update(c.global, hw.GUSBCFG, func(v *uint32) {
		*v &^= 1<<hw.GUSBCFG_HNPCAP | 1<<hw.GUSBCFG_SRPCAP
		*v &^= 0xf << hw.GUSBCFG_TRDT
		*v |= uint32(c.cfg.TurnaroundTime) << hw.GUSBCFG_TRDT
		if c.cfg.ForceDeviceMode {
			*v |= 1 << hw.GUSBCFG_FDMOD
		}
	})

	return nil
}

func (c *Controller) waitDeviceMode() error {
	return c.wait(c.global, "device mode", hw.GINTSTS, hw.GINTSTS_CMOD, 1, 0)
}

func (c *Controller) enableVBUS() error {
	reg.Set(c.global, hw.GCCFG, hw.GCCFG_VBDEN)
	return nil
}

func (c *Controller) configureDevice() error {
	reg.Update(c.device, hw.DCFG, func(v *uint32) {
		*v &^= hw.DCFG_DSPD_MASK<<hw.DCFG_DSPD | 1<<hw.DCFG_NZLSOHSK
		*v |= uint32(c.cfg.Speed) << hw.DCFG_DSPD
	})
	return nil
}

func (c *Controller) unmask() error {
	reg.Write(c.global, hw.GINTMSK, initMask)
	return nil
}

func (c *Controller) connect() error {
	reg.Clear(c.device, hw.DCTL, hw.DCTL_SDIS)
	return nil
}
