package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ardnew/otghs/device"
	"github.com/ardnew/otghs/otghs"
	"github.com/ardnew/otghs/otghs/sim"
	"github.com/ardnew/otghs/pkg"
)

// maxServiceRounds bounds the interrupts taken for a single host action.
const maxServiceRounds = 256

var errInterruptStorm = errors.New("interrupt line never released")

var (
	enumerateOpts = struct {
		length  uint16
		address uint8
	}{}

	enumerateCmd = &cobra.Command{
		Use:   "enumerate",
		Short: "Reset the bus, read the device descriptor and assign an address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := effectiveConfig()
			if err != nil {
				return err
			}
			return enumerate(cmd.OutOrStdout(), cfg, enumerateOpts.length, enumerateOpts.address)
		},
	}
)

func init() {
	enumerateCmd.Flags().Uint16VarP(&enumerateOpts.length, "length", "l", device.DeviceDescriptorSize, "wLength of GET_DESCRIPTOR(Device)")
	enumerateCmd.Flags().Uint8VarP(&enumerateOpts.address, "address", "a", 1, "address assigned with SET_ADDRESS")
}

// host plays the USB host against a simulated core, taking interrupts as
// long as the line is asserted.
type host struct {
	core *sim.Core
	ctrl *otghs.Controller
}

func (h *host) serve() error {
	for i := 0; h.core.Pending(); i++ {
		if i == maxServiceRounds {
			return errInterruptStorm
		}
		if err := h.ctrl.Service(); err != nil {
			return err
		}
	}
	return nil
}

// request sends a SETUP packet and returns the IN packets it produced.
func (h *host) request(p device.SetupPacket) ([][]byte, error) {
	before := len(h.core.Sent())

	pkg.LogInfo(pkg.ComponentSim, "host request", "setup", p.String())

	h.core.Setup(p)
	if err := h.serve(); err != nil {
		return nil, err
	}
	return h.core.Sent()[before:], nil
}

func enumerate(w io.Writer, cfg otghs.Config, length uint16, address uint8) error {
	if address == 0 || address > 127 {
		return fmt.Errorf("%w: address %d", pkg.ErrInvalidParameter, address)
	}

	core := sim.New(sim.DefaultConfig())

	ctrl, err := otghs.Init(core.Global(), core.Device(), cfg)
	if err != nil {
		return err
	}
	h := &host{core: core, ctrl: ctrl}

	core.Reset()
	core.EnumerationDone(uint32(cfg.Speed))
	if err := h.serve(); err != nil {
		return err
	}

	sent, err := h.request(device.SetupPacket{
		RequestType: device.RequestDirectionDeviceToHost,
		Request:     device.RequestGetDescriptor,
		Value:       device.DescriptorTypeDevice << 8,
		Length:      length,
	})
	if err != nil {
		return err
	}
	if len(sent) != 1 {
		return fmt.Errorf("GET_DESCRIPTOR: got %d packets, want 1", len(sent))
	}

	fmt.Fprintf(w, "descriptor: % x\n", sent[0])

	var desc device.DeviceDescriptor
	if err := device.ParseDeviceDescriptor(sent[0], &desc); err == nil {
		fmt.Fprintf(w, "  usb %s, vendor %04x, product %04x, release %s, ep0 %d bytes\n",
			device.FormatBCD(desc.USBVersion), desc.VendorID, desc.ProductID,
			device.FormatBCD(desc.DeviceVersion), desc.MaxPacketSize0)
	}

	if _, err := h.request(device.SetupPacket{
		Request: device.RequestSetAddress,
		Value:   uint16(address),
	}); err != nil {
		return err
	}

	fmt.Fprintf(w, "address: %d\n", core.Address())

	st := ctrl.Stats()
	fmt.Fprintf(w, "stats: interrupts=%d fragments=%d requests=%d unhandled=%d transmits=%d resets=%d\n",
		st.Interrupts, st.Fragments, st.Requests, st.Unhandled, st.Transmits, st.Resets)

	return nil
}
