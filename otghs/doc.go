// Package otghs implements the device-mode control transfer engine of the
// STM32 OTG_HS USB controller.
//
// [Init] resets the core and returns a [Controller] that owns the global
// and device register blocks. From then on the controller is driven only by
// [Controller.Service], which must be called from the peripheral interrupt
// handler. Service dispatches the asserted interrupt sources, drains the
// receive FIFO into a fragment queue, reconstructs SETUP transactions on
// endpoint 0 and answers GET_DESCRIPTOR(Device) and SET_ADDRESS.
//
// Unrecoverable hardware conditions are returned as *pkg.Fault and halt the
// controller. Every hardware poll is bounded by [Config.WaitLimit].
//
// Usage:
//
//	ctrl, err := otghs.Init(global, device, otghs.DefaultConfig())
//	if err != nil {
//		return err
//	}
//
//	// in the OTG_HS interrupt handler
//	if err := ctrl.Service(); err != nil {
//		trap(err)
//	}
package otghs
