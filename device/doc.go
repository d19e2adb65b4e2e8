// Package device holds the USB device-side wire formats used on the control
// endpoint: the 8-byte SETUP packet and the 18-byte Device Descriptor, with
// the standard request and descriptor type codes (USB 2.0 chapter 9).
package device
