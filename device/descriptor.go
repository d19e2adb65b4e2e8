package device

import (
	"encoding/binary"
	"fmt"

	"github.com/coreos/go-semver/semver"

	"github.com/ardnew/otghs/pkg"
)

// USB Descriptor Types (USB 2.0 Spec Table 9-5).
const (
	DescriptorTypeDevice          = 0x01
	DescriptorTypeConfiguration   = 0x02
	DescriptorTypeString          = 0x03
	DescriptorTypeInterface       = 0x04
	DescriptorTypeEndpoint        = 0x05
	DescriptorTypeDeviceQualifier = 0x06
)

// ClassPerInterface defers class information to the interface descriptors.
const ClassPerInterface = 0x00

// DeviceDescriptor represents a USB device descriptor (18 bytes).
type DeviceDescriptor struct {
	USBVersion        uint16 // USB specification version (BCD)
	DeviceClass       uint8  // Class code
	DeviceSubClass    uint8  // Subclass code
	DeviceProtocol    uint8  // Protocol code
	MaxPacketSize0    uint8  // Max packet size for EP0
	VendorID          uint16 // Vendor ID
	ProductID         uint16 // Product ID
	DeviceVersion     uint16 // Device release number (BCD)
	ManufacturerIndex uint8  // Index of manufacturer string
	ProductIndex      uint8  // Index of product string
	SerialNumberIndex uint8  // Index of serial number string
	NumConfigurations uint8  // Number of configurations
}

// DeviceDescriptorSize is the size of a device descriptor in bytes.
const DeviceDescriptorSize = 18

// MarshalTo serializes the device descriptor to buf.
// Returns the number of bytes written, or 0 if buf is too small.
func (d *DeviceDescriptor) MarshalTo(buf []byte) int {
	if len(buf) < DeviceDescriptorSize {
		return 0
	}
	buf[0] = DeviceDescriptorSize
	buf[1] = DescriptorTypeDevice
	binary.LittleEndian.PutUint16(buf[2:4], d.USBVersion)
	buf[4] = d.DeviceClass
	buf[5] = d.DeviceSubClass
	buf[6] = d.DeviceProtocol
	buf[7] = d.MaxPacketSize0
	binary.LittleEndian.PutUint16(buf[8:10], d.VendorID)
	binary.LittleEndian.PutUint16(buf[10:12], d.ProductID)
	binary.LittleEndian.PutUint16(buf[12:14], d.DeviceVersion)
	buf[14] = d.ManufacturerIndex
	buf[15] = d.ProductIndex
	buf[16] = d.SerialNumberIndex
	buf[17] = d.NumConfigurations
	return DeviceDescriptorSize
}

// Bytes returns the wire form of the device descriptor.
func (d *DeviceDescriptor) Bytes() (b [DeviceDescriptorSize]byte) {
	d.MarshalTo(b[:])
	return
}

// ParseDeviceDescriptor parses a device descriptor from bytes into out.
func ParseDeviceDescriptor(data []byte, out *DeviceDescriptor) error {
	if len(data) < DeviceDescriptorSize {
		return pkg.ErrDescriptorTooShort
	}
	if data[1] != DescriptorTypeDevice {
		return pkg.ErrDescriptorTypeMismatch
	}
	out.USBVersion = binary.LittleEndian.Uint16(data[2:4])
	out.DeviceClass = data[4]
	out.DeviceSubClass = data[5]
	out.DeviceProtocol = data[6]
	out.MaxPacketSize0 = data[7]
	out.VendorID = binary.LittleEndian.Uint16(data[8:10])
	out.ProductID = binary.LittleEndian.Uint16(data[10:12])
	out.DeviceVersion = binary.LittleEndian.Uint16(data[12:14])
	out.ManufacturerIndex = data[14]
	out.ProductIndex = data[15]
	out.SerialNumberIndex = data[16]
	out.NumConfigurations = data[17]
	return nil
}

// ParseBCD converts a "JJ.M.N" version string into the USB binary-coded
// decimal form 0xJJMN, e.g. "2.0.0" is 0x0200 and "57.1.3" is 0x5713.
func ParseBCD(version string) (uint16, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", pkg.ErrInvalidVersion, err)
	}
	if v.Major < 0 || v.Major > 99 || v.Minor < 0 || v.Minor > 9 || v.Patch < 0 || v.Patch > 9 {
		return 0, fmt.Errorf("%w: %s out of range", pkg.ErrInvalidVersion, version)
	}
	return uint16(v.Major/10)<<12 | uint16(v.Major%10)<<8 | uint16(v.Minor)<<4 | uint16(v.Patch), nil
}

// FormatBCD is the inverse of ParseBCD.
func FormatBCD(bcd uint16) string {
	major := int(bcd>>12&0xF)*10 + int(bcd>>8&0xF)
	return fmt.Sprintf("%d.%d.%d", major, bcd>>4&0xF, bcd&0xF)
}
