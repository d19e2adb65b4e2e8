package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ardnew/otghs/device"
	"github.com/ardnew/otghs/otghs"
	"github.com/ardnew/otghs/pkg"
)

//go:embed default.yaml
var defaultYAML []byte

// fileConfig is the YAML form of otghs.Config. Versions are written as
// semantic version strings and stored as BCD.
type fileConfig struct {
	Speed           string         `yaml:"speed"`
	SetupPackets    uint8          `yaml:"setupPackets"`
	RxFIFOWords     uint16         `yaml:"rxFifoWords"`
	TxFIFO0Words    uint16         `yaml:"txFifo0Words"`
	TurnaroundTime  uint8          `yaml:"turnaroundTime"`
	ForceDeviceMode bool           `yaml:"forceDeviceMode"`
	WaitLimit       int            `yaml:"waitLimit"`
	Descriptor      fileDescriptor `yaml:"descriptor"`
}

type fileDescriptor struct {
	USBVersion        string `yaml:"usbVersion"`
	Class             uint8  `yaml:"class"`
	SubClass          uint8  `yaml:"subClass"`
	Protocol          uint8  `yaml:"protocol"`
	MaxPacketSize0    uint8  `yaml:"maxPacketSize0"`
	VendorID          uint16 `yaml:"vendorId"`
	ProductID         uint16 `yaml:"productId"`
	DeviceVersion     string `yaml:"deviceVersion"`
	ManufacturerIndex uint8  `yaml:"manufacturerIndex"`
	ProductIndex      uint8  `yaml:"productIndex"`
	SerialNumberIndex uint8  `yaml:"serialNumberIndex"`
	NumConfigurations uint8  `yaml:"numConfigurations"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := effectiveConfig()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(toFile(cfg))
	},
}

// loadConfig decodes the built-in defaults and then, if path is set, the
// given file on top of them.
func loadConfig(path string) (otghs.Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(defaultYAML, &fc); err != nil {
		return otghs.Config{}, fmt.Errorf("default config: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return otghs.Config{}, err
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return otghs.Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	cfg, err := fc.config()
	if err != nil {
		return otghs.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return otghs.Config{}, err
	}
	return cfg, nil
}

func parseSpeed(s string) (otghs.Speed, error) {
	switch s {
	case "high":
		return otghs.SpeedHigh, nil
	case "full":
		return otghs.SpeedFull, nil
	}
	return 0, fmt.Errorf("%w: speed %q", pkg.ErrInvalidParameter, s)
}

func (fc *fileConfig) config() (otghs.Config, error) {
	speed, err := parseSpeed(fc.Speed)
	if err != nil {
		return otghs.Config{}, err
	}
	usb, err := device.ParseBCD(fc.Descriptor.USBVersion)
	if err != nil {
		return otghs.Config{}, fmt.Errorf("usbVersion: %w", err)
	}
	release, err := device.ParseBCD(fc.Descriptor.DeviceVersion)
	if err != nil {
		return otghs.Config{}, fmt.Errorf("deviceVersion: %w", err)
	}

	d := &fc.Descriptor
	return otghs.Config{
		Speed:           speed,
		SetupPackets:    fc.SetupPackets,
		RxFIFOWords:     fc.RxFIFOWords,
		TxFIFO0Words:    fc.TxFIFO0Words,
		TurnaroundTime:  fc.TurnaroundTime,
		ForceDeviceMode: fc.ForceDeviceMode,
		WaitLimit:       fc.WaitLimit,
		Descriptor: device.DeviceDescriptor{
			USBVersion:        usb,
			DeviceClass:       d.Class,
			DeviceSubClass:    d.SubClass,
			DeviceProtocol:    d.Protocol,
			MaxPacketSize0:    d.MaxPacketSize0,
			VendorID:          d.VendorID,
			ProductID:         d.ProductID,
			DeviceVersion:     release,
			ManufacturerIndex: d.ManufacturerIndex,
			ProductIndex:      d.ProductIndex,
			SerialNumberIndex: d.SerialNumberIndex,
			NumConfigurations: d.NumConfigurations,
		},
	}, nil
}

func toFile(cfg otghs.Config) fileConfig {
	d := &cfg.Descriptor
	return fileConfig{
		Speed:           cfg.Speed.String(),
		SetupPackets:    cfg.SetupPackets,
		RxFIFOWords:     cfg.RxFIFOWords,
		TxFIFO0Words:    cfg.TxFIFO0Words,
		TurnaroundTime:  cfg.TurnaroundTime,
		ForceDeviceMode: cfg.ForceDeviceMode,
		WaitLimit:       cfg.WaitLimit,
		Descriptor: fileDescriptor{
			USBVersion:        device.FormatBCD(d.USBVersion),
			Class:             d.DeviceClass,
			SubClass:          d.DeviceSubClass,
			Protocol:          d.DeviceProtocol,
			MaxPacketSize0:    d.MaxPacketSize0,
			VendorID:          d.VendorID,
			ProductID:         d.ProductID,
			DeviceVersion:     device.FormatBCD(d.DeviceVersion),
			ManufacturerIndex: d.ManufacturerIndex,
			ProductIndex:      d.ProductIndex,
			SerialNumberIndex: d.SerialNumberIndex,
			NumConfigurations: d.NumConfigurations,
		},
	}
}
