package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ardnew/otghs/otghs"
	"github.com/ardnew/otghs/pkg"
)

func TestDefaultYAMLMatchesDefaultConfig(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg != otghs.DefaultConfig() {
		t.Errorf("loadConfig() = %+v, want %+v", cfg, otghs.DefaultConfig())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		check   func(otghs.Config) bool
		wantErr error
	}{
		{
			name: "speed and identity",
			file: "speed: full\ndescriptor:\n  vendorId: 0x1209\n  deviceVersion: \"1.2.3\"\n",
			check: func(c otghs.Config) bool {
				return c.Speed == otghs.SpeedFull && c.Descriptor.VendorID == 0x1209 && c.Descriptor.DeviceVersion == 0x0123
			},
		},
		{
			name:  "defaults kept",
			file:  "setupPackets: 1\n",
			check: func(c otghs.Config) bool { return c.SetupPackets == 1 && c.Descriptor.ProductID == 0x7856 },
		},
		{
			name:    "bad version",
			file:    "descriptor:\n  usbVersion: \"two\"\n",
			wantErr: pkg.ErrInvalidVersion,
		},
		{
			name:    "bad speed",
			file:    "speed: super\n",
			wantErr: pkg.ErrInvalidParameter,
		},
		{
			name:    "invalid value",
			file:    "setupPackets: 0\n",
			wantErr: pkg.ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "otghs.yaml")
			if err := os.WriteFile(path, []byte(tt.file), 0o600); err != nil {
				t.Fatal(err)
			}

			cfg, err := loadConfig(path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("loadConfig() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadConfig() error = %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("loadConfig() = %+v", cfg)
			}
		})
	}
}

func TestConfigRoundTrip(t *testing.T) {
	data, err := yaml.Marshal(toFile(otghs.DefaultConfig()))
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	cfg, err := fc.config()
	if err != nil {
		t.Fatalf("config() error = %v", err)
	}
	if cfg != otghs.DefaultConfig() {
		t.Errorf("round trip = %+v, want %+v", cfg, otghs.DefaultConfig())
	}
}
