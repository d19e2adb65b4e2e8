package device

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/otghs/pkg"
)

func TestParseSetupPacket(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    SetupPacket
		wantErr error
	}{
		{
			name: "GET_DESCRIPTOR device",
			data: []byte{0x80, 0x06, 0x00, 0x01, 0x00, 0x00, 0x12, 0x00},
			want: SetupPacket{RequestType: 0x80, Request: 0x06, Value: 0x0100, Index: 0x0000, Length: 0x0012},
		},
		{
			name: "SET_ADDRESS",
			data: []byte{0x00, 0x05, 0x2A, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: SetupPacket{RequestType: 0x00, Request: 0x05, Value: 42},
		},
		{
			name: "multi-byte fields little-endian",
			data: []byte{0xC1, 0x7F, 0x34, 0x12, 0x78, 0x56, 0xBC, 0x9A},
			want: SetupPacket{RequestType: 0xC1, Request: 0x7F, Value: 0x1234, Index: 0x5678, Length: 0x9ABC},
		},
		{
			name:    "too short",
			data:    []byte{0x80, 0x06, 0x00},
			wantErr: pkg.ErrSetupPacketTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got SetupPacket
			err := ParseSetupPacket(tt.data, &got)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseSetupPacket() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got != tt.want {
				t.Errorf("ParseSetupPacket() = %+v, want %+v", got, tt.want)
			}
			if b := got.Bytes(); string(b[:]) != string(tt.data) {
				t.Errorf("Bytes() = % X, want % X", b, tt.data)
			}
		})
	}
}

func TestSetupPacketMarshalToShortBuffer(t *testing.T) {
	pkt := SetupPacket{Request: RequestGetDescriptor}
	if n := pkt.MarshalTo(make([]byte, 7)); n != 0 {
		t.Errorf("MarshalTo(7 bytes) = %d, want 0", n)
	}
}

func TestSetupPacketFields(t *testing.T) {
	tests := []struct {
		name     string
		pkt      SetupPacket
		d2h      bool
		std      bool
		descType uint8
		descIdx  uint8
		addr     uint8
	}{
		{"get device descriptor", SetupPacket{RequestType: 0x80, Value: 0x0100}, true, true, DescriptorTypeDevice, 0, 0},
		{"get string 3", SetupPacket{RequestType: 0x80, Value: 0x0303}, true, true, DescriptorTypeString, 3, 3},
		{"type uses low nibble", SetupPacket{RequestType: 0x80, Value: 0x2100}, true, true, 0x01, 0, 0},
		{"set address", SetupPacket{RequestType: 0x00, Value: 0x00FF}, false, true, 0, 0xFF, 0x7F},
		{"class out", SetupPacket{RequestType: 0x21}, false, false, 0, 0, 0},
		{"vendor in", SetupPacket{RequestType: 0xC0}, true, false, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pkt.IsDeviceToHost(); got != tt.d2h {
				t.Errorf("IsDeviceToHost() = %v, want %v", got, tt.d2h)
			}
			if got := tt.pkt.IsStandard(); got != tt.std {
				t.Errorf("IsStandard() = %v, want %v", got, tt.std)
			}
			if got := tt.pkt.DescriptorType(); got != tt.descType {
				t.Errorf("DescriptorType() = %d, want %d", got, tt.descType)
			}
			if got := tt.pkt.DescriptorIndex(); got != tt.descIdx {
				t.Errorf("DescriptorIndex() = %d, want %d", got, tt.descIdx)
			}
			if got := tt.pkt.Address(); got != tt.addr {
				t.Errorf("Address() = %d, want %d", got, tt.addr)
			}
		})
	}
}

func TestSetupPacketString(t *testing.T) {
	pkt := SetupPacket{RequestType: 0x80, Request: 0x06, Value: 0x0100, Length: 18}
	s := pkt.String()
	for _, want := range []string{"IN", "Request=0x06", "Value=0x0100", "Length=18"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
