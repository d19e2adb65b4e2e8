package otghs

import (
	"fmt"

	"github.com/ardnew/otghs/device"
	"github.com/ardnew/otghs/otghs/hw"
	"github.com/ardnew/otghs/pkg"
)

// FragmentKind tags the variant held by a Fragment.
type FragmentKind uint8

// Fragment kinds.
const (
	FragmentSetupData FragmentKind = iota + 1
	FragmentSetupComplete
)

func (k FragmentKind) String() string {
	switch k {
	case FragmentSetupData:
		return "setup-data"
	case FragmentSetupComplete:
		return "setup-complete"
	default:
		return fmt.Sprintf("fragment(%d)", uint8(k))
	}
}

// Fragment is one classified receive FIFO entry belonging to a control
// transfer. Setup is meaningful only for FragmentSetupData.
type Fragment struct {
	Kind     FragmentKind
	Endpoint uint8
	Frame    uint8
	Setup    device.SetupPacket
}

// RxStatus is the decoded content of one GRXSTSP pop.
type RxStatus struct {
	Endpoint uint8
	Count    int
	DataPID  uint8
	Status   uint8
	Frame    uint8
}

// ParseRxStatus decodes a GRXSTSR/GRXSTSP register value.
func ParseRxStatus(v uint32) RxStatus {
	return RxStatus{
		Endpoint: uint8(v >> hw.GRXSTSP_EPNUM & hw.GRXSTSP_EPNUM_MASK),
		Count:    int(v >> hw.GRXSTSP_BCNT & hw.GRXSTSP_BCNT_MASK),
		DataPID:  uint8(v >> hw.GRXSTSP_DPID & hw.GRXSTSP_DPID_MASK),
		Status:   uint8(v >> hw.GRXSTSP_PKTSTS & hw.GRXSTSP_PKTSTS_MASK),
		Frame:    uint8(v >> hw.GRXSTSP_FRMNUM & hw.GRXSTSP_FRMNUM_MASK),
	}
}

// Value encodes s back into register form.
func (s RxStatus) Value() uint32 {
	return uint32(s.Endpoint)&hw.GRXSTSP_EPNUM_MASK<<hw.GRXSTSP_EPNUM |
		uint32(s.Count)&hw.GRXSTSP_BCNT_MASK<<hw.GRXSTSP_BCNT |
		uint32(s.DataPID)&hw.GRXSTSP_DPID_MASK<<hw.GRXSTSP_DPID |
		uint32(s.Status)&hw.GRXSTSP_PKTSTS_MASK<<hw.GRXSTSP_PKTSTS |
		uint32(s.Frame)&hw.GRXSTSP_FRMNUM_MASK<<hw.GRXSTSP_FRMNUM
}

// Classify maps a receive status and its payload to a Fragment. Only two
// combinations are recognized: SETUP data (status 6, DATA0, 8 bytes) and
// SETUP complete (status 4, DATA0, no payload). Anything else is reported
// as ErrUnrecognizedFragment.
func Classify(st RxStatus, data []byte) (Fragment, error) {
	f := Fragment{Endpoint: st.Endpoint, Frame: st.Frame}

	switch {
	case st.Status == hw.PKTSTS_SETUP_DATA && st.DataPID == 0 && st.Count == device.SetupPacketSize:
		f.Kind = FragmentSetupData
		if err := device.ParseSetupPacket(data, &f.Setup); err != nil {
			return Fragment{}, err
		}
	case st.Status == hw.PKTSTS_SETUP_DONE && st.DataPID == 0 && st.Count == 0:
		f.Kind = FragmentSetupComplete
	default:
		return Fragment{}, fmt.Errorf("%w: status=%#x dpid=%#x count=%d",
			pkg.ErrUnrecognizedFragment, st.Status, st.DataPID, st.Count)
	}
	return f, nil
}
