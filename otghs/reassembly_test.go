package otghs

import (
	"testing"

	"github.com/ardnew/otghs/device"
)

func setupData(request uint8, value uint16) Fragment {
	return Fragment{
		Kind:  FragmentSetupData,
		Setup: device.SetupPacket{RequestType: 0x80, Request: request, Value: value, Length: 0x12},
	}
}

func push(t *testing.T, r *Reassembler, frags ...Fragment) {
	t.Helper()
	for _, f := range frags {
		if err := r.Push(f); err != nil {
			t.Fatalf("Push(%v) error = %v", f.Kind, err)
		}
	}
}

func TestReassemblerComplete(t *testing.T) {
	var r Reassembler

	push(t, &r, setupData(device.RequestGetDescriptor, 0x0100))
	push(t, &r, Fragment{Kind: FragmentSetupComplete})

	req, res := r.Next()
	if res != ResultComplete {
		t.Fatalf("Next() result = %v, want %v", res, ResultComplete)
	}
	if req.Request != device.RequestGetDescriptor || req.DescriptorType() != device.DescriptorTypeDevice {
		t.Errorf("Next() request = %s", req.String())
	}
	if r.Queue().Len() != 0 {
		t.Errorf("queue length = %d, want 0", r.Queue().Len())
	}

	if _, res := r.Next(); res != ResultEmpty {
		t.Errorf("second Next() result = %v, want %v", res, ResultEmpty)
	}
}

func TestReassemblerDefersIncomplete(t *testing.T) {
	var r Reassembler

	data := setupData(device.RequestGetDescriptor, 0x0100)
	data.Frame = 3
	push(t, &r, data)

	if _, res := r.Next(); res != ResultIncomplete {
		t.Fatalf("Next() result = %v, want %v", res, ResultIncomplete)
	}
	if r.State() != StateSetupSeen {
		t.Errorf("State() = %v, want %v", r.State(), StateSetupSeen)
	}
	if r.Queue().Len() != 1 {
		t.Fatalf("queue length = %d, want 1", r.Queue().Len())
	}
	if front, _ := r.Queue().Front(); front != data {
		t.Errorf("queue front = %+v, want %+v", front, data)
	}

	push(t, &r, Fragment{Kind: FragmentSetupComplete})

	req, res := r.Next()
	if res != ResultComplete {
		t.Fatalf("Next() after completion result = %v, want %v", res, ResultComplete)
	}
	if req.SetupPacket != data.Setup {
		t.Errorf("request = %+v, want %+v", req.SetupPacket, data.Setup)
	}
	if r.State() != StateExpectSetup {
		t.Errorf("State() = %v, want %v", r.State(), StateExpectSetup)
	}
}

func TestReassemblerLatestSetupWins(t *testing.T) {
	var r Reassembler

	push(t, &r, setupData(device.RequestGetDescriptor, 0x0100))
	push(t, &r, setupData(device.RequestSetAddress, 0x0007))
	push(t, &r, Fragment{Kind: FragmentSetupComplete})

	req, res := r.Next()
	if res != ResultComplete {
		t.Fatalf("Next() result = %v, want %v", res, ResultComplete)
	}
	if req.Request != device.RequestSetAddress || req.Address() != 7 {
		t.Errorf("Next() request = %s, want SET_ADDRESS(7)", req.String())
	}
}

func TestReassemblerOrphanComplete(t *testing.T) {
	var r Reassembler

	push(t, &r, Fragment{Kind: FragmentSetupComplete})
	push(t, &r, setupData(device.RequestGetDescriptor, 0x0100))

	if _, res := r.Next(); res != ResultEmpty {
		t.Fatalf("Next() result = %v, want %v", res, ResultEmpty)
	}
	if r.Queue().Len() != 1 {
		t.Errorf("queue length = %d, want 1", r.Queue().Len())
	}
	if r.State() != StateSetupSeen {
		t.Errorf("State() = %v, want %v", r.State(), StateSetupSeen)
	}
}

func TestReassemblerStateTracksPendingSetup(t *testing.T) {
	var r Reassembler

	if r.State() != StateExpectSetup {
		t.Fatalf("initial State() = %v, want %v", r.State(), StateExpectSetup)
	}

	push(t, &r, setupData(device.RequestGetDescriptor, 0x0100))
	if r.State() != StateSetupSeen {
		t.Fatalf("State() after SETUP data = %v, want %v", r.State(), StateSetupSeen)
	}

	push(t, &r, Fragment{Kind: FragmentSetupComplete}, setupData(device.RequestSetAddress, 0x0005))

	req, res := r.Next()
	if res != ResultComplete || req.Request != device.RequestGetDescriptor {
		t.Fatalf("Next() = %s, %v, want GET_DESCRIPTOR complete", req.String(), res)
	}
	if r.State() != StateSetupSeen {
		t.Errorf("State() with SETUP data still queued = %v, want %v", r.State(), StateSetupSeen)
	}
	if front, ok := r.Queue().Front(); !ok || front.Kind != FragmentSetupData || front.Setup.Request != device.RequestSetAddress {
		t.Errorf("queue front = %+v, %v, want SET_ADDRESS data", front, ok)
	}

	push(t, &r, Fragment{Kind: FragmentSetupComplete})

	req, res = r.Next()
	if res != ResultComplete || req.Address() != 5 {
		t.Fatalf("Next() = %s, %v, want SET_ADDRESS(5) complete", req.String(), res)
	}
	if r.State() != StateExpectSetup {
		t.Errorf("State() after draining = %v, want %v", r.State(), StateExpectSetup)
	}
}

func TestReassemblerStateOnlyChangesForSetupData(t *testing.T) {
	var r Reassembler

	push(t, &r, Fragment{Kind: FragmentSetupComplete})
	if r.State() != StateExpectSetup {
		t.Errorf("State() after completion marker = %v, want %v", r.State(), StateExpectSetup)
	}

	for i := 1; i < MaxQueuedFragments; i++ {
		push(t, &r, Fragment{Kind: FragmentSetupComplete})
	}
	if err := r.Push(setupData(device.RequestGetDescriptor, 0x0100)); err == nil {
		t.Fatal("Push() on full queue error = nil")
	}
	if r.State() != StateExpectSetup {
		t.Errorf("State() after rejected push = %v, want %v", r.State(), StateExpectSetup)
	}
}
