package otghs

import (
	"github.com/ardnew/otghs/device"
)

// ReassemblyState tells whether a SETUP data fragment is waiting for its
// completion marker.
type ReassemblyState uint8

// Reassembly states.
const (
	StateExpectSetup ReassemblyState = iota
	StateSetupSeen
)

func (s ReassemblyState) String() string {
	if s == StateSetupSeen {
		return "setup-seen"
	}
	return "expect-setup"
}

// Result is the outcome of one reassembly attempt.
type Result uint8

// Reassembly results.
const (
	// ResultEmpty means no SETUP data was found before the queue emptied
	// or before an orphan completion marker.
	ResultEmpty Result = iota
	// ResultIncomplete means SETUP data is queued but its completion
	// marker has not arrived yet.
	ResultIncomplete
	// ResultComplete means a ControlRequest was reconstructed.
	ResultComplete
)

// ControlRequest is a SETUP transaction whose completion marker has been
// observed. It is consumed by a single dispatch and never retried.
type ControlRequest struct {
	device.SetupPacket
	Endpoint uint8
}

// Reassembler rebuilds SETUP transactions from queued receive fragments.
type Reassembler struct {
	queue FragmentQueue
	state ReassemblyState
}

// Push appends a fragment drained from the receive FIFO. Queueing SETUP
// data moves the reassembler to StateSetupSeen until a completion marker
// consumes it.
func (r *Reassembler) Push(f Fragment) error {
	if err := r.queue.PushBack(f); err != nil {
		return err
	}
	if f.Kind == FragmentSetupData {
		r.state = StateSetupSeen
	}
	return nil
}

// State returns the current reassembly state.
func (r *Reassembler) State() ReassemblyState {
	return r.state
}

// Queue exposes the pending fragments.
func (r *Reassembler) Queue() *FragmentQueue {
	return &r.queue
}

// Next pops fragments until a completion marker is found. When several
// SETUP data fragments precede the marker, the most recent one wins. If
// the queue empties first, the last SETUP data fragment is restored to the
// front of the queue untouched and ResultIncomplete is returned.
func (r *Reassembler) Next() (req ControlRequest, res Result) {
	var last Fragment
	seen := false

	for {
		f, ok := r.queue.PopFront()
		if !ok {
			break
		}
		switch f.Kind {
		case FragmentSetupData:
			last, seen = f, true
		case FragmentSetupComplete:
			r.state = r.remaining()
			if !seen {
				return ControlRequest{}, ResultEmpty
			}
			return ControlRequest{SetupPacket: last.Setup, Endpoint: last.Endpoint}, ResultComplete
		}
	}

	if !seen {
		r.state = StateExpectSetup
		return ControlRequest{}, ResultEmpty
	}

	// the slot this fragment came from is free, so this cannot fail
	_ = r.queue.PushFront(last)
	r.state = StateSetupSeen
	return ControlRequest{}, ResultIncomplete
}

// remaining derives the state from the fragments left in the queue.
func (r *Reassembler) remaining() ReassemblyState {
	if r.queue.Has(FragmentSetupData) {
		return StateSetupSeen
	}
	return StateExpectSetup
}
