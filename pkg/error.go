package pkg

import "errors"

// Controller errors.
var (
	// ErrTimeout indicates a bounded hardware poll ran out of retries.
	ErrTimeout = errors.New("hardware wait timed out")

	// ErrHalted indicates the controller stopped after an earlier failure.
	ErrHalted = errors.New("controller halted")

	// ErrModeMismatch indicates a register access that does not match the
	// core's current host/device mode.
	ErrModeMismatch = errors.New("mode mismatch")

	// ErrUnrecognizedFragment indicates a receive FIFO entry whose status,
	// data PID and byte count match no known control fragment.
	ErrUnrecognizedFragment = errors.New("unrecognized receive fragment")

	// ErrSetupCount indicates an outstanding SETUP packet count beyond the
	// configured back-to-back limit.
	ErrSetupCount = errors.New("setup packet count out of range")

	// ErrEnumerationSpeed indicates the negotiated speed differs from the
	// configured one.
	ErrEnumerationSpeed = errors.New("unexpected enumeration speed")

	// ErrPayloadTooLarge indicates a control IN payload that does not fit a
	// single packet.
	ErrPayloadTooLarge = errors.New("payload exceeds max packet size")

	// ErrQueueFull indicates the fragment queue has no free slot.
	ErrQueueFull = errors.New("fragment queue full")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidVersion indicates a version that cannot be encoded as BCD.
	ErrInvalidVersion = errors.New("invalid BCD version")

	// ErrSetupPacketTooShort indicates the setup packet data is too short.
	ErrSetupPacketTooShort = errors.New("setup packet too short")

	// ErrDescriptorTooShort indicates the descriptor data is too short.
	ErrDescriptorTooShort = errors.New("descriptor too short")

	// ErrDescriptorTypeMismatch indicates the descriptor type does not match expected.
	ErrDescriptorTypeMismatch = errors.New("descriptor type mismatch")
)

// Fault reports an unrecoverable hardware-state violation. No safe
// continuation exists once a Fault is raised.
type Fault struct {
	Op  string // handler or step that detected the violation
	Err error  // sentinel describing the violation
}

// NewFault returns a Fault for op wrapping err.
func NewFault(op string, err error) *Fault {
	return &Fault{Op: op, Err: err}
}

func (f *Fault) Error() string {
	return "fault in " + f.Op + ": " + f.Err.Error()
}

// Unwrap returns the underlying sentinel.
func (f *Fault) Unwrap() error {
	return f.Err
}

// IsFault reports whether err carries a Fault.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}
