package otghs

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ardnew/otghs/otghs/hw"
	"github.com/ardnew/otghs/pkg"
)

// regs is a register block without side effects.
type regs map[uint32]uint32

func (r regs) Read(off uint32) uint32       { return r[off] }
func (r regs) Write(off uint32, val uint32) { r[off] = val }

// recorder replaces every handler with one that records its source.
func recorder(c *Controller, calls *[]Source) {
	for i := range c.handlers {
		s := Source(i)
		c.handlers[i] = handler{
			name: s.String(),
			fn: func(*Controller) error {
				*calls = append(*calls, s)
				return nil
			},
		}
	}
}

func TestServiceDispatch(t *testing.T) {
	tests := []struct {
		name   string
		status uint32
		mask   uint32
		want   []Source
	}{
		{
			name:   "nothing enabled",
			status: 0xffffffff,
			mask:   0,
		},
		{
			name:   "nothing asserted",
			status: 0,
			mask:   0xffffffff,
		},
		{
			name:   "intersection ascending",
			status: 1<<hw.GINTSTS_OEPINT | 1<<hw.GINTSTS_RXFLVL | 1<<hw.GINTSTS_USBRST | 1<<hw.GINTSTS_SOF,
			mask:   1<<hw.GINTSTS_OEPINT | 1<<hw.GINTSTS_RXFLVL | 1<<hw.GINTSTS_USBRST | 1<<hw.GINTSTS_MMIS,
			want:   []Source{SourceRxFIFONonEmpty, SourceReset, SourceOutEndpoint},
		},
		{
			name:   "every source",
			status: 0xffffffff,
			mask:   0x80000001,
			want:   []Source{SourceCurrentMode, SourceWakeup},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			global := regs{hw.GINTSTS: tt.status, hw.GINTMSK: tt.mask}
			c := newController(global, regs{}, DefaultConfig())

			var calls []Source
			recorder(c, &calls)

			if err := c.Service(); err != nil {
				t.Fatalf("Service() error = %v", err)
			}
			if !reflect.DeepEqual(calls, tt.want) {
				t.Errorf("dispatched %v, want %v", calls, tt.want)
			}
			if got, want := global[hw.GINTSTS], tt.status&tt.mask&hw.GINTSTS_RW_CLEAR; got != want {
				t.Errorf("GINTSTS write-back = %#x, want %#x", got, want)
			}
			if c.Stats().Interrupts != 1 || c.Stats().Triggered != tt.status {
				t.Errorf("Stats() = %+v", c.Stats())
			}
		})
	}
}

func TestServiceSkipsUnhandledSources(t *testing.T) {
	global := regs{hw.GINTSTS: 1 << hw.GINTSTS_SOF, hw.GINTMSK: 1 << hw.GINTSTS_SOF}
	c := newController(global, regs{}, DefaultConfig())

	if c.handlers[SourceStartOfFrame].ok() {
		t.Fatal("start of frame has a handler")
	}
	if err := c.Service(); err != nil {
		t.Fatalf("Service() error = %v", err)
	}
	if c.Stats().Dispatched[SourceStartOfFrame] != 0 {
		t.Error("unhandled source counted as dispatched")
	}
	if global[hw.GINTSTS] != 1<<hw.GINTSTS_SOF {
		t.Errorf("GINTSTS write-back = %#x, want SOF", global[hw.GINTSTS])
	}
}

func TestServiceHaltLatches(t *testing.T) {
	status := uint32(1<<hw.GINTSTS_MMIS | 1<<hw.GINTSTS_USBRST)
	global := regs{hw.GINTSTS: status, hw.GINTMSK: status}
	c := newController(global, regs{}, DefaultConfig())

	var calls []Source
	recorder(c, &calls)
	c.handlers[SourceModeMismatch] = defaultHandlers[SourceModeMismatch]

	err := c.Service()
	if !errors.Is(err, pkg.ErrModeMismatch) || !pkg.IsFault(err) {
		t.Fatalf("Service() error = %v, want mode mismatch fault", err)
	}
	if len(calls) != 0 {
		t.Errorf("dispatch continued after fault: %v", calls)
	}
	if global[hw.GINTSTS] != status {
		t.Errorf("GINTSTS written after fault: %#x", global[hw.GINTSTS])
	}

	err = c.Service()
	if !errors.Is(err, pkg.ErrHalted) || !errors.Is(err, pkg.ErrModeMismatch) {
		t.Errorf("Service() after halt error = %v", err)
	}
	if c.Stats().Interrupts != 1 {
		t.Errorf("Interrupts = %d, want 1", c.Stats().Interrupts)
	}
	if c.Halted() == nil {
		t.Error("Halted() = nil")
	}
}

func TestSourceString(t *testing.T) {
	tests := []struct {
		src  Source
		want string
	}{
		{SourceRxFIFONonEmpty, "RXFLVL"},
		{SourceOutEndpoint, "OEPINT"},
		{Source(9), "source(9)"},
		{Source(40), "source(40)"},
	}
	for _, tt := range tests {
		if got := tt.src.String(); got != tt.want {
			t.Errorf("Source(%d).String() = %q, want %q", uint8(tt.src), got, tt.want)
		}
	}
	if SourceReset.Mask() != 1<<12 {
		t.Errorf("SourceReset.Mask() = %#x", SourceReset.Mask())
	}
}
