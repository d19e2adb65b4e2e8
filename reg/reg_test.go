package reg

import (
	"testing"
	"unsafe"
)

// file is a plain register file without side effects.
type file struct {
	regs   map[uint32]uint32
	reads  int
	writes int
}

func newFile() *file {
	return &file{regs: make(map[uint32]uint32)}
}

func (f *file) Read(off uint32) uint32 {
	f.reads++
	return f.regs[off]
}

func (f *file) Write(off uint32, val uint32) {
	f.writes++
	f.regs[off] = val
}

func TestFieldAccess(t *testing.T) {
	f := newFile()
	f.regs[0x10] = 0xF000_0001

	Set(f, 0x10, 4)
	if got := f.regs[0x10]; got != 0xF000_0011 {
		t.Fatalf("Set: reg = %#x, want %#x", got, 0xF000_0011)
	}

	Clear(f, 0x10, 0)
	if got := f.regs[0x10]; got != 0xF000_0010 {
		t.Fatalf("Clear: reg = %#x, want %#x", got, 0xF000_0010)
	}

	SetN(f, 0x10, 19, 0x3, 1)
	if got := Get(f, 0x10, 19, 0x3); got != 1 {
		t.Errorf("Get after SetN = %d, want 1", got)
	}
	if got := Get(f, 0x10, 28, 0xf); got != 0xf {
		t.Errorf("SetN disturbed neighbouring field: %#x", got)
	}

	SetTo(f, 0x10, 1, true)
	if !IsSet(f, 0x10, 1) {
		t.Error("SetTo(true) left bit clear")
	}
	SetTo(f, 0x10, 1, false)
	if IsSet(f, 0x10, 1) {
		t.Error("SetTo(false) left bit set")
	}
}

func TestReadModifyWriteAccessCount(t *testing.T) {
	f := newFile()

	Update(f, 0x04, func(v *uint32) { *v |= 0x3 })
	if f.reads != 1 || f.writes != 1 {
		t.Errorf("Update: reads=%d writes=%d, want 1 and 1", f.reads, f.writes)
	}
	if f.regs[0x04] != 0x3 {
		t.Errorf("Update: reg = %#x, want 0x3", f.regs[0x04])
	}
}

func TestWait(t *testing.T) {
	tests := []struct {
		name  string
		value uint32
		pos   int
		want  uint32
		limit int
		ok    bool
		reads int
	}{
		{"already satisfied", 1 << 31, 31, 1, 10, true, 1},
		{"never satisfied", 0, 31, 1, 10, false, 10},
		{"zero limit", 1 << 31, 31, 1, 0, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFile()
			f.regs[0x10] = tt.value

			if got := Wait(f, 0x10, tt.pos, 1, tt.want, tt.limit); got != tt.ok {
				t.Errorf("Wait() = %v, want %v", got, tt.ok)
			}
			if f.reads != tt.reads {
				t.Errorf("reads = %d, want %d", f.reads, tt.reads)
			}
		})
	}
}

func TestWaitUntilCondition(t *testing.T) {
	f := newFile()
	f.regs[0x18] = 5

	if !WaitUntil(f, 0x18, 3, func(v uint32) bool { return v >= 5 }) {
		t.Error("WaitUntil(>= 5) = false, want true")
	}
	if WaitUntil(f, 0x18, 3, func(v uint32) bool { return v >= 6 }) {
		t.Error("WaitUntil(>= 6) = true, want false")
	}
}

func TestMMIO(t *testing.T) {
	var mem [4]uint32
	m := MMIO(uintptr(unsafe.Pointer(&mem[0])))

	m.Write(8, 0xCAFE)
	if mem[2] != 0xCAFE {
		t.Fatalf("mem[2] = %#x, want 0xCAFE", mem[2])
	}

	Set(m, 8, 0)
	if got := m.Read(8); got != 0xCAFF {
		t.Errorf("Read() = %#x, want 0xCAFF", got)
	}
}
