package reg

import (
	"sync/atomic"
	"unsafe"
)

// MMIO is a register block mapped at a fixed physical address.
type MMIO uintptr

func (m MMIO) ptr(off uint32) *uint32 {
	return (*uint32)(unsafe.Pointer(uintptr(m) + uintptr(off)))
}

// Read loads the register at off.
func (m MMIO) Read(off uint32) uint32 {
	return atomic.LoadUint32(m.ptr(off))
}

// Write stores val to the register at off.
func (m MMIO) Write(off uint32, val uint32) {
	atomic.StoreUint32(m.ptr(off), val)
}
