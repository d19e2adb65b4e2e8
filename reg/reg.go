// Package reg provides access to memory-mapped register blocks.
//
// A [Block] is addressed by byte offset. The helpers in this package perform
// read-modify-write sequences on bit fields: the register is read once, the
// field is changed on the local copy and the result is written back once.
// Registers with write-1-to-clear semantics must be written directly with
// [Write] so that unrelated latched bits are not cleared by accident.
package reg

import (
	"github.com/usbarmory/tamago/bits"
)

// Block is a register block addressed by byte offset.
type Block interface {
	Read(off uint32) uint32
	Write(off uint32, val uint32)
}

// Read returns the register at off.
func Read(b Block, off uint32) uint32 {
	return b.Read(off)
}

// Write sets the register at off to val.
func Write(b Block, off uint32, val uint32) {
	b.Write(off, val)
}

// Get returns the field of width mask at bit pos.
func Get(b Block, off uint32, pos int, mask int) uint32 {
	v := b.Read(off)
	return bits.Get(&v, pos, mask)
}

// IsSet reports whether bit pos is set.
func IsSet(b Block, off uint32, pos int) bool {
	return Get(b, off, pos, 1) == 1
}

// Set sets bit pos.
func Set(b Block, off uint32, pos int) {
	v := b.Read(off)
	bits.Set(&v, pos)
	b.Write(off, v)
}

// Clear clears bit pos.
func Clear(b Block, off uint32, pos int) {
	v := b.Read(off)
	bits.Clear(&v, pos)
	b.Write(off, v)
}

// SetTo sets or clears bit pos according to val.
func SetTo(b Block, off uint32, pos int, val bool) {
	if val {
		Set(b, off, pos)
	} else {
		Clear(b, off, pos)
	}
}

// SetN writes val into the field of width mask at bit pos.
func SetN(b Block, off uint32, pos int, mask int, val uint32) {
	v := b.Read(off)
	bits.SetN(&v, pos, mask, val)
	b.Write(off, v)
}

// Update applies fn to the register value and writes the result back.
func Update(b Block, off uint32, fn func(v *uint32)) {
	v := b.Read(off)
	fn(&v)
	b.Write(off, v)
}

// WaitUntil polls the register at off until cond holds, reading it at most
// limit times. It returns false when the limit is reached.
func WaitUntil(b Block, off uint32, limit int, cond func(v uint32) bool) bool {
	for i := 0; i < limit; i++ {
		if cond(b.Read(off)) {
			return true
		}
	}
	return false
}

// Wait polls the field of width mask at bit pos until it equals val,
// reading it at most limit times.
func Wait(b Block, off uint32, pos int, mask int, val uint32, limit int) bool {
	return WaitUntil(b, off, limit, func(v uint32) bool {
		return bits.Get(&v, pos, mask) == val
	})
}
