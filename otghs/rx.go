package otghs

import (
	"encoding/binary"

	"github.com/ardnew/otghs/otghs/hw"
	"github.com/ardnew/otghs/pkg"
	"github.com/ardnew/otghs/reg"
)

// handleRxFIFO drains one receive FIFO entry. RXFLVL is masked while the
// entry is read, as the core requires, and unmasked again only after the
// entry has been fully consumed and queued.
func (c *Controller) handleRxFIFO() error {
	reg.Clear(c.global, hw.GINTMSK, hw.GINTSTS_RXFLVL)

	st := ParseRxStatus(reg.Read(c.global, hw.GRXSTSP))

	var buf [hw.MaxPacketSize0]byte
	n := c.readFIFO(buf[:], st.Count)

	c.stats.Fragments++

	f, err := Classify(st, buf[:n])
	if err != nil {
		return pkg.NewFault("receive", err)
	}

	pkg.LogDebug(pkg.ComponentRx, "fragment",
		"kind", f.Kind.String(),
		"ep", st.Endpoint,
		"frame", st.Frame)

	if err := c.rx.Push(f); err != nil {
		return pkg.NewFault("receive", err)
	}

	reg.Set(c.global, hw.GINTMSK, hw.GINTSTS_RXFLVL)

	return nil
}

// readFIFO pops ceil(count/4) words from the endpoint 0 FIFO and copies up
// to len(buf) payload bytes into buf in little-endian order. Words beyond
// the buffer are still popped so the entry is never left half-drained.
func (c *Controller) readFIFO(buf []byte, count int) int {
	var word [4]byte

	n := 0
	for i := 0; i < (count+3)/4; i++ {
		binary.LittleEndian.PutUint32(word[:], reg.Read(c.global, hw.FIFO0))

		k := min(count-i*4, 4)
		n += copy(buf[n:], word[:k])
	}

	return n
}
