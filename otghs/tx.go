package otghs

import (
	"encoding/binary"
	"fmt"

	"github.com/ardnew/otghs/otghs/hw"
	"github.com/ardnew/otghs/pkg"
	"github.com/ardnew/otghs/reg"
)

// packWords stores src into dst as little-endian 32-bit words, zero
// padding the final word. It returns the number of words used.
func packWords(dst []uint32, src []byte) int {
	var word [4]byte

	n := 0
	for i := 0; i < len(src); i += 4 {
		word = [4]byte{}
		copy(word[:], src[i:])
		dst[n] = binary.LittleEndian.Uint32(word[:])
		n++
	}

	return n
}

// transmit sends one IN packet of n bytes on endpoint 0. The payload is
// packed in words. Packets of a max packet size or more are rejected before
// the endpoint is touched since multi-packet transfers are not supported.
func (c *Controller) transmit(words []uint32, n int) error {
	if n < 0 || n >= hw.MaxPacketSize0 {
		return pkg.NewFault("transmit", fmt.Errorf("%w: %d bytes", pkg.ErrPayloadTooLarge, n))
	}

	count := (n + 3) / 4
	if len(words) < count {
		return pkg.NewFault("transmit", fmt.Errorf("%w: %d words for %d bytes", pkg.ErrInvalidParameter, len(words), n))
	}

	reg.Update(c.device, hw.DIEPTSIZ0, func(v *uint32) {
		*v &^= hw.DIEPTSIZ0_PKTCNT_MASK<<hw.DEPTSIZ0_PKTCNT | hw.DEPTSIZ0_XFRSIZ_MASK<<hw.DEPTSIZ0_XFRSIZ
		*v |= 1<<hw.DEPTSIZ0_PKTCNT | uint32(n)<<hw.DEPTSIZ0_XFRSIZ
	})

	reg.Update(c.device, hw.DIEPCTL0, func(v *uint32) {
		*v |= 1<<hw.DEPCTL_EPENA | 1<<hw.DEPCTL_CNAK
	})

	err := c.waitUntil(c.device, "tx fifo space", hw.DTXFSTS0, func(v uint32) bool {
		return int(v>>hw.DTXFSTS_INEPTFSAV&hw.DTXFSTS_INEPTFSAV_MASK) >= count
	})
	if err != nil {
		return err
	}

	for _, w := range words[:count] {
		reg.Write(c.global, hw.FIFO0, w)
	}

	if err := c.wait(c.device, "tx drain", hw.DIEPTSIZ0, hw.DEPTSIZ0_XFRSIZ, hw.DEPTSIZ0_XFRSIZ_MASK, 0); err != nil {
		return err
	}

	reg.Set(c.device, hw.DIEPEMPMSK, 0)
	reg.Set(c.global, hw.GINTMSK, hw.GINTSTS_IEPINT)

	c.txPending = true
	c.stats.Transmits++

	pkg.LogDebug(pkg.ComponentTx, "packet queued", "bytes", n)

	return nil
}

// handleInEndpoint clears the stale TX FIFO empty notification and detects
// the completion of the last IN packet on endpoint 0.
func (c *Controller) handleInEndpoint() error {
	if !reg.IsSet(c.device, hw.DAINT, hw.DAINT_IEP) {
		return nil
	}

	events := reg.Read(c.device, hw.DIEPINT0)

	if events&(1<<hw.DIEPINT_TXFE) != 0 {
		reg.Clear(c.device, hw.DIEPEMPMSK, 0)
	}

	if events&(1<<hw.DEPINT_XFRC) != 0 {
		c.txPending = false
		c.stats.TxComplete++
		pkg.LogDebug(pkg.ComponentTx, "transfer complete")
		c.latchAddress()
	}

	reg.Write(c.device, hw.DIEPINT0, events)

	return nil
}
