package otghs

import (
	"fmt"

	"github.com/ardnew/otghs/otghs/hw"
	"github.com/ardnew/otghs/pkg"
	"github.com/ardnew/otghs/reg"
)

// handler services one interrupt source. The zero handler marks a source
// without a handler; dispatching it is a no-op.
type handler struct {
	name string
	fn   func(c *Controller) error
}

// unhandled is the table entry for sources the engine does not service.
var unhandled = handler{}

func (h handler) ok() bool {
	return h.fn != nil
}

// defaultHandlers is indexed by GINTSTS bit position.
var defaultHandlers = [NumSources]handler{
	SourceCurrentMode:        unhandled,
	SourceModeMismatch:       {"mmism", (*Controller).handleModeMismatch},
	SourceOTG:                {"gotgint", (*Controller).handleOTG},
	SourceStartOfFrame:       unhandled,
	SourceRxFIFONonEmpty:     {"rxflvl", (*Controller).handleRxFIFO},
	SourceTxFIFOEmpty:        unhandled,
	SourceGlobalInNAK:        unhandled,
	SourceGlobalOutNAK:       unhandled,
	SourceEarlySuspend:       {"esusp", (*Controller).handleSuspend},
	SourceSuspend:            {"usbsusp", (*Controller).handleSuspend},
	SourceReset:              {"usbrst", (*Controller).handleReset},
	SourceEnumerationDone:    {"enumdne", (*Controller).handleEnumerationDone},
	SourceIsoOutDrop:         unhandled,
	SourceEndOfPeriodicFrame: unhandled,
	SourceInEndpoint:         {"iepint", (*Controller).handleInEndpoint},
	SourceOutEndpoint:        {"oepint", (*Controller).handleOutEndpoint},
	SourceIncompleteIsoIn:    unhandled,
	SourceIncompleteIsoOut:   unhandled,
	SourceDataFetchSuspended: unhandled,
	SourceResetDetected:      unhandled,
	SourceHostPort:           unhandled,
	SourceHostChannel:        unhandled,
	SourcePeriodicTxEmpty:    unhandled,
	SourceLPM:                unhandled,
	SourceConnectorID:        unhandled,
	SourceDisconnect:         unhandled,
	SourceSessionRequest:     unhandled,
	SourceWakeup:             unhandled,
}

// Service is the interrupt entry point. It dispatches every source that is
// both asserted in GINTSTS and enabled in GINTMSK, in ascending bit order,
// then clears the handled write-1-to-clear status bits.
//
// A handler error halts the controller: dispatch stops, no status is
// cleared, and this and every later call return the error.
func (c *Controller) Service() error {
	if c.halted != nil {
		return fmt.Errorf("%w: %w", pkg.ErrHalted, c.halted)
	}

	status := reg.Read(c.global, hw.GINTSTS)
	mask := reg.Read(c.global, hw.GINTMSK)
	active := status & mask

	c.stats.Interrupts++
	c.stats.Triggered |= status

	for i := 0; i < NumSources; i++ {
		if active&(1<<i) == 0 {
			continue
		}

		h := c.handlers[i]
		if !h.ok() {
			continue
		}

		c.stats.Dispatched[i]++
		pkg.LogDebug(pkg.ComponentISR, "dispatch", "source", Source(i).String())

		if err := h.fn(c); err != nil {
			return c.halt(err)
		}
	}

	reg.Write(c.global, hw.GINTSTS, status&mask&hw.GINTSTS_RW_CLEAR)

	return nil
}
