package otghs

import (
	"fmt"

	"github.com/ardnew/otghs/otghs/hw"
)

// Source is an interrupt source, identified by its bit index in GINTSTS
// and GINTMSK.
type Source uint8

// Interrupt sources in device mode.
const (
	SourceCurrentMode        Source = hw.GINTSTS_CMOD
	SourceModeMismatch       Source = hw.GINTSTS_MMIS
	SourceOTG                Source = hw.GINTSTS_OTGINT
	SourceStartOfFrame       Source = hw.GINTSTS_SOF
	SourceRxFIFONonEmpty     Source = hw.GINTSTS_RXFLVL
	SourceTxFIFOEmpty        Source = hw.GINTSTS_NPTXFE
	SourceGlobalInNAK        Source = 6
	SourceGlobalOutNAK       Source = 7
	SourceEarlySuspend       Source = hw.GINTSTS_ESUSP
	SourceSuspend            Source = hw.GINTSTS_USBSUSP
	SourceReset              Source = hw.GINTSTS_USBRST
	SourceEnumerationDone    Source = hw.GINTSTS_ENUMDNE
	SourceIsoOutDrop         Source = 14
	SourceEndOfPeriodicFrame Source = 15
	SourceInEndpoint         Source = hw.GINTSTS_IEPINT
	SourceOutEndpoint        Source = hw.GINTSTS_OEPINT
	SourceIncompleteIsoIn    Source = 20
	SourceIncompleteIsoOut   Source = 21
	SourceDataFetchSuspended Source = 22
	SourceResetDetected      Source = 23
	SourceHostPort           Source = 24
	SourceHostChannel        Source = 25
	SourcePeriodicTxEmpty    Source = 26
	SourceLPM                Source = 27
	SourceConnectorID        Source = hw.GINTSTS_CIDSCHG
	SourceDisconnect         Source = 29
	SourceSessionRequest     Source = 30
	SourceWakeup             Source = hw.GINTSTS_WKUPINT

	NumSources = 32
)

var sourceNames = [NumSources]string{
	"CMOD", "MMIS", "OTGINT", "SOF", "RXFLVL", "NPTXFE", "GINAKEFF", "GONAKEFF",
	"", "", "ESUSP", "USBSUSP", "USBRST", "ENUMDNE", "ISOODRP", "EOPF",
	"", "", "IEPINT", "OEPINT", "IISOIXFR", "IPXFR", "DATAFSUSP", "RSTDET",
	"HPRTINT", "HCINT", "PTXFE", "LPMINT", "CIDSCHG", "DISCINT", "SRQINT", "WKUPINT",
}

// Mask returns the GINTSTS/GINTMSK bit for the source.
func (s Source) Mask() uint32 {
	return 1 << s
}

func (s Source) String() string {
	if int(s) < NumSources && sourceNames[s] != "" {
		return sourceNames[s]
	}
	return fmt.Sprintf("source(%d)", uint8(s))
}
