package otghs

// Stats holds debug counters updated from interrupt context. They are not
// part of the protocol and may wrap.
type Stats struct {
	Interrupts  uint32             // Service invocations
	Triggered   uint32             // sticky OR of every GINTSTS snapshot
	Dispatched  [NumSources]uint32 // handler invocations per source
	Fragments   uint32             // receive FIFO entries classified
	Requests    uint32             // SETUP transactions reconstructed
	Deferred    uint32             // SETUP transactions waiting for completion
	Unhandled   uint32             // requests ignored without a response
	Transmits   uint32             // IN packets queued on endpoint 0
	TxComplete  uint32             // IN transfer-complete events
	Resets      uint32             // USB bus resets
	Suspends    uint32             // suspend and early-suspend events
	LastRequest ControlRequest     // most recent reconstructed request
}
