// Package hw describes the register map of the OTG_HS controller.
//
// Offsets in the global block are relative to the peripheral base address,
// offsets in the device block are relative to base + DeviceOffset. Bit
// positions follow the reference manual field names (RM0385, chapter 33).
package hw

// Block offsets from the peripheral base.
const (
	DeviceOffset = 0x800
	FIFOOffset   = 0x1000
)

// Global register offsets.
const (
	GOTGCTL   = 0x000
	GOTGINT   = 0x004
	GAHBCFG   = 0x008
	GUSBCFG   = 0x00C
	GRSTCTL   = 0x010
	GINTSTS   = 0x014
	GINTMSK   = 0x018
	GRXSTSR   = 0x01C
	GRXSTSP   = 0x020
	GRXFSIZ   = 0x024
	DIEPTXF0  = 0x028
	GCCFG     = 0x038
	FIFO0     = FIFOOffset // endpoint 0 push/pop FIFO window
	FIFOWidth = 0x1000
)

// GAHBCFG bits.
const (
	GAHBCFG_GINT     = 0
	GAHBCFG_TXFELVL  = 7
	GAHBCFG_PTXFELVL = 8
)

// GUSBCFG bits.
const (
	GUSBCFG_PHYSEL     = 6
	GUSBCFG_SRPCAP     = 8
	GUSBCFG_HNPCAP     = 9
	GUSBCFG_TRDT       = 10
	GUSBCFG_ULPIFSLS   = 17
	GUSBCFG_ULPIEVBUSD = 20
	GUSBCFG_ULPIEVBUSI = 21
	GUSBCFG_TSDPS      = 22
	GUSBCFG_FDMOD      = 30
)

// GRSTCTL bits.
const (
	GRSTCTL_CSRST  = 0
	GRSTCTL_AHBIDL = 31
)

// GCCFG bits.
const (
	GCCFG_PWRDWN = 16
	GCCFG_VBDEN  = 21
)

// GINTSTS and GINTMSK share bit positions, one per interrupt source.
const (
	GINTSTS_CMOD     = 0
	GINTSTS_MMIS     = 1
	GINTSTS_OTGINT   = 2
	GINTSTS_SOF      = 3
	GINTSTS_RXFLVL   = 4
	GINTSTS_NPTXFE   = 5
	GINTSTS_ESUSP    = 10
	GINTSTS_USBSUSP  = 11
	GINTSTS_USBRST   = 12
	GINTSTS_ENUMDNE  = 13
	GINTSTS_IEPINT   = 18
	GINTSTS_OEPINT   = 19
	GINTSTS_CIDSCHG  = 28
	GINTSTS_WKUPINT  = 31
	GINTSTS_RW_CLEAR = 0b11110000011100001111110000001010
)

// GRXSTSR/GRXSTSP fields.
const (
	GRXSTSP_EPNUM  = 0
	GRXSTSP_BCNT   = 4
	GRXSTSP_DPID   = 15
	GRXSTSP_PKTSTS = 17
	GRXSTSP_FRMNUM = 21

	GRXSTSP_EPNUM_MASK  = 0xf
	GRXSTSP_BCNT_MASK   = 0x7ff
	GRXSTSP_DPID_MASK   = 0x3
	GRXSTSP_PKTSTS_MASK = 0xf
	GRXSTSP_FRMNUM_MASK = 0xf
)

// Receive packet status codes (GRXSTSP.PKTSTS, device mode).
const (
	PKTSTS_GLOBAL_OUT_NAK = 0x1
	PKTSTS_OUT_DATA       = 0x2
	PKTSTS_OUT_DONE       = 0x3
	PKTSTS_SETUP_DONE     = 0x4
	PKTSTS_SETUP_DATA     = 0x6
)

// GRXFSIZ and DIEPTXF0 fields.
const (
	GRXFSIZ_RXFD    = 0
	DIEPTXF0_TX0FSA = 0
	DIEPTXF0_TX0FD  = 16
	FIFO_DEPTH_MASK = 0xffff
)

// Device register offsets.
const (
	DCFG       = 0x000
	DCTL       = 0x004
	DSTS       = 0x008
	DIEPMSK    = 0x010
	DOEPMSK    = 0x014
	DAINT      = 0x018
	DAINTMSK   = 0x01C
	DIEPEMPMSK = 0x034
	DIEPCTL0   = 0x100
	DIEPINT0   = 0x108
	DIEPTSIZ0  = 0x110
	DTXFSTS0   = 0x118
	DOEPCTL0   = 0x300
	DOEPINT0   = 0x308
	DOEPTSIZ0  = 0x310

	OutEndpointStride = 0x20
	OutEndpoints      = 8
)

// DOEPCTL returns the offset of the control register of OUT endpoint n.
func DOEPCTL(n int) uint32 {
	return DOEPCTL0 + uint32(n)*OutEndpointStride
}

// DCFG fields.
const (
	DCFG_DSPD      = 0
	DCFG_NZLSOHSK  = 2
	DCFG_DAD       = 4
	DCFG_DSPD_MASK = 0x3
	DCFG_DAD_MASK  = 0x7f
)

// Device speed values (DCFG.DSPD and DSTS.ENUMSPD).
const (
	SPEED_HIGH          = 0x0
	SPEED_FULL_HS_PHY   = 0x1
	SPEED_FULL_EMBEDDED = 0x3
)

// DCTL bits.
const (
	DCTL_SDIS = 1
)

// DSTS fields.
const (
	DSTS_SUSPSTS      = 0
	DSTS_ENUMSPD      = 1
	DSTS_ENUMSPD_MASK = 0x3
)

// DIEPMSK/DOEPMSK bits.
const (
	DEPMSK_XFRCM  = 0
	DIEPMSK_TOM   = 3
	DOEPMSK_STUPM = 3
)

// DAINT/DAINTMSK fields.
const (
	DAINT_IEP = 0
	DAINT_OEP = 16
)

// DIEPCTLx/DOEPCTLx bits.
const (
	DEPCTL_MPSIZ       = 0
	DEPCTL_MPSIZ0_MASK = 0x3
	DEPCTL_CNAK        = 26
	DEPCTL_SNAK        = 27
	DEPCTL_EPENA       = 31
)

// DIEPINT0/DOEPINT0 bits.
const (
	DEPINT_XFRC  = 0
	DIEPINT_TOC  = 3
	DIEPINT_TXFE = 7
	DOEPINT_STUP = 3
)

// DIEPTSIZ0/DOEPTSIZ0 fields.
const (
	DEPTSIZ0_XFRSIZ        = 0
	DEPTSIZ0_XFRSIZ_MASK   = 0x7f
	DEPTSIZ0_PKTCNT        = 19
	DIEPTSIZ0_PKTCNT_MASK  = 0x3
	DOEPTSIZ0_STUPCNT      = 29
	DOEPTSIZ0_STUPCNT_MASK = 0x3
)

// DTXFSTS0 fields.
const (
	DTXFSTS_INEPTFSAV      = 0
	DTXFSTS_INEPTFSAV_MASK = 0xffff
)

// MaxPacketSize0 is the endpoint 0 max packet size selected by MPSIZ=0.
const MaxPacketSize0 = 64
