package powerlink

// MessageType is the 8-bit POWERLINK message type carried at offset 14 of
// every frame. The value set is defined by EPSG DS 301 V1.2.0 page 349.
type MessageType uint8

const (
	// MessageTypeNonPowerlink marks a frame that does not belong to the protocol.
	MessageTypeNonPowerlink MessageType = 0x00
	// MessageTypeSoc is the Start of Cycle frame (multicast)
	MessageTypeSoc MessageType = 0x01
	// MessageTypePreq is the Poll Request frame (unicast MN -> CN)
	MessageTypePreq MessageType = 0x03
	// MessageTypePres is the Poll Response frame (multicast)
	MessageTypePres MessageType = 0x04
	// MessageTypeSoa is the Start of Asynchronous Cycle frame (multicast)
	MessageTypeSoa MessageType = 0x05
	// MessageTypeAsnd is the Asynchronous Send frame (multicast)
	MessageTypeAsnd MessageType = 0x06
	// MessageTypeAmni is the Active Managing Node Indication frame
	MessageTypeAmni MessageType = 0x07
	// MessageTypeAInv is the Asynchronous Invite frame
	MessageTypeAInv MessageType = 0x0D
)

// Classify maps a raw message type byte to a MessageType. Every byte value
// is accepted; values outside the protocol map to MessageTypeNonPowerlink
// so that foreign Ethernet traffic on the segment stays ignorable.
func Classify(b byte) MessageType {
	switch MessageType(b) {
	case MessageTypeSoc, MessageTypePreq, MessageTypePres,
		MessageTypeSoa, MessageTypeAsnd, MessageTypeAmni, MessageTypeAInv:
		return MessageType(b)
	}
	return MessageTypeNonPowerlink
}

func (t MessageType) String() string {
	switch t {
	case MessageTypeSoc:
		return "SoC"
	case MessageTypePreq:
		return "PReq"
	case MessageTypePres:
		return "PRes"
	case MessageTypeSoa:
		return "SoA"
	case MessageTypeAsnd:
		return "ASnd"
	case MessageTypeAmni:
		return "AMNI"
	case MessageTypeAInv:
		return "AInv"
	}
	return "NonPowerlink"
}

// EtherTypePowerlink is the Ethernet type of all POWERLINK frames,
// written in network byte order at offset 12.
const EtherTypePowerlink uint16 = 0x88AB

// SpecVersion is the EPL version byte announced in SoA frames.
const SpecVersion byte = 0x20

// Reserved node ids.
const (
	NodeIDInvalid    uint8 = 0x00
	NodeIDMN         uint8 = 0xF0
	NodeIDDiagnostic uint8 = 0xFD
	NodeIDBroadcast  uint8 = 0xFF
)

// MaxCNNodeID defines the highest node id assignable to a controlled node.
const MaxCNNodeID uint8 = 0xEF

// Multicast destination MAC addresses, one per multicast frame kind.
var (
	MulticastSoc  = [6]byte{0x01, 0x11, 0x1E, 0x00, 0x00, 0x01}
	MulticastPres = [6]byte{0x01, 0x11, 0x1E, 0x00, 0x00, 0x02}
	MulticastSoa  = [6]byte{0x01, 0x11, 0x1E, 0x00, 0x00, 0x03}
	MulticastAsnd = [6]byte{0x01, 0x11, 0x1E, 0x00, 0x00, 0x04}
	MulticastAmni = [6]byte{0x01, 0x11, 0x1E, 0x00, 0x00, 0x05}
)

// Flag1 bits. Which bits are meaningful depends on the frame kind:
// SoC carries MC/PS, PReq carries MS/EA/RD, PRes carries MS/EN/RD,
// SoA carries EA/ER.
const (
	FlagRD byte = 0x01 // Ready
	FlagER byte = 0x02 // Exception Reset
	FlagEA byte = 0x04 // Exception Acknowledge
	FlagEC byte = 0x08 // Exception Clear
	FlagEN byte = 0x10 // Exception New
	FlagMS byte = 0x20 // Multiplexed Slot
	FlagPS byte = 0x40 // Prescaled Slot
	FlagMC byte = 0x80 // Multiplexed Cycle Completed
)

// Flag2 bit fields (PRes only): Priority occupies bits 3-5,
// Request to Send occupies bits 0-2.
const (
	MaskRS  byte = 0x07
	MaskPR  byte = 0x38
	ShiftPR uint = 3
)

// Flag2 packs priority and request-to-send counters into a PRes flag 2 byte.
func Flag2(priority, requestToSend uint8) byte {
	return (priority << ShiftPR & MaskPR) | (requestToSend & MaskRS)
}

// NMTState is the network management state byte reported in PRes and SoA
// frames. The codec carries the value, it does not run the state machine.
type NMTState uint8

const (
	NMTGsOff                NMTState = 0x00
	NMTGsInitialising       NMTState = 0x19
	NMTGsResetApplication   NMTState = 0x29
	NMTGsResetCommunication NMTState = 0x39
	NMTGsResetConfiguration NMTState = 0x79
	NMTCsNotActive          NMTState = 0x1C
	NMTCsPreOperational1    NMTState = 0x1D
	NMTCsBasicEthernet      NMTState = 0x1E
	NMTCsStopped            NMTState = 0x4D
	NMTCsPreOperational2    NMTState = 0x5D
	NMTCsReadyToOperate     NMTState = 0x6D
	NMTCsOperational        NMTState = 0xFD
)

func (s NMTState) String() string {
	switch s {
	case NMTGsOff:
		return "NMT_GS_OFF"
	case NMTGsInitialising:
		return "NMT_GS_INITIALISING"
	case NMTGsResetApplication:
		return "NMT_GS_RESET_APPLICATION"
	case NMTGsResetCommunication:
		return "NMT_GS_RESET_COMMUNICATION"
	case NMTGsResetConfiguration:
		return "NMT_GS_RESET_CONFIGURATION"
	case NMTCsNotActive:
		return "NMT_CS_NOT_ACTIVE"
	case NMTCsPreOperational1:
		return "NMT_CS_PRE_OPERATIONAL_1"
	case NMTCsBasicEthernet:
		return "NMT_CS_BASIC_ETHERNET"
	case NMTCsStopped:
		return "NMT_CS_STOPPED"
	case NMTCsPreOperational2:
		return "NMT_CS_PRE_OPERATIONAL_2"
	case NMTCsReadyToOperate:
		return "NMT_CS_READY_TO_OPERATE"
	case NMTCsOperational:
		return "NMT_CS_OPERATIONAL"
	}
	return "NMT_UNKNOWN"
}

// ServiceID identifies the service carried by an ASnd frame.
type ServiceID uint8

const (
	ServiceIDIdentResponse  ServiceID = 0x01
	ServiceIDStatusResponse ServiceID = 0x02
	ServiceIDNMTRequest     ServiceID = 0x03
	ServiceIDNMTCommand     ServiceID = 0x04
	ServiceIDSDO            ServiceID = 0x05
)

// ReqServiceID identifies the service a SoA frame invites a node to send.
type ReqServiceID uint8

const (
	ReqServiceIDNoService        ReqServiceID = 0x00
	ReqServiceIDIdentRequest     ReqServiceID = 0x01
	ReqServiceIDStatusRequest    ReqServiceID = 0x02
	ReqServiceIDNMTRequestInvite ReqServiceID = 0x03
	ReqServiceIDUnspecifiedInv   ReqServiceID = 0xFF
)

// MinEthernetFrameSize is the minimum length of an Ethernet frame on the
// wire. The codec never pads; the transport pads outgoing frames and the
// decoder tolerates the resulting trailing zero bytes.
const MinEthernetFrameSize = 60
