package powerlink

// NetTime is the network time an MN may distribute in a SoC frame,
// split into seconds and nanoseconds since the epoch.
type NetTime struct {
	Seconds     uint32
	Nanoseconds uint32
}

// A Frame represents one POWERLINK frame. Exactly one of the variant
// pointers is set, matching MessageType; frames whose variant carries no
// body (AMNI, AInv) and non-POWERLINK frames leave all of them nil.
//
// A frame lives for a single marshal or unmarshal; nothing in this
// package retains it.
type Frame struct {
	DstMAC      [6]byte
	SrcMAC      [6]byte
	EtherType   uint16
	MessageType MessageType
	DstNodeID   uint8
	SrcNodeID   uint8

	Soc  *SocPayload
	Preq *PreqPayload
	Pres *PresPayload
	Soa  *SoaPayload
	Asnd *AsndPayload
}

// SocPayload is the body of a Start of Cycle frame. NetTime and
// RelativeTime appear on the wire only when the codec was configured with
// the matching option; their presence is network configuration, not
// self-describing in the frame bytes.
type SocPayload struct {
	// Flag1 carries FlagMC and FlagPS.
	Flag1 byte
	// NetTime is the starting time of the cycle. Nil unless the codec
	// has WithNetTime.
	NetTime *NetTime
	// RelativeTime is microseconds since the NMT state machine entered
	// NMT_GS_INITIALISING, incremented by the cycle time every cycle.
	// Zero on the wire unless the codec has WithRelativeTime.
	RelativeTime uint64
}

// PreqPayload is the body of a Poll Request frame.
type PreqPayload struct {
	// Flag1 carries FlagMS, FlagEA and FlagRD.
	Flag1      byte
	PDOVersion byte
	// Payload holds up to MaxPDOPayload octets of process data.
	Payload []byte
}

// PresPayload is the body of a Poll Response frame.
type PresPayload struct {
	NMTStatus NMTState
	// Flag1 carries FlagMS, FlagEN and FlagRD.
	Flag1 byte
	// Flag2 carries the priority (MaskPR) and request-to-send (MaskRS) fields.
	Flag2      byte
	PDOVersion byte
	// Payload holds up to MaxPDOPayload octets of process data.
	Payload []byte
}

// Priority returns the async request priority announced in flag 2.
func (p *PresPayload) Priority() uint8 {
	return (p.Flag2 & MaskPR) >> ShiftPR
}

// RequestToSend returns the number of pending async requests announced in flag 2.
func (p *PresPayload) RequestToSend() uint8 {
	return p.Flag2 & MaskRS
}

// SoaPayload is the body of a Start of Asynchronous frame.
type SoaPayload struct {
	NMTStatus NMTState
	// Flag1 carries FlagEA and FlagER.
	Flag1            byte
	ReqServiceID     ReqServiceID
	ReqServiceTarget uint8
	EPLVersion       byte
}

// AsndPayload is the body of an Asynchronous Send frame. The payload has
// no size field; on the wire its length is given by the Ethernet frame
// length, so short payloads cannot be told apart from link padding.
type AsndPayload struct {
	ServiceID ServiceID
	Payload   []byte
}

// NewSocFrame builds a SoC frame for the cycle scheduler. The source MAC
// is left zero for the transport to stamp. netTime may be nil; it is only
// emitted by codecs configured with WithNetTime, and relativeTime only by
// codecs configured with WithRelativeTime.
func NewSocFrame(flag1 byte, netTime *NetTime, relativeTime uint64) *Frame {
	return &Frame{
		DstMAC:      MulticastSoc,
		EtherType:   EtherTypePowerlink,
		MessageType: MessageTypeSoc,
		DstNodeID:   NodeIDBroadcast,
		SrcNodeID:   NodeIDMN,
		Soc: &SocPayload{
			Flag1:        flag1,
			NetTime:      netTime,
			RelativeTime: relativeTime,
		},
	}
}

// NewPreqFrame builds a Poll Request addressed to one controlled node.
func NewPreqFrame(dstMAC [6]byte, dstNode uint8, flag1, pdoVersion byte, payload []byte) *Frame {
	return &Frame{
		DstMAC:      dstMAC,
		EtherType:   EtherTypePowerlink,
		MessageType: MessageTypePreq,
		DstNodeID:   dstNode,
		SrcNodeID:   NodeIDMN,
		Preq: &PreqPayload{
			Flag1:      flag1,
			PDOVersion: pdoVersion,
			Payload:    payload,
		},
	}
}

// NewPresFrame builds a Poll Response as sent by a controlled node.
func NewPresFrame(srcNode uint8, nmtStatus NMTState, flag1, flag2, pdoVersion byte, payload []byte) *Frame {
	return &Frame{
		DstMAC:      MulticastPres,
		EtherType:   EtherTypePowerlink,
		MessageType: MessageTypePres,
		DstNodeID:   NodeIDBroadcast,
		SrcNodeID:   srcNode,
		Pres: &PresPayload{
			NMTStatus:  nmtStatus,
			Flag1:      flag1,
			Flag2:      flag2,
			PDOVersion: pdoVersion,
			Payload:    payload,
		},
	}
}

// NewSoaFrame builds a Start of Asynchronous frame inviting target to send
// the requested service.
func NewSoaFrame(nmtStatus NMTState, flag1 byte, service ReqServiceID, target uint8) *Frame {
	return &Frame{
		DstMAC:      MulticastSoa,
		EtherType:   EtherTypePowerlink,
		MessageType: MessageTypeSoa,
		DstNodeID:   NodeIDBroadcast,
		SrcNodeID:   NodeIDMN,
		Soa: &SoaPayload{
			NMTStatus:        nmtStatus,
			Flag1:            flag1,
			ReqServiceID:     service,
			ReqServiceTarget: target,
			EPLVersion:       SpecVersion,
		},
	}
}

// NewAsndFrame builds an Asynchronous Send frame.
func NewAsndFrame(dstMAC [6]byte, dstNode, srcNode uint8, service ServiceID, payload []byte) *Frame {
	return &Frame{
		DstMAC:      dstMAC,
		EtherType:   EtherTypePowerlink,
		MessageType: MessageTypeAsnd,
		DstNodeID:   dstNode,
		SrcNodeID:   srcNode,
		Asnd: &AsndPayload{
			ServiceID: service,
			Payload:   payload,
		},
	}
}
