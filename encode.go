package powerlink

import (
	"encoding/binary"
	"fmt"
)

// Marshal encodes a frame into its exact wire representation. The result
// is FrameHeaderLen plus the variant length; the codec never pads, so the
// caller (usually the transport) is responsible for the Ethernet minimum
// frame size. Reserved bytes are written as zero, the Ethernet type in
// network order, all protocol-internal multi-byte fields little-endian.
func (c *Codec) Marshal(f *Frame) ([]byte, error) {
	l, ok := c.layout(f.MessageType)
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnsupportedVariant, byte(f.MessageType))
	}

	var payload []byte
	switch f.MessageType {
	case MessageTypeSoc:
		if f.Soc == nil {
			return nil, fmt.Errorf("%w: SoC frame without body", ErrUnsupportedVariant)
		}
	case MessageTypePreq:
		if f.Preq == nil {
			return nil, fmt.Errorf("%w: PReq frame without body", ErrUnsupportedVariant)
		}
		payload = f.Preq.Payload
	case MessageTypePres:
		if f.Pres == nil {
			return nil, fmt.Errorf("%w: PRes frame without body", ErrUnsupportedVariant)
		}
		payload = f.Pres.Payload
	case MessageTypeSoa:
		if f.Soa == nil {
			return nil, fmt.Errorf("%w: SoA frame without body", ErrUnsupportedVariant)
		}
	case MessageTypeAsnd:
		if f.Asnd == nil {
			return nil, fmt.Errorf("%w: ASnd frame without body", ErrUnsupportedVariant)
		}
		payload = f.Asnd.Payload
	}
	if len(payload) > l.payloadCap {
		return nil, fmt.Errorf("%w: %d octets exceed the %s capacity of %d",
			ErrPayloadTooLarge, len(payload), f.MessageType, l.payloadCap)
	}

	buf := make([]byte, FrameHeaderLen+l.fixedLen+len(payload))
	copy(buf[0:6], f.DstMAC[:])
	copy(buf[6:12], f.SrcMAC[:])
	binary.BigEndian.PutUint16(buf[12:14], f.EtherType)
	buf[14] = byte(f.MessageType)
	buf[15] = f.DstNodeID
	buf[16] = f.SrcNodeID

	body := buf[FrameHeaderLen:]
	switch f.MessageType {
	case MessageTypeSoc:
		c.encodeSoc(body, f.Soc)
	case MessageTypePreq:
		body[1] = f.Preq.Flag1
		body[3] = f.Preq.PDOVersion
		binary.LittleEndian.PutUint16(body[5:7], uint16(len(payload)))
		copy(body[7:], payload)
	case MessageTypePres:
		body[0] = byte(f.Pres.NMTStatus)
		body[1] = f.Pres.Flag1
		body[2] = f.Pres.Flag2
		body[3] = f.Pres.PDOVersion
		binary.LittleEndian.PutUint16(body[5:7], uint16(len(payload)))
		copy(body[7:], payload)
	case MessageTypeSoa:
		body[0] = byte(f.Soa.NMTStatus)
		body[1] = f.Soa.Flag1
		body[3] = byte(f.Soa.ReqServiceID)
		body[4] = f.Soa.ReqServiceTarget
		body[5] = f.Soa.EPLVersion
	case MessageTypeAsnd:
		body[0] = byte(f.Asnd.ServiceID)
		copy(body[1:], payload)
	}

	return buf, nil
}

func (c *Codec) encodeSoc(body []byte, soc *SocPayload) {
	body[1] = soc.Flag1
	off := 3
	if c.netTime {
		nt := soc.NetTime
		if nt == nil {
			nt = &NetTime{}
		}
		binary.LittleEndian.PutUint32(body[off:off+4], nt.Seconds)
		binary.LittleEndian.PutUint32(body[off+4:off+8], nt.Nanoseconds)
		off += 8
	}
	if c.relativeTime {
		binary.LittleEndian.PutUint64(body[off:off+8], soc.RelativeTime)
	}
}
