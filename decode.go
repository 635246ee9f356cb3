package powerlink

import (
	"encoding/binary"
	"fmt"
)

// Unmarshal parses a raw buffer into a frame and reports how many bytes it
// consumed. Bytes past the consumed count are ignored, which tolerates the
// zero padding Ethernet inserts below its minimum frame size; callers that
// care about trailing garbage compare the count against the buffer length.
//
// A well-formed buffer whose message type is not part of the protocol
// decodes to a frame tagged MessageTypeNonPowerlink rather than an error,
// since foreign traffic on a shared segment is expected.
//
// Unmarshal never reads past the end of buf, whatever the declared sizes
// inside it claim.
func (c *Codec) Unmarshal(buf []byte) (*Frame, int, error) {
	if len(buf) < FrameHeaderLen {
		return nil, 0, fmt.Errorf("%w: %d of %d bytes", ErrTruncatedHeader, len(buf), FrameHeaderLen)
	}

	f := &Frame{
		EtherType:   binary.BigEndian.Uint16(buf[12:14]),
		MessageType: Classify(buf[14]),
		DstNodeID:   buf[15],
		SrcNodeID:   buf[16],
	}
	copy(f.DstMAC[:], buf[0:6])
	copy(f.SrcMAC[:], buf[6:12])

	if f.MessageType == MessageTypeNonPowerlink {
		return f, FrameHeaderLen, nil
	}

	l, _ := c.layout(f.MessageType)
	if len(buf) < FrameHeaderLen+l.fixedLen {
		return nil, 0, fmt.Errorf("%w: %s needs %d bytes, got %d",
			ErrTruncatedBody, f.MessageType, FrameHeaderLen+l.fixedLen, len(buf))
	}

	body := buf[FrameHeaderLen:]
	consumed := FrameHeaderLen + l.fixedLen

	switch f.MessageType {
	case MessageTypeSoc:
		f.Soc = c.decodeSoc(body)

	case MessageTypePreq:
		payload, n, err := decodeSizedPayload(body, len(buf)-FrameHeaderLen, l)
		if err != nil {
			return nil, 0, fmt.Errorf("PReq: %w", err)
		}
		f.Preq = &PreqPayload{
			Flag1:      body[1],
			PDOVersion: body[3],
			Payload:    payload,
		}
		consumed += n

	case MessageTypePres:
		payload, n, err := decodeSizedPayload(body, len(buf)-FrameHeaderLen, l)
		if err != nil {
			return nil, 0, fmt.Errorf("PRes: %w", err)
		}
		f.Pres = &PresPayload{
			NMTStatus:  NMTState(body[0]),
			Flag1:      body[1],
			Flag2:      body[2],
			PDOVersion: body[3],
			Payload:    payload,
		}
		consumed += n

	case MessageTypeSoa:
		f.Soa = &SoaPayload{
			NMTStatus:        NMTState(body[0]),
			Flag1:            body[1],
			ReqServiceID:     ReqServiceID(body[3]),
			ReqServiceTarget: body[4],
			EPLVersion:       body[5],
		}

	case MessageTypeAsnd:
		// No size field: the Ethernet frame length bounds the payload.
		rest := body[1:]
		if len(rest) > l.payloadCap {
			return nil, 0, fmt.Errorf("ASnd: %w: %d octets exceed capacity %d",
				ErrPayloadSizeMismatch, len(rest), l.payloadCap)
		}
		f.Asnd = &AsndPayload{ServiceID: ServiceID(body[0])}
		if len(rest) > 0 {
			f.Asnd.Payload = make([]byte, len(rest))
			copy(f.Asnd.Payload, rest)
		}
		consumed = len(buf)
	}

	return f, consumed, nil
}

func (c *Codec) decodeSoc(body []byte) *SocPayload {
	soc := &SocPayload{Flag1: body[1]}
	off := 3
	if c.netTime {
		soc.NetTime = &NetTime{
			Seconds:     binary.LittleEndian.Uint32(body[off : off+4]),
			Nanoseconds: binary.LittleEndian.Uint32(body[off+4 : off+8]),
		}
		off += 8
	}
	if c.relativeTime {
		soc.RelativeTime = binary.LittleEndian.Uint64(body[off : off+8])
	}
	return soc
}

// decodeSizedPayload reads the little-endian size field of a PReq/PRes
// body and copies exactly that many payload octets. avail is the number of
// body bytes actually present in the buffer; the declared size is checked
// against both the capacity and avail before any copy.
func decodeSizedPayload(body []byte, avail int, l variantLayout) (payload []byte, n int, err error) {
	size := int(binary.LittleEndian.Uint16(body[5:7]))
	if size > l.payloadCap {
		return nil, 0, fmt.Errorf("%w: declared size %d exceeds capacity %d",
			ErrPayloadSizeMismatch, size, l.payloadCap)
	}
	if l.fixedLen+size > avail {
		return nil, 0, fmt.Errorf("%w: declared size %d exceeds the %d bytes present",
			ErrPayloadSizeMismatch, size, avail-l.fixedLen)
	}
	if size > 0 {
		payload = make([]byte, size)
		copy(payload, body[l.fixedLen:l.fixedLen+size])
	}
	return payload, size, nil
}
