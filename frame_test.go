package powerlink

import (
	"testing"
)

func TestClassifyTotality(t *testing.T) {
	known := map[byte]MessageType{
		0x01: MessageTypeSoc,
		0x03: MessageTypePreq,
		0x04: MessageTypePres,
		0x05: MessageTypeSoa,
		0x06: MessageTypeAsnd,
		0x07: MessageTypeAmni,
		0x0D: MessageTypeAInv,
	}

	for b := 0; b < 256; b++ {
		got := Classify(byte(b))
		want, ok := known[byte(b)]
		if !ok {
			want = MessageTypeNonPowerlink
		}
		if got != want {
			t.Log("classify mismatch", b, got, want)
			t.FailNow()
		}
	}
}

func TestMessageTypeString(t *testing.T) {
	if MessageTypeSoc.String() != "SoC" || MessageTypeAsnd.String() != "ASnd" {
		t.FailNow()
	}
	if MessageType(0x42).String() != "NonPowerlink" {
		t.FailNow()
	}
}

func TestBuilderAddressing(t *testing.T) {
	soc := NewSocFrame(0, nil, 0)
	if soc.DstMAC != MulticastSoc || soc.DstNodeID != NodeIDBroadcast || soc.SrcNodeID != NodeIDMN {
		t.Fatal("SoC addressing", soc.DstMAC, soc.DstNodeID, soc.SrcNodeID)
	}
	if soc.EtherType != EtherTypePowerlink {
		t.Fatal("SoC ether type", soc.EtherType)
	}

	mac := [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	preq := NewPreqFrame(mac, 32, FlagRD, 1, nil)
	if preq.DstMAC != mac || preq.DstNodeID != 32 || preq.SrcNodeID != NodeIDMN {
		t.Fatal("PReq addressing", preq.DstMAC, preq.DstNodeID, preq.SrcNodeID)
	}

	pres := NewPresFrame(32, NMTCsOperational, FlagRD, 0, 1, nil)
	if pres.DstMAC != MulticastPres || pres.SrcNodeID != 32 {
		t.Fatal("PRes addressing", pres.DstMAC, pres.SrcNodeID)
	}

	soa := NewSoaFrame(NMTCsOperational, 0, ReqServiceIDStatusRequest, 32)
	if soa.DstMAC != MulticastSoa || soa.Soa.EPLVersion != SpecVersion {
		t.Fatal("SoA addressing", soa.DstMAC, soa.Soa.EPLVersion)
	}
}

func TestFlag2Fields(t *testing.T) {
	for prio := uint8(0); prio < 8; prio++ {
		for rs := uint8(0); rs < 8; rs++ {
			p := PresPayload{Flag2: Flag2(prio, rs)}
			if p.Priority() != prio || p.RequestToSend() != rs {
				t.Fatal("flag2 mismatch", prio, rs, p.Flag2)
			}
		}
	}
}

func TestNMTStateString(t *testing.T) {
	if NMTCsOperational.String() != "NMT_CS_OPERATIONAL" {
		t.FailNow()
	}
	if NMTState(0x77).String() != "NMT_UNKNOWN" {
		t.FailNow()
	}
}
