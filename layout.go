package powerlink

// FrameHeaderLen is the length of the header shared by every frame:
// destination MAC, source MAC, Ethernet type, message type and both node ids.
const FrameHeaderLen = 17

// MaxPDOPayload is the capacity of the PReq/PRes payload buffer.
const MaxPDOPayload = 256

// MaxAsndPayload is the capacity of the ASnd payload.
const MaxAsndPayload = 1498

// variantLayout describes the wire shape of one frame variant after the
// common header: the length of its fixed fields, whether a little-endian
// size field trails them, and how much payload may follow. Both the
// encoder and the decoder take their bounds from this table, so adding a
// variant means adding an entry here plus its field codec.
type variantLayout struct {
	fixedLen   int
	hasSize    bool
	payloadCap int
}

var variantLayouts = map[MessageType]variantLayout{
	// SoC: reserved, flag1, flag2; net time and relative time are added
	// per codec configuration in (*Codec).layout.
	MessageTypeSoc: {fixedLen: 3},
	// PReq/PRes: five fixed bytes, then the 16-bit payload size.
	MessageTypePreq: {fixedLen: 7, hasSize: true, payloadCap: MaxPDOPayload},
	MessageTypePres: {fixedLen: 7, hasSize: true, payloadCap: MaxPDOPayload},
	// SoA: nmtStatus, flag1, flag2, reqServiceId, reqServiceTarget, eplVersion.
	MessageTypeSoa: {fixedLen: 6},
	// ASnd: serviceId, then payload bounded by the Ethernet frame length.
	MessageTypeAsnd: {fixedLen: 1, payloadCap: MaxAsndPayload},
	// AMNI and AInv carry no body defined here yet.
	MessageTypeAmni: {},
	MessageTypeAInv: {},
}

// A Codec encodes and decodes POWERLINK frames. It is stateless apart
// from its configuration and safe for concurrent use.
//
// The optional SoC time fields have no on-wire discriminant; whether they
// are present is network configuration (D_NMT_NetTimeIsRealTime_BOOL and
// D_NMT_RelativeTime_BOOL), so it must be given to the codec up front.
type Codec struct {
	netTime      bool
	relativeTime bool
}

// An Option configures a Codec.
type Option func(*Codec)

// WithNetTime makes the codec read and write the SoC net time field.
func WithNetTime() Option {
	return func(c *Codec) { c.netTime = true }
}

// WithRelativeTime makes the codec read and write the SoC relative time field.
func WithRelativeTime() Option {
	return func(c *Codec) { c.relativeTime = true }
}

// NewCodec returns a codec for the given network configuration. The zero
// value is also usable and carries neither SoC time field.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) layout(t MessageType) (variantLayout, bool) {
	l, ok := variantLayouts[t]
	if !ok {
		return variantLayout{}, false
	}
	if t == MessageTypeSoc {
		if c.netTime {
			l.fixedLen += 8
		}
		if c.relativeTime {
			l.fixedLen += 8
		}
	}
	return l, true
}

var defaultCodec = NewCodec()

// Marshal encodes a frame with the default codec (no SoC time fields).
func Marshal(f *Frame) ([]byte, error) {
	return defaultCodec.Marshal(f)
}

// Unmarshal decodes a frame with the default codec (no SoC time fields).
func Unmarshal(buf []byte) (*Frame, int, error) {
	return defaultCodec.Unmarshal(buf)
}
