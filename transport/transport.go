// Package transport sends and receives POWERLINK frames on a raw Ethernet
// interface. It implements the powerlink.Bus interface used by the client
// and the managing-node flows in mn.
package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/gopacket/pcap"
	"go.uber.org/zap"

	"github.com/FabianPetersen/powerlink"
)

// Frames of other protocols never reach the decoder.
const bpfPowerlink = "ether proto 0x88AB"

const snapLen = 1518

// An Option configures a Transport.
type Option func(*Transport)

// WithCodec sets the frame codec. Defaults to a codec without the
// optional SoC time fields.
func WithCodec(c *powerlink.Codec) Option {
	return func(t *Transport) { t.codec = c }
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) { t.log = l }
}

// WithHandler registers a tap invoked for every decoded frame, before
// waiter dispatch. Used by monitoring tools; exchanges don't need it.
func WithHandler(fn func(powerlink.FrameEvent)) Option {
	return func(t *Transport) { t.handler = fn }
}

// A Transport owns one capture handle on one interface. Publish and Wait
// may be called from any goroutine; ConnectAndListen must be running for
// Wait channels to ever deliver a frame.
type Transport struct {
	iface   string
	srcMAC  [6]byte
	handle  *pcap.Handle
	codec   *powerlink.Codec
	log     *zap.Logger
	handler func(powerlink.FrameEvent)

	mu      sync.Mutex
	waiters []*waiter

	closed    chan struct{}
	closeOnce sync.Once
}

type waiter struct {
	msgType powerlink.MessageType
	srcNode uint8
	ch      chan powerlink.FrameEvent
}

// New opens the named interface for POWERLINK traffic.
func New(iface string, opts ...Option) (*Transport, error) {
	t := &Transport{
		iface:  iface,
		codec:  powerlink.NewCodec(),
		log:    zap.NewNop(),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("transport: interface %s: %w", iface, err)
	}
	if len(ifi.HardwareAddr) == 6 {
		copy(t.srcMAC[:], ifi.HardwareAddr)
	}

	handle, err := pcap.OpenLive(iface, snapLen, true, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", iface, err)
	}
	if err := handle.SetBPFFilter(bpfPowerlink); err != nil {
		handle.Close()
		return nil, fmt.Errorf("transport: set filter: %w", err)
	}
	t.handle = handle

	t.log.Info("transport open",
		zap.String("interface", iface),
		zap.String("mac", net.HardwareAddr(t.srcMAC[:]).String()))
	return t, nil
}

// Publish encodes a frame and writes it to the wire, padded to the
// Ethernet minimum frame size. A zero source MAC is stamped with the
// interface address.
func (t *Transport) Publish(f *powerlink.Frame) error {
	if f.SrcMAC == ([6]byte{}) {
		f.SrcMAC = t.srcMAC
	}
	buf, err := t.codec.Marshal(f)
	if err != nil {
		return err
	}
	buf = pad(buf, powerlink.MinEthernetFrameSize)
	if err := t.handle.WritePacketData(buf); err != nil {
		return fmt.Errorf("transport: write: %w", err)
	}
	framesSent.WithLabelValues(f.MessageType.String()).Inc()
	t.log.Debug("frame sent",
		zap.Stringer("type", f.MessageType),
		zap.Uint8("dst", f.DstNodeID),
		zap.Int("len", len(buf)))
	return nil
}

// ConnectAndListen reads frames until Close is called, decoding each and
// feeding the handler tap and any matching waiters. It blocks.
func (t *Transport) ConnectAndListen() error {
	for {
		data, _, err := t.handle.ReadPacketData()
		if err != nil {
			select {
			case <-t.closed:
				return nil
			default:
			}
			if errors.Is(err, pcap.NextErrorTimeoutExpired) {
				continue
			}
			return fmt.Errorf("transport: read: %w", err)
		}

		f, _, err := t.codec.Unmarshal(data)
		if err != nil {
			decodeErrors.Inc()
			t.log.Debug("frame dropped", zap.Error(err), zap.Int("len", len(data)))
			continue
		}
		if f.MessageType == powerlink.MessageTypeNonPowerlink {
			continue
		}
		framesReceived.WithLabelValues(f.MessageType.String()).Inc()
		t.log.Debug("frame received",
			zap.Stringer("type", f.MessageType),
			zap.Uint8("src", f.SrcNodeID),
			zap.Uint8("dst", f.DstNodeID))

		ev := powerlink.FrameEvent{Frame: f}
		if t.handler != nil {
			t.handler(ev)
		}
		t.dispatch(ev)
	}
}

// Wait registers a one-shot waiter for the next frame of the given type
// from the given node. The returned channel delivers exactly one event:
// the frame, or powerlink.ErrResponseTimeout after the timeout.
func (t *Transport) Wait(msgType powerlink.MessageType, srcNode uint8, timeout time.Duration) <-chan powerlink.FrameEvent {
	w := &waiter{
		msgType: msgType,
		srcNode: srcNode,
		ch:      make(chan powerlink.FrameEvent, 1),
	}
	t.mu.Lock()
	t.waiters = append(t.waiters, w)
	t.mu.Unlock()

	time.AfterFunc(timeout, func() {
		if t.remove(w) {
			w.ch <- powerlink.FrameEvent{Err: powerlink.ErrResponseTimeout}
		}
	})
	return w.ch
}

func (t *Transport) dispatch(ev powerlink.FrameEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	kept := t.waiters[:0]
	for _, w := range t.waiters {
		if w.msgType == ev.Frame.MessageType && w.srcNode == ev.Frame.SrcNodeID {
			w.ch <- ev
			continue
		}
		kept = append(kept, w)
	}
	t.waiters = kept
}

// remove reports whether the waiter was still registered.
func (t *Transport) remove(w *waiter) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, cand := range t.waiters {
		if cand == w {
			t.waiters = append(t.waiters[:i], t.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// Close stops the listen loop and releases the capture handle.
func (t *Transport) Close() {
	t.closeOnce.Do(func() {
		close(t.closed)
		t.handle.Close()
	})
}

// SrcMAC returns the interface hardware address frames are stamped with.
func (t *Transport) SrcMAC() [6]byte {
	return t.srcMAC
}

func pad(buf []byte, minLength int) []byte {
	for i := len(buf); i < minLength; i++ {
		buf = append(buf, 0)
	}
	return buf
}
