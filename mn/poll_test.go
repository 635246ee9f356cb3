package mn

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabianPetersen/powerlink"
)

// scriptBus plays back one queued frame per exchange; a nil entry (and an
// exhausted queue) makes the exchange time out.
type scriptBus struct {
	mu        sync.Mutex
	queue     []*powerlink.Frame
	published []*powerlink.Frame
}

func (b *scriptBus) Publish(f *powerlink.Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, f)
	return nil
}

func (b *scriptBus) Wait(t powerlink.MessageType, srcNode uint8, timeout time.Duration) <-chan powerlink.FrameEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan powerlink.FrameEvent, 1)
	if len(b.queue) == 0 {
		ch <- powerlink.FrameEvent{Err: powerlink.ErrResponseTimeout}
		return ch
	}
	f := b.queue[0]
	b.queue = b.queue[1:]
	if f == nil {
		ch <- powerlink.FrameEvent{Err: powerlink.ErrResponseTimeout}
		return ch
	}
	ch <- powerlink.FrameEvent{Frame: f}
	return ch
}

func (b *scriptBus) publishedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

func TestPollDo(t *testing.T) {
	pres := powerlink.NewPresFrame(32, powerlink.NMTCsOperational, powerlink.FlagRD, powerlink.Flag2(1, 0), 2, []byte{1, 2})
	bus := &scriptBus{queue: []*powerlink.Frame{pres}}

	got, err := Poll{
		NodeID:     32,
		DstMAC:     [6]byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF},
		Flag1:      powerlink.FlagRD,
		PDOVersion: 2,
		Payload:    []byte{9},
	}.Do(bus)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, got.Payload)
	assert.Equal(t, powerlink.NMTCsOperational, got.NMTStatus)

	require.Equal(t, 1, bus.publishedCount())
	preq := bus.published[0]
	assert.Equal(t, powerlink.MessageTypePreq, preq.MessageType)
	assert.Equal(t, uint8(32), preq.DstNodeID)
	assert.Equal(t, []byte{9}, preq.Preq.Payload)
}

func TestPollNotReady(t *testing.T) {
	pres := powerlink.NewPresFrame(32, powerlink.NMTCsReadyToOperate, 0, 0, 2, nil)
	bus := &scriptBus{queue: []*powerlink.Frame{pres}}

	_, err := Poll{NodeID: 32}.Do(bus)
	require.Error(t, err)
	assert.Equal(t, NotReady{NodeID: 32}, err)
}

func TestPollRetriesMissedResponse(t *testing.T) {
	pres := powerlink.NewPresFrame(32, powerlink.NMTCsOperational, powerlink.FlagRD, 0, 2, nil)
	bus := &scriptBus{queue: []*powerlink.Frame{nil, pres}}

	got, err := Poll{NodeID: 32, Timeout: time.Millisecond}.Do(bus)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 2, bus.publishedCount())
}

func TestPollGivesUpAfterRetries(t *testing.T) {
	bus := &scriptBus{}

	_, err := Poll{NodeID: 32, Timeout: time.Millisecond}.Do(bus)
	require.Error(t, err)
	assert.Equal(t, retryAttempts, bus.publishedCount())
}

func TestIdentDo(t *testing.T) {
	asnd := powerlink.NewAsndFrame(powerlink.MulticastAsnd, powerlink.NodeIDBroadcast, 32,
		powerlink.ServiceIDIdentResponse, []byte{0x10, 0x20})
	bus := &scriptBus{queue: []*powerlink.Frame{asnd}}

	got, err := Ident{NodeID: 32, NMTStatus: powerlink.NMTCsPreOperational1}.Do(bus)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x20}, got.Payload)

	require.Equal(t, 1, bus.publishedCount())
	soa := bus.published[0]
	assert.Equal(t, powerlink.MessageTypeSoa, soa.MessageType)
	assert.Equal(t, powerlink.ReqServiceIDIdentRequest, soa.Soa.ReqServiceID)
	assert.Equal(t, uint8(32), soa.Soa.ReqServiceTarget)
}

func TestIdentWrongService(t *testing.T) {
	asnd := powerlink.NewAsndFrame(powerlink.MulticastAsnd, powerlink.NodeIDBroadcast, 32,
		powerlink.ServiceIDStatusResponse, nil)
	bus := &scriptBus{queue: []*powerlink.Frame{asnd}}

	_, err := Ident{NodeID: 32, Timeout: time.Millisecond}.Do(bus)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unexpected ASnd service")
}

func TestStatusDo(t *testing.T) {
	asnd := powerlink.NewAsndFrame(powerlink.MulticastAsnd, powerlink.NodeIDBroadcast, 7,
		powerlink.ServiceIDStatusResponse, []byte{powerlink.FlagEN})
	bus := &scriptBus{queue: []*powerlink.Frame{asnd}}

	got, err := Status{NodeID: 7, NMTStatus: powerlink.NMTCsOperational}.Do(bus)
	require.NoError(t, err)
	assert.Equal(t, powerlink.ServiceIDStatusResponse, got.ServiceID)
}
