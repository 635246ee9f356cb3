package powerlink

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanBus answers every published request with the queued frame, or lets
// the wait time out when the queue is empty.
type chanBus struct {
	queue     []*Frame
	published []*Frame
	waiting   []chan FrameEvent
}

func (b *chanBus) Publish(f *Frame) error {
	b.published = append(b.published, f)
	if len(b.queue) == 0 || len(b.waiting) == 0 {
		return nil
	}
	resp := b.queue[0]
	b.queue = b.queue[1:]
	ch := b.waiting[0]
	b.waiting = b.waiting[1:]
	ch <- FrameEvent{Frame: resp}
	return nil
}

func (b *chanBus) Wait(t MessageType, srcNode uint8, timeout time.Duration) <-chan FrameEvent {
	ch := make(chan FrameEvent, 1)
	b.waiting = append(b.waiting, ch)
	time.AfterFunc(timeout, func() {
		select {
		case ch <- FrameEvent{Err: ErrResponseTimeout}:
		default:
		}
	})
	return ch
}

func TestClientDo(t *testing.T) {
	pres := NewPresFrame(32, NMTCsOperational, FlagRD, 0, 1, []byte{1})
	bus := &chanBus{queue: []*Frame{pres}}
	c := &Client{Bus: bus, Timeout: 50 * time.Millisecond}

	req := NewRequest(NewPreqFrame([6]byte{1}, 32, FlagRD, 1, nil), MessageTypePres, 32)
	resp, err := c.Do(req)
	require.NoError(t, err)
	assert.Same(t, pres, resp.Frame)
	assert.Same(t, req, resp.Request)
	require.Len(t, bus.published, 1)
	assert.Equal(t, MessageTypePreq, bus.published[0].MessageType)
}

func TestClientDoTimeout(t *testing.T) {
	bus := &chanBus{}
	c := &Client{Bus: bus, Timeout: 5 * time.Millisecond}

	req := NewRequest(NewPreqFrame([6]byte{1}, 32, 0, 1, nil), MessageTypePres, 32)
	_, err := c.Do(req)
	assert.True(t, errors.Is(err, ErrResponseTimeout))
}
