package powerlink

import (
	"errors"
	"time"

	"github.com/jpillora/maplock"
)

// Lock serializes request/response exchanges per node id so that two
// callers never have an exchange with the same node in flight at once.
var Lock = maplock.New()

// ErrResponseTimeout is reported when no matching frame arrives within
// the client timeout.
var ErrResponseTimeout = errors.New("powerlink: response timeout")

// A FrameEvent is one received frame, or the error that ended the wait.
type FrameEvent struct {
	Frame *Frame
	Err   error
}

// A Bus sends frames and hands out matching received frames. It is
// implemented by transport.Transport.
type Bus interface {
	// Publish encodes and sends a frame.
	Publish(f *Frame) error
	// Wait returns a channel that delivers the next frame of the given
	// message type sent by srcNode, or a FrameEvent carrying an error
	// once the timeout expires. The channel is buffered; a waiter that
	// stops reading leaks nothing.
	Wait(t MessageType, srcNode uint8, timeout time.Duration) <-chan FrameEvent
}

// A Request pairs a frame to send with the frame kind that answers it.
type Request struct {
	Frame        *Frame
	ResponseType MessageType
	ResponseNode uint8
}

// NewRequest returns a request expecting a response of the given type from
// the given node.
func NewRequest(frame *Frame, responseType MessageType, responseNode uint8) *Request {
	return &Request{
		Frame:        frame,
		ResponseType: responseType,
		ResponseNode: responseNode,
	}
}

// A Response is the frame a node answered with.
type Response struct {
	Frame   *Frame
	Request *Request
}

// A Client handles message communication by sending a request and waiting
// for the response.
type Client struct {
	Bus     Bus
	Timeout time.Duration
}

// Do sends a request and waits for a response.
// If the response frame doesn't arrive on time, an error is returned.
func (c *Client) Do(req *Request) (*Response, error) {
	rch := c.Bus.Wait(req.ResponseType, req.ResponseNode, c.Timeout)

	if err := c.Bus.Publish(req.Frame); err != nil {
		return nil, err
	}

	ev := <-rch

	return &Response{ev.Frame, req}, ev.Err
}
