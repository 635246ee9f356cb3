// Package mn implements the managing-node side of the cyclic and
// asynchronous exchanges: polling a controlled node for process data and
// inviting asynchronous responses. It provides the exchange primitives
// only; deciding when to run them is the cycle scheduler's business.
package mn

import (
	"fmt"
	"strconv"
	"time"

	"github.com/avast/retry-go"

	"github.com/FabianPetersen/powerlink"
)

// DefaultTimeout bounds one request/response exchange when the caller
// does not set one.
const DefaultTimeout = 25 * time.Millisecond

const retryAttempts = 3

// UnexpectedResponse reports a frame of the wrong kind answering an exchange.
type UnexpectedResponse struct {
	Expected powerlink.MessageType
	Actual   powerlink.MessageType
}

func (e UnexpectedResponse) Error() string {
	return fmt.Sprintf("unexpected response frame %s (expected %s)", e.Actual, e.Expected)
}

// NotReady reports a poll response whose RD flag is clear, meaning the
// node marked its payload invalid.
type NotReady struct {
	NodeID uint8
}

func (e NotReady) Error() string {
	return fmt.Sprintf("node %d responded without the ready flag", e.NodeID)
}

// Poll represents one PReq/PRes exchange with a controlled node.
type Poll struct {
	NodeID     uint8
	DstMAC     [6]byte
	Flag1      byte
	PDOVersion byte
	Payload    []byte
	// Timeout bounds each attempt; DefaultTimeout when zero.
	Timeout time.Duration
}

// Do sends the poll request and waits for the node's poll response,
// retrying a missed response. It returns NotReady when the node answered
// with the RD flag clear.
func (p Poll) Do(bus powerlink.Bus) (*powerlink.PresPayload, error) {
	// Do not allow multiple exchanges with the same node
	key := strconv.Itoa(int(p.NodeID))
	powerlink.Lock.Lock(key)
	defer powerlink.Lock.Unlock(key)

	timeout := p.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	c := &powerlink.Client{Bus: bus, Timeout: timeout}
	frame := powerlink.NewPreqFrame(p.DstMAC, p.NodeID, p.Flag1, p.PDOVersion, p.Payload)
	req := powerlink.NewRequest(frame, powerlink.MessageTypePres, p.NodeID)

	var pres *powerlink.PresPayload
	err := retry.Do(func() error {
		resp, err := c.Do(req)
		if err != nil {
			return err
		}
		if resp.Frame.Pres == nil {
			return UnexpectedResponse{
				Expected: powerlink.MessageTypePres,
				Actual:   resp.Frame.MessageType,
			}
		}
		pres = resp.Frame.Pres
		return nil
	}, retry.Attempts(retryAttempts), retry.Delay(time.Millisecond))
	if err != nil {
		return nil, err
	}

	if pres.Flag1&powerlink.FlagRD == 0 {
		return nil, NotReady{p.NodeID}
	}
	return pres, nil
}
