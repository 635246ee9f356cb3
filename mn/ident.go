package mn

import (
	"fmt"
	"strconv"
	"time"

	"github.com/avast/retry-go"

	"github.com/FabianPetersen/powerlink"
)

// UnexpectedService reports an ASnd answer carrying the wrong service.
type UnexpectedService struct {
	Expected powerlink.ServiceID
	Actual   powerlink.ServiceID
}

func (e UnexpectedService) Error() string {
	return fmt.Sprintf("unexpected ASnd service %#02x (expected %#02x)", uint8(e.Actual), uint8(e.Expected))
}

// Ident invites a node to identify itself: SoA(IdentRequest) answered by
// ASnd(IdentResponse).
type Ident struct {
	NodeID    uint8
	NMTStatus powerlink.NMTState
	Timeout   time.Duration
}

// Do runs the exchange and returns the raw ident response payload. What
// the octets mean is the object dictionary layer's business.
func (i Ident) Do(bus powerlink.Bus) (*powerlink.AsndPayload, error) {
	return invite(bus, i.NodeID, i.NMTStatus, i.Timeout,
		powerlink.ReqServiceIDIdentRequest, powerlink.ServiceIDIdentResponse)
}

// Status invites a node to report its status: SoA(StatusRequest) answered
// by ASnd(StatusResponse).
type Status struct {
	NodeID    uint8
	NMTStatus powerlink.NMTState
	Timeout   time.Duration
}

// Do runs the exchange and returns the raw status response payload.
func (s Status) Do(bus powerlink.Bus) (*powerlink.AsndPayload, error) {
	return invite(bus, s.NodeID, s.NMTStatus, s.Timeout,
		powerlink.ReqServiceIDStatusRequest, powerlink.ServiceIDStatusResponse)
}

func invite(bus powerlink.Bus, nodeID uint8, nmtStatus powerlink.NMTState, timeout time.Duration,
	service powerlink.ReqServiceID, response powerlink.ServiceID) (*powerlink.AsndPayload, error) {

	key := strconv.Itoa(int(nodeID))
	powerlink.Lock.Lock(key)
	defer powerlink.Lock.Unlock(key)

	if timeout == 0 {
		timeout = DefaultTimeout
	}

	c := &powerlink.Client{Bus: bus, Timeout: timeout}
	frame := powerlink.NewSoaFrame(nmtStatus, 0, service, nodeID)
	req := powerlink.NewRequest(frame, powerlink.MessageTypeAsnd, nodeID)

	var asnd *powerlink.AsndPayload
	err := retry.Do(func() error {
		resp, err := c.Do(req)
		if err != nil {
			return err
		}
		if resp.Frame.Asnd == nil {
			return UnexpectedResponse{
				Expected: powerlink.MessageTypeAsnd,
				Actual:   resp.Frame.MessageType,
			}
		}
		if resp.Frame.Asnd.ServiceID != response {
			return UnexpectedService{
				Expected: response,
				Actual:   resp.Frame.Asnd.ServiceID,
			}
		}
		asnd = resp.Frame.Asnd
		return nil
	}, retry.Attempts(retryAttempts), retry.Delay(time.Millisecond))
	if err != nil {
		return nil, err
	}
	return asnd, nil
}
