// Package client provides the producing side of the sample exchange: a
// ZeroMQ REQ socket that sends one JSON-encoded sample at a time and waits
// for the collector's acknowledgment.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/xtxerr/trackrec/internal/errors"
	"github.com/xtxerr/trackrec/internal/wire"
)

// Client sends samples to a collector. It is not safe for concurrent use;
// REQ sockets require strict send/receive alternation.
type Client struct {
	sock     zmq4.Socket
	endpoint string
	timeout  time.Duration
	sent     int64
}

// Dial connects a REQ socket to endpoint. A zero timeout waits for replies
// indefinitely.
func Dial(ctx context.Context, endpoint string, timeout time.Duration) (*Client, error) {
	sock := zmq4.NewReq(ctx, zmq4.WithDialerRetry(250*time.Millisecond))
	if err := sock.Dial(endpoint); err != nil {
		sock.Close()
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	return &Client{
		sock:     sock,
		endpoint: endpoint,
		timeout:  timeout,
	}, nil
}

// Send encodes values as a JSON array, sends it and checks the reply.
func (c *Client) Send(ctx context.Context, values ...float64) error {
	payload, err := wire.EncodeSample(values...)
	if err != nil {
		return err
	}

	reply, err := c.SendRaw(ctx, payload)
	if err != nil {
		return err
	}
	if !wire.IsAck(reply) {
		return fmt.Errorf("reply %q: %w", reply, errors.ErrUnexpectedAck)
	}
	return nil
}

// SendRaw sends payload unchanged and returns the reply frame.
//
// On timeout or cancellation the socket is closed: a REQ socket that has
// sent without receiving cannot be reused.
func (c *Client) SendRaw(ctx context.Context, payload []byte) ([]byte, error) {
	if err := c.sock.Send(zmq4.NewMsg(payload)); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	c.sent++

	type result struct {
		msg zmq4.Msg
		err error
	}
	done := make(chan result, 1)
	go func() {
		msg, err := c.sock.Recv()
		done <- result{msg: msg, err: err}
	}()

	var expired <-chan time.Time
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("recv: %w", r.err)
		}
		if len(r.msg.Frames) == 0 {
			return nil, nil
		}
		return r.msg.Frames[0], nil
	case <-ctx.Done():
		c.sock.Close()
		return nil, ctx.Err()
	case <-expired:
		c.sock.Close()
		return nil, fmt.Errorf("no reply from %s after %s: %w", c.endpoint, c.timeout, errors.ErrTimeout)
	}
}

// Sent returns the number of messages sent.
func (c *Client) Sent() int64 {
	return c.sent
}

// Endpoint returns the dialed endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close closes the socket.
func (c *Client) Close() error {
	return c.sock.Close()
}
