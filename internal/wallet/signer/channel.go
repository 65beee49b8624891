package signer

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

// ChanDialer connects the bridge to an in-process signer reading from a Go
// channel. Every Dial hands the signer a fresh Exchange.
type ChanDialer struct {
	exchanges chan *Exchange
}

// NewChanDialer creates a dialer whose exchanges are delivered on the returned
// channel. buffer bounds how many exchanges may wait for the signer.
func NewChanDialer(buffer int) (*ChanDialer, <-chan *Exchange) {
	ch := make(chan *Exchange, buffer)
	return &ChanDialer{exchanges: ch}, ch
}

// Exchange is the signer's side of one request.
type Exchange struct {
	Payload  string
	response chan json.RawMessage
	once     sync.Once
}

// Respond answers the request. Only the first call is delivered.
func (e *Exchange) Respond(resp json.RawMessage) {
	e.once.Do(func() {
		e.response <- resp
	})
}

//nolint:ireturn
func (d *ChanDialer) Dial(_ context.Context) (Conn, error) {
	return &chanConn{dialer: d}, nil
}

type chanConn struct {
	dialer   *ChanDialer
	mu       sync.Mutex
	exchange *Exchange
	closed   bool
}

func (c *chanConn) Send(ctx context.Context, payload string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.exchange != nil {
		c.mu.Unlock()
		return ErrBusy
	}

	ex := &Exchange{Payload: payload, response: make(chan json.RawMessage, 1)}
	c.exchange = ex
	c.mu.Unlock()

	select {
	case c.dialer.exchanges <- ex:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "send")
	default:
		return ErrNoListener
	}
}

func (c *chanConn) Recv(ctx context.Context) (json.RawMessage, error) {
	c.mu.Lock()
	ex := c.exchange
	c.mu.Unlock()

	if ex == nil {
		return nil, errors.New("recv before send")
	}

	select {
	case resp := <-ex.response:
		return resp, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "recv")
	}
}

func (c *chanConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	return nil
}
