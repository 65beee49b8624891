package signer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Mailbox is the rendezvous between the bridge and a wallet that polls for
// work over HTTP. The bridge side dials it like any other Dialer; the wallet
// side calls Next and Respond.
type Mailbox struct {
	clock       time2.Clock
	listenerTTL time.Duration
	lease       time.Duration

	mu       sync.Mutex
	pending  []*mailboxConn
	leased   map[string]time.Time
	conns    map[string]*mailboxConn
	notify   chan struct{}
	polling  int
	lastPoll time.Time
}

// DefaultLease is how long a handed out request waits for its answer before
// it is offered to the next poll again.
const DefaultLease = 15 * time.Second

// NewMailbox creates an empty mailbox. A signer counts as listening while a
// poll is in flight or the last poll is younger than listenerTTL. A request
// handed out by Next and not answered within lease is queued again.
func NewMailbox(clock time2.Clock, listenerTTL time.Duration, lease time.Duration) *Mailbox {
	return &Mailbox{
		clock:       clock,
		listenerTTL: listenerTTL,
		lease:       lease,
		leased:      make(map[string]time.Time),
		conns:       make(map[string]*mailboxConn),
		notify:      make(chan struct{}),
	}
}

//nolint:ireturn
func (m *Mailbox) Dial(_ context.Context) (Conn, error) {
	conn := &mailboxConn{
		mailbox:  m,
		id:       uuid.NewString(),
		response: make(chan json.RawMessage, 1),
		done:     make(chan struct{}),
	}

	m.mu.Lock()
	m.conns[conn.id] = conn
	m.mu.Unlock()

	return conn, nil
}

// Listening reports whether a wallet is attached.
func (m *Mailbox) Listening() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.listeningLocked()
}

func (m *Mailbox) listeningLocked() bool {
	if m.polling > 0 {
		return true
	}
	if m.lastPoll.IsZero() {
		return false
	}

	return m.clock.Now().Sub(m.lastPoll) <= m.listenerTTL
}

// Pending returns the number of requests not yet picked up.
func (m *Mailbox) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.pending)
}

// Next blocks until a request is available or ctx ends. It returns false when
// ctx ended first; a request is never handed to an ended poll.
func (m *Mailbox) Next(ctx context.Context) (*Request, bool) {
	m.mu.Lock()
	m.polling++
	m.lastPoll = m.clock.Now()
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.polling--
		m.lastPoll = m.clock.Now()
		m.mu.Unlock()
	}()

	for {
		m.mu.Lock()
		if ctx.Err() != nil {
			m.mu.Unlock()
			return nil, false
		}

		wake := m.requeueExpiredLocked()
		if len(m.pending) > 0 {
			conn := m.pending[0]
			m.pending = m.pending[1:]
			m.leased[conn.id] = m.clock.Now().Add(m.lease)
			m.mu.Unlock()

			return &Request{ID: conn.id, B64: conn.payload}, true
		}
		notify := m.notify
		m.mu.Unlock()

		if !waitForWork(ctx, notify, wake) {
			return nil, false
		}
	}
}

// waitForWork blocks until notify fires, the next lease expires or ctx ends.
// It returns false once ctx ended.
func waitForWork(ctx context.Context, notify <-chan struct{}, wake time.Duration) bool {
	var expired <-chan time.Time
	if wake > 0 {
		timer := time.NewTimer(wake)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-notify:
		return true
	case <-expired:
		return true
	case <-ctx.Done():
		return false
	}
}

// requeueExpiredLocked puts requests whose lease ran out back at the front of
// the queue. It returns the time until the next lease expires, or 0.
func (m *Mailbox) requeueExpiredLocked() time.Duration {
	now := m.clock.Now()

	var (
		expired []*mailboxConn
		wake    time.Duration
	)
	for id, deadline := range m.leased {
		if left := deadline.Sub(now); left > 0 {
			if wake == 0 || left < wake {
				wake = left
			}
			continue
		}

		delete(m.leased, id)
		if conn, ok := m.conns[id]; ok {
			expired = append(expired, conn)
		}
	}

	if len(expired) > 0 {
		log.Debug().Int("count", len(expired)).Msg("Requeueing unanswered signature requests")
		m.pending = append(expired, m.pending...)
	}

	return wake
}

// Requeue offers a handed out request to the next poll right away, e.g. when
// it could not be delivered to the wallet.
func (m *Mailbox) Requeue(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.leased[id]; !ok {
		return
	}
	delete(m.leased, id)

	conn, ok := m.conns[id]
	if !ok {
		return
	}

	m.pending = append([]*mailboxConn{conn}, m.pending...)
	close(m.notify)
	m.notify = make(chan struct{})
}

// Respond delivers the wallet's answer for request id.
func (m *Mailbox) Respond(id string, resp json.RawMessage) error {
	m.mu.Lock()
	conn, ok := m.conns[id]
	m.mu.Unlock()

	if !ok {
		return ErrUnknownRequest
	}

	select {
	case conn.response <- resp:
		m.mu.Lock()
		delete(m.leased, id)
		m.dropPendingLocked(conn)
		m.mu.Unlock()

		return nil
	default:
		return ErrAlreadyResponded
	}
}

func (m *Mailbox) enqueue(conn *mailboxConn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.listeningLocked() {
		return ErrNoListener
	}

	m.pending = append(m.pending, conn)
	close(m.notify)
	m.notify = make(chan struct{})

	return nil
}

func (m *Mailbox) remove(conn *mailboxConn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.conns, conn.id)
	delete(m.leased, conn.id)
	m.dropPendingLocked(conn)
}

func (m *Mailbox) dropPendingLocked(conn *mailboxConn) {
	for i, p := range m.pending {
		if p == conn {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

type mailboxConn struct {
	mailbox  *Mailbox
	id       string
	response chan json.RawMessage
	done     chan struct{}

	mu      sync.Mutex
	payload string
	sent    bool
	closed  bool
}

func (c *mailboxConn) Send(_ context.Context, payload string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.sent {
		c.mu.Unlock()
		return ErrBusy
	}
	c.payload = payload
	c.sent = true
	c.mu.Unlock()

	if err := c.mailbox.enqueue(c); err != nil {
		return err
	}

	log.Debug().Str("request_id", c.id).Msg("Signature request queued for wallet")

	return nil
}

func (c *mailboxConn) Recv(ctx context.Context) (json.RawMessage, error) {
	select {
	case resp := <-c.response:
		return resp, nil
	case <-c.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "recv")
	}
}

func (c *mailboxConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	c.mailbox.remove(c)

	return nil
}
