package core

import (
	"context"
	"errors"
	"sync"

	"github.com/smallnest/chanx"
	"github.com/valter-silva-au/disco/pkg/models"
)

// ErrMailboxClosed is returned by Receive once every Sender has been released
// and all queued updates have been consumed.
var ErrMailboxClosed = errors.New("mailbox closed")

// mailboxInitCapacity sizes the channels on either side of the buffer.
const mailboxInitCapacity = 16

// Mailbox is an unbounded multi-producer, single-consumer queue of field
// updates. Send never blocks. Updates from one Sender are received in the
// order they were sent.
type Mailbox struct {
	ch     *chanx.UnboundedChan[models.FieldUpdate]
	ctx    context.Context
	cancel context.CancelFunc

	// mu guards producers and closed. Sends hold it for reading so the input
	// channel is never closed under a sender.
	mu        sync.RWMutex
	producers int
	closed    bool
}

// NewMailbox returns an empty mailbox with no producers. Close releases its
// buffer once the consumer is gone.
func NewMailbox() *Mailbox {
	ctx, cancel := context.WithCancel(context.Background())
	return &Mailbox{
		ch:     chanx.NewUnboundedChan[models.FieldUpdate](ctx, mailboxInitCapacity),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Sender returns a new producer handle. The mailbox stays open until every
// handle obtained from Sender or Clone has been released. A handle taken
// after the mailbox closed starts out released.
func (m *Mailbox) Sender() *Sender {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return &Sender{mb: m, released: true}
	}
	m.producers++
	return &Sender{mb: m}
}

// Receive blocks until an update is available, ctx is done, or the mailbox
// has no producers left and is empty. Receiving from a mailbox that has no
// live producer closes it.
func (m *Mailbox) Receive(ctx context.Context) (models.FieldUpdate, error) {
	m.mu.Lock()
	if m.producers == 0 {
		m.closeLocked()
	}
	m.mu.Unlock()

	select {
	case u, ok := <-m.ch.Out:
		if !ok {
			return models.FieldUpdate{}, ErrMailboxClosed
		}
		return u, nil
	case <-ctx.Done():
		return models.FieldUpdate{}, ctx.Err()
	case <-m.ctx.Done():
		return models.FieldUpdate{}, ErrMailboxClosed
	}
}

// Close discards queued updates and stops the buffer. Later sends report
// false. It is safe to call more than once.
func (m *Mailbox) Close() {
	m.cancel()
}

func (m *Mailbox) closeLocked() {
	if m.closed {
		return
	}
	m.closed = true
	close(m.ch.In)
}

// Sender is one producer's handle on a Mailbox.
type Sender struct {
	mb       *Mailbox
	released bool // guarded by mb.mu
}

// Send queues u. It reports false if the handle was already released or the
// mailbox was closed.
func (s *Sender) Send(u models.FieldUpdate) bool {
	s.mb.mu.RLock()
	defer s.mb.mu.RUnlock()
	if s.released || s.mb.closed {
		return false
	}
	select {
	case s.mb.ch.In <- u:
		return true
	case <-s.mb.ctx.Done():
		return false
	}
}

// Clone returns an independent handle on the same mailbox.
func (s *Sender) Clone() *Sender {
	return s.mb.Sender()
}

// Release drops this handle. The last release closes the mailbox. Calling it
// more than once has no effect.
func (s *Sender) Release() {
	s.mb.mu.Lock()
	defer s.mb.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.mb.producers--
	if s.mb.producers == 0 {
		s.mb.closeLocked()
	}
}
