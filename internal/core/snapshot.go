package core

import (
	"sync"
	"time"

	"github.com/valter-silva-au/disco/pkg/models"
)

// SnapshotClient wraps a PresenceClient and remembers the last successful
// call so other goroutines can inspect the current presence.
type SnapshotClient struct {
	next PresenceClient
	now  func() time.Time

	mu       sync.RWMutex
	active   bool
	activity models.Activity
	updates  int
	updated  time.Time
	fields   []models.FieldStatus
}

// NewSnapshotClient wraps next.
func NewSnapshotClient(next PresenceClient) *SnapshotClient {
	return &SnapshotClient{next: next, now: time.Now}
}

// SetActivity forwards to the wrapped client and records activity on success.
func (c *SnapshotClient) SetActivity(activity models.Activity) error {
	if err := c.next.SetActivity(activity); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = true
	c.activity = activity
	c.record()
	return nil
}

// ClearActivity forwards to the wrapped client and records the cleared
// presence on success.
func (c *SnapshotClient) ClearActivity() error {
	if err := c.next.ClearActivity(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	c.activity = models.Activity{}
	c.record()
	return nil
}

// Reconnect forwards to the wrapped client when it supports reconnecting.
func (c *SnapshotClient) Reconnect() error {
	if r, ok := c.next.(Reconnector); ok {
		return r.Reconnect()
	}
	return nil
}

// SetFields records how each field was resolved at startup.
func (c *SnapshotClient) SetFields(fields []models.FieldStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = append([]models.FieldStatus(nil), fields...)
}

// Snapshot returns a copy of the recorded presence.
func (c *SnapshotClient) Snapshot() models.PresenceSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := models.PresenceSnapshot{
		Active:  c.active,
		Updates: c.updates,
		Fields:  append([]models.FieldStatus(nil), c.fields...),
	}
	if c.active {
		activity := c.activity
		activity.Buttons = append([]models.ActivityButton(nil), c.activity.Buttons...)
		snap.Activity = &activity
	}
	if c.updates > 0 {
		updated := c.updated
		snap.UpdatedAt = &updated
	}
	return snap
}

func (c *SnapshotClient) record() {
	c.updates++
	c.updated = c.now()
}
