package core

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/valter-silva-au/disco/pkg/models"
)

// --- Helpers ---

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakeEventLogger records logged events.
type fakeEventLogger struct {
	mu     sync.Mutex
	events []fakeEvent
}

type fakeEvent struct {
	eventType string
	data      map[string]any
}

func (l *fakeEventLogger) LogEvent(eventType string, data map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fakeEvent{eventType: eventType, data: data})
	return nil
}

func (l *fakeEventLogger) count(eventType string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}

// fakeClient records every publish and clear call.
type fakeClient struct {
	mu         sync.Mutex
	calls      []string
	activities []models.Activity
	failWith   error
	reconnects int
}

func (c *fakeClient) SetActivity(a models.Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "set")
	if c.failWith != nil {
		return c.failWith
	}
	c.activities = append(c.activities, a)
	return nil
}

func (c *fakeClient) ClearActivity() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, "clear")
	return c.failWith
}

func (c *fakeClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reconnects++
	return nil
}

func (c *fakeClient) callLog() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeClient) lastActivity() (models.Activity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.activities) == 0 {
		return models.Activity{}, false
	}
	return c.activities[len(c.activities)-1], true
}

// fakeSource resolves fields from a table of strategy constructors. Each
// call builds a fresh strategy so workers never share sequences.
type fakeSource struct {
	strategies map[models.FieldTag]func() (*models.Strategy, error)
	closed     bool
}

func (s *fakeSource) Resolve(field models.FieldTag) (*models.Strategy, error) {
	build, ok := s.strategies[field]
	if !ok {
		return nil, &models.FieldResolutionError{Field: field, Err: models.ErrFieldUndefined}
	}
	st, err := build()
	if err != nil {
		return nil, &models.FieldResolutionError{Field: field, Err: err}
	}
	return st, nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

// sourceFactory returns a factory producing fakeSources over strategies and
// counts how many were created.
func sourceFactory(strategies map[models.FieldTag]func() (*models.Strategy, error), created *int) SourceFactory {
	var mu sync.Mutex
	return func(ctx context.Context) (FieldSource, error) {
		mu.Lock()
		defer mu.Unlock()
		if created != nil {
			*created++
		}
		return &fakeSource{strategies: strategies}, nil
	}
}

func static(v models.FieldValue) func() (*models.Strategy, error) {
	return func() (*models.Strategy, error) {
		return &models.Strategy{Kind: models.StrategyStatic, Value: v}, nil
	}
}

// sliceSequence yields values in order, then finishes with err.
type sliceSequence struct {
	values []models.FieldValue
	err    error
}

func (s *sliceSequence) Next() (models.FieldValue, bool, error) {
	if len(s.values) == 0 {
		return nil, false, s.err
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v, true, nil
}

func listen(err error, values ...models.FieldValue) func() (*models.Strategy, error) {
	return func() (*models.Strategy, error) {
		return &models.Strategy{
			Kind:   models.StrategyListen,
			Stream: &sliceSequence{values: append([]models.FieldValue(nil), values...), err: err},
		}, nil
	}
}

var errBoom = errors.New("boom")

// drain receives every update until the mailbox closes or ctx is done.
func drain(ctx context.Context, mb *Mailbox) []models.FieldUpdate {
	var got []models.FieldUpdate
	for {
		u, err := mb.Receive(ctx)
		if err != nil {
			return got
		}
		got = append(got, u)
	}
}
