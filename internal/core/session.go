// Package core contains the presence engine: the scheduler that starts one
// watcher per field, the mailbox and aggregator that merge their updates, the
// publisher that turns the merged state into an activity, and the settings
// and connection bootstrap around them.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valter-silva-au/disco/pkg/models"
)

// DefaultShutdownGrace is how long a session waits for its watchers after
// shutdown has begun.
const DefaultShutdownGrace = 3 * time.Second

// SessionConfig holds the collaborators of a Session.
type SessionConfig struct {
	Client    PresenceClient
	NewSource SourceFactory
	Log       logrus.FieldLogger
	Events    EventLogger

	// ShutdownGrace bounds the join phase. Zero means DefaultShutdownGrace.
	ShutdownGrace time.Duration

	// HoldOpen keeps the session running after every watcher has finished,
	// until ctx is done, so the last presence stays visible.
	HoldOpen bool

	// OnResolved, if set, receives the field statuses once all watchers have
	// been started.
	OnResolved func([]models.FieldStatus)
}

// Session runs the engine once: it starts the watchers, aggregates their
// updates into the presence state and publishes it.
type Session struct {
	cfg        SessionConfig
	scheduler  *Scheduler
	aggregator *Aggregator
}

// NewSession wires a scheduler, an aggregator and a publisher for cfg.Client.
func NewSession(cfg SessionConfig) *Session {
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = DefaultShutdownGrace
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	publisher := NewPresencePublisher(cfg.Client, cfg.Log, cfg.Events)
	return &Session{
		cfg:        cfg,
		scheduler:  NewScheduler(cfg.NewSource, cfg.Log, cfg.Events),
		aggregator: NewAggregator(publisher, cfg.Log, cfg.Events),
	}
}

// Run resolves every field against initial, which the caller keeps owning,
// and aggregates updates until all watchers have finished or ctx is done.
// Cancellation is a normal shutdown and returns nil.
func (s *Session) Run(ctx context.Context, initial FieldSource) error {
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	mb := NewMailbox()
	defer mb.Close()
	statuses := s.scheduler.Start(workerCtx, initial, mb.Sender())
	if s.cfg.OnResolved != nil {
		s.cfg.OnResolved(statuses)
	}

	err := s.aggregator.Run(ctx, mb)
	if err == nil && s.cfg.HoldOpen {
		s.cfg.Log.Info("all watchers finished, keeping presence until shutdown")
		<-ctx.Done()
	}

	cancel()
	if !s.scheduler.Wait(s.cfg.ShutdownGrace) {
		s.cfg.Log.Warnf("watchers still running after %s, abandoning them", s.cfg.ShutdownGrace)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// State returns a copy of the aggregated presence state. It must only be
// called after Run has returned.
func (s *Session) State() models.PresenceState {
	return s.aggregator.State()
}
