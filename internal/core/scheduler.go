package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valter-silva-au/disco/pkg/models"
)

// FieldSource resolves field globals of one loaded script instance. A source
// is not safe for concurrent use and must be closed by the goroutine that
// uses it.
type FieldSource interface {
	Resolve(field models.FieldTag) (*models.Strategy, error)
	Close() error
}

// SourceFactory loads a fresh, isolated script instance. The instance is
// bound to ctx and stops running script code once ctx is done.
type SourceFactory func(ctx context.Context) (FieldSource, error)

// Scheduler starts one watcher per field: static values are sent straight
// to the mailbox, poll and listen fields each get a dedicated goroutine with
// its own script instance.
type Scheduler struct {
	newSource SourceFactory
	log       logrus.FieldLogger
	events    EventLogger
	wg        sync.WaitGroup
}

// NewScheduler creates a Scheduler. events may be nil.
func NewScheduler(newSource SourceFactory, log logrus.FieldLogger, events EventLogger) *Scheduler {
	return &Scheduler{newSource: newSource, log: log, events: events}
}

// Start resolves every field against initial and starts its watcher. Static
// updates are queued before Start returns. sender is released when Start
// returns; each worker holds its own clone until it exits. The returned
// statuses describe how each field was resolved.
func (s *Scheduler) Start(ctx context.Context, initial FieldSource, sender *Sender) []models.FieldStatus {
	defer sender.Release()

	statuses := make([]models.FieldStatus, 0, len(models.AllFields()))
	for _, field := range models.AllFields() {
		log := s.log.WithField("field", field)

		strategy, err := initial.Resolve(field)
		statuses = append(statuses, describe(field, strategy, err))
		if err != nil {
			if errors.Is(err, models.ErrFieldUndefined) {
				log.Debug("field not defined, skipping")
			} else {
				log.WithError(err).Warn("field could not be resolved, skipping")
			}
			continue
		}

		switch strategy.Kind {
		case models.StrategyStatic:
			sender.Send(models.FieldUpdate{Field: field, Value: strategy.Value})
			log.Debugf("static value %v", strategy.Value)
		case models.StrategyPoll:
			s.spawn(ctx, field, strategy.Kind, sender.Clone())
			log.Debugf("polling every %s", strategy.Interval)
		case models.StrategyListen:
			s.spawn(ctx, field, strategy.Kind, sender.Clone())
			log.Debug("listening")
		}
	}
	return statuses
}

// Describe resolves every field against source without starting any
// watcher.
func Describe(source FieldSource) []models.FieldStatus {
	statuses := make([]models.FieldStatus, 0, len(models.AllFields()))
	for _, field := range models.AllFields() {
		strategy, err := source.Resolve(field)
		statuses = append(statuses, describe(field, strategy, err))
	}
	return statuses
}

func describe(field models.FieldTag, strategy *models.Strategy, err error) models.FieldStatus {
	status := models.FieldStatus{Field: field}
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Kind = strategy.Kind
	switch strategy.Kind {
	case models.StrategyStatic:
		status.Value = strategy.Value
	case models.StrategyPoll:
		status.Interval = strategy.Interval.Seconds()
	}
	return status
}

// Wait blocks until every worker has exited or timeout elapses. It reports
// whether all workers exited.
func (s *Scheduler) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

func (s *Scheduler) spawn(ctx context.Context, field models.FieldTag, kind models.StrategyKind, sender *Sender) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer sender.Release()

		err := s.runWorker(ctx, field, kind, sender)
		s.stopped(ctx, field, kind, err)
	}()
}

// runWorker loads a private script instance, re-resolves field and drives its
// loop. It returns nil when the loop ended normally.
func (s *Scheduler) runWorker(ctx context.Context, field models.FieldTag, kind models.StrategyKind, sender *Sender) error {
	source, err := s.newSource(ctx)
	if err != nil {
		return fmt.Errorf("loading script: %w", err)
	}
	defer func() { _ = source.Close() }()

	strategy, err := source.Resolve(field)
	if err != nil {
		return err
	}
	if strategy.Kind != kind {
		return fmt.Errorf("resolved as %s in worker, expected %s", strategy.Kind, kind)
	}

	switch kind {
	case models.StrategyPoll:
		return pollLoop(ctx, field, strategy, sender)
	case models.StrategyListen:
		return listenLoop(ctx, field, strategy, sender)
	}
	return fmt.Errorf("no worker for %s strategy", kind)
}

// pollLoop fetches, sends and sleeps until ctx is done or a fetch fails.
func pollLoop(ctx context.Context, field models.FieldTag, strategy *models.Strategy, sender *Sender) error {
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		if ctx.Err() != nil {
			return nil
		}
		value, err := strategy.Fetch()
		if err != nil {
			return err
		}
		if !sender.Send(models.FieldUpdate{Field: field, Value: value}) {
			return nil
		}

		timer.Reset(strategy.Interval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// listenLoop forwards every value of the stream until it finishes or fails.
func listenLoop(ctx context.Context, field models.FieldTag, strategy *models.Strategy, sender *Sender) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		value, ok, err := strategy.Stream.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if !sender.Send(models.FieldUpdate{Field: field, Value: value}) {
			return nil
		}
	}
}

func (s *Scheduler) stopped(ctx context.Context, field models.FieldTag, kind models.StrategyKind, err error) {
	log := s.log.WithField("field", field)
	data := map[string]any{"field": string(field), "strategy": string(kind)}

	switch {
	case ctx.Err() != nil:
		log.Debug("watcher stopped on shutdown")
		return
	case err != nil:
		log.WithError(err).Warn("watcher stopped")
		data["error"] = err.Error()
	default:
		log.Info("watcher finished")
	}
	logEvent(s.events, EventWatcherStopped, data)
}
