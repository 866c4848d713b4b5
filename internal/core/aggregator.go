package core

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/valter-silva-au/disco/pkg/models"
)

// StatePublisher is invoked with the combined state after every update.
// Implementations must not retain state; use Clone for a lasting copy.
type StatePublisher interface {
	Publish(state models.PresenceState) error
}

// Aggregator is the single consumer of field updates. It owns the presence
// state and republishes it after every update.
type Aggregator struct {
	publisher StatePublisher
	log       logrus.FieldLogger
	events    EventLogger
	state     models.PresenceState
}

// NewAggregator creates an Aggregator with an empty, inactive state. events
// may be nil.
func NewAggregator(publisher StatePublisher, log logrus.FieldLogger, events EventLogger) *Aggregator {
	return &Aggregator{
		publisher: publisher,
		log:       log,
		events:    events,
		state:     models.NewPresenceState(),
	}
}

// Run consumes updates until the mailbox has no producers left and is empty,
// or ctx is done. It returns nil in the first case and ctx's error in the
// second. Publish failures are logged and never stop the loop.
func (a *Aggregator) Run(ctx context.Context, mb *Mailbox) error {
	for {
		update, err := mb.Receive(ctx)
		if errors.Is(err, ErrMailboxClosed) {
			a.log.Debug("all watchers finished")
			return nil
		}
		if err != nil {
			return err
		}
		a.Handle(update)
	}
}

// Handle applies one update and republishes. Updates whose value does not
// fit the field are dropped.
func (a *Aggregator) Handle(update models.FieldUpdate) {
	log := a.log.WithField("field", update.Field)
	if err := a.state.Apply(update); err != nil {
		log.WithError(err).Warn("dropping update")
		return
	}
	log.Debugf("updated to %v", update.Value)
	logEvent(a.events, EventFieldUpdated, map[string]any{
		"field": string(update.Field),
		"value": update.Value,
	})

	if err := a.publisher.Publish(a.state); err != nil {
		log.WithError(err).Warn("publishing presence failed")
	}
}

// State returns a copy of the current combined state.
func (a *Aggregator) State() models.PresenceState {
	return a.state.Clone()
}
