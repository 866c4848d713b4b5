//go:generate mockgen -package $GOPACKAGE -source $GOFILE -destination publisher_mock.go

package core

import (
	"github.com/sirupsen/logrus"
	"github.com/valter-silva-au/disco/pkg/models"
)

// PresenceClient is the external presence-display client.
type PresenceClient interface {
	SetActivity(activity models.Activity) error
	ClearActivity() error
}

// Reconnector is implemented by clients that can re-establish a dropped
// connection.
type Reconnector interface {
	Reconnect() error
}

// PresencePublisher turns the combined state into publish or clear calls.
type PresencePublisher struct {
	client PresenceClient
	log    logrus.FieldLogger
	events EventLogger
}

// NewPresencePublisher creates a publisher for client. events may be nil.
func NewPresencePublisher(client PresenceClient, log logrus.FieldLogger, events EventLogger) *PresencePublisher {
	return &PresencePublisher{client: client, log: log, events: events}
}

// Publish clears the presence when state is inactive and publishes the
// activity built from state otherwise. Every call reaches the client. On
// failure the client is asked to reconnect once and a *models.PublishError
// is returned.
func (p *PresencePublisher) Publish(state models.PresenceState) error {
	if !state.Active {
		if err := p.client.ClearActivity(); err != nil {
			return p.failed("clear", err)
		}
		logEvent(p.events, EventPresenceCleared, nil)
		return nil
	}

	activity := BuildActivity(state)
	if err := p.client.SetActivity(activity); err != nil {
		return p.failed("publish", err)
	}
	logEvent(p.events, EventPresencePublished, map[string]any{
		"state":   activity.State,
		"details": activity.Details,
		"buttons": len(activity.Buttons),
	})
	return nil
}

func (p *PresencePublisher) failed(op string, err error) error {
	logEvent(p.events, EventPublishFailed, map[string]any{"op": op, "error": err.Error()})

	if r, ok := p.client.(Reconnector); ok {
		if rerr := r.Reconnect(); rerr != nil {
			p.log.WithError(rerr).Warn("reconnecting to presence client failed")
		} else {
			p.log.Info("reconnected to presence client")
		}
	}
	return &models.PublishError{Op: op, Err: err}
}

// BuildActivity builds the client payload from whichever fields state holds.
// Missing fields are omitted. Buttons keep Button1 before Button2.
func BuildActivity(state models.PresenceState) models.Activity {
	var activity models.Activity
	activity.State, _ = state.Text(models.FieldState)
	activity.Details, _ = state.Text(models.FieldDetails)

	if r, ok := state.TimeRange(); ok && (r.Start != nil || r.End != nil) {
		activity.Timestamps = &models.ActivityTimestamps{Start: r.Start, End: r.End}
	}

	for _, field := range []models.FieldTag{models.FieldFirstButton, models.FieldSecondButton} {
		if b, ok := state.Button(field); ok {
			activity.Buttons = append(activity.Buttons, models.ActivityButton{Label: b.Label, URL: b.URL})
		}
	}

	large, hasLarge := state.Image(models.FieldLargeImage)
	small, hasSmall := state.Image(models.FieldSmallImage)
	if hasLarge || hasSmall {
		assets := &models.ActivityAssets{}
		if hasLarge {
			assets.LargeImage = large.Asset
			if large.Caption != nil {
				assets.LargeText = *large.Caption
			}
		}
		if hasSmall {
			assets.SmallImage = small.Asset
			if small.Caption != nil {
				assets.SmallText = *small.Caption
			}
		}
		activity.Assets = assets
	}
	return activity
}
