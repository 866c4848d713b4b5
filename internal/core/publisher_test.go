package core

import (
	"errors"
	"testing"

	"github.com/valter-silva-au/disco/pkg/models"
)

func int64p(v int64) *int64 { return &v }
func strp(v string) *string { return &v }

func stateWith(t *testing.T, updates ...models.FieldUpdate) models.PresenceState {
	t.Helper()
	s := models.NewPresenceState()
	for _, u := range updates {
		if err := s.Apply(u); err != nil {
			t.Fatalf("Apply(%v) error = %v", u, err)
		}
	}
	return s
}

func TestBuildActivity_Scenario(t *testing.T) {
	state := stateWith(t,
		models.FieldUpdate{Field: models.FieldState, Value: models.Text("Coding")},
		models.FieldUpdate{Field: models.FieldActive, Value: models.Flag(true)},
		models.FieldUpdate{Field: models.FieldTimestamp, Value: models.TimeRange{Start: int64p(1700000000)}},
	)

	got := BuildActivity(state)
	if got.State != "Coding" {
		t.Errorf("State = %q, want %q", got.State, "Coding")
	}
	if got.Details != "" {
		t.Errorf("Details = %q, want empty", got.Details)
	}
	if got.Timestamps == nil || got.Timestamps.Start == nil || *got.Timestamps.Start != 1700000000 {
		t.Fatalf("Timestamps = %+v, want start 1700000000", got.Timestamps)
	}
	if got.Timestamps.End != nil {
		t.Errorf("Timestamps.End = %d, want nil", *got.Timestamps.End)
	}
	if len(got.Buttons) != 0 {
		t.Errorf("Buttons = %v, want none", got.Buttons)
	}
	if got.Assets != nil {
		t.Errorf("Assets = %+v, want nil", got.Assets)
	}
}

func TestBuildActivity_ButtonsAndImages(t *testing.T) {
	state := stateWith(t,
		models.FieldUpdate{Field: models.FieldSecondButton, Value: models.LinkButton{Label: "Two", URL: "https://two.example"}},
		models.FieldUpdate{Field: models.FieldFirstButton, Value: models.LinkButton{Label: "One", URL: "https://one.example"}},
		models.FieldUpdate{Field: models.FieldLargeImage, Value: models.ImageRef{Asset: "large", Caption: strp("Big")}},
		models.FieldUpdate{Field: models.FieldSmallImage, Value: models.ImageRef{Asset: "small"}},
	)

	got := BuildActivity(state)
	if len(got.Buttons) != 2 {
		t.Fatalf("len(Buttons) = %d, want 2", len(got.Buttons))
	}
	if got.Buttons[0].Label != "One" || got.Buttons[1].Label != "Two" {
		t.Errorf("Buttons = %v, want One then Two", got.Buttons)
	}
	want := models.ActivityAssets{LargeImage: "large", LargeText: "Big", SmallImage: "small"}
	if got.Assets == nil || *got.Assets != want {
		t.Errorf("Assets = %+v, want %+v", got.Assets, want)
	}
}

func TestBuildActivity_OnlySecondButton(t *testing.T) {
	state := stateWith(t,
		models.FieldUpdate{Field: models.FieldSecondButton, Value: models.LinkButton{Label: "Two", URL: "u"}},
	)
	got := BuildActivity(state)
	if len(got.Buttons) != 1 || got.Buttons[0].Label != "Two" {
		t.Errorf("Buttons = %v, want only Two", got.Buttons)
	}
}

func TestBuildActivity_Empty(t *testing.T) {
	if got := BuildActivity(models.NewPresenceState()); !got.IsZero() {
		t.Errorf("BuildActivity(empty) = %+v, want zero", got)
	}
}

func TestPresencePublisher_InactiveClears(t *testing.T) {
	client := &fakeClient{}
	events := &fakeEventLogger{}
	p := NewPresencePublisher(client, quietLogger(), events)

	state := stateWith(t, models.FieldUpdate{Field: models.FieldState, Value: models.Text("hidden")})
	if err := p.Publish(state); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if calls := client.callLog(); len(calls) != 1 || calls[0] != "clear" {
		t.Errorf("calls = %v, want [clear]", calls)
	}
	if n := events.count(EventPresenceCleared); n != 1 {
		t.Errorf("%s events = %d, want 1", EventPresenceCleared, n)
	}
}

func TestPresencePublisher_FailureReconnects(t *testing.T) {
	client := &fakeClient{failWith: errBoom}
	p := NewPresencePublisher(client, quietLogger(), nil)

	state := stateWith(t, models.FieldUpdate{Field: models.FieldActive, Value: models.Flag(true)})
	err := p.Publish(state)

	var pubErr *models.PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("Publish() error = %v, want *PublishError", err)
	}
	if pubErr.Op != "publish" {
		t.Errorf("Op = %q, want %q", pubErr.Op, "publish")
	}
	if !errors.Is(err, errBoom) {
		t.Errorf("error does not wrap the client error: %v", err)
	}
	if client.reconnects != 1 {
		t.Errorf("reconnects = %d, want 1", client.reconnects)
	}
}

// clearOnlyClient implements PresenceClient without Reconnect.
type clearOnlyClient struct{ err error }

func (c clearOnlyClient) SetActivity(models.Activity) error { return c.err }
func (c clearOnlyClient) ClearActivity() error              { return c.err }

func TestPresencePublisher_FailureWithoutReconnector(t *testing.T) {
	p := NewPresencePublisher(clearOnlyClient{err: errBoom}, quietLogger(), nil)

	err := p.Publish(models.NewPresenceState())
	var pubErr *models.PublishError
	if !errors.As(err, &pubErr) || pubErr.Op != "clear" {
		t.Errorf("Publish() error = %v, want clear PublishError", err)
	}
}
