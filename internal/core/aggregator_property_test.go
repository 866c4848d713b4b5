package core

import (
	"testing"

	"github.com/valter-silva-au/disco/pkg/models"
	"pgregory.net/rapid"
)

// Property: after any sequence of updates, every field holds the value of
// its last update and the published payload reflects it.
func TestProperty_AggregatorLastWriteWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		client := &fakeClient{}
		agg := NewAggregator(NewPresencePublisher(client, quietLogger(), nil), quietLogger(), nil)

		textFields := []models.FieldTag{models.FieldState, models.FieldDetails}
		last := make(map[models.FieldTag]string)
		active := false

		n := rapid.IntRange(1, 40).Draw(t, "n")
		for i := 0; i < n; i++ {
			if rapid.Bool().Draw(t, "toggle") {
				active = rapid.Bool().Draw(t, "active")
				agg.Handle(models.FieldUpdate{Field: models.FieldActive, Value: models.Flag(active)})
				continue
			}
			field := rapid.SampledFrom(textFields).Draw(t, "field")
			value := rapid.StringMatching(`[A-Za-z]{1,8}`).Draw(t, "value")
			last[field] = value
			agg.Handle(models.FieldUpdate{Field: field, Value: models.Text(value)})
		}

		state := agg.State()
		if state.Active != active {
			t.Fatalf("Active = %v, want %v", state.Active, active)
		}
		for field, want := range last {
			if got, _ := state.Text(field); got != want {
				t.Fatalf("%s = %q, want %q", field, got, want)
			}
		}

		calls := client.callLog()
		if len(calls) != n {
			t.Fatalf("publisher called %d times for %d updates", len(calls), n)
		}
		if active {
			got, ok := client.lastActivity()
			if !ok || calls[len(calls)-1] != "set" {
				t.Fatalf("last call = %q, want set", calls[len(calls)-1])
			}
			if got.State != last[models.FieldState] || got.Details != last[models.FieldDetails] {
				t.Fatalf("published %+v, want state=%q details=%q", got, last[models.FieldState], last[models.FieldDetails])
			}
		} else if calls[len(calls)-1] != "clear" {
			t.Fatalf("last call = %q, want clear", calls[len(calls)-1])
		}
	})
}
