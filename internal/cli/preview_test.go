package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/valter-silva-au/disco/pkg/models"
)

func int64p(v int64) *int64 { return &v }

func sizedPreview(t *testing.T) previewModel {
	t.Helper()
	updated, _ := newPreviewModel().Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return updated.(previewModel)
}

func TestPreviewModel_LoadingUntilSized(t *testing.T) {
	m := newPreviewModel()
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() = %q, want Loading...", got)
	}
	if m.Init() == nil {
		t.Error("expected Init to return the tick command")
	}
}

func TestPreviewModel_QuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := newPreviewModel().Update(key)
		if cmd == nil {
			t.Errorf("key %q: expected quit command", key.String())
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("key %q: command did not quit", key.String())
		}
	}
}

func TestPreviewModel_RendersActivity(t *testing.T) {
	m := sizedPreview(t)
	m.now = time.Unix(1000+75, 0)

	caption := "Neovim"
	activity := models.Activity{
		State:      "Editing main.go",
		Details:    "disco",
		Timestamps: &models.ActivityTimestamps{Start: int64p(1000)},
		Assets:     &models.ActivityAssets{LargeImage: "nvim", LargeText: caption},
		Buttons:    []models.ActivityButton{{Label: "Repo", URL: "https://example.com"}},
	}
	updated, _ := m.Update(presenceMsg{activity: &activity})
	m = updated.(previewModel)
	updated, _ = m.Update(fieldsMsg{fields: []models.FieldStatus{
		{Field: models.FieldState, Kind: models.StrategyListen},
		{Field: models.FieldDetails, Kind: models.StrategyPoll, Interval: 2},
		{Field: models.FieldActive, Error: "resolving Active: not defined"},
	}})
	m = updated.(previewModel)

	view := m.View()
	for _, want := range []string{"Editing main.go", "disco", "[nvim]", "Neovim", "01:15 elapsed", "Repo", "listen", "poll every 2s", "not defined", "1 update(s)"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestPreviewModel_ClearAndEngineDone(t *testing.T) {
	m := sizedPreview(t)
	activity := models.Activity{State: "x"}
	updated, _ := m.Update(presenceMsg{activity: &activity})
	updated, _ = updated.Update(presenceMsg{})
	updated, _ = updated.Update(engineDoneMsg{})
	m = updated.(previewModel)

	view := m.View()
	if !strings.Contains(view, "Not shown.") {
		t.Error("cleared presence should render as not shown")
	}
	if !strings.Contains(view, "2 update(s), engine stopped") {
		t.Errorf("status line missing from view:\n%s", view)
	}

	updated, _ = m.Update(engineDoneMsg{err: errors.New("no socket")})
	if view := updated.View(); !strings.Contains(view, "Error: no socket") {
		t.Errorf("engine error missing from view:\n%s", view)
	}
}

func TestTimerLine(t *testing.T) {
	now := time.Unix(10_000, 0)
	tests := []struct {
		name string
		ts   *models.ActivityTimestamps
		want string
	}{
		{"none", nil, ""},
		{"empty", &models.ActivityTimestamps{}, ""},
		{"elapsed", &models.ActivityTimestamps{Start: int64p(10_000 - 3725)}, "1:02:05 elapsed"},
		{"future start", &models.ActivityTimestamps{Start: int64p(20_000)}, "00:00 elapsed"},
		{"remaining", &models.ActivityTimestamps{Start: int64p(0), End: int64p(10_090)}, "01:30 left"},
		{"past end", &models.ActivityTimestamps{End: int64p(5)}, "00:00 left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timerLine(tt.ts, now); got != tt.want {
				t.Errorf("timerLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreviewClient_ForwardsMessages(t *testing.T) {
	var got []tea.Msg
	c := previewClient{send: func(msg tea.Msg) { got = append(got, msg) }}

	if err := c.SetActivity(models.Activity{State: "a"}); err != nil {
		t.Fatalf("SetActivity: %v", err)
	}
	if err := c.ClearActivity(); err != nil {
		t.Fatalf("ClearActivity: %v", err)
	}
	fields := []models.FieldStatus{{Field: models.FieldState}}
	c.SetFields(fields)
	fields[0].Field = models.FieldDetails

	if len(got) != 3 {
		t.Fatalf("sent %d messages, want 3", len(got))
	}
	if msg, ok := got[0].(presenceMsg); !ok || msg.activity == nil || msg.activity.State != "a" {
		t.Errorf("first message = %#v", got[0])
	}
	if msg, ok := got[1].(presenceMsg); !ok || msg.activity != nil {
		t.Errorf("second message = %#v, want clear", got[1])
	}
	if msg, ok := got[2].(fieldsMsg); !ok || msg.fields[0].Field != models.FieldState {
		t.Errorf("third message = %#v, want a copy of the statuses", got[2])
	}
}
