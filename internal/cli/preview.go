package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/disco/pkg/models"
)

type previewModel struct {
	width  int
	height int

	// Data.
	activity *models.Activity
	fields   []models.FieldStatus
	updates  int
	now      time.Time

	// State.
	done bool
	err  error
}

// presenceMsg carries a published activity, or a clear when activity is nil.
type presenceMsg struct {
	activity *models.Activity
}

// fieldsMsg carries the startup resolution of every field.
type fieldsMsg struct {
	fields []models.FieldStatus
}

// engineDoneMsg reports that the engine returned.
type engineDoneMsg struct {
	err error
}

type tickMsg time.Time

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	detailsStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	buttonStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("240")).
			Padding(0, 1)

	kindStatic = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	kindPoll   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	kindListen = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	kindError  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newPreviewModel() previewModel {
	return previewModel{now: time.Now()}
}

func (m previewModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()

	case presenceMsg:
		m.activity = msg.activity
		m.updates++
		return m, nil

	case fieldsMsg:
		m.fields = msg.fields
		return m, nil

	case engineDoneMsg:
		m.done = true
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m previewModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" disco preview ")
	help := helpStyle.Render("q: quit")

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	card := m.renderCard()
	fields := m.renderFields()

	availableWidth := m.width - 2

	var body string
	if availableWidth > 100 {
		colWidth := availableWidth / 2
		card = cardStyle.Width(colWidth - 4).Render(card)
		fields = panelStyle.Width(colWidth - 4).Render(fields)
		body = lipgloss.JoinHorizontal(lipgloss.Top, card, fields)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		card = cardStyle.Width(panelWidth).Render(card)
		fields = panelStyle.Width(panelWidth).Render(fields)
		body = lipgloss.JoinVertical(lipgloss.Left, card, fields)
	}

	status := fmt.Sprintf("  %d update(s)", m.updates)
	if m.done {
		status += ", engine stopped"
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s\n%s", title, body, mutedStyle.Render(status), help)
}

func (m previewModel) renderCard() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Presence"))
	b.WriteString("\n")

	a := m.activity
	if a == nil {
		b.WriteString(mutedStyle.Render("  Not shown."))
		return b.String()
	}

	if a.Assets != nil && a.Assets.LargeImage != "" {
		b.WriteString(fmt.Sprintf("  [%s]", a.Assets.LargeImage))
		if a.Assets.LargeText != "" {
			b.WriteString(mutedStyle.Render(" " + a.Assets.LargeText))
		}
		b.WriteString("\n")
	}
	if a.Details != "" {
		b.WriteString("  " + detailsStyle.Render(a.Details) + "\n")
	}
	if a.State != "" {
		b.WriteString("  " + a.State + "\n")
	}
	if line := timerLine(a.Timestamps, m.now); line != "" {
		b.WriteString("  " + mutedStyle.Render(line) + "\n")
	}
	if a.Assets != nil && a.Assets.SmallImage != "" {
		b.WriteString(fmt.Sprintf("  (%s)", a.Assets.SmallImage))
		if a.Assets.SmallText != "" {
			b.WriteString(mutedStyle.Render(" " + a.Assets.SmallText))
		}
		b.WriteString("\n")
	}
	for _, btn := range a.Buttons {
		b.WriteString("\n  " + buttonStyle.Render(btn.Label) + " " + mutedStyle.Render(btn.URL))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m previewModel) renderFields() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Fields"))
	b.WriteString("\n")

	if len(m.fields) == 0 {
		b.WriteString("  Resolving...")
		return b.String()
	}

	for _, f := range m.fields {
		b.WriteString(fmt.Sprintf("  %-11s %s\n", f.Field, describeStatus(f)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func describeStatus(f models.FieldStatus) string {
	switch {
	case f.Error != "":
		return kindError.Render(f.Error)
	case f.Kind == models.StrategyStatic:
		return kindStatic.Render(fmt.Sprintf("static %v", f.Value))
	case f.Kind == models.StrategyPoll:
		return kindPoll.Render(fmt.Sprintf("poll every %gs", f.Interval))
	case f.Kind == models.StrategyListen:
		return kindListen.Render("listen")
	}
	return ""
}

// timerLine renders the elapsed or remaining time the client would show.
func timerLine(ts *models.ActivityTimestamps, now time.Time) string {
	if ts == nil {
		return ""
	}
	if ts.End != nil {
		left := time.Unix(*ts.End, 0).Sub(now)
		if left < 0 {
			left = 0
		}
		return formatClock(left) + " left"
	}
	if ts.Start != nil {
		elapsed := now.Sub(time.Unix(*ts.Start, 0))
		if elapsed < 0 {
			elapsed = 0
		}
		return formatClock(elapsed) + " elapsed"
	}
	return ""
}

func formatClock(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// previewClient forwards presence changes to the running program.
type previewClient struct {
	send func(tea.Msg)
}

func (c previewClient) SetActivity(activity models.Activity) error {
	c.send(presenceMsg{activity: &activity})
	return nil
}

func (c previewClient) ClearActivity() error {
	c.send(presenceMsg{})
	return nil
}

func (c previewClient) SetFields(fields []models.FieldStatus) {
	c.send(fieldsMsg{fields: append([]models.FieldStatus(nil), fields...)})
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the presence in the terminal instead of publishing it",
	Long: `Run the config script and render the resulting presence as a live card
in the terminal, next to how each field was resolved. Nothing is sent to
Discord and no application id is needed.

Quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if Engine == nil {
			return fmt.Errorf("engine not initialized")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		p := tea.NewProgram(newPreviewModel(), tea.WithAltScreen(), tea.WithContext(ctx))
		opts := RunOptions{
			Client:    previewClient{send: p.Send},
			HoldOpen:  true,
			LogOutput: io.Discard,
		}

		engineDone := make(chan error, 1)
		go func() {
			err := Engine.Run(ctx, settings, opts)
			p.Send(engineDoneMsg{err: err})
			engineDone <- err
		}()

		_, runErr := p.Run()
		interrupted := ctx.Err() != nil
		cancel()
		engineErr := <-engineDone

		if runErr != nil && !interrupted {
			return runErr
		}
		return engineErr
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
