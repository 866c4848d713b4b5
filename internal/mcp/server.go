// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the live presence of a running engine as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/disco/internal/observability"
	"github.com/valter-silva-au/disco/pkg/models"
)

// PresenceSource provides the current presence snapshot.
type PresenceSource interface {
	Snapshot() models.PresenceSnapshot
}

// EventReader reads recorded engine events.
type EventReader interface {
	Read(filter observability.EventFilter) ([]observability.Event, error)
}

// Server exposes presence state as MCP tools.
type Server struct {
	server   *gomcp.Server
	presence PresenceSource
	events   EventReader
}

// NewServer creates a new MCP server. events may be nil when no event log is
// configured.
func NewServer(presence PresenceSource, events EventReader, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		presence: presence,
		events:   events,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "disco", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getPresenceInput struct{}

type buttonOutput struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type presenceOutput struct {
	Active     bool           `json:"active"`
	State      string         `json:"state,omitempty"`
	Details    string         `json:"details,omitempty"`
	Start      *int64         `json:"start,omitempty"`
	End        *int64         `json:"end,omitempty"`
	LargeImage string         `json:"large_image,omitempty"`
	LargeText  string         `json:"large_text,omitempty"`
	SmallImage string         `json:"small_image,omitempty"`
	SmallText  string         `json:"small_text,omitempty"`
	Buttons    []buttonOutput `json:"buttons,omitempty"`
	Updates    int            `json:"updates"`
	UpdatedAt  string         `json:"updated_at,omitempty"`
}

type listFieldsInput struct{}

type fieldOutput struct {
	Field           string  `json:"field"`
	Strategy        string  `json:"strategy,omitempty"`
	IntervalSeconds float64 `json:"interval_seconds,omitempty"`
	Value           string  `json:"value,omitempty"`
	Error           string  `json:"error,omitempty"`
}

type listFieldsOutput struct {
	Fields []fieldOutput `json:"fields"`
	Count  int           `json:"count"`
}

type getEventsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window to return (e.g. 30m, 24h, 7d). Defaults to 24h."`
	Type  string `json:"type,omitempty" jsonschema:"only return events of this type (e.g. field.updated, publish.failed)"`
}

type eventOutput struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type getEventsOutput struct {
	Events []eventOutput `json:"events"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_presence",
		Description: "Get the presence currently shown in Discord: active flag, state and details text, timestamps, images and buttons.",
	}, s.handleGetPresence)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_fields",
		Description: "List every presence field with how it is updated (static, poll or listen), its poll interval, and any resolution error.",
	}, s.handleListFields)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_events",
		Description: "Get recorded engine events (field updates, publishes, failures, stopped watchers) from the event log.",
	}, s.handleGetEvents)
}

// --- Tool handlers ---

func (s *Server) handleGetPresence(_ context.Context, _ *gomcp.CallToolRequest, _ getPresenceInput) (*gomcp.CallToolResult, presenceOutput, error) {
	snap := s.presence.Snapshot()

	out := presenceOutput{Active: snap.Active, Updates: snap.Updates}
	if snap.UpdatedAt != nil {
		out.UpdatedAt = snap.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if a := snap.Activity; a != nil {
		out.State = a.State
		out.Details = a.Details
		if a.Timestamps != nil {
			out.Start = a.Timestamps.Start
			out.End = a.Timestamps.End
		}
		if a.Assets != nil {
			out.LargeImage = a.Assets.LargeImage
			out.LargeText = a.Assets.LargeText
			out.SmallImage = a.Assets.SmallImage
			out.SmallText = a.Assets.SmallText
		}
		for _, b := range a.Buttons {
			out.Buttons = append(out.Buttons, buttonOutput{Label: b.Label, URL: b.URL})
		}
	}
	return nil, out, nil
}

func (s *Server) handleListFields(_ context.Context, _ *gomcp.CallToolRequest, _ listFieldsInput) (*gomcp.CallToolResult, listFieldsOutput, error) {
	fields := s.presence.Snapshot().Fields

	out := listFieldsOutput{
		Fields: make([]fieldOutput, len(fields)),
		Count:  len(fields),
	}
	for i, f := range fields {
		out.Fields[i] = fieldOutput{
			Field:           string(f.Field),
			Strategy:        string(f.Kind),
			IntervalSeconds: f.Interval,
			Error:           f.Error,
		}
		if f.Value != nil {
			out.Fields[i].Value = fmt.Sprint(f.Value)
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetEvents(_ context.Context, _ *gomcp.CallToolRequest, input getEventsInput) (*gomcp.CallToolResult, getEventsOutput, error) {
	if s.events == nil {
		return errorResult("event log not available (start with --event-log)"), getEventsOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "24h"
	}
	since, err := observability.ParseSince(sinceStr, time.Now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), getEventsOutput{}, nil
	}

	events, err := s.events.Read(observability.EventFilter{Since: &since, Type: input.Type})
	if err != nil {
		return errorResult(fmt.Sprintf("reading events: %s", err)), getEventsOutput{}, nil
	}

	out := getEventsOutput{
		Events: make([]eventOutput, len(events)),
		Count:  len(events),
	}
	for i, e := range events {
		out.Events[i] = eventOutput{
			Time:    e.Time.Format(time.RFC3339),
			Level:   e.Level,
			Type:    e.Type,
			Message: e.Message,
			Data:    e.Data,
		}
	}
	return nil, out, nil
}

// --- Helpers ---

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
