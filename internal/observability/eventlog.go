package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event levels.
const (
	LevelInfo = "INFO"
	LevelWarn = "WARN"
)

// Event represents a single observable event of the engine.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"` // INFO, WARN
	Type    string         `json:"type"`  // e.g. "field.updated", "publish.failed"
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// eventMessages holds the human-readable message and level per event type.
var eventMessages = map[string]struct {
	level   string
	message string
}{
	"field.updated":      {LevelInfo, "field updated"},
	"presence.published": {LevelInfo, "presence published"},
	"presence.cleared":   {LevelInfo, "presence cleared"},
	"publish.failed":     {LevelWarn, "publishing presence failed"},
	"watcher.stopped":    {LevelWarn, "watcher stopped"},
}

// NewEvent builds an event of eventType stamped with the current UTC time.
// Unknown types are recorded at INFO with the type as message.
func NewEvent(eventType string, data map[string]any) Event {
	e := Event{
		Time:    time.Now().UTC(),
		Level:   LevelInfo,
		Type:    eventType,
		Message: eventType,
		Data:    data,
	}
	if m, ok := eventMessages[eventType]; ok {
		e.Level = m.level
		e.Message = m.message
	}
	if eventType == "watcher.stopped" {
		if _, failed := data["error"]; !failed {
			e.Level = LevelInfo
		}
	}
	return e
}

// EventFilter specifies criteria for reading events.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	Type  string
	Level string
}

// EventLog defines the interface for writing and reading events.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog implements EventLog using append-only JSONL files.
type jsonlEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLEventLog opens, creating if needed, the JSONL file at path for
// appending.
func NewJSONLEventLog(path string) (EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{
		path: path,
		file: f,
	}, nil
}

// Write appends a JSON-encoded event followed by a newline to the log file.
func (l *jsonlEventLog) Write(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Read returns the logged events matching filter.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	return ReadEvents(l.path, filter)
}

// ReadEvents scans the JSONL file at path and returns the events matching
// filter, in file order. A missing file yields no events. Malformed lines
// are skipped.
func ReadEvents(path string, filter EventFilter) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}

		if matchesEventFilter(event, filter) {
			events = append(events, event)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}

	return events, nil
}

// Close closes the underlying log file.
func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

// matchesEventFilter checks whether an event satisfies all filter criteria.
func matchesEventFilter(event Event, filter EventFilter) bool {
	if filter.Since != nil && event.Time.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && event.Time.After(*filter.Until) {
		return false
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.Level != "" && event.Level != filter.Level {
		return false
	}
	return true
}

// EventFile reads the JSONL event log at the named path without holding it
// open, so it can follow a log another process or EventLog is writing.
type EventFile string

// Read returns the events in the file matching filter.
func (p EventFile) Read(filter EventFilter) ([]Event, error) {
	return ReadEvents(string(p), filter)
}
