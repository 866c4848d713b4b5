package core

// EventLogger is the subset of the observability event log that core
// services need. Defining it here avoids importing the observability package.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Event types recorded by the engine.
const (
	EventFieldUpdated      = "field.updated"
	EventPresencePublished = "presence.published"
	EventPresenceCleared   = "presence.cleared"
	EventPublishFailed     = "publish.failed"
	EventWatcherStopped    = "watcher.stopped"
)

// logEvent records an event when events is non-nil. Event log failures never
// affect the engine.
func logEvent(events EventLogger, eventType string, data map[string]any) {
	if events == nil {
		return
	}
	_ = events.LogEvent(eventType, data)
}
