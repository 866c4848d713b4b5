// Package observability provides the process logger and the optional event
// log. Events are appended as JSON Lines (JSONL) so a running engine can be
// inspected afterwards with the history command.
package observability
