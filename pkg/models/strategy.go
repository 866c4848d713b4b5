package models

import "time"

// StrategyKind names how a field's value is obtained over time.
type StrategyKind string

const (
	StrategyStatic StrategyKind = "static"
	StrategyPoll   StrategyKind = "poll"
	StrategyListen StrategyKind = "listen"
)

// Sequence is a single-pass lazy stream of field values. Next blocks until a
// value is available; ok is false once the stream has finished.
type Sequence interface {
	Next() (value FieldValue, ok bool, err error)
}

// Strategy is the classified update strategy for one field. Only the members
// matching Kind are set. Fetch and Stream are bound to the script environment
// that produced them and must only be used from the goroutine owning it.
type Strategy struct {
	Kind     StrategyKind
	Value    FieldValue
	Interval time.Duration
	Fetch    func() (FieldValue, error)
	Stream   Sequence
}

// FieldStatus describes how a field was resolved at startup.
type FieldStatus struct {
	Field    FieldTag     `yaml:"field" json:"field"`
	Kind     StrategyKind `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Interval float64      `yaml:"interval_seconds,omitempty" json:"interval_seconds,omitempty"`
	Value    FieldValue   `yaml:"value,omitempty" json:"value,omitempty"`
	Error    string       `yaml:"error,omitempty" json:"error,omitempty"`
}
