package models

import "time"

// PresenceSnapshot is a read-only view of what was last sent to the
// presence-display client.
type PresenceSnapshot struct {
	Active    bool          `json:"active" yaml:"active"`
	Activity  *Activity     `json:"activity,omitempty" yaml:"activity,omitempty"`
	Updates   int           `json:"updates" yaml:"updates"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Fields    []FieldStatus `json:"fields,omitempty" yaml:"fields,omitempty"`
}
