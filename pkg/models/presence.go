package models

import "fmt"

// PresenceState is the combined view of every field received so far. It is
// owned by the aggregator loop and never shared between goroutines; use
// Clone to hand a copy to anyone else.
type PresenceState struct {
	Active bool
	values map[FieldTag]FieldValue
}

// NewPresenceState returns an empty, inactive state.
func NewPresenceState() PresenceState {
	return PresenceState{values: make(map[FieldTag]FieldValue)}
}

// Apply stores the update, replacing any previous value for the same field.
// An update to Active only flips the flag; stored values are kept.
func (s *PresenceState) Apply(u FieldUpdate) error {
	if !u.Field.Accepts(u.Value) {
		return fmt.Errorf("field %s cannot hold a %T value", u.Field, u.Value)
	}
	if u.Field == FieldActive {
		s.Active = bool(u.Value.(Flag))
		return nil
	}
	if s.values == nil {
		s.values = make(map[FieldTag]FieldValue)
	}
	s.values[u.Field] = u.Value
	return nil
}

// Value returns the stored value for field, if any.
func (s PresenceState) Value(field FieldTag) (FieldValue, bool) {
	v, ok := s.values[field]
	return v, ok
}

// Text returns the stored text for State or Details.
func (s PresenceState) Text(field FieldTag) (string, bool) {
	v, ok := s.values[field].(Text)
	return string(v), ok
}

// TimeRange returns the stored Timestamp value.
func (s PresenceState) TimeRange() (TimeRange, bool) {
	v, ok := s.values[FieldTimestamp].(TimeRange)
	return v, ok
}

// Button returns the stored value for Button1 or Button2.
func (s PresenceState) Button(field FieldTag) (LinkButton, bool) {
	v, ok := s.values[field].(LinkButton)
	return v, ok
}

// Image returns the stored value for LargeImage or SmallImage.
func (s PresenceState) Image(field FieldTag) (ImageRef, bool) {
	v, ok := s.values[field].(ImageRef)
	return v, ok
}

// Len returns how many non-Active fields hold a value.
func (s PresenceState) Len() int {
	return len(s.values)
}

// Clone returns a copy that shares no map with s.
func (s PresenceState) Clone() PresenceState {
	c := PresenceState{Active: s.Active, values: make(map[FieldTag]FieldValue, len(s.values))}
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}
