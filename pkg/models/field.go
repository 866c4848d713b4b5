// Package models defines the field, presence, settings and error types
// shared by the engine, the script environment and the commands.
package models

import "fmt"

// FieldTag identifies one displayable piece of presence state. The value is
// the name of the script global the field is read from.
type FieldTag string

const (
	FieldActive       FieldTag = "Active"
	FieldState        FieldTag = "State"
	FieldDetails      FieldTag = "Details"
	FieldTimestamp    FieldTag = "Timestamp"
	FieldFirstButton  FieldTag = "Button1"
	FieldSecondButton FieldTag = "Button2"
	FieldLargeImage   FieldTag = "LargeImage"
	FieldSmallImage   FieldTag = "SmallImage"
)

// AllFields returns every field tag in the order watchers are started.
func AllFields() []FieldTag {
	return []FieldTag{
		FieldState,
		FieldDetails,
		FieldTimestamp,
		FieldFirstButton,
		FieldSecondButton,
		FieldLargeImage,
		FieldSmallImage,
		FieldActive,
	}
}

// Valid reports whether f is one of the known field tags.
func (f FieldTag) Valid() bool {
	switch f {
	case FieldActive, FieldState, FieldDetails, FieldTimestamp,
		FieldFirstButton, FieldSecondButton, FieldLargeImage, FieldSmallImage:
		return true
	}
	return false
}

// Accepts reports whether v has the semantic type carried by field f.
func (f FieldTag) Accepts(v FieldValue) bool {
	switch v.(type) {
	case Flag:
		return f == FieldActive
	case Text:
		return f == FieldState || f == FieldDetails
	case TimeRange:
		return f == FieldTimestamp
	case LinkButton:
		return f == FieldFirstButton || f == FieldSecondButton
	case ImageRef:
		return f == FieldLargeImage || f == FieldSmallImage
	}
	return false
}

// FieldValue is the closed set of values a field can carry: Flag, Text,
// TimeRange, LinkButton or ImageRef.
type FieldValue interface {
	fieldValue()
}

// Flag is the value of the Active field.
type Flag bool

// Text is the value of the State and Details fields.
type Text string

// TimeRange is the value of the Timestamp field. Either bound may be unset.
type TimeRange struct {
	Start *int64 `yaml:"start,omitempty" json:"start,omitempty"`
	End   *int64 `yaml:"end,omitempty" json:"end,omitempty"`
}

// LinkButton is the value of the Button1 and Button2 fields.
type LinkButton struct {
	Label string `yaml:"label" json:"label"`
	URL   string `yaml:"url" json:"url"`
}

// ImageRef is the value of the LargeImage and SmallImage fields.
type ImageRef struct {
	Asset   string  `yaml:"asset" json:"asset"`
	Caption *string `yaml:"caption,omitempty" json:"caption,omitempty"`
}

func (Flag) fieldValue()       {}
func (Text) fieldValue()       {}
func (TimeRange) fieldValue()  {}
func (LinkButton) fieldValue() {}
func (ImageRef) fieldValue()   {}

func (r TimeRange) String() string {
	start, end := "-", "-"
	if r.Start != nil {
		start = fmt.Sprint(*r.Start)
	}
	if r.End != nil {
		end = fmt.Sprint(*r.End)
	}
	return start + ".." + end
}

// FieldUpdate is one new value for one field, travelling from a watcher to
// the aggregator.
type FieldUpdate struct {
	Field FieldTag
	Value FieldValue
}

func (u FieldUpdate) String() string {
	return fmt.Sprintf("%s=%v", u.Field, u.Value)
}
