package models

// Activity is the payload published to the presence-display client. Field
// names and JSON tags follow the Discord SET_ACTIVITY argument shape.
type Activity struct {
	State      string              `json:"state,omitempty" yaml:"state,omitempty"`
	Details    string              `json:"details,omitempty" yaml:"details,omitempty"`
	Timestamps *ActivityTimestamps `json:"timestamps,omitempty" yaml:"timestamps,omitempty"`
	Assets     *ActivityAssets     `json:"assets,omitempty" yaml:"assets,omitempty"`
	Buttons    []ActivityButton    `json:"buttons,omitempty" yaml:"buttons,omitempty"`
}

// ActivityTimestamps holds the optional start and end of the displayed
// elapsed/remaining timer.
type ActivityTimestamps struct {
	Start *int64 `json:"start,omitempty" yaml:"start,omitempty"`
	End   *int64 `json:"end,omitempty" yaml:"end,omitempty"`
}

// ActivityAssets holds image asset keys and their hover captions.
type ActivityAssets struct {
	LargeImage string `json:"large_image,omitempty" yaml:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty" yaml:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty" yaml:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty" yaml:"small_text,omitempty"`
}

// ActivityButton is one clickable link shown under the presence.
type ActivityButton struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// IsZero reports whether the activity carries no displayable content.
func (a Activity) IsZero() bool {
	return a.State == "" && a.Details == "" && a.Timestamps == nil && a.Assets == nil && len(a.Buttons) == 0
}
