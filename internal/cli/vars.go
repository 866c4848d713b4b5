package cli

import (
	"context"
	"io"

	"github.com/valter-silva-au/disco/internal/core"
	"github.com/valter-silva-au/disco/pkg/models"
)

// Engine runs the presence engine for the commands in this package. It is
// set during app initialization in app.go.
var Engine Runtime

// Runtime loads the configuration script and drives the presence engine.
type Runtime interface {
	// Run resolves the script's fields and publishes presence until every
	// watcher has finished or ctx is done. A missing config file is reported
	// and treated as success.
	Run(ctx context.Context, settings *models.Settings, opts RunOptions) error

	// Check loads the script once and reports how every field resolves,
	// without starting any watcher or contacting the presence client.
	Check(ctx context.Context, settings *models.Settings) (*CheckReport, error)
}

// RunOptions adjusts a single Run for the command that started it.
type RunOptions struct {
	// Client replaces the Discord or dry-run client.
	Client core.PresenceClient

	// Wrap, if set, decorates the client before the session starts.
	Wrap func(core.PresenceClient) core.PresenceClient

	// HoldOpen keeps the last presence until ctx is done even when the
	// client would not otherwise hold it.
	HoldOpen bool

	// LogOutput receives the engine log. Nil means standard error.
	LogOutput io.Writer
}

// CheckReport describes how a configuration script resolves.
type CheckReport struct {
	Config             string               `yaml:"config"`
	ApplicationID      string               `yaml:"application_id,omitempty"`
	ApplicationIDError string               `yaml:"application_id_error,omitempty"`
	Fields             []models.FieldStatus `yaml:"fields"`
}
