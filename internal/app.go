// Package internal provides the App that wires the script environment, the
// presence engine and the presence clients together and initializes the CLI
// layer.
package internal

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/valter-silva-au/disco/internal/cli"
	"github.com/valter-silva-au/disco/internal/core"
	"github.com/valter-silva-au/disco/internal/integration"
	"github.com/valter-silva-au/disco/internal/observability"
	"github.com/valter-silva-au/disco/internal/script"
	"github.com/valter-silva-au/disco/pkg/models"
)

// DiscordConn is a connectable presence client.
type DiscordConn interface {
	core.PresenceClient
	core.Connector
	Close() error
}

// App holds the service dependencies of disco and implements cli.Runtime.
type App struct {
	Version string

	// Stderr receives the engine log unless a command redirects it.
	Stderr io.Writer

	// NewDiscord creates the presence client for an application id.
	NewDiscord func(appID string) DiscordConn

	// ShutdownGrace bounds how long watchers get to exit. Zero means
	// core.DefaultShutdownGrace.
	ShutdownGrace time.Duration
}

// NewApp creates the App and registers it with the CLI layer.
func NewApp(version string) *App {
	app := &App{
		Version: version,
		Stderr:  os.Stderr,
		NewDiscord: func(appID string) DiscordConn {
			return integration.NewDiscordClient(appID)
		},
	}
	cli.Engine = app
	return app
}

// Run implements cli.Runtime.
func (a *App) Run(ctx context.Context, settings *models.Settings, opts cli.RunOptions) error {
	out := opts.LogOutput
	if out == nil {
		out = a.Stderr
	}
	log := observability.NewLogger(settings.Quiet, out)

	source, err := ReadScript(settings.ConfigPath)
	if errors.Is(err, models.ErrConfigNotFound) {
		log.Warnf("config file %s does not exist, nothing to do", settings.ConfigPath)
		return nil
	}
	if err != nil {
		return err
	}
	log.Debugf("using config %s", settings.ConfigPath)

	initial, err := a.loadEnvironment(ctx, source, settings)
	if err != nil {
		return err
	}
	defer func() { _ = initial.Close() }()

	events, closeEvents, err := openEventLog(settings.EventLogPath)
	if err != nil {
		return err
	}
	defer closeEvents()

	client, holdOpen, release, err := a.presenceClient(ctx, initial, settings, opts, log)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	defer release()

	if opts.Wrap != nil {
		client = opts.Wrap(client)
	}

	session := core.NewSession(core.SessionConfig{
		Client:        client,
		NewSource:     a.sourceFactory(source, settings),
		Log:           log,
		Events:        events,
		ShutdownGrace: a.ShutdownGrace,
		HoldOpen:      holdOpen || opts.HoldOpen,
		OnResolved: func(statuses []models.FieldStatus) {
			if r, ok := client.(fieldRecorder); ok {
				r.SetFields(statuses)
			}
		},
	})
	return session.Run(ctx, initial)
}

// Check implements cli.Runtime.
func (a *App) Check(ctx context.Context, settings *models.Settings) (*cli.CheckReport, error) {
	source, err := ReadScript(settings.ConfigPath)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	env, err := a.loadEnvironment(ctx, source, settings)
	if err != nil {
		return nil, err
	}
	defer func() { _ = env.Close() }()

	report := &cli.CheckReport{
		Config: settings.ConfigPath,
		Fields: core.Describe(env),
	}
	if id, err := resolveApplicationID(env, settings); err != nil {
		report.ApplicationIDError = err.Error()
	} else {
		report.ApplicationID = id
	}
	return report, nil
}

// ReadScript returns the contents of the configuration script at path. A
// missing file wraps models.ErrConfigNotFound; unreadable or non-text files
// are reported as *models.ConfigError too.
func ReadScript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &models.ConfigError{Path: path, Err: models.ErrConfigNotFound}
		}
		return "", &models.ConfigError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return "", &models.ConfigError{Path: path, Err: errors.New("not a text file")}
	}
	return string(data), nil
}

func (a *App) loadEnvironment(ctx context.Context, source string, settings *models.Settings) (*script.Environment, error) {
	return script.NewEnvironment(ctx, source, script.Options{
		MaxIndirection: settings.MaxIndirection,
		ChunkName:      filepath.Base(settings.ConfigPath),
		Version:        a.Version,
	})
}

// sourceFactory loads a private copy of the script for each watcher.
func (a *App) sourceFactory(source string, settings *models.Settings) core.SourceFactory {
	return func(ctx context.Context) (core.FieldSource, error) {
		env, err := a.loadEnvironment(ctx, source, settings)
		if err != nil {
			return nil, err
		}
		return env, nil
	}
}

// presenceClient picks the client for this run. release clears and closes a
// connected client once the session is over.
func (a *App) presenceClient(ctx context.Context, env *script.Environment, settings *models.Settings, opts cli.RunOptions, log *logrus.Logger) (client core.PresenceClient, holdOpen bool, release func(), err error) {
	noop := func() {}
	if opts.Client != nil {
		return opts.Client, false, noop, nil
	}

	appID, err := resolveApplicationID(env, settings)
	if err != nil {
		return nil, false, nil, err
	}

	if settings.DryRun {
		log.Infof("dry run for application %s, not connecting", appID)
		return integration.NewDryRunClient(log), false, noop, nil
	}

	conn := a.NewDiscord(appID)
	retry := time.Duration(settings.RetryAfter) * time.Second
	if err := core.ConnectWithRetry(ctx, conn, retry, log); err != nil {
		_ = conn.Close()
		return nil, false, nil, err
	}
	log.Infof("connected as application %s", appID)

	release = func() {
		if err := conn.ClearActivity(); err != nil {
			log.WithError(err).Debug("clearing presence on shutdown failed")
		}
		if err := conn.Close(); err != nil {
			log.WithError(err).Debug("closing presence client failed")
		}
	}
	return conn, true, release, nil
}

func resolveApplicationID(env *script.Environment, settings *models.Settings) (string, error) {
	fromScript, err := env.ApplicationID()
	if err != nil {
		return "", err
	}
	return core.ResolveApplicationID(settings.ApplicationID, fromScript)
}

// fieldRecorder is implemented by clients that show field statuses.
type fieldRecorder interface {
	SetFields([]models.FieldStatus)
}

// openEventLog opens the JSONL event log at path, or returns a nil logger
// when path is empty.
func openEventLog(path string) (core.EventLogger, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	log, err := observability.NewJSONLEventLog(path)
	if err != nil {
		return nil, nil, err
	}
	return &eventLogAdapter{log: log}, func() { _ = log.Close() }, nil
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.NewEvent(eventType, data))
}
