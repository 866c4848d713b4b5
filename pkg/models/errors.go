package models

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingApplicationID is returned when neither the command line nor the
	// script provides an application identifier.
	ErrMissingApplicationID = errors.New("no application id available")

	// ErrFieldUndefined is wrapped by FieldResolutionError when the script does
	// not define the field's global at all.
	ErrFieldUndefined = errors.New("not defined")

	// ErrConfigNotFound is wrapped by ConfigError when the configuration file
	// does not exist.
	ErrConfigNotFound = errors.New("config file does not exist")
)

// ConfigError reports that the configuration file could not be used.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ScriptLoadError reports that the configuration script failed to execute.
type ScriptLoadError struct {
	Err error
}

func (e *ScriptLoadError) Error() string {
	return fmt.Sprintf("loading script: %v", e.Err)
}

func (e *ScriptLoadError) Unwrap() error { return e.Err }

// FieldResolutionError reports that a field could not be classified. It only
// affects that field.
type FieldResolutionError struct {
	Field FieldTag
	Err   error
}

func (e *FieldResolutionError) Error() string {
	return fmt.Sprintf("resolving %s: %v", e.Field, e.Err)
}

func (e *FieldResolutionError) Unwrap() error { return e.Err }

// FieldConversionError reports that a script value does not have the shape
// the field expects.
type FieldConversionError struct {
	Field    FieldTag
	Expected string
	Got      string
}

func (e *FieldConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s for %s", e.Got, e.Expected, e.Field)
}

// ConnectionError reports that the presence client could not be reached.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to presence client: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// PublishError reports a failed publish or clear request.
type PublishError struct {
	Op  string
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s presence: %v", e.Op, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
