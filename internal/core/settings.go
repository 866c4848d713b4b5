package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/valter-silva-au/disco/pkg/models"
)

const (
	// EnvPrefix prefixes every environment variable that overrides a flag.
	EnvPrefix = "DISCO"

	// DefaultConfigName is the script file looked up in the user config
	// directory.
	DefaultConfigName = "disco.lua"

	// MaxIndirectionLimit caps --max-indirection.
	MaxIndirectionLimit = 64
)

// snowflakePattern matches a Discord application identifier.
var snowflakePattern = regexp.MustCompile(`^[0-9]{17,19}$`)

// DefaultConfigPath returns <user config dir>/disco.lua, or disco.lua in the
// working directory when the user config directory is unknown.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigName
	}
	return filepath.Join(dir, DefaultConfigName)
}

// NewSettingsViper returns a Viper instance with defaults set and DISCO_*
// environment variables enabled. Flag names map to variables by upper-casing
// them and replacing dashes, so --retry-after reads DISCO_RETRY_AFTER.
func NewSettingsViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("config", DefaultConfigPath())
	v.SetDefault("application-id", "")
	v.SetDefault("retry-after", 0)
	v.SetDefault("quiet", models.VerbosityNormal)
	v.SetDefault("print-config-path", false)
	v.SetDefault("dry-run", false)
	v.SetDefault("event-log", "")
	v.SetDefault("max-indirection", 8)
	return v
}

// LoadDotEnv loads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// LoadSettings decodes v into Settings and validates the result.
func LoadSettings(v *viper.Viper) (*models.Settings, error) {
	var s models.Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	s.ApplicationID = strings.TrimSpace(s.ApplicationID)
	if err := ValidateSettings(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ValidateSettings checks s for out-of-range values and reports all problems
// at once.
func ValidateSettings(s *models.Settings) error {
	if s == nil {
		return fmt.Errorf("settings are nil")
	}

	var errs []string
	if s.ConfigPath == "" {
		errs = append(errs, "config path must not be empty")
	}
	if s.RetryAfter < 0 {
		errs = append(errs, fmt.Sprintf("retry-after must be >= 0, got %d", s.RetryAfter))
	}
	if s.Quiet < models.VerbosityNormal || s.Quiet > models.VerbositySilent {
		errs = append(errs, fmt.Sprintf("quiet must be between %d and %d, got %d",
			models.VerbosityNormal, models.VerbositySilent, s.Quiet))
	}
	if s.MaxIndirection < 1 || s.MaxIndirection > MaxIndirectionLimit {
		errs = append(errs, fmt.Sprintf("max-indirection must be between 1 and %d, got %d",
			MaxIndirectionLimit, s.MaxIndirection))
	}
	if s.ApplicationID != "" && !snowflakePattern.MatchString(s.ApplicationID) {
		errs = append(errs, fmt.Sprintf("application-id %q is not a valid application id", s.ApplicationID))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ResolveApplicationID picks the identifier from the command line or
// environment first, then from the script. It returns
// models.ErrMissingApplicationID when neither provides one.
func ResolveApplicationID(override, fromScript string) (string, error) {
	id := strings.TrimSpace(override)
	if id == "" {
		id = strings.TrimSpace(fromScript)
	}
	if id == "" {
		return "", models.ErrMissingApplicationID
	}
	if !snowflakePattern.MatchString(id) {
		return "", fmt.Errorf("application id %q: must be 17 to 19 digits", id)
	}
	return id, nil
}
