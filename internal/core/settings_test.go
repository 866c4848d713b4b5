package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/disco/pkg/models"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(NewSettingsViper())
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.ConfigPath != DefaultConfigPath() {
		t.Errorf("ConfigPath = %q, want %q", s.ConfigPath, DefaultConfigPath())
	}
	if s.RetryAfter != 0 {
		t.Errorf("RetryAfter = %d, want 0", s.RetryAfter)
	}
	if s.MaxIndirection != 8 {
		t.Errorf("MaxIndirection = %d, want 8", s.MaxIndirection)
	}
	if s.Quiet != models.VerbosityNormal {
		t.Errorf("Quiet = %d, want %d", s.Quiet, models.VerbosityNormal)
	}
}

func TestLoadSettings_Environment(t *testing.T) {
	t.Setenv("DISCO_CONFIG", "/tmp/custom.lua")
	t.Setenv("DISCO_APPLICATION_ID", "123456789012345678")
	t.Setenv("DISCO_RETRY_AFTER", "15")
	t.Setenv("DISCO_QUIET", "1")
	t.Setenv("DISCO_DRY_RUN", "true")

	s, err := LoadSettings(NewSettingsViper())
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.ConfigPath != "/tmp/custom.lua" {
		t.Errorf("ConfigPath = %q, want %q", s.ConfigPath, "/tmp/custom.lua")
	}
	if s.ApplicationID != "123456789012345678" {
		t.Errorf("ApplicationID = %q", s.ApplicationID)
	}
	if s.RetryAfter != 15 {
		t.Errorf("RetryAfter = %d, want 15", s.RetryAfter)
	}
	if s.Quiet != 1 {
		t.Errorf("Quiet = %d, want 1", s.Quiet)
	}
	if !s.DryRun {
		t.Error("DryRun = false, want true")
	}
}

func TestLoadSettings_OverrideBeatsEnvironment(t *testing.T) {
	t.Setenv("DISCO_RETRY_AFTER", "15")
	v := NewSettingsViper()
	v.Set("retry-after", 3)

	s, err := LoadSettings(v)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.RetryAfter != 3 {
		t.Errorf("RetryAfter = %d, want 3", s.RetryAfter)
	}
}

func TestValidateSettings(t *testing.T) {
	valid := func() *models.Settings {
		return &models.Settings{ConfigPath: "disco.lua", MaxIndirection: 8}
	}

	tests := []struct {
		name    string
		mutate  func(s *models.Settings)
		wantErr string
	}{
		{"valid", func(s *models.Settings) {}, ""},
		{"negative retry", func(s *models.Settings) { s.RetryAfter = -1 }, "retry-after"},
		{"quiet too high", func(s *models.Settings) { s.Quiet = 3 }, "quiet"},
		{"indirection zero", func(s *models.Settings) { s.MaxIndirection = 0 }, "max-indirection"},
		{"indirection too high", func(s *models.Settings) { s.MaxIndirection = 65 }, "max-indirection"},
		{"short application id", func(s *models.Settings) { s.ApplicationID = "1234" }, "application-id"},
		{"non-numeric application id", func(s *models.Settings) { s.ApplicationID = "abcdefghijklmnopq" }, "application-id"},
		{"empty config", func(s *models.Settings) { s.ConfigPath = "" }, "config path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			err := ValidateSettings(s)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateSettings() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateSettings() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSettings_ReportsAllProblems(t *testing.T) {
	err := ValidateSettings(&models.Settings{ConfigPath: "x", RetryAfter: -1, Quiet: 9, MaxIndirection: 0})
	if err == nil {
		t.Fatal("ValidateSettings() error = nil")
	}
	for _, want := range []string{"retry-after", "quiet", "max-indirection"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestResolveApplicationID(t *testing.T) {
	tests := []struct {
		name       string
		override   string
		fromScript string
		want       string
		wantErr    error
	}{
		{"override wins", "111111111111111111", "222222222222222222", "111111111111111111", nil},
		{"script fallback", "", "222222222222222222", "222222222222222222", nil},
		{"missing", "", "", "", models.ErrMissingApplicationID},
		{"whitespace only", "  ", "", "", models.ErrMissingApplicationID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveApplicationID(tt.override, tt.fromScript)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveApplicationID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveApplicationID_Invalid(t *testing.T) {
	if _, err := ResolveApplicationID("", "not-an-id"); err == nil {
		t.Error("ResolveApplicationID() error = nil for a malformed id")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("LoadDotEnv(missing) error = %v, want nil", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DISCO_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatalf("writing .env: %v", err)
	}
	t.Setenv("DISCO_TEST_DOTENV", "")
	os.Unsetenv("DISCO_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("DISCO_TEST_DOTENV"); got != "from-file" {
		t.Errorf("DISCO_TEST_DOTENV = %q, want %q", got, "from-file")
	}
}
