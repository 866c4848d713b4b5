package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/valter-silva-au/disco/pkg/models"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantInfo  bool
		wantWarn  bool
	}{
		{"normal", models.VerbosityNormal, true, true},
		{"warnings only", models.VerbosityWarnings, false, true},
		{"silent", models.VerbositySilent, false, false},
		{"beyond silent", 5, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.verbosity, &buf)

			logger.Info("info line")
			if got := strings.Contains(buf.String(), "info line"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			logger.Warn("warn line")
			if got := strings.Contains(buf.String(), "warn line"); got != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(models.VerbosityNormal, &buf)
	logger.WithField("field", "State").Debug("updated")

	out := buf.String()
	if !strings.Contains(out, "field=State") {
		t.Errorf("output %q does not carry the field", out)
	}
	if !strings.Contains(out, "level=debug") {
		t.Errorf("output %q does not carry the level", out)
	}
	if logger.Level != logrus.DebugLevel {
		t.Errorf("Level = %v, want debug", logger.Level)
	}
}
