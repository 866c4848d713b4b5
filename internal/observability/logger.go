package observability

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/valter-silva-au/disco/pkg/models"
)

// TimestampFormat is the layout of log line timestamps.
const TimestampFormat = "2006-01-02 15:04:05"

// NewLogger returns a text logger writing to out at the level selected by
// verbosity: everything for VerbosityNormal, warnings and errors for
// VerbosityWarnings, nothing for VerbositySilent.
func NewLogger(verbosity int, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: TimestampFormat,
	})
	logger.SetOutput(out)

	switch {
	case verbosity <= models.VerbosityNormal:
		logger.SetLevel(logrus.DebugLevel)
	case verbosity == models.VerbosityWarnings:
		logger.SetLevel(logrus.WarnLevel)
	default:
		logger.SetOutput(io.Discard)
		logger.SetLevel(logrus.PanicLevel)
	}
	return logger
}
