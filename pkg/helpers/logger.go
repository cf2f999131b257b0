package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. Development gets debug-level text
// output, everything else JSON at info. A non-empty level overrides the
// env default; an unknown level is reported and ignored.
func NewLogger(appName, env, level string) *logrus.Logger {
	return newLogger(os.Stdout, appName, env, level)
}

func newLogger(out io.Writer, appName, env, level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl := logrus.InfoLevel
	if env == "development" {
		lvl = logrus.DebugLevel
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	var badLevel error
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			badLevel = err
		} else {
			lvl = parsed
		}
	}
	logger.SetLevel(lvl)

	entry := logger.WithFields(logrus.Fields{"app": appName, "env": env, "log_level": lvl.String()})
	if badLevel != nil {
		entry.WithError(badLevel).Warn("ignoring LOG_LEVEL")
	}
	entry.Debug("logger ready")
	return logger
}

// NewNopLogger returns a logger that drops everything.
func NewNopLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// LogError logs err under msg with the given fields.
func LogError(logger logrus.FieldLogger, msg string, err error, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	logger.WithFields(fields).Error(msg)
}
