// Package logging provides component-scoped structured loggers for devtask.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Environment variables that control logging
const (
	EnvLogLevel  = "DEVTASK_LOG_LEVEL"
	EnvLogFormat = "DEVTASK_LOG_FORMAT"

	// DefaultLevel keeps logs quiet unless something goes wrong
	DefaultLevel = "warn"
)

var (
	root      *logrus.Logger
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger returns the logger for a component. Loggers share one root so that
// Configure affects every component at once.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	entry := rootLocked().WithField("component", component)
	loggers[component] = entry
	return entry
}

// Configure applies a level from configuration. The DEVTASK_LOG_LEVEL
// environment variable always wins over the configured value.
func Configure(configuredLevel string) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	rootLocked().SetLevel(resolveLevel(configuredLevel))
}

// SetOutput redirects all component loggers, mainly for tests
func SetOutput(w io.Writer) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	rootLocked().SetOutput(w)
}

// Level reports the level currently in effect
func Level() logrus.Level {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	return rootLocked().GetLevel()
}

func rootLocked() *logrus.Logger {
	if root != nil {
		return root
	}

	root = logrus.New()
	root.SetOutput(os.Stderr)
	root.SetLevel(resolveLevel(""))

	switch strings.ToLower(os.Getenv(EnvLogFormat)) {
	case "json":
		root.SetFormatter(&logrus.JSONFormatter{})
	default:
		root.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
	}

	return root
}

func resolveLevel(configuredLevel string) logrus.Level {
	levelStr := DefaultLevel
	if env := os.Getenv(EnvLogLevel); env != "" {
		levelStr = env
	} else if configuredLevel != "" {
		levelStr = configuredLevel
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}
