// Package sntplog defines the logging collaborator the engine uses for
// diagnostic output, plus a logrus-backed default implementation.
package sntplog

import (
	"github.com/sirupsen/logrus"
)

// Logger is the engine's logging collaborator: a fine-grained trace
// channel and a warning channel that optionally carries the error that
// triggered it. Implementations must be safe for concurrent use.
type Logger interface {
	Fine(msg string)
	Warning(msg string, err error)
}

// discardLogger is the default Logger: it drops everything. Engines built
// without WithLogger use it, so logging is opt-in rather than noisy by
// default.
type discardLogger struct{}

// Discard is a Logger that drops every message.
var Discard Logger = discardLogger{}

func (discardLogger) Fine(string)          {}
func (discardLogger) Warning(string, error) {}

// LogrusLogger adapts a *logrus.Logger (or the package-level default
// logger) to the Logger interface, matching the call shape the rest of
// the retrieval pack uses (log.Debugf/log.Errorf with a "%v"-wrapped
// error).
type LogrusLogger struct {
	entry *logrus.Logger
}

// NewLogrusLogger wraps l. A nil l uses logrus.StandardLogger().
func NewLogrusLogger(l *logrus.Logger) *LogrusLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &LogrusLogger{entry: l}
}

// Fine logs msg at debug level.
func (l *LogrusLogger) Fine(msg string) {
	l.entry.Debug(msg)
}

// Warning logs msg at warn level, appending err if present.
func (l *LogrusLogger) Warning(msg string, err error) {
	if err != nil {
		l.entry.Warnf("%s: %v", msg, err)
		return
	}
	l.entry.Warn(msg)
}
