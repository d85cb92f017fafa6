package logger

import (
	"fmt"
	"time"
)

// Logger writes log messages for a single subsystem to a Backend.
type Logger struct {
	lvl          Level
	subsystemTag string
	b            *Backend
	writeChan    chan logEntry
}

type logEntry struct {
	level Level
	log   []byte
}

// SetLevel changes the logging level of the logger.
func (l *Logger) SetLevel(level Level) {
	l.lvl = level
}

// Level returns the current logging level of the logger.
func (l *Logger) Level() Level {
	return l.lvl
}

// Backend returns the backend this logger writes to.
func (l *Logger) Backend() *Backend {
	return l.b
}

func (l *Logger) write(level Level, format string, args ...interface{}) {
	if level < l.lvl {
		return
	}
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("%s [%s] %s: %s\n", time.Now().Format("2006-01-02 15:04:05.000"),
		level, l.subsystemTag, msg)
	select {
	case l.writeChan <- logEntry{level, []byte(line)}:
	default:
		// The backend is not ready to take the entry (Run() was never
		// called, or it is still writing the previous entry, as writeChan
		// is unbuffered); print the line to stdout so it is not dropped.
		fmt.Print(line)
	}
}

// Tracef formats and writes a trace-level log message.
func (l *Logger) Tracef(format string, args ...interface{}) { l.write(LevelTrace, format, args...) }

// Debugf formats and writes a debug-level log message.
func (l *Logger) Debugf(format string, args ...interface{}) { l.write(LevelDebug, format, args...) }

// Infof formats and writes an info-level log message.
func (l *Logger) Infof(format string, args ...interface{}) { l.write(LevelInfo, format, args...) }

// Warnf formats and writes a warn-level log message.
func (l *Logger) Warnf(format string, args ...interface{}) { l.write(LevelWarn, format, args...) }

// Errorf formats and writes an error-level log message.
func (l *Logger) Errorf(format string, args ...interface{}) { l.write(LevelError, format, args...) }

// Criticalf formats and writes a critical-level log message.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.write(LevelCritical, format, args...)
}
