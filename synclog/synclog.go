// Package synclog contains the leveled logger used while syncing gateway artifacts
package synclog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// LogLevel is an interface that determines what should be logged at various log levels
type LogLevel interface {
	Priority() int
	Format() string
	Name() string
}

var (
	// Output has the highest priority and is intended for command results that get piped elsewhere
	Output LogLevel = &logLevel{int(^uint(0) >> 1), "%s", "output"}

	// Debug logs at the debug level
	Debug LogLevel = &logLevel{0, "[DEBUG] %s\n", "debug"}

	// Info logs at the info level
	Info LogLevel = &logLevel{1, "%s\n", "info"}

	// Warning logs at the warning level
	Warning LogLevel = &logLevel{2, "[WARNING] %s\n", "warning"}

	// Error logs at the error level
	Error LogLevel = &logLevel{3, "[ERROR] %s\n", "error"}

	// Fatal logs at the error level. It has the largest possible priority
	Fatal LogLevel = &logLevel{int(^uint(0) >> 1), "[FATAL] %s\n", "fatal"}

	levels = []LogLevel{Debug, Info, Warning, Error}

	mu           sync.Mutex
	currentLevel           = Info
	stdout       io.Writer = os.Stdout
	stderr       io.Writer = os.Stderr
	exit                   = os.Exit
)

type logLevel struct {
	priority int
	format   string
	name     string
}

func (l *logLevel) Priority() int {
	return l.priority
}

func (l *logLevel) Format() string {
	return l.format
}

func (l *logLevel) Name() string {
	return l.name
}

// ParseLevel returns the level with the given name, e.g. "debug" or "WARNING"
func ParseLevel(name string) (LogLevel, error) {
	for _, level := range levels {
		if strings.EqualFold(level.Name(), name) {
			return level, nil
		}
	}
	return nil, fmt.Errorf("Unknown log level %s", name)
}

// SetLogLevel sets the log level
func SetLogLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
}

// SetOutput redirects output and diagnostics. A nil writer leaves that stream unchanged.
func SetOutput(out, diag io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		stdout = out
	}
	if diag != nil {
		stderr = diag
	}
}

// Outputf prints the output directly
func Outputf(format string, a ...interface{}) {
	logAtLevel(Output, format, a...)
}

// Debugf logs at the debug level
func Debugf(format string, a ...interface{}) {
	logAtLevel(Debug, format, a...)
}

// Infof logs at the info level
func Infof(format string, a ...interface{}) {
	logAtLevel(Info, format, a...)
}

// Warningf logs at the warning level
func Warningf(format string, a ...interface{}) {
	logAtLevel(Warning, format, a...)
}

// Errorf logs at the error level
func Errorf(format string, a ...interface{}) {
	logAtLevel(Error, format, a...)
}

// Fatalf logs at the fatal level. This also causes the program to exit
func Fatalf(format string, a ...interface{}) {
	logAtLevel(Fatal, format, a...)
	exit(1)
}

func logAtLevel(level LogLevel, format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if currentLevel.Priority() > level.Priority() {
		return
	}

	out := stderr
	if level == Output {
		out = stdout
	}

	formattedMessage := fmt.Sprintf(format, a...)
	fmt.Fprintf(out, level.Format(), formattedMessage)
}
