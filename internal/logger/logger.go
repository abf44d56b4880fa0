package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Options configures the process-wide logger
type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

var (
	mu   sync.RWMutex
	root hclog.Logger = hclog.New(&hclog.LoggerOptions{
		Name:  "titleseeker",
		Level: hclog.Info,
	})
)

// Configure replaces the root logger. Safe to call more than once.
func Configure(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := hclog.LevelFromString(strings.ToLower(opts.Level))
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	mu.Lock()
	defer mu.Unlock()
	root = hclog.New(&hclog.LoggerOptions{
		Name:       "titleseeker",
		Level:      level,
		JSONFormat: opts.JSON,
		Output:     out,
	})
}

// Named returns a sub-logger for a component
func Named(name string) hclog.Logger {
	return get().Named(name)
}

// Root returns the process-wide logger
func Root() hclog.Logger {
	return get()
}

// SetLogger swaps the root logger, mainly for tests
func SetLogger(l hclog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	root = l
}

func get() hclog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// Info logs informational messages.
// Arguments are either printf-style values or key-value pairs.
func Info(msg string, args ...interface{}) {
	m, kv := split(msg, args)
	get().Info(m, kv...)
}

// Warn logs warning messages
func Warn(msg string, args ...interface{}) {
	m, kv := split(msg, args)
	get().Warn(m, kv...)
}

// Error logs error messages
func Error(msg string, args ...interface{}) {
	m, kv := split(msg, args)
	get().Error(m, kv...)
}

// Debug logs debug messages
func Debug(msg string, args ...interface{}) {
	m, kv := split(msg, args)
	get().Debug(m, kv...)
}

// split keeps the old printf-style call sites working next to the
// structured key-value ones.
func split(msg string, args []interface{}) (string, []interface{}) {
	if len(args) == 0 {
		return msg, nil
	}
	if strings.Contains(msg, "%") {
		return fmt.Sprintf(msg, args...), nil
	}
	if len(args)%2 != 0 {
		return msg, append(args, "<missing>")
	}
	return msg, args
}
