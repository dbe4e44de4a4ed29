// Package log provides structured, category-tagged logging for tilepan.
// Logging is off unless --debug or TILEPAN_DEBUG enables it; entries go to a
// file, a bounded in-memory buffer for the log overlay, and a pubsub broker.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/tilepan/internal/pubsub"
)

// EnvDebug enables logging when set to a non-empty value other than "0".
const EnvDebug = "TILEPAN_DEBUG"

// DefaultBufferSize is the number of recent entries kept in memory.
const DefaultBufferSize = 500

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelDebug, fmt.Errorf("unknown log level %q", s)
	}
}

// Category groups related log messages.
type Category string

const (
	CatGrid       Category = "grid"       // Layout and visibility math
	CatViewport   Category = "viewport"   // Offsets and wraparound resets
	CatDrag       Category = "drag"       // Pointer sessions
	CatAutoScroll Category = "autoscroll" // Idle countdown and scroll ticks
	CatContent    Category = "content"    // Content pool loading
	CatCatalog    Category = "catalog"    // SQLite tile catalog
	CatConfig     Category = "config"     // Configuration loading/saving
	CatWatcher    Category = "watcher"    // File watcher events
	CatCache      Category = "cache"      // Tile render cache
	CatUI         Category = "ui"         // UI component updates
	CatTrace      Category = "trace"      // Tracing provider lifecycle
)

// Logger writes formatted entries to a writer, a ring buffer and a broker.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
	ring     []string
	next     int
	full     bool
	broker   *pubsub.Broker[string]
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Init opens path for appending and installs it as the global log target.
// The returned cleanup closes the file and the broker.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: user-chosen debug log path
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	l := newLogger(f, DefaultBufferSize)
	l.file = f
	install(l)

	return func() {
		install(nil)
		l.broker.Close()
		_ = f.Close()
	}, nil
}

// InitWriter installs a logger writing to w. Used by tests and by callers
// that already own the destination.
func InitWriter(w io.Writer, bufferSize int) func() {
	l := newLogger(w, bufferSize)
	install(l)
	return func() {
		install(nil)
		l.broker.Close()
	}
}

// EnabledFromEnv reports whether TILEPAN_DEBUG requests logging.
func EnabledFromEnv() bool {
	v := os.Getenv(EnvDebug)
	return v != "" && v != "0"
}

func newLogger(w io.Writer, bufferSize int) *Logger {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	return &Logger{
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		ring:     make([]string, bufferSize),
		broker:   pubsub.NewBroker[string](),
	}
}

func install(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

func write(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel {
		return
	}

	entry := Format(time.Now(), level, cat, msg, fields...)

	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry+"\n")
	}

	l.ring[l.next] = entry
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.full = true
	}

	l.broker.Publish(pubsub.LoggedEvent, entry)
}

// Format renders one entry:
// 2025-12-06T10:45:00 [WARN] [viewport] message key=value key2=value2
func Format(ts time.Time, level Level, cat Category, msg string, fields ...any) string {
	var sb strings.Builder
	sb.WriteString(ts.Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&sb, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&sb, " %v=<missing>", fields[len(fields)-1])
	}
	return sb.String()
}

// Parse extracts the level and category from an entry produced by Format.
// ok is false when the entry does not carry both tags.
func Parse(entry string) (level Level, cat Category, ok bool) {
	_, rest, found := strings.Cut(entry, " [")
	if !found {
		return LevelDebug, "", false
	}
	name, rest, found := strings.Cut(rest, "] [")
	if !found {
		return LevelDebug, "", false
	}
	level, err := ParseLevel(name)
	if err != nil {
		return LevelDebug, "", false
	}
	c, _, found := strings.Cut(rest, "]")
	if !found {
		return LevelDebug, "", false
	}
	return level, Category(c), true
}

// GetRecentLogs returns buffered entries, oldest first.
func GetRecentLogs() []string {
	l := current()
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.full {
		out := make([]string, l.next)
		copy(out, l.ring[:l.next])
		return out
	}
	out := make([]string, 0, len(l.ring))
	out = append(out, l.ring[l.next:]...)
	out = append(out, l.ring[:l.next]...)
	return out
}

// ClearBuffer drops all buffered entries.
func ClearBuffer() {
	l := current()
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.ring)
	l.next = 0
	l.full = false
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[string]

// NewListener subscribes to log entries until ctx is cancelled. It returns
// nil when logging has not been initialised.
func NewListener(ctx context.Context) *LogListener {
	l := current()
	if l == nil {
		return nil
	}
	return pubsub.NewContinuousListener[string](ctx, l.broker)
}
