// Package obslog implements the structured logging ambient stack
// spec.md §6 specifies: one line per event in the form
// "YYYY-MM-DD HH:MM:SS,mmm - LEVEL - [Component] message", colored on a
// TTY, plain in a timestamped file under ./flight_logs. It is built the
// way the teacher's own logging is wired — a single logger handle
// fanned out through every component (internal/server/dependencies.go's
// log.New(...)) — but supplies the concrete slog.Handler that pattern
// was missing, grounded on mmp-vice's pkg/log/log.go use of a custom
// log/slog handler over a file sink.
package obslog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// levelName renders slog's levels the way spec.md's log line format
// names them.
func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ansiForLevel colors a level name the way a terminal log viewer would:
// warnings yellow, errors red, info/debug left uncolored.
func ansiForLevel(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "\x1b[31m"
	case l >= slog.LevelWarn:
		return "\x1b[33m"
	default:
		return ""
	}
}

// Handler is a slog.Handler that writes spec.md §6's delimited line
// format to two sinks: plain to a file, and to stderr, ANSI-colored
// when stderr is a terminal.
// Attributes passed via With/WithGroup or record.Attrs are rendered as
// "key=value" appended after the message, the way a message-first
// line-oriented logger (rather than a JSON one) conventionally does.
type Handler struct {
	mu       *sync.Mutex
	file     io.Writer
	tty      io.Writer
	ttyColor bool
	level    slog.Leveler
	attrs    []slog.Attr
	group    string
}

// New opens ./<dir>/log_YYYY-MM-DD_HH-MM-SS.txt (per spec.md §6) and
// returns a *slog.Logger writing through Handler to that file and a
// copy to stderr, colored when stderr is a terminal and plain otherwise.
func New(dir string, level slog.Level) (*slog.Logger, error) {
	if dir == "" {
		dir = "./flight_logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("obslog: create log dir: %w", err)
	}
	name := fmt.Sprintf("log_%s.txt", timestamp())
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("obslog: open log file: %w", err)
	}

	tty := io.Writer(os.Stderr)
	colored := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	if colored {
		tty = colorable.NewColorable(os.Stderr)
	}

	h := &Handler{
		mu:       &sync.Mutex{},
		file:     f,
		tty:      tty,
		ttyColor: colored,
		level:    level,
	}
	return slog.New(h), nil
}

func timestamp() string {
	return time.Now().Format("2006-01-02_15-04-05")
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.level != nil {
		min = h.level.Level()
	}
	return level >= min
}

// Handle extracts the "component" attr state.go's abort() and every
// layer's logger.Error/Info call attach, defaulting to "mission" when
// absent, so every line carries spec.md's "[Component]" field.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	component := "mission"
	var fields []string
	add := func(a slog.Attr) bool {
		if a.Key == "component" {
			component = a.Value.String()
			return true
		}
		fields = append(fields, fmt.Sprintf("%s=%v", a.Key, a.Value.Any()))
		return true
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(func(a slog.Attr) bool { return add(a) })

	ts := r.Time.Format("2006-01-02 15:04:05")
	ms := r.Time.Nanosecond() / 1_000_000
	msg := r.Message
	if len(fields) > 0 {
		msg = msg + " " + strings.Join(fields, " ")
	}
	plain := fmt.Sprintf("%s,%03d - %s - [%s] %s\n", ts, ms, levelName(r.Level), component, msg)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file != nil {
		io.WriteString(h.file, plain)
	}
	if h.tty != nil {
		if color := ansiForLevel(r.Level); color != "" && h.ttyColor {
			io.WriteString(h.tty, color+plain+"\x1b[0m")
		} else {
			io.WriteString(h.tty, plain)
		}
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	next := *h
	next.group = name
	return &next
}
