// Package scratchlog is a small leveled logger for the runtime CLI and the
// scheduler's diagnostics. Grounded on the teacher's ad hoc
// log.Printf/fmt.Printf diagnostics sprinkled through cmd/sentra/main.go and
// internal/vm/vm.go — formalized here into one logger type shared by every
// package instead of scattered fmt.Printf calls.
package scratchlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"
)

var nowFn = time.Now

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
		return "?"
	}
}

var levelColor = map[Level]string{
	LevelDebug: "\x1b[90m",
	LevelInfo:  "\x1b[36m",
	LevelWarn:  "\x1b[33m",
	LevelError: "\x1b[31m",
}

const colorReset = "\x1b[0m"

// Logger writes leveled, timestamped lines to an io.Writer, coloring the
// level tag when the writer is a TTY.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	color  bool
	prefix string
}

// New builds a Logger writing to out at the given minimum level. Color is
// auto-detected via isatty when out is *os.File.
func New(out io.Writer, level Level, prefix string) *Logger {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Logger{out: out, level: level, color: color, prefix: prefix}
}

// Default is a Logger writing to stderr at LevelInfo, handed to packages
// that don't take an explicit one (the CLI's zero-config path).
var Default = New(os.Stderr, LevelInfo, "scratchrt")

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := strftime.Format("%Y-%m-%d %H:%M:%S", nowFn())
	tag := level.String()
	if l.color {
		tag = levelColor[level] + tag + colorReset
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		fmt.Fprintf(l.out, "%s [%s] %s: %s\n", ts, tag, l.prefix, msg)
		return
	}
	fmt.Fprintf(l.out, "%s [%s] %s\n", ts, tag, msg)
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(LevelError, format, args...) }

// With returns a copy of the logger scoped to a different prefix, e.g. a
// per-target diagnostic channel ("scratchrt/SpriteA").
func (l *Logger) With(prefix string) *Logger {
	return &Logger{out: l.out, level: l.level, color: l.color, prefix: prefix}
}


