package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Action is the leading word of every report line.
type Action string

const (
	ActionSource  Action = "source"
	ActionTarget  Action = "target"
	ActionInfo    Action = "info"
	ActionWarn    Action = "warn"
	ActionError   Action = "error"
	ActionCreated Action = "created"
	ActionDeleted Action = "deleted"
	ActionMoved   Action = "moved"
	ActionDryRun  Action = "dry-run"
)

const dashes = "---------------------------------------" +
	"---------------------------------------" +
	"---------------------------------------"

var actionColors = map[Action]color.Attribute{
	ActionInfo:    color.FgBlue,
	ActionWarn:    color.FgYellow,
	ActionError:   color.FgRed,
	ActionCreated: color.FgGreen,
	ActionDeleted: color.FgRed,
}

type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	f        *os.File
	colorize bool
}

// NewLogger writes to out and, when path is non-empty, appends an uncoloured
// copy of every line to that file.
func NewLogger(out io.Writer, path string, noColor bool) (*Logger, error) {
	l := &Logger{out: out, colorize: !noColor && isTerminal(out)}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		l.f = f
	}
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{out: io.Discard}
}

func (l *Logger) Log(action Action, format string, args ...interface{}) {
	line := strings.ToUpper(string(action)) + ": " + fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, l.paint(action, line))
	if l.f != nil {
		fmt.Fprintln(l.f, line)
	}
}

func (l *Logger) Info(format string, args ...interface{})  { l.Log(ActionInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.Log(ActionWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.Log(ActionError, format, args...) }

// Step prints a banner between phases of a run.
func (l *Logger) Step(title string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range []string{dashes, strings.ToUpper(title), dashes} {
		fmt.Fprintln(l.out, line)
		if l.f != nil {
			fmt.Fprintln(l.f, line)
		}
	}
}

// Print writes a block (tables, reports) verbatim.
func (l *Logger) Print(block string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, block)
	if l.f != nil {
		fmt.Fprintln(l.f, block)
	}
}

func (l *Logger) Close() error {
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}

func (l *Logger) paint(action Action, line string) string {
	attr, ok := actionColors[action]
	if !l.colorize || !ok {
		return line
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(line)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
