// Package dialog renders hierarchical, colorized progress lines on a console
// stream.
//
// A Dialog is an immutable value carrying only an output writer and an indent
// depth. Announcing a stage prints one formatted line and returns a Dialog one
// level deeper for the nested announcements that follow; there is no shared
// logger state and no backward reference to the parent.
//
// Messages use a small positional template syntax: "{}" renders the next
// value with default styling, "{:?}" renders it in a quoted debug form.
// Values come from the closed set Count, Text, Path, and Err. Malformed
// templates and value-count mismatches are programming errors and panic.
package dialog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Level classifies an announcement and picks the arrow color.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

func (l Level) arrow() string {
	switch l {
	case LevelSuccess:
		return color.New(color.FgGreen, color.Bold).Sprint("->")
	case LevelWarn:
		return color.New(color.FgMagenta, color.Bold).Sprint("->")
	case LevelError:
		return color.New(color.FgRed, color.Bold).Sprint("->")
	default:
		return color.New(color.FgBlue, color.Bold).Sprint("->")
	}
}

// Dialog is one indentation level of the hierarchical console output.
type Dialog struct {
	w      io.Writer
	indent int
}

// Start prints a bold headline and returns the Dialog used for the
// announcements nested under it.
func Start(w io.Writer, format string, values ...Value) Dialog {
	if w == nil {
		w = os.Stderr
	}
	msg := mustRender(format, values)
	fmt.Fprintln(w, color.New(color.Bold).Sprint(msg))
	return Dialog{w: w, indent: 1}
}

// At returns a Dialog at an explicit depth without printing a headline.
// Depth is clamped to at least 1.
func At(w io.Writer, depth int) Dialog {
	if w == nil {
		w = os.Stderr
	}
	if depth < 1 {
		depth = 1
	}
	return Dialog{w: w, indent: depth}
}

// Info announces at info level and returns a one-deeper Dialog.
func (d Dialog) Info(format string, values ...Value) Dialog {
	next, _ := d.announce(LevelInfo, format, values)
	return next
}

// InfoString is Info, additionally returning the rendered line so callers can
// interleave it with other console furniture (e.g. a progress bar).
func (d Dialog) InfoString(format string, values ...Value) (Dialog, string) {
	return d.announce(LevelInfo, format, values)
}

// Success announces at success level and returns a one-deeper Dialog.
func (d Dialog) Success(format string, values ...Value) Dialog {
	next, _ := d.announce(LevelSuccess, format, values)
	return next
}

// Warn announces at warn level and returns a one-deeper Dialog.
func (d Dialog) Warn(format string, values ...Value) Dialog {
	next, _ := d.announce(LevelWarn, format, values)
	return next
}

// Error announces at error level and returns a one-deeper Dialog.
func (d Dialog) Error(format string, values ...Value) Dialog {
	next, _ := d.announce(LevelError, format, values)
	return next
}

// Depth reports the indentation level of this Dialog.
func (d Dialog) Depth() int {
	if d.indent < 1 {
		return 1
	}
	return d.indent
}

func (d Dialog) announce(level Level, format string, values []Value) (Dialog, string) {
	w := d.w
	if w == nil {
		w = os.Stderr
	}
	indent := d.Depth()

	line := fmt.Sprintf("%s%s %s", strings.Repeat("  ", indent-1), level.arrow(), mustRender(format, values))
	fmt.Fprintln(w, line)

	return Dialog{w: w, indent: indent + 1}, line
}
