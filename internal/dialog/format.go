package dialog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

type valueKind int

const (
	kindCount valueKind = iota
	kindText
	kindPath
	kindErr
)

// Value is one renderable argument for a dialog template. The set of kinds is
// closed: counts, free text, filesystem paths, and errors.
type Value struct {
	kind valueKind
	n    int
	s    string
	err  error
}

// Count wraps an integer value (rendered blue).
func Count(n int) Value { return Value{kind: kindCount, n: n} }

// Text wraps a plain string value (rendered cyan).
func Text(s string) Value { return Value{kind: kindText, s: s} }

// Path wraps a filesystem path (rendered cyan, quoted in debug form).
func Path(p string) Value { return Value{kind: kindPath, s: p} }

// Err wraps an error value (rendered red).
func Err(err error) Value { return Value{kind: kindErr, err: err} }

func (v Value) plain() string {
	switch v.kind {
	case kindCount:
		return strconv.Itoa(v.n)
	case kindErr:
		if v.err == nil {
			return "<nil>"
		}
		return v.err.Error()
	default:
		return v.s
	}
}

func (v Value) debug() string {
	if v.kind == kindCount {
		return strconv.Itoa(v.n)
	}
	return strconv.Quote(v.plain())
}

func (v Value) colorize(s string) string {
	switch v.kind {
	case kindCount:
		return color.New(color.FgBlue).Sprint(s)
	case kindErr:
		return color.New(color.FgRed).Sprint(s)
	default:
		return color.New(color.FgCyan).Sprint(s)
	}
}

type segment struct {
	text  string
	debug bool // meaningful only for placeholder segments
	hole  bool
}

type template struct {
	segments []segment
	holes    int
}

// parseTemplate splits a format string into literal text and placeholder
// segments. Placeholders are "{}" (default rendering) and "{:?}" (debug
// rendering). Literal braces are not supported.
func parseTemplate(s string) (template, error) {
	var tpl template
	splits := strings.Split(s, "{")

	tpl.segments = append(tpl.segments, segment{text: splits[0]})
	for _, split := range splits[1:] {
		within, text, ok := strings.Cut(split, "}")
		if !ok {
			return template{}, fmt.Errorf("unbalanced braces in %q", s)
		}
		switch within {
		case "":
			tpl.segments = append(tpl.segments, segment{hole: true})
		case ":?":
			tpl.segments = append(tpl.segments, segment{hole: true, debug: true})
		default:
			return template{}, fmt.Errorf("unknown placeholder {%s} in %q", within, s)
		}
		tpl.holes++
		tpl.segments = append(tpl.segments, segment{text: text})
	}
	return tpl, nil
}

func (tpl template) render(values []Value) (string, error) {
	if len(values) != tpl.holes {
		return "", fmt.Errorf("template wants %d values, got %d", tpl.holes, len(values))
	}

	var b strings.Builder
	next := 0
	for _, seg := range tpl.segments {
		if !seg.hole {
			b.WriteString(seg.text)
			continue
		}
		v := values[next]
		next++
		if seg.debug {
			b.WriteString(v.colorize(v.debug()))
		} else {
			b.WriteString(v.colorize(v.plain()))
		}
	}
	return b.String(), nil
}

// mustRender formats a template with its values. A malformed template or a
// placeholder/value arity mismatch is a defect in the calling code, not an
// environmental condition, so it panics instead of degrading to partial
// output.
func mustRender(format string, values []Value) string {
	tpl, err := parseTemplate(format)
	if err != nil {
		panic(fmt.Sprintf("dialog: %v", err))
	}
	s, err := tpl.render(values)
	if err != nil {
		panic(fmt.Sprintf("dialog: %v in template %q", err, format))
	}
	return s
}
