// Package diagfmt renders a diagnostics bag for people (pretty, short)
// and for tools (json, msgpack).
package diagfmt

import (
	"fmt"
	"strings"

	"flume/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

func (m PathMode) String() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}

// Format is an output format of `flume check`.
type Format uint8

const (
	FormatPretty Format = iota
	FormatShort
	FormatJSON
	FormatMsgpack
)

var formatNames = map[string]Format{
	"pretty":  FormatPretty,
	"short":   FormatShort,
	"json":    FormatJSON,
	"msgpack": FormatMsgpack,
}

// ParseFormat accepts pretty, short, json or msgpack.
func ParseFormat(s string) (Format, error) {
	if f, ok := formatNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return FormatPretty, fmt.Errorf("unknown diagnostics format %q (want pretty, short, json or msgpack)", s)
}

func (f Format) String() string {
	for name, v := range formatNames {
		if v == f {
			return name
		}
	}
	return "pretty"
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Context   int8 // строк контекста вокруг основной
	PathMode  PathMode
	ShowNotes bool
}

// JSONOpts configures JSON and msgpack output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}

func formatPath(span source.Span, fs *source.FileSet, mode PathMode) string {
	if fs == nil || span.IsNone() {
		return "<none>"
	}
	f := fs.Get(span.File)
	if f == nil {
		return "<none>"
	}
	if mode == PathModeRelative {
		return f.FormatPath("relative", fs.BaseDir())
	}
	return f.FormatPath(mode.String(), "")
}
