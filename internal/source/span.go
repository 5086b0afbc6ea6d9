package source

import (
	"fmt"
)

// Pos is a human-readable position in a source file. Line and Col are 1-based;
// the zero Pos means "unknown".
type Pos struct {
	Line uint32
	Col  uint32
}

// IsValid reports whether the position points into a file.
func (p Pos) IsValid() bool { return p.Line > 0 }

// Before reports whether p is strictly earlier than other.
func (p Pos) Before(other Pos) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Span is the range of a node: file plus start/end positions.
type Span struct {
	File  FileID
	Start Pos // включительно
	End   Pos // не включительно
}

// NoSpan is the sentinel range of synthetic nodes.
var NoSpan = Span{}

// IsNone reports whether the span is the synthetic sentinel.
func (s Span) IsNone() bool {
	return s == NoSpan
}

// Empty reports whether the span covers no characters.
func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) String() string {
	if s.IsNone() {
		return "<none>"
	}
	return fmt.Sprintf("%d:%s-%s", s.File, s.Start, s.End)
}

// Cover extends s so that it also includes other. Spans from different files
// are not merged.
func (s Span) Cover(other Span) Span {
	if s.IsNone() {
		return other
	}
	if other.IsNone() || s.File != other.File {
		return s
	}
	if other.Start.Before(s.Start) {
		s.Start = other.Start
	}
	if s.End.Before(other.End) {
		s.End = other.End
	}
	return s
}

// Merge builds the span of a node list: start of the first node, end of the
// last one. Missing ends fall back to the other span.
func Merge(first, last Span) Span {
	switch {
	case first.IsNone():
		return last
	case last.IsNone():
		return first
	}
	return Span{File: first.File, Start: first.Start, End: last.End}
}

// MergeAll merges the spans of a node list in source order.
func MergeAll(spans []Span) Span {
	if len(spans) == 0 {
		return NoSpan
	}
	first, last := NoSpan, NoSpan
	for _, sp := range spans {
		if sp.IsNone() {
			continue
		}
		if first.IsNone() {
			first = sp
		}
		last = sp
	}
	return Merge(first, last)
}
