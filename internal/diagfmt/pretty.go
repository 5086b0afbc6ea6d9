package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"flume/internal/diag"
	"flume/internal/source"
)

type palette struct {
	sev      map[diag.Severity]*color.Color
	location *color.Color
	gutter   *color.Color
	caret    *color.Color
	note     *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevInfo:    mk(color.FgCyan, color.Bold),
			diag.SevWarning: mk(color.FgYellow, color.Bold),
			diag.SevError:   mk(color.FgRed, color.Bold),
			diag.SevFatal:   mk(color.FgMagenta, color.Bold),
		},
		location: mk(color.Bold),
		gutter:   mk(color.FgBlue),
		caret:    mk(color.FgRed, color.Bold),
		note:     mk(color.FgCyan),
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее). Для каждой печатает
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//
// затем строку источника с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.location.Sprint(location(d.Primary, fs, opts.PathMode)),
			p.sev[d.Severity].Sprint(d.Severity.String()),
			d.Code.ID(),
			d.Message)
		writeSnippet(w, fs, d.Primary, int(opts.Context), p)
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), location(n.Span, fs, opts.PathMode), n.Msg)
			writeSnippet(w, fs, n.Span, 0, p)
		}
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "\n... %d more diagnostics not shown (limit %d)\n", dropped, bag.Cap())
	}
}

func location(span source.Span, fs *source.FileSet, mode PathMode) string {
	path := formatPath(span, fs, mode)
	if span.IsNone() {
		return path
	}
	return fmt.Sprintf("%s:%d:%d", path, span.Start.Line, span.Start.Col)
}

// writeSnippet prints the primary line with context lines above it and a
// caret line under the span. Columns count runes; the caret is aligned by
// display width so wide characters stay under their glyphs.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, context int, p palette) {
	if fs == nil || span.IsNone() || !span.Start.IsValid() {
		return
	}
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	line := span.Start.Line
	text := f.GetLine(line)
	first := line
	for c := 0; c < context && first > 1; c++ {
		first--
	}
	width := len(fmt.Sprint(line))
	for n := first; n < line; n++ {
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", width, n), f.GetLine(n))
	}
	fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", width, line), text)

	runes := []rune(text)
	startCol := int(span.Start.Col) - 1
	startCol = max(0, min(startCol, len(runes)))
	endCol := startCol + 1
	if span.End.Line == line && int(span.End.Col)-1 > startCol {
		endCol = min(int(span.End.Col)-1, len(runes))
	} else if span.End.Line > line {
		endCol = len(runes)
	}

	var pad strings.Builder
	for _, r := range runes[:startCol] {
		if r == '\t' {
			pad.WriteRune('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	underline := 1
	if endCol > startCol {
		underline = max(1, runewidth.StringWidth(string(runes[startCol:endCol])))
	}
	marker := "^" + strings.Repeat("~", underline-1)
	fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), pad.String(), p.caret.Sprint(marker))
}
