package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"flume/internal/diag"
	"flume/internal/source"
)

// Counts tallies a bag by severity.
type Counts struct {
	Fatal, Errors, Warnings, Infos int
	Files                          int
}

func CountBag(bag *diag.Bag, files int) Counts {
	c := Counts{Files: files}
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevFatal:
			c.Fatal++
		case diag.SevError:
			c.Errors++
		case diag.SevWarning:
			c.Warnings++
		default:
			c.Infos++
		}
	}
	return c
}

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// Summary renders the closing line of `flume check`, e.g.
//
//	✗ 2 errors, 1 warning in 3 files
func Summary(c Counts, colored bool) string {
	var parts []string
	add := func(n int, word string) {
		if n == 0 {
			return
		}
		if n != 1 {
			word += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, word))
	}
	add(c.Fatal, "fatal error")
	add(c.Errors, "error")
	add(c.Warnings, "warning")
	add(c.Infos, "note")

	files := fmt.Sprintf("%d file", c.Files)
	if c.Files != 1 {
		files += "s"
	}
	failed := c.Fatal+c.Errors > 0

	mark, head := "✓", "no problems"
	if failed {
		mark = "✗"
	}
	if len(parts) > 0 {
		head = strings.Join(parts, ", ")
	}
	if !colored {
		return fmt.Sprintf("%s %s in %s", mark, head, files)
	}
	style := okStyle
	switch {
	case failed:
		style = failStyle
	case c.Warnings > 0:
		style = warnStyle
	}
	return style.Render(mark+" "+head) + dimStyle.Render(" in "+files)
}

// Options bundle what Write needs for every format.
type Options struct {
	Format     Format
	Pretty     PrettyOpts
	JSON       JSONOpts
	Invocation string
	Files      int
}

// Write renders bag in opts.Format. Pretty output ends with the summary line.
func Write(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts Options) error {
	switch opts.Format {
	case FormatJSON, FormatMsgpack:
		out := BuildDiagnosticsOutput(bag, fs, opts.JSON)
		out.Invocation = opts.Invocation
		if opts.Format == FormatJSON {
			return JSON(w, out)
		}
		return Msgpack(w, out)
	case FormatShort:
		return Short(w, bag, fs, opts.Pretty.ShowNotes)
	default:
		Pretty(w, bag, fs, opts.Pretty)
		if bag.Len() > 0 {
			fmt.Fprintln(w)
		}
		_, err := fmt.Fprintln(w, Summary(CountBag(bag, opts.Files), opts.Pretty.Color))
		return err
	}
}
