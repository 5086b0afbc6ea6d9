package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Version information for the flume CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored paints major, minor and patch of v; a suffix after '-' stays plain.
func Colored(v string) string {
	core, suffix, hasSuffix := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return v
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if hasSuffix {
		out += "-" + suffix
	}
	return out
}

// String renders the `flume version` line.
func String(colored bool) string {
	v := Version
	if colored {
		v = Colored(v)
	}
	s := "flume " + v
	switch {
	case GitCommit != "" && BuildDate != "":
		s += fmt.Sprintf(" (%s, %s)", shortCommit(GitCommit), BuildDate)
	case GitCommit != "":
		s += fmt.Sprintf(" (%s)", shortCommit(GitCommit))
	case BuildDate != "":
		s += fmt.Sprintf(" (%s)", BuildDate)
	}
	return s
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
