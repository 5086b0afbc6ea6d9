package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var useColor bool

// setupColor resolves auto|on|off once for every renderer.
func setupColor(mode string) {
	switch strings.ToLower(mode) {
	case "on":
		useColor = true
	case "off":
		useColor = false
	default:
		useColor = isTerminal(os.Stdout) && os.Getenv("NO_COLOR") == ""
	}
	color.NoColor = !useColor
	if useColor {
		lipgloss.SetColorProfile(termenv.ANSI256)
	} else {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit int
}
