// Package colors provides terminal color support for Helix CLI output.
//
// Colors are disabled when NO_COLOR is set, when stdout is not a terminal,
// or when TERM is "dumb"; FORCE_COLOR turns them on unconditionally.
package colors

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI color codes
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"
	ColorGray  = "\033[90m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
)

// colorEnabled determines if color output should be used
var colorEnabled = shouldUseColor()

func shouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if strings.ToLower(os.Getenv("TERM")) == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// SetColorEnabled allows manual control of color output
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// colorize applies color to text if colors are enabled
func colorize(text, color string) string {
	if !colorEnabled {
		return text
	}
	return color + text + ColorReset
}

func Red(text string) string    { return colorize(text, BrightRed) }
func Green(text string) string  { return colorize(text, BrightGreen) }
func Yellow(text string) string { return colorize(text, BrightYellow) }
func Cyan(text string) string   { return colorize(text, BrightCyan) }
func Gray(text string) string   { return colorize(text, ColorGray) }
func Bold(text string) string   { return colorize(text, ColorBold) }
func Dim(text string) string    { return colorize(text, ColorDim) }

// Component names, keys and variant axes in manifest listings
func ComponentName(text string) string { return Bold(text) }
func ComponentKey(text string) string  { return Gray(text) }
func VariantAxis(text string) string   { return Cyan(text) }

// Section headers and status lines
func SectionHeader(text string) string { return Bold(text) }
func ErrorText(text string) string     { return Red(text) }
func SuccessText(text string) string   { return Green(text) }
func InfoText(text string) string      { return Cyan(text) }
func WarningText(text string) string   { return Yellow(text) }
