package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorUrgent = 203 // red
	colorHigh   = 215 // orange
	colorMuted  = 245 // medium gray
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderPriority returns a priority label colored by urgency.
func RenderPriority(p string) string {
	if noColor {
		return p
	}
	switch p {
	case "urgent":
		return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorUrgent, p)
	case "high":
		return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorHigh, p)
	default:
		return p
	}
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
