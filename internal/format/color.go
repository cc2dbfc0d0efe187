package format

import (
	"github.com/fatih/color"

	"github.com/tiwariParth/taskboard/internal/models"
)

var (
	boldColor   = color.New(color.Bold)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	yellowColor = color.New(color.FgYellow)
	faintColor  = color.New(color.Faint)
	cyanColor   = color.New(color.FgCyan)
)

// Bold returns s in bold
func Bold(s string) string { return boldColor.Sprint(s) }

// Red returns s in red
func Red(s string) string { return redColor.Sprint(s) }

// Green returns s in green
func Green(s string) string { return greenColor.Sprint(s) }

// Yellow returns s in yellow
func Yellow(s string) string { return yellowColor.Sprint(s) }

// Faint returns s dimmed
func Faint(s string) string { return faintColor.Sprint(s) }

// Cyan returns s in cyan
func Cyan(s string) string { return cyanColor.Sprint(s) }

// PriorityBadge renders a priority in its badge color: high red, medium yellow, low green.
func PriorityBadge(p models.Priority) string {
	label := "[" + p.String() + "]"
	switch p {
	case models.High:
		return Red(label)
	case models.Medium:
		return Yellow(label)
	case models.Low:
		return Green(label)
	default:
		return label
	}
}

// SetEnabled forces colored output on or off regardless of the terminal
func SetEnabled(enabled bool) {
	color.NoColor = !enabled
}
