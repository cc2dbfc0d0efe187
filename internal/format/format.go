// Package format renders tasks and boards for the terminal.
package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tiwariParth/taskboard/internal/models"
	"github.com/tiwariParth/taskboard/internal/view"
)

// ShortDateLayout matches the en-US "month short, day numeric, 2-digit hour and minute" style.
const ShortDateLayout = "Jan 2, 03:04 PM"

// ShortIDLen is how many id characters list output shows
const ShortIDLen = 8

// ShortDate formats t in loc for display. A nil loc means time.Local.
func ShortDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(ShortDateLayout)
}

// ShortID truncates id for display
func ShortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}

// StatsLine writes the four counters on one line
func StatsLine(w io.Writer, s view.Stats) {
	fmt.Fprintf(w, "%s %d  %s %d  %s %d  %s %d\n",
		Bold("Total:"), s.Total,
		Bold("Completed:"), s.Completed,
		Bold("Active:"), s.Active,
		Bold("High Priority:"), s.HighPriority)
}

// FilterBar writes the filter choices with their counts, marking the active one
func FilterBar(w io.Writer, current models.Filter, s view.Stats) {
	entries := []struct {
		filter models.Filter
		label  string
		count  int
	}{
		{models.FilterAll, "All Tasks", s.Total},
		{models.FilterActive, "Active", s.Active},
		{models.FilterCompleted, "Completed", s.Completed},
	}

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		label := fmt.Sprintf("%s (%d)", e.label, e.count)
		if e.filter == current {
			label = Cyan("> " + label)
		} else {
			label = "  " + label
		}
		parts = append(parts, label)
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
}

// TaskLine writes one task: checkbox, title and badge, then description and date.
func TaskLine(w io.Writer, num int, t models.Task, loc *time.Location) {
	box := "[ ]"
	title := Bold(normalize(t.Title))
	desc := normalize(t.Description)
	if t.Completed {
		box = Green("[x]")
		title = Faint(normalize(t.Title))
		desc = Faint(desc)
	}

	fmt.Fprintf(w, "%4d  %s %s %s\n", num, box, title, PriorityBadge(t.Priority))
	fmt.Fprintf(w, "          %s\n", desc)
	fmt.Fprintf(w, "          %s  %s\n", Faint(ShortDate(t.CreatedAt, loc)), Faint(ShortID(t.ID)))
}

// Board writes the stats header, filter bar and the filtered task list.
// Tasks are numbered by their position in the full list so numbers stay
// valid as references whatever the filter.
func Board(w io.Writer, b view.Board, all []models.Task, loc *time.Location) {
	StatsLine(w, b.Stats)
	FilterBar(w, b.Filter, b.Stats)
	fmt.Fprintln(w)

	if len(b.Tasks) == 0 {
		fmt.Fprintln(w, "No tasks yet")
		fmt.Fprintln(w, "Create your first task to get started!")
		return
	}

	positions := make(map[string]int, len(all))
	for i, t := range all {
		positions[t.ID] = i + 1
	}
	for _, t := range b.Tasks {
		TaskLine(w, positions[t.ID], t, loc)
	}
}

// normalize replaces newlines so each field stays on one line
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
