// Package view derives list screens and counters from a task snapshot.
// Every function here is pure: inputs are never modified.
package view

import "github.com/tiwariParth/taskboard/internal/models"

// Stats are the counters shown above the task list.
// HighPriority counts open high-priority tasks only.
type Stats struct {
	Total        int `json:"total"`
	Completed    int `json:"completed"`
	Active       int `json:"active"`
	HighPriority int `json:"highPriority"`
}

// Board is everything a list screen renders for one filter
type Board struct {
	Filter models.Filter `json:"filter"`
	Tasks  []models.Task `json:"tasks"`
	Stats  Stats         `json:"stats"`
}

// Filter returns the tasks matching f in their original order.
// The result never aliases the input.
func Filter(tasks []models.Task, f models.Filter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// ComputeStats counts tasks by completion and urgency
func ComputeStats(tasks []models.Task) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
			continue
		}
		s.Active++
		if t.Priority == models.High {
			s.HighPriority++
		}
	}
	return s
}

// Build computes the board for f. Stats always cover the full list.
func Build(tasks []models.Task, f models.Filter) Board {
	return Board{
		Filter: f,
		Tasks:  Filter(tasks, f),
		Stats:  ComputeStats(tasks),
	}
}
