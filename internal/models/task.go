package models

import (
	"fmt"
	"strings"
	"time"
)

// Priority represents the importance level of a task
type Priority string

const (
	Low    Priority = "low"
	Medium Priority = "medium"
	High   Priority = "high"
)

// Priorities lists every priority from least to most important.
var Priorities = []Priority{Low, Medium, High}

// ParsePriority converts user input into a Priority. Empty input yields Medium.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return Medium, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("priority must be low, medium, or high, got %q", s)
	}
	return p, nil
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case Low, Medium, High:
		return true
	}
	return false
}

// String returns the string representation of Priority
func (p Priority) String() string {
	return string(p)
}

// Task represents a single unit of trackable work.
// ID and CreatedAt are assigned by the store and never change afterwards.
type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Priority    Priority  `json:"priority" yaml:"priority"`
	Completed   bool      `json:"completed" yaml:"completed"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

// TaskInput is the data a form submits to create a task.
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

// Error implements error so a non-empty FieldErrors can be returned as one.
func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, field := range []string{"title", "description", "priority"} {
		if msg, ok := fe[field]; ok {
			parts = append(parts, field+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

// Validate checks the input the way the creation form does.
// It returns nil when the input is acceptable.
func (in TaskInput) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "Title is required"
	}
	if strings.TrimSpace(in.Description) == "" {
		errs["description"] = "Description is required"
	}
	if in.Priority != "" && !in.Priority.Valid() {
		errs["priority"] = "Priority must be low, medium, or high"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Update lists the task fields an edit may change. Nil fields are left alone.
type Update struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u Update) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil && u.Completed == nil
}

// Apply merges the set fields of u into t.
func (u Update) Apply(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
}

// Filter selects which tasks a list view shows
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter converts user input into a Filter. Empty input yields FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	}
	return "", fmt.Errorf("filter must be all, active, or completed, got %q", s)
}

// Match reports whether t belongs in the filtered view
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}
