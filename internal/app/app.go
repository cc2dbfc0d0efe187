// Package app ties one task store, its storage backend and the cached board
// together into a session the CLI and HTTP server drive.
package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/tiwariParth/taskboard/internal/config"
	"github.com/tiwariParth/taskboard/internal/models"
	"github.com/tiwariParth/taskboard/internal/storage"
	"github.com/tiwariParth/taskboard/internal/task"
	"github.com/tiwariParth/taskboard/internal/view"
)

var (
	// ErrTaskNotFound is returned when a reference matches no task.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAmbiguousRef is returned when an id prefix matches several tasks.
	ErrAmbiguousRef = errors.New("ambiguous task reference")
)

// Session is one user's working set: the task store plus the derived board,
// recomputed whenever the store changes.
type Session struct {
	store   *task.TaskStore
	backend storage.Storage
	cancel  func()

	mu    sync.RWMutex
	tasks []models.Task
	stats view.Stats
}

// New opens the configured storage and loads the session from it
func New(ctx context.Context, cfg *config.Config, opts ...task.Option) (*Session, error) {
	backend, err := OpenStorage(cfg)
	if err != nil {
		return nil, err
	}
	opts = append([]task.Option{task.WithKey(cfg.Storage.Key)}, opts...)
	return NewSession(ctx, backend, opts...), nil
}

// NewSession builds a session over an already opened backend.
// The session owns backend and closes it on Close.
func NewSession(ctx context.Context, backend storage.Storage, opts ...task.Option) *Session {
	s := &Session{backend: backend}
	s.store = task.Open(ctx, backend, opts...)
	s.refresh(s.store.Snapshot())
	s.cancel = s.store.Subscribe(s.refresh)
	return s
}

func (s *Session) refresh(tasks []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
	s.stats = view.ComputeStats(tasks)
}

// Store exposes the underlying task store
func (s *Session) Store() *task.TaskStore {
	return s.store
}

// AddTask validates in like the creation form and adds it.
// Validation failures come back as FieldErrors and leave the store untouched.
func (s *Session) AddTask(ctx context.Context, in models.TaskInput) (models.Task, models.FieldErrors) {
	if errs := in.Validate(); errs != nil {
		return models.Task{}, errs
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	return s.store.Add(ctx, in), nil
}

// Toggle flips completion of the task with id and returns the result
func (s *Session) Toggle(ctx context.Context, id string) (models.Task, error) {
	t, ok := s.store.ToggleComplete(ctx, id)
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	return t, nil
}

// Delete removes the task with id
func (s *Session) Delete(ctx context.Context, id string) error {
	if !s.store.Remove(ctx, id) {
		return ErrTaskNotFound
	}
	return nil
}

// Edit validates u and applies it to the task with id.
func (s *Session) Edit(ctx context.Context, id string, u models.Update) (models.Task, error) {
	if errs := validateUpdate(u); errs != nil {
		return models.Task{}, errs
	}
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		u.Title = &title
	}
	if u.Description != nil {
		description := strings.TrimSpace(*u.Description)
		u.Description = &description
	}
	t, ok := s.store.Edit(ctx, id, u)
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}
	return t, nil
}

func validateUpdate(u models.Update) models.FieldErrors {
	errs := models.FieldErrors{}
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs["title"] = "Title is required"
	}
	if u.Description != nil && strings.TrimSpace(*u.Description) == "" {
		errs["description"] = "Description is required"
	}
	if u.Priority != nil && !u.Priority.Valid() {
		errs["priority"] = "Priority must be low, medium, or high"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Tasks returns the full list in display order
func (s *Session) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Stats returns the counters for the full list
func (s *Session) Stats() view.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Board returns the list screen for f
func (s *Session) Board(f models.Filter) view.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return view.Board{
		Filter: f,
		Tasks:  view.Filter(s.tasks, f),
		Stats:  s.stats,
	}
}

// Resolve turns a user supplied reference into a task id. A reference is
// an exact id, a 1-based position in the full list, or a unique id prefix.
func (s *Session) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: empty reference", ErrTaskNotFound)
	}

	tasks := s.Tasks()
	for _, t := range tasks {
		if t.ID == ref {
			return t.ID, nil
		}
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(tasks) {
			return "", fmt.Errorf("%w: position %d out of range", ErrTaskNotFound, n)
		}
		return tasks[n-1].ID, nil
	}

	var match string
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("%w: %s", ErrAmbiguousRef, ref)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	}
	return match, nil
}

// Ping checks the storage backend
func (s *Session) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// LastPersistError reports the most recent write failure, if any
func (s *Session) LastPersistError() error {
	return s.store.LastPersistError()
}

// Close stops tracking store changes and releases the backend
func (s *Session) Close() error {
	s.cancel()
	return s.backend.Close()
}
