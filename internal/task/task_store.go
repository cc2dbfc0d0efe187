package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tiwariParth/taskboard/internal/models"
	"github.com/tiwariParth/taskboard/internal/storage"
)

// DefaultKey is the storage key the task list is persisted under.
const DefaultKey = "tasks"

// WarnFunc receives persistence problems that must not fail the caller.
type WarnFunc func(err error)

// TaskStore owns the ordered task list of one session and mirrors it to
// durable storage after every mutation. Newest tasks come first.
type TaskStore struct {
	backend storage.Storage
	key     string
	now     func() time.Time
	newID   func() string
	warn    WarnFunc

	mu        sync.Mutex
	tasks     []models.Task
	listeners map[int]func([]models.Task)
	nextSub   int
	lastErr   error
}

// Option configures a TaskStore
type Option func(*TaskStore)

// WithKey sets the storage key. The default is DefaultKey.
func WithKey(key string) Option {
	return func(ts *TaskStore) { ts.key = key }
}

// WithClock replaces time.Now for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(ts *TaskStore) { ts.now = now }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(ts *TaskStore) { ts.newID = gen }
}

// WithWarnFunc routes persistence warnings. The default logs them.
func WithWarnFunc(fn WarnFunc) Option {
	return func(ts *TaskStore) { ts.warn = fn }
}

// Open creates a TaskStore initialized from whatever backend holds under the
// configured key. It never fails: unreadable data starts an empty list.
func Open(ctx context.Context, backend storage.Storage, opts ...Option) *TaskStore {
	ts := &TaskStore{
		backend:   backend,
		key:       DefaultKey,
		now:       time.Now,
		newID:     uuid.NewString,
		warn:      logWarning,
		listeners: make(map[int]func([]models.Task)),
	}
	for _, opt := range opts {
		opt(ts)
	}

	ts.tasks = Load(ctx, backend, ts.key, ts.warn)
	return ts
}

// Load reads the persisted task list. A missing key, a read error or
// malformed data all yield an empty list; the latter two are reported to warn.
// Entries without an id or repeating an earlier id are dropped.
func Load(ctx context.Context, backend storage.Storage, key string, warn WarnFunc) []models.Task {
	if warn == nil {
		warn = logWarning
	}

	data, err := backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			warn(fmt.Errorf("failed to load tasks: %w", err))
		}
		return []models.Task{}
	}

	var decoded []models.Task
	if err := json.Unmarshal(data, &decoded); err != nil {
		warn(fmt.Errorf("failed to decode tasks: %w", err))
		return []models.Task{}
	}

	tasks := make([]models.Task, 0, len(decoded))
	seen := make(map[string]struct{}, len(decoded))
	for _, t := range decoded {
		if t.ID == "" {
			warn(fmt.Errorf("dropping task without id (title %q)", t.Title))
			continue
		}
		if _, dup := seen[t.ID]; dup {
			warn(fmt.Errorf("dropping task with duplicate id %q", t.ID))
			continue
		}
		seen[t.ID] = struct{}{}
		if t.Priority == "" {
			t.Priority = models.Medium
		}
		tasks = append(tasks, t)
	}
	return tasks
}

// Add creates a task from in, puts it at the front of the list and persists.
// The input is not validated here; that is the form's job.
func (ts *TaskStore) Add(ctx context.Context, in models.TaskInput) models.Task {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	priority := in.Priority
	if priority == "" {
		priority = models.Medium
	}

	task := models.Task{
		ID:          ts.uniqueID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    priority,
		Completed:   false,
		CreatedAt:   ts.now(),
	}

	ts.tasks = append([]models.Task{task}, ts.tasks...)
	ts.commit(ctx)
	return task
}

// ToggleComplete flips the completed flag of the task with id and returns
// the task as it now stands. It reports whether such a task exists; an
// unknown id changes nothing.
func (ts *TaskStore) ToggleComplete(ctx context.Context, id string) (models.Task, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	i := ts.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	ts.tasks[i].Completed = !ts.tasks[i].Completed
	t := ts.tasks[i]
	ts.commit(ctx)
	return t, true
}

// Remove deletes the task with id and reports whether it existed.
func (ts *TaskStore) Remove(ctx context.Context, id string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	i := ts.indexOf(id)
	if i < 0 {
		return false
	}
	ts.tasks = append(ts.tasks[:i:i], ts.tasks[i+1:]...)
	ts.commit(ctx)
	return true
}

// Edit applies u to the task with id and returns the edited task.
// It reports whether the task existed.
func (ts *TaskStore) Edit(ctx context.Context, id string, u models.Update) (models.Task, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	i := ts.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	u.Apply(&ts.tasks[i])
	t := ts.tasks[i]
	ts.commit(ctx)
	return t, true
}

// Get returns the task with id
func (ts *TaskStore) Get(id string) (models.Task, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	i := ts.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	return ts.tasks[i], true
}

// Snapshot returns a copy of the current list in display order.
func (ts *TaskStore) Snapshot() []models.Task {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.snapshotLocked()
}

// Len returns the number of tasks held
func (ts *TaskStore) Len() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.tasks)
}

// Subscribe registers fn to receive a snapshot after every mutation.
// fn runs while the store is locked and must not call back into it.
// The returned function removes the subscription.
func (ts *TaskStore) Subscribe(fn func([]models.Task)) (cancel func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	id := ts.nextSub
	ts.nextSub++
	ts.listeners[id] = fn

	return func() {
		ts.mu.Lock()
		defer ts.mu.Unlock()
		delete(ts.listeners, id)
	}
}

// LastPersistError returns the error of the most recent write, or nil if it
// succeeded.
func (ts *TaskStore) LastPersistError() error {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.lastErr
}

// Helper functions

// commit writes the full list through to storage and notifies listeners.
// A failed write leaves the in-memory change in place.
func (ts *TaskStore) commit(ctx context.Context) {
	ts.lastErr = ts.persist(ctx)
	if ts.lastErr != nil {
		ts.warn(ts.lastErr)
	}

	if len(ts.listeners) == 0 {
		return
	}
	snap := ts.snapshotLocked()
	for _, fn := range ts.listeners {
		fn(snap)
	}
}

func (ts *TaskStore) persist(ctx context.Context) error {
	data, err := json.Marshal(ts.tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := ts.backend.Set(ctx, ts.key, data); err != nil {
		return fmt.Errorf("failed to save tasks: %w", err)
	}
	return nil
}

func (ts *TaskStore) snapshotLocked() []models.Task {
	out := make([]models.Task, len(ts.tasks))
	copy(out, ts.tasks)
	return out
}

func (ts *TaskStore) indexOf(id string) int {
	for i := range ts.tasks {
		if ts.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// maxIDAttempts bounds how often a configured generator may repeat itself
// before uniqueID falls back to a random UUID.
const maxIDAttempts = 16

func (ts *TaskStore) uniqueID() string {
	for i := 0; i < maxIDAttempts; i++ {
		id := ts.newID()
		if id != "" && ts.indexOf(id) < 0 {
			return id
		}
	}
	for {
		if id := uuid.NewString(); ts.indexOf(id) < 0 {
			return id
		}
	}
}

func logWarning(err error) {
	log.Printf("warning: %v", err)
}
