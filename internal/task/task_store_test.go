package task

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/tiwariParth/taskboard/internal/models"
	"github.com/tiwariParth/taskboard/internal/storage"
	"github.com/tiwariParth/taskboard/internal/storage/memory"
)

var fixedTime = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

// failingStorage returns err from every Set and delegates the rest.
type failingStorage struct {
	storage.Storage
	err error
}

func (f *failingStorage) Set(ctx context.Context, key string, value []byte) error {
	return f.err
}

// brokenReader fails every Get with err.
type brokenReader struct {
	storage.Storage
	err error
}

func (b *brokenReader) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, b.err
}

func newTestStore(t *testing.T, backend storage.Storage, opts ...Option) (*TaskStore, *[]error) {
	t.Helper()
	var warnings []error
	opts = append([]Option{
		WithClock(func() time.Time { return fixedTime }),
		WithWarnFunc(func(err error) { warnings = append(warnings, err) }),
	}, opts...)
	return Open(context.Background(), backend, opts...), &warnings
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	ts, _ := newTestStore(t, memory.NewMemoryStore())

	const n = 50
	for i := 0; i < n; i++ {
		ts.Add(ctx, models.TaskInput{Title: "t", Description: "d"})
	}

	snap := ts.Snapshot()
	if len(snap) != n {
		t.Fatalf("expected %d tasks, got %d", n, len(snap))
	}
	seen := make(map[string]bool)
	for _, task := range snap {
		if task.ID == "" {
			t.Fatal("task has empty id")
		}
		if seen[task.ID] {
			t.Fatalf("duplicate id %q", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestAddRetriesCollidingIDs(t *testing.T) {
	ctx := context.Background()
	ids := []string{"same", "same", "same", "other"}
	gen := func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	ts, _ := newTestStore(t, memory.NewMemoryStore(), WithIDGenerator(gen))

	first := ts.Add(ctx, models.TaskInput{Title: "a", Description: "a"})
	second := ts.Add(ctx, models.TaskInput{Title: "b", Description: "b"})

	if first.ID != "same" || second.ID != "other" {
		t.Errorf("expected ids same/other, got %s/%s", first.ID, second.ID)
	}
}

func TestAddFallsBackWhenGeneratorRepeats(t *testing.T) {
	ctx := context.Background()
	ts, _ := newTestStore(t, memory.NewMemoryStore(), WithIDGenerator(func() string { return "stuck" }))

	first := ts.Add(ctx, models.TaskInput{Title: "a", Description: "a"})
	second := ts.Add(ctx, models.TaskInput{Title: "b", Description: "b"})

	if first.ID != "stuck" {
		t.Errorf("expected generator id for the first task, got %s", first.ID)
	}
	if second.ID == "" || second.ID == first.ID {
		t.Errorf("expected a fresh fallback id, got %q", second.ID)
	}

	empty, _ := newTestStore(t, memory.NewMemoryStore(), WithIDGenerator(func() string { return "" }))
	if got := empty.Add(ctx, models.TaskInput{Title: "c", Description: "c"}); got.ID == "" {
		t.Error("expected a fallback id when the generator yields nothing")
	}
}

func TestAddDefaults(t *testing.T) {
	ctx := context.Background()
	ts, _ := newTestStore(t, memory.NewMemoryStore())

	task := ts.Add(ctx, models.TaskInput{Title: "Buy milk", Description: "2%"})

	if task.Priority != models.Medium {
		t.Errorf("expected default priority medium, got %q", task.Priority)
	}
	if task.Completed {
		t.Error("new task should not be completed")
	}
	if !task.CreatedAt.Equal(fixedTime) {
		t.Errorf("expected CreatedAt %v, got %v", fixedTime, task.CreatedAt)
	}
}

func TestAddPrependsNewestFirst(t *testing.T) {
	ctx := context.Background()
	ts, _ := newTestStore(t, memory.NewMemoryStore(), WithIDGenerator(sequentialIDs()))

	ts.Add(ctx, models.TaskInput{Title: "first", Description: "d"})
	ts.Add(ctx, models.TaskInput{Title: "second", Description: "d"})
	ts.Add(ctx, models.TaskInput{Title: "third", Description: "d"})

	var titles []string
	for _, task := range ts.Snapshot() {
		titles = append(titles, task.Title)
	}
	if got := strings.Join(titles, ","); got != "third,second,first" {
		t.Errorf("expected newest first, got %s", got)
	}
}

func TestToggleCompleteIsInvolution(t *testing.T) {
	ctx := context.Background()
	ts, _ := newTestStore(t, memory.NewMemoryStore())
	task := ts.Add(ctx, models.TaskInput{Title: "a", Description: "b"})

	toggled, ok := ts.ToggleComplete(ctx, task.ID)
	if !ok {
		t.Fatal("toggle reported missing task")
	}
	if !toggled.Completed {
		t.Fatal("expected the returned task to be completed")
	}
	got, _ := ts.Get(task.ID)
	if !got.Completed {
		t.Fatal("expected task to be completed after one toggle")
	}

	ts.ToggleComplete(ctx, task.ID)
	got, _ = ts.Get(task.ID)
	if got.Completed {
		t.Error("expected task to be open again after two toggles")
	}
}

func TestUnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewMemoryStore()
	ts, warnings := newTestStore(t, backend)
	ts.Add(ctx, models.TaskInput{Title: "a", Description: "b"})
	before := ts.Snapshot()

	title := "changed"
	if _, ok := ts.ToggleComplete(ctx, "missing"); ok {
		t.Error("toggle of unknown id reported success")
	}
	if ts.Remove(ctx, "missing") {
		t.Error("remove of unknown id reported success")
	}
	if _, ok := ts.Edit(ctx, "missing", models.Update{Title: &title}); ok {
		t.Error("edit of unknown id reported success")
	}

	after := ts.Snapshot()
	if len(after) != len(before) || after[0] != before[0] {
		t.Errorf("store changed after no-op calls: %+v", after)
	}
	if len(*warnings) != 0 {
		t.Errorf("unexpected warnings: %v", *warnings)
	}
}

func TestRemoveTwice(t *testing.T) {
	ctx := context.Background()
	ts, _ := newTestStore(t, memory.NewMemoryStore(), WithIDGenerator(sequentialIDs()))
	a := ts.Add(ctx, models.TaskInput{Title: "a", Description: "a"})
	b := ts.Add(ctx, models.TaskInput{Title: "b", Description: "b"})

	if !ts.Remove(ctx, a.ID) {
		t.Fatal("first remove should find the task")
	}
	if ts.Remove(ctx, a.ID) {
		t.Error("second remove should be a no-op")
	}

	snap := ts.Snapshot()
	if len(snap) != 1 || snap[0].ID != b.ID {
		t.Errorf("expected only %s left, got %+v", b.ID, snap)
	}
}

func TestEditChangesOnlyNamedFields(t *testing.T) {
	ctx := context.Background()
	ts, _ := newTestStore(t, memory.NewMemoryStore())
	task := ts.Add(ctx, models.TaskInput{Title: "a", Description: "b", Priority: models.Low})

	high := models.High
	desc := "updated"
	ts.Edit(ctx, task.ID, models.Update{Priority: &high, Description: &desc})

	got, _ := ts.Get(task.ID)
	if got.Priority != models.High || got.Description != "updated" {
		t.Errorf("edit not applied: %+v", got)
	}
	if got.Title != "a" || got.ID != task.ID || !got.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("edit touched untouched fields: %+v", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	ts, _ := newTestStore(t, memory.NewMemoryStore())
	ts.Add(ctx, models.TaskInput{Title: "a", Description: "b"})

	snap := ts.Snapshot()
	snap[0].Title = "mutated"

	if ts.Snapshot()[0].Title != "a" {
		t.Error("mutating a snapshot changed the store")
	}
}

func TestMutationsWriteThrough(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewMemoryStore()
	ts, _ := newTestStore(t, backend, WithIDGenerator(sequentialIDs()))

	a := ts.Add(ctx, models.TaskInput{Title: "a", Description: "a", Priority: models.High})
	b := ts.Add(ctx, models.TaskInput{Title: "b", Description: "b"})
	ts.ToggleComplete(ctx, a.ID)
	title := "b2"
	ts.Edit(ctx, b.ID, models.Update{Title: &title})

	// A fresh session over the same backend stands in for a restart.
	reloaded := Load(ctx, backend, DefaultKey, nil)
	want := ts.Snapshot()

	if len(reloaded) != len(want) {
		t.Fatalf("expected %d persisted tasks, got %d", len(want), len(reloaded))
	}
	for i := range want {
		if reloaded[i].ID != want[i].ID ||
			reloaded[i].Title != want[i].Title ||
			reloaded[i].Completed != want[i].Completed ||
			reloaded[i].Priority != want[i].Priority ||
			!reloaded[i].CreatedAt.Equal(want[i].CreatedAt) {
			t.Errorf("task %d differs after reload: got %+v, want %+v", i, reloaded[i], want[i])
		}
	}

	ts.Remove(ctx, a.ID)
	if got := Load(ctx, backend, DefaultKey, nil); len(got) != 1 {
		t.Errorf("expected 1 persisted task after remove, got %d", len(got))
	}
}

func TestPersistedFieldNames(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewMemoryStore()
	ts, _ := newTestStore(t, backend)
	ts.Add(ctx, models.TaskInput{Title: "a", Description: "b"})

	data, err := backend.Get(ctx, DefaultKey)
	if err != nil {
		t.Fatalf("expected persisted data: %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("persisted data is not a JSON array: %v", err)
	}

	var keys []string
	for k := range raw[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	want := "completed,createdAt,description,id,priority,title"
	if got := strings.Join(keys, ","); got != want {
		t.Errorf("expected fields %s, got %s", want, got)
	}
}

func TestLoadFailsSoft(t *testing.T) {
	ctx := context.Background()
	readErr := errors.New("disk on fire")

	tests := []struct {
		name      string
		backend   func() storage.Storage
		wantWarns int
	}{
		{
			name:      "absent key",
			backend:   func() storage.Storage { return memory.NewMemoryStore() },
			wantWarns: 0,
		},
		{
			name: "malformed data",
			backend: func() storage.Storage {
				m := memory.NewMemoryStore()
				_ = m.Set(ctx, DefaultKey, []byte("{not json"))
				return m
			},
			wantWarns: 1,
		},
		{
			name: "wrong shape",
			backend: func() storage.Storage {
				m := memory.NewMemoryStore()
				_ = m.Set(ctx, DefaultKey, []byte(`{"id":"1"}`))
				return m
			},
			wantWarns: 1,
		},
		{
			name: "read failure",
			backend: func() storage.Storage {
				return &brokenReader{Storage: memory.NewMemoryStore(), err: readErr}
			},
			wantWarns: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warns []error
			tasks := Load(ctx, tt.backend(), DefaultKey, func(err error) { warns = append(warns, err) })

			if tasks == nil || len(tasks) != 0 {
				t.Errorf("expected empty non-nil list, got %#v", tasks)
			}
			if len(warns) != tt.wantWarns {
				t.Errorf("expected %d warnings, got %v", tt.wantWarns, warns)
			}
		})
	}
}

func TestLoadDropsBadEntries(t *testing.T) {
	ctx := context.Background()
	m := memory.NewMemoryStore()
	data := `[
		{"id":"1","title":"a","description":"a","priority":"high","completed":false,"createdAt":"2024-03-05T14:30:00Z"},
		{"id":"","title":"no id"},
		{"id":"1","title":"dup"},
		{"id":"2","title":"b","description":"b","completed":true,"createdAt":"2024-03-05T14:30:00Z"}
	]`
	_ = m.Set(ctx, DefaultKey, []byte(data))

	var warns []error
	tasks := Load(ctx, m, DefaultKey, func(err error) { warns = append(warns, err) })

	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %+v", tasks)
	}
	if len(warns) != 2 {
		t.Errorf("expected a warning for each dropped entry, got %v", warns)
	}
	if tasks[0].Title != "a" || tasks[1].ID != "2" {
		t.Errorf("unexpected tasks: %+v", tasks)
	}
	if tasks[1].Priority != models.Medium {
		t.Errorf("missing priority should load as medium, got %q", tasks[1].Priority)
	}
}

func TestWriteFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	backend := &failingStorage{Storage: memory.NewMemoryStore(), err: storage.ErrQuotaExceeded}
	ts, warnings := newTestStore(t, backend)

	task := ts.Add(ctx, models.TaskInput{Title: "a", Description: "b"})

	if ts.Len() != 1 {
		t.Fatalf("expected in-memory task despite write failure, got %d", ts.Len())
	}
	if _, ok := ts.Get(task.ID); !ok {
		t.Error("added task not retrievable")
	}
	if len(*warnings) != 1 || !errors.Is((*warnings)[0], storage.ErrQuotaExceeded) {
		t.Errorf("expected one quota warning, got %v", *warnings)
	}
	if !errors.Is(ts.LastPersistError(), storage.ErrQuotaExceeded) {
		t.Errorf("expected LastPersistError to report quota, got %v", ts.LastPersistError())
	}
}

func TestQuotaRecovery(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewMemoryStore(memory.WithQuota(400))
	ts, _ := newTestStore(t, backend, WithIDGenerator(sequentialIDs()))

	a := ts.Add(ctx, models.TaskInput{Title: "a", Description: "a"})
	if ts.LastPersistError() != nil {
		t.Fatalf("first write should fit: %v", ts.LastPersistError())
	}

	long := strings.Repeat("x", 500)
	b := ts.Add(ctx, models.TaskInput{Title: "b", Description: long})
	if !errors.Is(ts.LastPersistError(), storage.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", ts.LastPersistError())
	}

	ts.Remove(ctx, b.ID)
	if ts.LastPersistError() != nil {
		t.Errorf("write after shrinking should succeed: %v", ts.LastPersistError())
	}
	if got := Load(ctx, backend, DefaultKey, nil); len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("expected persisted [%s], got %+v", a.ID, got)
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	ts, _ := newTestStore(t, memory.NewMemoryStore())

	var calls []int
	cancel := ts.Subscribe(func(tasks []models.Task) {
		calls = append(calls, len(tasks))
	})

	a := ts.Add(ctx, models.TaskInput{Title: "a", Description: "a"})
	ts.Add(ctx, models.TaskInput{Title: "b", Description: "b"})
	ts.ToggleComplete(ctx, "missing")
	ts.Remove(ctx, a.ID)

	cancel()
	ts.Add(ctx, models.TaskInput{Title: "c", Description: "c"})

	want := []int{1, 2, 1}
	if fmt.Sprint(calls) != fmt.Sprint(want) {
		t.Errorf("expected notifications %v, got %v", want, calls)
	}
}

func TestOpenWithKey(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewMemoryStore()
	ts, _ := newTestStore(t, backend, WithKey("work"))
	ts.Add(ctx, models.TaskInput{Title: "a", Description: "b"})

	if _, err := backend.Get(ctx, "work"); err != nil {
		t.Errorf("expected data under key work: %v", err)
	}
	if _, err := backend.Get(ctx, DefaultKey); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected nothing under default key, got %v", err)
	}
}

func TestExport(t *testing.T) {
	tasks := []models.Task{
		{ID: "1", Title: "Buy milk", Description: "2%, whole", Priority: models.High, CreatedAt: fixedTime},
		{ID: "2", Title: "Write report", Description: "Q3", Priority: models.Low, Completed: true, CreatedAt: fixedTime},
	}

	var buf bytes.Buffer
	if err := Export(&buf, tasks, "csv"); err != nil {
		t.Fatalf("csv export failed: %v", err)
	}
	wantCSV := "ID,Title,Description,Priority,Completed,Created At\n" +
		"1,Buy milk,\"2%, whole\",high,false,2024-03-05T14:30:00Z\n" +
		"2,Write report,Q3,low,true,2024-03-05T14:30:00Z\n"
	if buf.String() != wantCSV {
		t.Errorf("unexpected csv:\n%s", buf.String())
	}

	buf.Reset()
	if err := Export(&buf, tasks, "json"); err != nil {
		t.Fatalf("json export failed: %v", err)
	}
	var decoded []models.Task
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || len(decoded) != 2 {
		t.Errorf("json export did not decode: %v", err)
	}

	buf.Reset()
	if err := Export(&buf, tasks, "yaml"); err != nil {
		t.Fatalf("yaml export failed: %v", err)
	}
	if !strings.Contains(buf.String(), "title: Buy milk") {
		t.Errorf("yaml export missing title:\n%s", buf.String())
	}

	if err := Export(&buf, tasks, "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
