// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// UpdateEnv names the environment variable that makes Golden rewrite its files.
const UpdateEnv = "TASKBOARD_UPDATE_GOLDEN"

// Golden compares got with testdata/<name>.golden in the calling package.
// With TASKBOARD_UPDATE_GOLDEN=1 it rewrites the file with got instead.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()
	path := filepath.Join("testdata", name+".golden")

	if os.Getenv(UpdateEnv) == "1" {
		if err := os.WriteFile(path, got, 0644); err != nil {
			t.Fatalf("update %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("%s differs (rerun with %s=1 to accept)\n--- want\n%s--- got\n%s", path, UpdateEnv, want, got)
	}
}
