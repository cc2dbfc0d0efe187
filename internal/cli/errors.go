package cli

import (
	"errors"
	"fmt"

	"github.com/tiwariParth/taskboard/internal/app"
	"github.com/tiwariParth/taskboard/internal/exitcode"
	"github.com/tiwariParth/taskboard/internal/storage"
)

// exitError carries the exit code a failure should produce
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error    { return &exitError{code: exitcode.UserError, err: err} }
func configError(err error) error  { return &exitError{code: exitcode.ConfigError, err: err} }
func storageError(err error) error { return &exitError{code: exitcode.StorageError, err: err} }

// codeFor maps an error returned by a command to its exit code.
// Anything unclassified, cobra's own argument errors included, is a user error.
func codeFor(err error) int {
	var ee *exitError
	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, storage.ErrStorageConnection), errors.Is(err, storage.ErrQuotaExceeded):
		return exitcode.StorageError
	default:
		return exitcode.UserError
	}
}

// checkSaved turns a failed write-through into a storage error. The change
// was applied in memory but will not outlive this process.
func checkSaved(s *app.Session) error {
	if err := s.LastPersistError(); err != nil {
		return storageError(fmt.Errorf("change was not saved: %w", err))
	}
	return nil
}
