// Package stationlock keeps a single experiment session running per station.
package stationlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"voicejudge/internal/faults"
)

// ErrHeld is returned when another process already holds the station lock.
var ErrHeld = errors.New("another session is already running on this station")

// Lock is an acquired station lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes the lock at path without waiting.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrConfiguration, "stationlock", "acquire", path, ErrHeld)
	}
	return &Lock{path: path, lock: lock}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks the station. Releasing twice is harmless.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
