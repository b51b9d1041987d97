package shared

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// CheckpointLock guards a checkpoint target against concurrent writers.
type CheckpointLock struct {
	path string
	lock *flock.Flock
}

// LockCheckpoint takes an exclusive advisory lock on "<target>.lock".
//
// The checkpoint directory is created if missing. Returns [ErrCheckpointLocked] when another
// process already holds the lock.
func LockCheckpoint(target string) (*CheckpointLock, error) {
	path := target + ".lock"
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: create checkpoint directory: %w", ErrCheckpoint, err)
	}
	fl := flock.New(path)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire lock %s: %w", ErrCheckpoint, path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointLocked, path)
	}
	return &CheckpointLock{path: path, lock: fl}, nil
}

// Path returns the lock file path.
func (l *CheckpointLock) Path() string {
	return l.path
}

// Unlock releases the lock. The lock file is left in place.
func (l *CheckpointLock) Unlock() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
