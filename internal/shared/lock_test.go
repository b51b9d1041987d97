package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLockCheckpoint(t *testing.T) {
	target := filepath.Join(t.TempDir(), "hot-100.csv")

	first, err := LockCheckpoint(target)
	if err != nil {
		t.Fatalf("failed to take first lock: %v", err)
	}
	if first.Path() != target+".lock" {
		t.Errorf("unexpected lock path %s", first.Path())
	}

	if _, err := LockCheckpoint(target); !errors.Is(err, ErrCheckpointLocked) {
		t.Fatalf("expected ErrCheckpointLocked for second lock, got %v", err)
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("failed to unlock: %v", err)
	}

	again, err := LockCheckpoint(target)
	if err != nil {
		t.Fatalf("expected lock to be free after unlock: %v", err)
	}
	again.Unlock()
}

func TestLockCheckpoint_CreatesDirectory(t *testing.T) {
	t.Run("missing directory is created", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "checkpoints", "nested", "hot-100.csv")

		lock, err := LockCheckpoint(target)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer lock.Unlock()

		if _, err := os.Stat(lock.Path()); err != nil {
			t.Errorf("expected lock file to exist: %v", err)
		}
	})

	t.Run("unusable directory wraps ErrCheckpoint", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		_, err := LockCheckpoint(filepath.Join(blocker, "hot-100.csv"))
		if !errors.Is(err, ErrCheckpoint) {
			t.Errorf("expected ErrCheckpoint, got %v", err)
		}
	})
}
