package formatter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

// FileCheckpoint persists a table as a CSV file, replacing the whole file on every save.
//
// Writes go to a temporary file in the same directory which is then renamed over Path,
// so a reader never sees a half-written table.
type FileCheckpoint struct {
	Path string
}

// NewFileCheckpoint returns a checkpoint stored at path.
func NewFileCheckpoint(path string) *FileCheckpoint {
	return &FileCheckpoint{Path: path}
}

// Name identifies the checkpoint in logs and run history.
func (c *FileCheckpoint) Name() string {
	return c.Path
}

// Exists reports whether a checkpoint file is present.
func (c *FileCheckpoint) Exists() bool {
	_, err := os.Stat(c.Path)
	return err == nil
}

func (c *FileCheckpoint) SaveObservations(ctx context.Context, rows []models.ChartObservation) error {
	data, err := ExportObservationsCSV(rows)
	if err != nil {
		return err
	}
	return WriteFileAtomic(c.Path, data)
}

// LoadObservations reads the checkpoint back. A missing file is an empty table.
func (c *FileCheckpoint) LoadObservations(ctx context.Context) ([]models.ChartObservation, error) {
	data, err := c.read()
	if err != nil || data == nil {
		return nil, err
	}
	return ParseObservationsCSV(bytes.NewReader(data))
}

func (c *FileCheckpoint) SaveTracks(ctx context.Context, rows []models.TrackRecord) error {
	data, err := ExportTracksCSV(rows)
	if err != nil {
		return err
	}
	return WriteFileAtomic(c.Path, data)
}

// LoadTracks reads the checkpoint back. A missing file is an empty table.
func (c *FileCheckpoint) LoadTracks(ctx context.Context) ([]models.TrackRecord, error) {
	data, err := c.read()
	if err != nil || data == nil {
		return nil, err
	}
	return ParseTracksCSV(bytes.NewReader(data))
}

func (c *FileCheckpoint) read() ([]byte, error) {
	data, err := os.ReadFile(c.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCheckpoint, err)
	}
	return data, nil
}

// WriteFileAtomic replaces path with data via a temporary file and rename.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", shared.ErrCheckpoint, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", shared.ErrCheckpoint, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to write %s: %v", shared.ErrCheckpoint, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to close %s: %v", shared.ErrCheckpoint, path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to chmod %s: %v", shared.ErrCheckpoint, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to replace %s: %v", shared.ErrCheckpoint, path, err)
	}
	return nil
}
