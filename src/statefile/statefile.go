package statefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"
)

// Store reads and writes whole-file JSON state records. Writes go through
// a temp file plus rename so a concurrent reader never observes a torn
// record.
type Store struct {
	dir string
}

// NewStore creates the state directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the absolute location of a named state file.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Write marshals v and atomically replaces the named state file.
func (s *Store) Write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	target := s.Path(name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp for %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp for %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", name, err)
	}

	logger.WithFields(logger.Fields{
		"file":  target,
		"bytes": len(data),
	}).Debug("state file written")

	return nil
}

// Read unmarshals the named state file into v. A missing file is returned
// as os.ErrNotExist so callers can start from fresh state.
func (s *Store) Read(name string, v any) error {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
