package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DirScope is a working directory change that must be undone.
type DirScope struct {
	prev     string
	dir      string
	created  bool
	restored bool
}

// EnterDir creates dir if needed and makes it the working directory.
func EnterDir(dir string) (*DirScope, error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	_, err = os.Stat(dir)
	created := errors.Is(err, fs.ErrNotExist)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("entering directory %s: %w", dir, err)
	}
	return &DirScope{prev: prev, dir: dir, created: created}, nil
}

// Restore returns to the previous working directory. Calling it again is a
// no-op.
func (s *DirScope) Restore() error {
	if s == nil || s.restored {
		return nil
	}
	if err := os.Chdir(s.prev); err != nil {
		return fmt.Errorf("restoring working directory %s: %w", s.prev, err)
	}
	s.restored = true
	return nil
}

// Discard restores the previous working directory and removes the entered
// directory when EnterDir created it and nothing was stored in it.
func (s *DirScope) Discard() error {
	if err := s.Restore(); err != nil || s == nil || !s.created {
		return err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil || len(entries) > 0 {
		return nil
	}
	if err := os.Remove(s.dir); err != nil {
		return fmt.Errorf("removing empty directory %s: %w", s.dir, err)
	}
	return nil
}
