// Package parts tracks the numbered PART<n>.html page files written while
// fetching, and the PART<n>-img<k> images saved alongside them. Numbering is
// contiguous from 1 and inferred from the directory listing, so a directory
// must only be used by one run at a time.
package parts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	prefix = "PART"
	suffix = ".html"
)

var (
	partName  = regexp.MustCompile(`^PART(\d+)\.html$`)
	imageName = regexp.MustCompile(`^PART\d+-img\d+\.[a-z0-9]+$`)
)

// Store manages part files in one directory. An empty Dir means the current
// working directory at the time of each call.
type Store struct {
	Dir string
}

// New creates a Store rooted at dir.
func New(dir string) *Store {
	return &Store{Dir: dir}
}

// Name returns the file name of part n.
func Name(n int) string {
	return prefix + strconv.Itoa(n) + suffix
}

// IsPart reports whether a base file name follows the part naming convention.
func IsPart(name string) bool {
	return partName.MatchString(name)
}

// ImageName returns the path of the k-th image saved for the part at path.
func ImageName(part string, k int, ext string) string {
	base := strings.TrimSuffix(filepath.Base(part), suffix)
	return filepath.Join(filepath.Dir(part), base+"-img"+strconv.Itoa(k)+ext)
}

// IsImage reports whether a base file name is an image saved for a part.
func IsImage(name string) bool {
	return imageName.MatchString(name)
}

// Count returns the number of part files currently present.
func (s *Store) Count() (int, error) {
	names, err := s.list(IsPart)
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// NamesInRange returns the names of parts from+1 through to, in order.
func (s *Store) NamesInRange(from, to int) []string {
	if to <= from {
		return nil
	}
	names := make([]string, 0, to-from)
	for n := from + 1; n <= to; n++ {
		names = append(names, s.path(Name(n)))
	}
	return names
}

// Write stores content as the next part file and returns its name.
// It refuses to replace an existing file so a numbering hole can never
// silently overwrite a page.
func (s *Store) Write(content []byte) (string, error) {
	n, err := s.Count()
	if err != nil {
		return "", err
	}
	name := s.path(Name(n + 1))

	f, err := os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating part file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("writing part file %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("closing part file %s: %w", name, err)
	}
	return name, nil
}

// RemoveAll deletes every part file and saved image. It is safe to call
// when none exist.
func (s *Store) RemoveAll() error {
	names, err := s.list(func(name string) bool { return IsPart(name) || IsImage(name) })
	if err != nil {
		return err
	}
	var errs []error
	for _, name := range names {
		if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) list(match func(string) bool) ([]string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing part files: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && match(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *Store) path(name string) string {
	if s.Dir == "" {
		return name
	}
	return filepath.Join(s.Dir, name)
}
