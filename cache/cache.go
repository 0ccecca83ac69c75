package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Store is a file-backed cache for rendered page HTML. Entries expire
// after ttl and are cleared explicitly when a page changes.
type Store struct {
	dir string
	ttl time.Duration
}

func NewStore(dir string, ttl time.Duration) *Store {
	return &Store{dir: dir, ttl: ttl}
}

func (s *Store) pagePath(pageID int) string {
	hash := xxhash.Sum64String(fmt.Sprintf("page:%d", pageID))
	return filepath.Join(s.dir, fmt.Sprintf("page_%d_%016x.html", pageID, hash))
}

// Write stores the rendered HTML for a page.
func (s *Store) Write(pageID int, html string) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(s.pagePath(pageID), []byte(html), 0644)
}

// Read returns the cached HTML for a page if present and not expired.
func (s *Store) Read(pageID int) (string, bool) {
	path := s.pagePath(pageID)

	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	if time.Since(info.ModTime()) > s.ttl {
		return "", false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(content), true
}

// ClearPage removes the cached HTML for a page. A missing entry is not
// an error.
func (s *Store) ClearPage(pageID int) error {
	err := os.Remove(s.pagePath(pageID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ClearAll removes every cached page.
func (s *Store) ClearAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		os.Remove(filepath.Join(s.dir, entry.Name()))
	}
	return nil
}
