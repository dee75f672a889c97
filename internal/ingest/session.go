package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/joseph-ayodele/receipts-scanner/constants"
)

// Session tracks the receipt images uploaded for one batch. Files live in a
// single flat upload directory; Reset wipes them so a new batch starts from
// a clean slate.
type Session struct {
	dir    string
	logger *slog.Logger

	mu    sync.Mutex
	names []string // upload order, deduplicated
}

func NewSession(dir string, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Session{dir: dir, logger: logger}, nil
}

func (s *Session) Dir() string { return s.dir }

// Save writes one uploaded file into the session directory. Only the base
// name is kept, so client-supplied paths cannot escape the upload dir.
func (s *Session) Save(filename string, r io.Reader) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("invalid filename %q", filename)
	}

	dst := filepath.Join(s.dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.names {
		if n == name {
			return name, nil
		}
	}
	s.names = append(s.names, name)
	s.logger.Debug("ingest.saved", "name", name)
	return name, nil
}

// Track registers an already-present file (e.g. found by the watcher).
func (s *Session) Track(name string) {
	name = filepath.Base(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.names {
		if n == name {
			return
		}
	}
	s.names = append(s.names, name)
}

// Images returns absolute paths of the session's supported images, in sorted
// name order (the processing order of a batch).
func (s *Session) Images() []string {
	s.mu.Lock()
	names := append([]string(nil), s.names...)
	s.mu.Unlock()

	var out []string
	for _, n := range names {
		if constants.IsImageExt(constants.NormalizeExt(filepath.Ext(n))) {
			out = append(out, filepath.Join(s.dir, n))
		}
	}
	sort.Strings(out)
	return out
}

// Reset clears the tracked list and deletes every file in the upload
// directory.
func (s *Session) Reset() error {
	s.mu.Lock()
	s.names = nil
	s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read upload dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			s.logger.Warn("ingest.reset.remove_failed", "name", e.Name(), "error", err)
		}
	}
	s.logger.Info("ingest.reset", "dir", s.dir)
	return nil
}
