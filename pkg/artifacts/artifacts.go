package artifacts

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Store dumps raw extraction responses to disk for offline debugging.
// Files are keyed by a SHA256 of the target URL so re-runs overwrite
// rather than accumulate.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates the dump directory if it doesn't exist.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory: %w", err)
	}
	return &Store{path: path, logger: logger}, nil
}

// key generates a SHA256 hash of the target to use as a filename stem.
func (s *Store) key(target string) string {
	hash := sha256.Sum256([]byte(target))
	return fmt.Sprintf("%x", hash)
}

// Dump writes one raw response body. The label distinguishes which
// method produced it. Write failures are logged, not fatal: losing a
// debug artifact must never fail the extraction that produced it.
func (s *Store) Dump(target, label string, body []byte) {
	name := fmt.Sprintf("%s_%s.html", s.key(target), label)
	filePath := filepath.Join(s.path, name)
	if err := os.WriteFile(filePath, body, 0644); err != nil {
		s.logger.Warn("failed to write artifact", "path", filePath, "error", err)
		return
	}
	s.logger.Debug("wrote artifact", "target", target, "path", filePath)
}

// Read loads a previously dumped body.
func (s *Store) Read(target, label string) ([]byte, error) {
	name := fmt.Sprintf("%s_%s.html", s.key(target), label)
	data, err := os.ReadFile(filepath.Join(s.path, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

// Has reports whether an artifact exists for the target and label.
func (s *Store) Has(target, label string) bool {
	name := fmt.Sprintf("%s_%s.html", s.key(target), label)
	_, err := os.Stat(filepath.Join(s.path, name))
	return err == nil
}
