package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.]`)

// ImageStore persists uploaded images on disk under a base directory. Callers
// only ever see relative paths of the form "/uploads/<name>"; the absolute
// location stays private to this package.
type ImageStore struct {
	baseDir string
}

// NewImageStore ensures the base directory exists and returns a handle.
func NewImageStore(baseDir string) (*ImageStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &ImageStore{baseDir: baseDir}, nil
}

// Store writes the given bytes under a unique sanitized name derived from the
// suggested one and returns the relative path to record on the owning entity.
func (s *ImageStore) Store(data []byte, suggestedName string) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), unsafeChars.ReplaceAllString(filepath.Base(suggestedName), ""))
	if err := os.WriteFile(filepath.Join(s.baseDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return "/uploads/" + name, nil
}

// Read returns the stored bytes for a previously issued relative path.
func (s *ImageStore) Read(relativePath string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(relativePath))
	if err != nil {
		return nil, fmt.Errorf("read upload file: %w", err)
	}
	return data, nil
}

// Exists reports whether the relative path still resolves to a stored file.
func (s *ImageStore) Exists(relativePath string) bool {
	_, err := os.Stat(s.resolve(relativePath))
	return err == nil
}

// Delete removes a stored file if present.
func (s *ImageStore) Delete(relativePath string) error {
	if err := os.Remove(s.resolve(relativePath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *ImageStore) Path(relativePath string) string {
	return s.resolve(relativePath)
}

func (s *ImageStore) resolve(relativePath string) string {
	// Stored paths look like "/uploads/<name>"; only the basename matters.
	name := filepath.Base(strings.TrimSpace(relativePath))
	return filepath.Join(s.baseDir, name)
}
