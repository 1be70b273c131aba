package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ObjectStore is the external binary-object collaborator used by submission intake.
// Implementations accept raw bytes plus a target path and hand back a public URL.
type ObjectStore interface {
	Put(targetPath, contentType string, data []byte) (string, error)
	Delete(targetPath string) error
	Usage() (UsageSummary, error)
	Purge(olderThan time.Duration) ([]string, error)
}

// UsageSummary describes what the store currently holds.
type UsageSummary struct {
	FileCount  int   `json:"file_count"`
	TotalBytes int64 `json:"total_bytes"`
}

// LocalStorage persists objects on disk under a base directory and serves them
// through a configurable public base URL.
type LocalStorage struct {
	baseDir string
	baseURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./attachments"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachments directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put writes the given bytes under the base dir and returns the public URL.
// The content type is recorded in the object's sidecar-free world by extension
// only; callers validate MIME types before handing bytes over.
func (s *LocalStorage) Put(targetPath, contentType string, data []byte) (string, error) {
	path := s.resolve(targetPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare attachment directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return s.publicURL(targetPath), nil
}

// PutStream copies from reader into the target path.
func (s *LocalStorage) PutStream(targetPath string, r io.Reader) (string, error) {
	path := s.resolve(targetPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare attachment directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write attachment stream: %w", err)
	}
	return s.publicURL(targetPath), nil
}

// Open returns a read-only handle for the stored object.
func (s *LocalStorage) Open(targetPath string) (io.ReadCloser, error) {
	file, err := os.Open(s.resolve(targetPath))
	if err != nil {
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	return file, nil
}

// Delete removes a stored object if present.
func (s *LocalStorage) Delete(targetPath string) error {
	if err := os.Remove(s.resolve(targetPath)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}

// Usage walks the store and sums object counts and sizes.
func (s *LocalStorage) Usage() (UsageSummary, error) {
	summary := UsageSummary{}
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		summary.FileCount++
		summary.TotalBytes += info.Size()
		return nil
	})
	if err != nil {
		return UsageSummary{}, fmt.Errorf("storage usage: %w", err)
	}
	return summary, nil
}

// Purge removes objects older than the provided age and returns deleted paths.
func (s *LocalStorage) Purge(olderThan time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-olderThan)
	deleted := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("purge attachments: %w", err)
	}
	return deleted, nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *LocalStorage) Path(targetPath string) string {
	return s.resolve(targetPath)
}

func (s *LocalStorage) publicURL(targetPath string) string {
	cleaned := strings.TrimLeft(filepath.ToSlash(targetPath), "/")
	if s.baseURL == "" {
		return "/attachments/" + cleaned
	}
	return s.baseURL + "/" + cleaned
}

func (s *LocalStorage) resolve(targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	return filepath.Join(s.baseDir, targetPath)
}
