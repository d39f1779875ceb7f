package images

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FileStore keeps uploaded originals and enhanced outputs in two directories
// on local disk, keyed by the upload's file ID.
type FileStore struct {
	uploadDir string
	outputDir string
}

// NewFileStore creates the directories if needed and returns the store.
func NewFileStore(uploadDir, outputDir string) (*FileStore, error) {
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("images: create dir %s: %w", dir, err)
		}
	}
	return &FileStore{uploadDir: uploadDir, outputDir: outputDir}, nil
}

// SaveUpload streams the uploaded content to disk and returns its path.
func (s *FileStore) SaveUpload(fileID, ext string, r io.Reader) (string, error) {
	path := filepath.Join(s.uploadDir, fileID+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("images: create upload: %w", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("images: write upload: %w", err)
	}
	return path, nil
}

// OutputPath returns the path an enhanced result is written to.
func (s *FileStore) OutputPath(fileID, ext string) string {
	return filepath.Join(s.outputDir, fileID+"_enhanced"+ext)
}

// validFileID reports whether id has the UUID shape every upload is assigned.
// Anything else is rejected before it can reach a glob pattern.
func validFileID(id string) bool {
	return uuid.Validate(id) == nil
}

// FindOutput locates the enhanced file for fileID regardless of extension.
func (s *FileStore) FindOutput(fileID string) (string, bool) {
	if !validFileID(fileID) {
		return "", false
	}
	matches, err := filepath.Glob(filepath.Join(s.outputDir, fileID+"_enhanced.*"))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[0], true
}

// Remove deletes the upload and output files for fileID if present.
func (s *FileStore) Remove(fileID string) error {
	if !validFileID(fileID) {
		return fmt.Errorf("images: invalid file id %q", fileID)
	}
	patterns := []string{
		filepath.Join(s.uploadDir, fileID+".*"),
		filepath.Join(s.outputDir, fileID+"_enhanced.*"),
	}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("images: glob %s: %w", pattern, err)
		}
		for _, match := range matches {
			if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("images: remove %s: %w", match, err)
			}
		}
	}
	return nil
}

// PurgeOlderThan deletes stored files last modified before cutoff and
// reports how many were removed.
func (s *FileStore) PurgeOlderThan(cutoff time.Time) (int, error) {
	removed := 0
	for _, dir := range []string{s.uploadDir, s.outputDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, fmt.Errorf("images: read dir %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				path := filepath.Join(dir, entry.Name())
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					return removed, fmt.Errorf("images: purge %s: %w", path, err)
				}
				removed++
			}
		}
	}
	return removed, nil
}
