package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrInvalidPath is returned for paths that escape the storage root
var ErrInvalidPath = errors.New("invalid storage path")

// LocalStorage archives generated reports on the local filesystem
type LocalStorage struct {
	basePath string
	now      func() time.Time
}

// StoredFile describes one archived file
type StoredFile struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath, now: time.Now}, nil
}

// Save writes data under category/YYYY/MM and returns its relative path.
// The file keeps its extension and gets a random prefix so repeated runs never collide.
func (s *LocalStorage) Save(data []byte, filename, category string) (string, error) {
	if !IsValidExtension(filename) {
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
	dir := filepath.Join(s.basePath, category, s.now().Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	stored := fmt.Sprintf("%s_%s", generateID(), filepath.Base(filename))
	filePath := filepath.Join(dir, stored)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	relPath, _ := filepath.Rel(s.basePath, filePath)
	return filepath.ToSlash(relPath), nil
}

// Open returns an archived file for reading
func (s *LocalStorage) Open(relativePath string) (*os.File, error) {
	full, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Delete removes a file
func (s *LocalStorage) Delete(relativePath string) error {
	full, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	return os.Remove(full)
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	full, err := s.resolve(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// List returns the files archived under a category, newest first
func (s *LocalStorage) List(category string) ([]StoredFile, error) {
	root := filepath.Join(s.basePath, category)
	var files []StoredFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(s.basePath, path)
		files = append(files, StoredFile{
			Path:       filepath.ToSlash(rel),
			Name:       d.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ModifiedAt.After(files[j].ModifiedAt) })
	return files, nil
}

// Prune deletes files in a category last modified before cutoff and returns how many were removed
func (s *LocalStorage) Prune(category string, cutoff time.Time) (int, error) {
	files, err := s.List(category)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		if f.ModifiedAt.Before(cutoff) {
			if err := s.Delete(f.Path); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}

func (s *LocalStorage) resolve(relativePath string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(relativePath))
	rel, err := filepath.Rel(s.basePath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}

func generateID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// ContentTypes maps archived extensions to their MIME types
func ContentTypes() map[string]string {
	return map[string]string{
		".pdf":  "application/pdf",
		".csv":  "text/csv",
		".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
}

// ContentType returns the MIME type for a stored filename
func ContentType(filename string) string {
	if ct, ok := ContentTypes()[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// IsValidExtension checks if the file type may be archived
func IsValidExtension(filename string) bool {
	_, ok := ContentTypes()[strings.ToLower(filepath.Ext(filename))]
	return ok
}
