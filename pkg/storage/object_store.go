package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ObjectStore persists uploaded files on disk and hands out public URLs.
// It stands in for the hosted object-storage boundary: upload a binary under
// a path derived from the owning user and a timestamp, then link the returned
// URL into the owning row.
type ObjectStore struct {
	baseDir       string
	publicBaseURL string
}

// NewObjectStore ensures the base directory exists and returns a handle.
func NewObjectStore(baseDir, publicBaseURL string) (*ObjectStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &ObjectStore{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// ObjectPath derives the storage path for an owner's upload.
func (s *ObjectStore) ObjectPath(ownerID, filename string) string {
	return fmt.Sprintf("%s/%d-%s", ownerID, time.Now().UTC().Unix(), sanitize(filename))
}

// Save writes the given bytes under the provided relative path and returns
// the object's public URL.
func (s *ObjectStore) Save(path string, data []byte) (string, error) {
	full := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return s.PublicURL(path), nil
}

// SaveStream copies from reader into the target path and returns the public URL.
func (s *ObjectStore) SaveStream(path string, r io.Reader) (string, error) {
	full := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	return s.PublicURL(path), nil
}

// SaveMultipart stores an uploaded multipart file under the owner's prefix.
func (s *ObjectStore) SaveMultipart(ownerID string, header *multipart.FileHeader) (string, string, error) {
	src, err := header.Open()
	if err != nil {
		return "", "", fmt.Errorf("open multipart file: %w", err)
	}
	defer src.Close() //nolint:errcheck

	path := s.ObjectPath(ownerID, header.Filename)
	url, err := s.SaveStream(path, src)
	if err != nil {
		return "", "", err
	}
	return path, url, nil
}

// PublicURL returns the public URL for a stored object path.
func (s *ObjectStore) PublicURL(path string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(path, "/")
}

// PathFromURL maps a public URL back to the object path, if it belongs to
// this store.
func (s *ObjectStore) PathFromURL(url string) (string, bool) {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// Delete removes a stored object if present.
func (s *ObjectStore) Delete(path string) error {
	full := s.resolve(path)
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Dir exposes the base directory, used to mount static file serving.
func (s *ObjectStore) Dir() string {
	return s.baseDir
}

func (s *ObjectStore) resolve(path string) string {
	return filepath.Join(s.baseDir, filepath.Clean("/"+path))
}

func sanitize(filename string) string {
	name := filepath.Base(filename)
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
