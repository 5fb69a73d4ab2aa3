package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DiskUploader keeps uploads in a local directory
type DiskUploader struct {
	dir string
}

// NewDiskUploader creates an uploader writing into dir
func NewDiskUploader(dir string) *DiskUploader {
	return &DiskUploader{dir: dir}
}

// Save writes the file into the upload directory
func (u *DiskUploader) Save(ctx context.Context, file *File) (string, error) {
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := ObjectName(file.FieldName, file.Filename, time.Now())
	dst, err := os.OpenFile(filepath.Join(u.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(dst, file.Content); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return StoredPath(name), nil
}

// Remove deletes a stored file; a missing file is not an error
func (u *DiskUploader) Remove(ctx context.Context, storedPath string) error {
	name, err := NameFromStoredPath(storedPath)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(u.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

// Serve streams the stored file
func (u *DiskUploader) Serve(w http.ResponseWriter, r *http.Request, name string) {
	if err := checkName(name); err != nil {
		http.NotFound(w, r)
		return
	}
	fullPath := filepath.Join(u.dir, name)
	if info, err := os.Stat(fullPath); err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, fullPath)
}
