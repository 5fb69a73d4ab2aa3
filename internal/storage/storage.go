package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"familyregistry/internal/config"
)

// URLPrefix is the route prefix under which stored files are served and the
// prefix of every path recorded on a family record.
const URLPrefix = "uploads"

// ErrInvalidName is returned for stored names that could escape the upload area
var ErrInvalidName = errors.New("invalid upload name")

// File is one uploaded file as received from a multipart form
type File struct {
	FieldName   string
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Uploader persists uploaded files and serves them back
type Uploader interface {
	// Save stores the file and returns the path to record on the family
	Save(ctx context.Context, file *File) (string, error)
	// Remove deletes a file previously returned by Save
	Remove(ctx context.Context, storedPath string) error
	// Serve writes the stored file named name to the response
	Serve(w http.ResponseWriter, r *http.Request, name string)
}

// New builds the uploader selected by cfg.Backend
func New(ctx context.Context, cfg config.UploadConfig) (Uploader, error) {
	switch cfg.Backend {
	case "", "disk":
		return NewDiskUploader(cfg.Dir), nil
	case "minio":
		return NewMinioUploader(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported upload backend: %s", cfg.Backend)
	}
}

// ObjectName builds the stored name for an upload: the form field name, the
// upload time in unix milliseconds, a short random suffix and the original extension.
func ObjectName(fieldName, filename string, now time.Time) string {
	if fieldName == "" {
		fieldName = "file"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return fieldName + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix + ext
}

// StoredPath is the path recorded on a family for the object name
func StoredPath(name string) string {
	return path.Join(URLPrefix, name)
}

// NameFromStoredPath recovers the object name from a recorded path.
// Only paths directly under URLPrefix are accepted.
func NameFromStoredPath(storedPath string) (string, error) {
	p := filepath.ToSlash(storedPath)
	if strings.HasSuffix(p, "/") || path.Dir(p) != URLPrefix {
		return "", ErrInvalidName
	}
	name := path.Base(p)
	if err := checkName(name); err != nil {
		return "", err
	}
	return name, nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || name == "/" {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return ErrInvalidName
	}
	return nil
}
