package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"auditdesk/internal/utils"
)

var ErrObjectNotFound = errors.New("object not found")

// Object describes one stored blob.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType,omitempty"`
	LastModified time.Time `json:"lastModified"`
}

// Backend stores document bytes. Metadata lives in the database; a backend
// only ever sees opaque keys.
type Backend interface {
	Name() string
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// List returns every object stored under the project's prefix.
	List(ctx context.Context, projectID string) ([]Object, error)
}

func ProjectPrefix(projectID string) string {
	return fmt.Sprintf("project-%s/", projectID)
}

// ObjectKey builds a unique key for an uploaded file. Two uploads of the same
// file name never share a key.
func ObjectKey(projectID, fileName string) string {
	return ProjectPrefix(projectID) + utils.NanoIDSize(12) + "-" + cleanFileName(fileName)
}

func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)

	name = strings.Trim(name, ".")
	if name == "" {
		return "file"
	}
	return name
}
