package files

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"
)

// RawEntry is one record as returned by the filesystem collaborator,
// before filtering and sorting
type RawEntry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    *int64
	ModTime *time.Time
}

// Entry is one file or directory of a listing
type Entry struct {
	Name      string     `json:"name"`
	Path      string     `json:"path"`
	IsDir     bool       `json:"is_dir"`
	Size      *int64     `json:"size,omitempty"`
	SizeLabel string     `json:"size_label,omitempty"`
	ModTime   *time.Time `json:"mod_time,omitempty"`
}

// Crumb is one segment of the breadcrumb trail
type Crumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// View is what a client renders for a navigator
type View struct {
	Path        string           `json:"path"`
	History     []string         `json:"history"`
	Breadcrumbs []Crumb          `json:"breadcrumbs"`
	Entries     []Entry          `json:"entries"`
	Loading     bool             `json:"loading"`
	CanGoBack   bool             `json:"can_go_back"`
	Error       *FilesystemError `json:"error,omitempty"`
}

// ErrorKind classifies a failed listing
type ErrorKind string

const (
	PermissionDenied ErrorKind = "permission_denied"
	NotFound         ErrorKind = "not_found"
	Unknown          ErrorKind = "unknown"
)

// ErrOutsideRoot is returned for paths that escape the media root
var ErrOutsideRoot = errors.New("path escapes media root")

// FilesystemError is the non-fatal notice raised when a listing fails
type FilesystemError struct {
	Kind ErrorKind `json:"kind"`
	Path string    `json:"path"`
	Err  error     `json:"-"`
}

func (e *FilesystemError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// Message is the user-facing text of the notice
func (e *FilesystemError) Message() string {
	switch e.Kind {
	case PermissionDenied:
		return "Storage access was denied"
	case NotFound:
		return "Folder no longer exists"
	default:
		return "Could not read folder"
	}
}

// MarshalJSON adds the user-facing message
func (e *FilesystemError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    ErrorKind `json:"kind"`
		Path    string    `json:"path"`
		Message string    `json:"message"`
	}{e.Kind, e.Path, e.Message()})
}

// ClassifyError wraps err into a FilesystemError of the matching kind.
// An existing FilesystemError is returned unchanged.
func ClassifyError(path string, err error) *FilesystemError {
	if err == nil {
		return nil
	}

	var fsErr *FilesystemError
	if errors.As(err, &fsErr) {
		return fsErr
	}

	kind := Unknown
	switch {
	case errors.Is(err, fs.ErrPermission), errors.Is(err, ErrOutsideRoot):
		kind = PermissionDenied
	case errors.Is(err, fs.ErrNotExist):
		kind = NotFound
	}

	return &FilesystemError{Kind: kind, Path: path, Err: err}
}
