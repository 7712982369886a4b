package files

import (
	"context"
	"errors"
	"io"
	"os"
)

// PermissionStatus is the answer of the permission collaborator
type PermissionStatus string

const (
	Granted PermissionStatus = "granted"
	Denied  PermissionStatus = "denied"
)

// Permission is the storage permission collaborator
type Permission interface {
	Query(ctx context.Context) PermissionStatus
	Request(ctx context.Context) PermissionStatus
}

// OSPermission grants access when the media root can be opened for reading.
// There is nothing to negotiate on a plain filesystem, so Request re-checks.
type OSPermission struct {
	root string
}

// NewOSPermission creates a permission check for root
func NewOSPermission(root string) *OSPermission {
	return &OSPermission{root: root}
}

// Query reports whether the root is readable
func (p *OSPermission) Query(ctx context.Context) PermissionStatus {
	if ctx.Err() != nil {
		return Denied
	}
	f, err := os.Open(p.root)
	if err != nil {
		return Denied
	}
	defer f.Close()

	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return Denied
	}
	return Granted
}

// Request performs the same check as Query
func (p *OSPermission) Request(ctx context.Context) PermissionStatus {
	return p.Query(ctx)
}
