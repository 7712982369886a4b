package files

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// MaxDirEntries is the maximum number of directory entries read per listing
const MaxDirEntries = 5000

// Lister is the filesystem collaborator. Paths are virtual and slash
// separated, "/" being the media root.
type Lister interface {
	ReadDirectory(ctx context.Context, dir string) ([]RawEntry, error)
}

// OSLister reads directories below a root on the local disk
type OSLister struct {
	root string
}

// NewOSLister creates a lister rooted at root
func NewOSLister(root string) (*OSLister, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid media root: %w", err)
	}
	return &OSLister{root: filepath.Clean(abs)}, nil
}

// Root returns the on-disk directory mapped to "/"
func (l *OSLister) Root() string {
	return l.root
}

// Resolve maps a virtual path to its on-disk location, refusing anything
// that would escape the root
func (l *OSLister) Resolve(virtual string) (string, error) {
	clean := CleanPath(virtual)
	if strings.Contains(virtual, "\x00") {
		return "", ErrOutsideRoot
	}

	full := filepath.Join(l.root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(l.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}

	// Symlinks may point anywhere, check where they land
	if target, err := filepath.EvalSymlinks(full); err == nil {
		realRoot, rootErr := filepath.EvalSymlinks(l.root)
		if rootErr == nil {
			rel, err := filepath.Rel(realRoot, target)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return "", ErrOutsideRoot
			}
		}
	}

	return full, nil
}

// ReadDirectory lists one directory. Entries that vanish while being read
// are skipped.
func (l *OSLister) ReadDirectory(ctx context.Context, dir string) ([]RawEntry, error) {
	full, err := l.Resolve(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", dir, os.ErrNotExist)
	}

	dirEntries, err := os.ReadDir(full)
	if err != nil {
		return nil, err
	}

	base := CleanPath(dir)
	entries := make([]RawEntry, 0, len(dirEntries))
	for i, de := range dirEntries {
		if i >= MaxDirEntries {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fi, err := de.Info()
		if err != nil {
			continue
		}

		entry := RawEntry{
			Name:  de.Name(),
			Path:  path.Join(base, de.Name()),
			IsDir: fi.IsDir(),
		}

		// Follow symlinks so linked folders behave like folders
		if fi.Mode()&os.ModeSymlink != 0 {
			if target, err := os.Stat(filepath.Join(full, de.Name())); err == nil {
				fi = target
				entry.IsDir = target.IsDir()
			}
		}

		mod := fi.ModTime()
		entry.ModTime = &mod
		if !entry.IsDir {
			size := fi.Size()
			entry.Size = &size
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// CleanPath normalises a virtual path to an absolute slash path
func CleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean("/" + p)
}
