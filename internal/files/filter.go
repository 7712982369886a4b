package files

import (
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
)

// Matcher decides whether a file name is playable
type Matcher func(name string) bool

// ExtensionMatcher matches names ending in one of exts, case-insensitively.
// Extensions may be given with or without the leading dot.
func ExtensionMatcher(exts []string) Matcher {
	suffixes := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			suffixes = append(suffixes, "."+ext)
		}
	}

	return func(name string) bool {
		lower := strings.ToLower(name)
		for _, s := range suffixes {
			if strings.HasSuffix(lower, s) {
				return true
			}
		}
		return false
	}
}

// Filter keeps directories and playable files
func Filter(raw []RawEntry, playable Matcher) []RawEntry {
	kept := make([]RawEntry, 0, len(raw))
	for _, e := range raw {
		if e.IsDir || playable(e.Name) {
			kept = append(kept, e)
		}
	}
	return kept
}

// Sort orders directories before files and each group by case-folded name.
// Ties keep their listing order.
func Sort(entries []RawEntry) {
	fold := cases.Fold()
	keys := make(map[string]string, len(entries))
	for _, e := range entries {
		keys[e.Path] = fold.String(e.Name)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return keys[entries[i].Path] < keys[entries[j].Path]
	})
}

// Prepare filters, sorts and decorates a raw listing for display
func Prepare(raw []RawEntry, playable Matcher) []Entry {
	kept := Filter(raw, playable)
	Sort(kept)

	entries := make([]Entry, 0, len(kept))
	for _, r := range kept {
		e := Entry{
			Name:    r.Name,
			Path:    r.Path,
			IsDir:   r.IsDir,
			Size:    r.Size,
			ModTime: r.ModTime,
		}
		if r.Size != nil && *r.Size >= 0 && !r.IsDir {
			e.SizeLabel = humanize.IBytes(uint64(*r.Size))
		}
		entries = append(entries, e)
	}
	return entries
}
