package files

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Root is the virtual path of the media root
const Root = "/"

var (
	// ErrEntryNotFound is returned by Open for a path missing from the current listing
	ErrEntryNotFound = errors.New("entry not in current listing")
	// ErrCrumbOutOfRange is returned by NavigateToCrumb for a bad index
	ErrCrumbOutOfRange = errors.New("breadcrumb index out of range")
	// ErrNavigatorClosed is returned once Close has been called
	ErrNavigatorClosed = errors.New("navigator closed")
)

// Dispatcher runs one listing request
type Dispatcher func(func())

// GoDispatcher runs each request on its own goroutine
func GoDispatcher(fn func()) { go fn() }

// InlineDispatcher runs each request before returning
func InlineDispatcher(fn func()) { fn() }

// Navigator keeps the navigation history and the displayed listing of one
// client. Every navigation issues exactly one listing request; responses are
// applied in the order they resolve, so the last one to arrive is displayed.
//
// Callback fields must be set before Start. They are invoked without the
// navigator lock held.
type Navigator struct {
	lister     Lister
	permission Permission
	playable   Matcher

	// Dispatch runs listing requests, GoDispatcher when nil
	Dispatch Dispatcher

	OnListing    func(View)
	OnError      func(*FilesystemError)
	OnFileChosen func(path string)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	history []string
	entries []Entry
	lastErr *FilesystemError
	pending int
	settled chan struct{}
	closed  bool
}

// NewNavigator creates a navigator positioned at the root. Nothing is listed
// until Start is called.
func NewNavigator(lister Lister, permission Permission, playable Matcher) *Navigator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Navigator{
		lister:     lister,
		permission: permission,
		playable:   playable,
		ctx:        ctx,
		cancel:     cancel,
		history:    []string{Root},
		entries:    []Entry{},
	}
}

// Start checks storage permission, asking for it once if needed, then lists
// the root. A refusal is reported as a PermissionDenied notice with an empty
// listing.
func (n *Navigator) Start(ctx context.Context) *FilesystemError {
	if n.permission != nil {
		status := n.permission.Query(ctx)
		if status != Granted {
			status = n.permission.Request(ctx)
		}
		if status != Granted {
			fsErr := &FilesystemError{Kind: PermissionDenied, Path: Root, Err: errors.New("storage permission not granted")}
			n.mu.Lock()
			n.entries = []Entry{}
			n.lastErr = fsErr
			n.mu.Unlock()
			n.emitError(fsErr)
			return fsErr
		}
	}

	n.request(n.CurrentPath())
	return nil
}

// List reads one directory through the lister and returns its filtered,
// sorted entries. Failures yield an empty listing and the classified error.
func (n *Navigator) List(ctx context.Context, dir string) (entries []Entry, fsErr *FilesystemError) {
	dir = CleanPath(dir)
	defer func() {
		if r := recover(); r != nil {
			entries = []Entry{}
			fsErr = &FilesystemError{Kind: Unknown, Path: dir, Err: fmt.Errorf("lister panic: %v", r)}
		}
	}()

	raw, err := n.lister.ReadDirectory(ctx, dir)
	if err != nil {
		return []Entry{}, ClassifyError(dir, err)
	}
	return Prepare(raw, n.playable), nil
}

// NavigateInto descends into a directory, or reports a chosen file without
// touching any state. It returns true when a file was chosen.
func (n *Navigator) NavigateInto(entry Entry) bool {
	if !entry.IsDir {
		if n.OnFileChosen != nil && !n.isClosed() {
			n.OnFileChosen(entry.Path)
		}
		return true
	}

	target := CleanPath(entry.Path)
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return false
	}
	n.history = append(n.history, target)
	n.mu.Unlock()

	n.request(target)
	return false
}

// Open resolves path against the displayed listing and navigates into it
func (n *Navigator) Open(path string) (Entry, bool, error) {
	path = CleanPath(path)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return Entry{}, false, ErrNavigatorClosed
	}
	var found *Entry
	for i := range n.entries {
		if n.entries[i].Path == path {
			e := n.entries[i]
			found = &e
			break
		}
	}
	n.mu.Unlock()

	if found == nil {
		return Entry{}, false, fmt.Errorf("%w: %s", ErrEntryNotFound, path)
	}
	return *found, n.NavigateInto(*found), nil
}

// NavigateBack returns to the previous path. With a single history element
// it does nothing and returns false.
func (n *Navigator) NavigateBack() bool {
	n.mu.Lock()
	if n.closed || len(n.history) <= 1 {
		n.mu.Unlock()
		return false
	}
	n.history = n.history[:len(n.history)-1]
	target := n.history[len(n.history)-1]
	n.mu.Unlock()

	n.request(target)
	return true
}

// NavigateToRoot drops the history back to the root
func (n *Navigator) NavigateToRoot() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.history = []string{Root}
	n.mu.Unlock()

	n.request(Root)
}

// NavigateToCrumb jumps to a prefix of the current path. If the prefix was
// visited, history is cut right after its last visit; otherwise history is
// rebuilt as the chain of prefixes leading to it.
func (n *Navigator) NavigateToCrumb(index int) error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return ErrNavigatorClosed
	}
	crumbs := breadcrumbs(n.history[len(n.history)-1])
	if index < 0 || index >= len(crumbs) {
		n.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrCrumbOutOfRange, index)
	}
	target := crumbs[index].Path

	cut := -1
	for i := len(n.history) - 1; i >= 0; i-- {
		if n.history[i] == target {
			cut = i
			break
		}
	}
	if cut >= 0 {
		n.history = n.history[:cut+1]
	} else {
		chain := make([]string, 0, index+1)
		for _, c := range crumbs[:index+1] {
			chain = append(chain, c.Path)
		}
		n.history = chain
	}
	n.mu.Unlock()

	n.request(target)
	return nil
}

// Refresh lists the current path again without touching history
func (n *Navigator) Refresh() {
	n.request(n.CurrentPath())
}

// CurrentPath returns the displayed path, the last history element
func (n *Navigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.history[len(n.history)-1]
}

// History returns a copy of the navigation history
func (n *Navigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}

// View returns a snapshot for rendering
func (n *Navigator) View() View {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.viewLocked()
}

// Wait blocks until every issued listing request has resolved
func (n *Navigator) Wait(ctx context.Context) error {
	n.mu.Lock()
	if n.pending == 0 {
		n.mu.Unlock()
		return nil
	}
	ch := n.settled
	n.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears the navigator down. Listings resolving afterwards are dropped.
func (n *Navigator) Close() {
	n.mu.Lock()
	n.closed = true
	n.mu.Unlock()
	n.cancel()
}

func (n *Navigator) request(dir string) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	if n.pending == 0 {
		n.settled = make(chan struct{})
	}
	n.pending++
	ctx := n.ctx
	n.mu.Unlock()

	dispatch := n.Dispatch
	if dispatch == nil {
		dispatch = GoDispatcher
	}
	dispatch(func() {
		entries, fsErr := n.List(ctx, dir)
		n.resolve(entries, fsErr)
	})
}

func (n *Navigator) resolve(entries []Entry, fsErr *FilesystemError) {
	n.mu.Lock()
	n.pending--
	if n.pending == 0 {
		close(n.settled)
	}
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.entries = entries
	n.lastErr = fsErr
	view := n.viewLocked()
	n.mu.Unlock()

	if fsErr != nil {
		n.emitError(fsErr)
	}
	if n.OnListing != nil {
		n.OnListing(view)
	}
}

func (n *Navigator) emitError(fsErr *FilesystemError) {
	if n.OnError != nil {
		n.OnError(fsErr)
	}
}

func (n *Navigator) isClosed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}

func (n *Navigator) viewLocked() View {
	current := n.history[len(n.history)-1]
	entries := make([]Entry, len(n.entries))
	copy(entries, n.entries)
	return View{
		Path:        current,
		History:     append([]string(nil), n.history...),
		Breadcrumbs: breadcrumbs(current),
		Entries:     entries,
		Loading:     n.pending > 0,
		CanGoBack:   len(n.history) > 1,
		Error:       n.lastErr,
	}
}

func breadcrumbs(current string) []Crumb {
	crumbs := []Crumb{{Name: "Home", Path: Root}}
	parts := strings.Split(strings.Trim(current, "/"), "/")
	prefix := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		prefix += "/" + part
		crumbs = append(crumbs, Crumb{Name: part, Path: prefix})
	}
	return crumbs
}
