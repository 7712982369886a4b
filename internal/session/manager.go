package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ngenohkevin/reeldeck/internal/cache"
	"github.com/ngenohkevin/reeldeck/internal/files"
	"github.com/ngenohkevin/reeldeck/internal/player"
	"github.com/ngenohkevin/reeldeck/internal/subtitles"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotPlayable is returned when a player is opened on a non-video path
	ErrNotPlayable = errors.New("not a playable file")
)

// Resolver maps a virtual media path to a path on disk
type Resolver interface {
	Resolve(virtual string) (string, error)
}

// Options configures a Manager
type Options struct {
	Lister         files.Lister
	Resolver       Resolver
	Permission     files.Permission
	Playable       files.Matcher
	Tuning         player.Tuning
	AutoFullscreen bool
	TTL            time.Duration
	Debug          bool

	// Dispatch and Clock default to goroutines and the runtime timer
	Dispatch files.Dispatcher
	Clock    player.Clock
}

// ErrorNotice is the client payload of a filesystem error
type ErrorNotice struct {
	Kind    files.ErrorKind `json:"kind"`
	Path    string          `json:"path"`
	Message string          `json:"message"`
}

// NewErrorNotice converts a filesystem error for the client
func NewErrorNotice(fsErr *files.FilesystemError) ErrorNotice {
	return ErrorNotice{Kind: fsErr.Kind, Path: fsErr.Path, Message: fsErr.Message()}
}

// Browse is one client's gallery session
type Browse struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Navigator *files.Navigator `json:"-"`
	Hub       *Hub             `json:"-"`
}

// Player is one client's playback session
type Player struct {
	ID         string             `json:"id"`
	Path       string             `json:"path"`
	CreatedAt  time.Time          `json:"created_at"`
	Controller *player.Controller `json:"-"`
	Hub        *Hub               `json:"-"`
}

// Manager owns the live sessions. Sessions idle for longer than the TTL are
// torn down.
type Manager struct {
	opts     Options
	browsers *cache.Cache[*Browse]
	players  *cache.Cache[*Player]
}

// NewManager creates a manager
func NewManager(opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.Playable == nil {
		opts.Playable = func(string) bool { return true }
	}

	interval := opts.TTL / 2
	if interval > cache.DefaultCleanupInterval {
		interval = cache.DefaultCleanupInterval
	}

	m := &Manager{
		opts:     opts,
		browsers: cache.NewWithCleanup[*Browse](opts.TTL, interval),
		players:  cache.NewWithCleanup[*Player](opts.TTL, interval),
	}
	m.browsers.OnEvict(func(id string, b *Browse) {
		log.Printf("[session] browse %s expired", id)
		b.close()
	})
	m.players.OnEvict(func(id string, p *Player) {
		log.Printf("[session] player %s expired", id)
		p.close()
	})
	return m
}

// NewBrowse opens a gallery session and starts listing the root. A denied
// permission still yields a session, showing an empty listing.
func (m *Manager) NewBrowse(ctx context.Context) (*Browse, *files.FilesystemError) {
	hub := NewHub(DefaultBuffer)
	nav := files.NewNavigator(m.opts.Lister, m.opts.Permission, m.opts.Playable)
	nav.Dispatch = m.opts.Dispatch
	nav.OnListing = func(v files.View) {
		hub.Publish(Message{Type: TypeListing, Data: v})
	}
	nav.OnError = func(fsErr *files.FilesystemError) {
		log.Printf("[browse] %v", fsErr)
		hub.Publish(Message{Type: TypeError, Data: NewErrorNotice(fsErr)})
	}
	nav.OnFileChosen = func(path string) {
		hub.Publish(Message{Type: TypeFileChosen, Data: map[string]string{"path": path}})
	}

	b := &Browse{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Navigator: nav,
		Hub:       hub,
	}
	m.browsers.Set(b.ID, b)

	if m.opts.Debug {
		log.Printf("[session] browse %s opened", b.ID)
	}
	return b, nav.Start(ctx)
}

// Browse returns a live gallery session and extends its lifetime
func (m *Manager) Browse(id string) (*Browse, error) {
	b, ok := m.browsers.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.browsers.Touch(id)
	return b, nil
}

// CloseBrowse tears a gallery session down
func (m *Manager) CloseBrowse(id string) error {
	b, ok := m.browsers.Delete(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	b.close()
	return nil
}

// NewPlayer opens a playback session for a video under the media root. A
// sidecar subtitle file next to the video is loaded when present.
func (m *Manager) NewPlayer(virtual string) (*Player, error) {
	virtual = files.CleanPath(virtual)
	if !m.opts.Playable(virtual) {
		return nil, fmt.Errorf("%w: %s", ErrNotPlayable, virtual)
	}

	onDisk, err := m.opts.Resolver.Resolve(virtual)
	if err != nil {
		return nil, files.ClassifyError(virtual, err)
	}
	info, err := os.Stat(onDisk)
	if err != nil {
		return nil, files.ClassifyError(virtual, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotPlayable, virtual)
	}

	var track *subtitles.Track
	if sidecar, ok := subtitles.FindSidecar(onDisk); ok {
		track, err = subtitles.Load(sidecar)
		if err != nil {
			log.Printf("[session] ignoring subtitles %s: %v", sidecar, err)
			track = nil
		}
	}

	hub := NewHub(DefaultBuffer)
	ctrl := player.NewController(remoteMedia{hub: hub}, remoteScreen{hub: hub}, player.Options{
		Path:           virtual,
		Tuning:         m.opts.Tuning,
		Clock:          m.opts.Clock,
		AutoFullscreen: m.opts.AutoFullscreen,
		Subtitles:      track,
		Debug:          m.opts.Debug,
	})
	ctrl.OnChange = func(s player.Snapshot) {
		hub.Publish(Message{Type: TypeState, Data: s})
	}
	ctrl.OnNotice = func(n player.CmdNotice) {
		hub.Publish(Message{Type: TypeNotice, Data: n})
	}

	p := &Player{
		ID:         uuid.NewString(),
		Path:       virtual,
		CreatedAt:  time.Now().UTC(),
		Controller: ctrl,
		Hub:        hub,
	}
	m.players.Set(p.ID, p)
	ctrl.Attach()

	if m.opts.Debug {
		log.Printf("[session] player %s opened %s", p.ID, virtual)
	}
	return p, nil
}

// Player returns a live playback session and extends its lifetime
func (m *Manager) Player(id string) (*Player, error) {
	p, ok := m.players.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.players.Touch(id)
	return p, nil
}

// ClosePlayer tears a playback session down
func (m *Manager) ClosePlayer(id string) error {
	p, ok := m.players.Delete(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	p.close()
	return nil
}

// Counts returns the number of gallery and playback sessions held
func (m *Manager) Counts() (browse, play int) {
	return m.browsers.Len(), m.players.Len()
}

// Sweep tears down every expired session now
func (m *Manager) Sweep() {
	m.browsers.DeleteExpired()
	m.players.DeleteExpired()
}

// Shutdown tears every session down and stops the expiry loops
func (m *Manager) Shutdown() {
	m.browsers.Flush()
	m.players.Flush()
	m.browsers.Close()
	m.players.Close()
}

func (b *Browse) close() {
	b.Navigator.Close()
	b.Hub.Publish(Message{Type: TypeClosed, Data: map[string]string{"id": b.ID}})
	b.Hub.Close()
}

func (p *Player) close() {
	p.Controller.Close()
	p.Hub.Publish(Message{Type: TypeClosed, Data: map[string]string{"id": p.ID}})
	p.Hub.Close()
}
