package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngenohkevin/reeldeck/internal/files"
	"github.com/ngenohkevin/reeldeck/internal/player"
)

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

// idleClock never fires
type idleClock struct{}

func (idleClock) AfterFunc(time.Duration, func()) player.Stopper { return idleTimer{} }

type deniedPermission struct{}

func (deniedPermission) Query(context.Context) files.PermissionStatus   { return files.Denied }
func (deniedPermission) Request(context.Context) files.PermissionStatus { return files.Denied }

func mediaRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Movies"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Movies", "clip.mp4"), []byte("video"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Movies", "clip.srt"),
		[]byte("1\n00:00:01,000 --> 00:00:04,000\nHi.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	return root
}

func newTestManager(t *testing.T, root string, mutate func(*Options)) *Manager {
	t.Helper()
	lister, err := files.NewOSLister(root)
	require.NoError(t, err)

	opts := Options{
		Lister:         lister,
		Resolver:       lister,
		Permission:     files.NewOSPermission(root),
		Playable:       files.ExtensionMatcher([]string{"mp4", "mkv"}),
		Tuning:         player.DefaultTuning(),
		AutoFullscreen: true,
		TTL:            time.Hour,
		Dispatch:       files.InlineDispatcher,
		Clock:          idleClock{},
	}
	if mutate != nil {
		mutate(&opts)
	}

	m := NewManager(opts)
	t.Cleanup(m.Shutdown)
	return m
}

func TestManager_NewBrowseListsRoot(t *testing.T) {
	m := newTestManager(t, mediaRoot(t), nil)

	b, fsErr := m.NewBrowse(context.Background())
	require.Nil(t, fsErr)
	require.NotEmpty(t, b.ID)

	view := b.Navigator.View()
	require.Len(t, view.Entries, 1)
	assert.Equal(t, "Movies", view.Entries[0].Name)

	ch, unsub := b.Hub.Subscribe()
	defer unsub()
	msgs := drain(ch)
	require.NotEmpty(t, msgs)
	assert.Equal(t, TypeListing, msgs[len(msgs)-1].Type)

	got, err := m.Browse(b.ID)
	require.NoError(t, err)
	assert.Same(t, b, got)
}

func TestManager_BrowsePermissionDenied(t *testing.T) {
	m := newTestManager(t, mediaRoot(t), func(o *Options) {
		o.Permission = deniedPermission{}
	})

	b, fsErr := m.NewBrowse(context.Background())
	require.NotNil(t, fsErr)
	assert.Equal(t, files.PermissionDenied, fsErr.Kind)
	assert.Empty(t, b.Navigator.View().Entries)

	ch, unsub := b.Hub.Subscribe()
	defer unsub()
	msgs := drain(ch)
	require.Len(t, msgs, 1)
	assert.Equal(t, TypeError, msgs[0].Type)
	notice := msgs[0].Data.(ErrorNotice)
	assert.Equal(t, files.PermissionDenied, notice.Kind)
}

func TestManager_FileChosenIsPublished(t *testing.T) {
	m := newTestManager(t, mediaRoot(t), nil)

	b, _ := m.NewBrowse(context.Background())
	_, isFile, err := b.Navigator.Open("/Movies")
	require.NoError(t, err)
	require.False(t, isFile)

	ch, unsub := b.Hub.Subscribe()
	defer unsub()
	drain(ch)

	_, isFile, err = b.Navigator.Open("/Movies/clip.mp4")
	require.NoError(t, err)
	assert.True(t, isFile)

	msgs := drain(ch)
	require.Len(t, msgs, 1)
	assert.Equal(t, TypeFileChosen, msgs[0].Type)
	assert.Equal(t, map[string]string{"path": "/Movies/clip.mp4"}, msgs[0].Data)
}

func TestManager_CloseBrowse(t *testing.T) {
	m := newTestManager(t, mediaRoot(t), nil)

	b, _ := m.NewBrowse(context.Background())
	require.NoError(t, m.CloseBrowse(b.ID))

	_, err := m.Browse(b.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.CloseBrowse(b.ID), ErrSessionNotFound)
}

func TestManager_NewPlayer(t *testing.T) {
	m := newTestManager(t, mediaRoot(t), nil)

	p, err := m.NewPlayer("/Movies/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "/Movies/clip.mp4", p.Path)

	snap := p.Controller.Snapshot()
	assert.True(t, snap.HasSubtitles)
	assert.True(t, snap.ControlsVisible)

	ch, unsub := p.Hub.Subscribe()
	defer unsub()
	msgs := drain(ch)

	var actions []string
	for _, msg := range msgs {
		if cmd, ok := msg.Data.(MediaCommand); ok {
			actions = append(actions, cmd.Action)
		}
	}
	assert.Equal(t, []string{ActionRequestFullscreen}, actions)
	assert.Contains(t, types(msgs), TypeNotice)
	assert.Contains(t, types(msgs), TypeState)

	got, err := m.Player(p.ID)
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestManager_NewPlayerRejectsBadPaths(t *testing.T) {
	m := newTestManager(t, mediaRoot(t), nil)

	_, err := m.NewPlayer("/notes.txt")
	assert.ErrorIs(t, err, ErrNotPlayable)

	_, err = m.NewPlayer("/Movies/missing.mp4")
	var fsErr *files.FilesystemError
	require.True(t, errors.As(err, &fsErr))
	assert.Equal(t, files.NotFound, fsErr.Kind)

	browse, play := m.Counts()
	assert.Zero(t, browse)
	assert.Zero(t, play)
}

func TestManager_ClosePlayerDetaches(t *testing.T) {
	m := newTestManager(t, mediaRoot(t), nil)

	p, err := m.NewPlayer("/Movies/clip.mp4")
	require.NoError(t, err)

	ch, unsub := p.Hub.Subscribe()
	defer unsub()
	drain(ch)

	require.NoError(t, m.ClosePlayer(p.ID))
	assert.True(t, p.Controller.Closed())

	msgs := drain(ch)
	var actions []string
	for _, msg := range msgs {
		if cmd, ok := msg.Data.(MediaCommand); ok {
			actions = append(actions, cmd.Action)
		}
	}
	assert.Equal(t, []string{ActionDetach}, actions)
	assert.Equal(t, TypeClosed, msgs[len(msgs)-1].Type)

	_, err = m.Player(p.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_ExpiredSessionsAreTornDown(t *testing.T) {
	m := newTestManager(t, mediaRoot(t), func(o *Options) {
		o.TTL = 30 * time.Millisecond
	})

	b, _ := m.NewBrowse(context.Background())
	p, err := m.NewPlayer("/Movies/clip.mp4")
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	m.Sweep()

	_, err = m.Browse(b.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.True(t, p.Controller.Closed())

	browse, play := m.Counts()
	assert.Zero(t, browse)
	assert.Zero(t, play)
}

func TestManager_Shutdown(t *testing.T) {
	m := newTestManager(t, mediaRoot(t), nil)

	p, err := m.NewPlayer("/Movies/clip.mp4")
	require.NoError(t, err)

	m.Shutdown()

	assert.True(t, p.Controller.Closed())
	_, err = m.Player(p.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
