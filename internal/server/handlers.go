package server

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/reeldeck/config"
	"github.com/ngenohkevin/reeldeck/internal/files"
	"github.com/ngenohkevin/reeldeck/internal/session"
	"github.com/ngenohkevin/reeldeck/internal/system"
)

// Version is reported by /health and /api/info
const Version = "1.0.0"

// MediaTokenTTL bounds how long a streaming URL stays valid
const MediaTokenTTL = 6 * time.Hour

// Handlers holds all HTTP handlers
type Handlers struct {
	cfg        *config.Config
	auth       *AuthService
	sessions   *session.Manager
	reporter   *system.Reporter
	lister     *files.OSLister
	permission files.Permission
	playable   files.Matcher

	// waitTimeout bounds how long a navigation request waits for its listing
	waitTimeout time.Duration
}

// NewHandlers creates a new handlers instance
func NewHandlers(cfg *config.Config, auth *AuthService, sessions *session.Manager, lister *files.OSLister, permission files.Permission, playable files.Matcher) *Handlers {
	return &Handlers{
		cfg:         cfg,
		auth:        auth,
		sessions:    sessions,
		reporter:    system.NewReporter(lister.Root()),
		lister:      lister,
		permission:  permission,
		playable:    playable,
		waitTimeout: 5 * time.Second,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   Version,
	})
}

// GetInfo handles GET /api/info
func (h *Handlers) GetInfo(c *gin.Context) {
	device, err := h.reporter.Device()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	browse, play := h.sessions.Counts()
	c.JSON(http.StatusOK, gin.H{
		"hostname":         device.Hostname,
		"os":               device.OS,
		"platform":         device.Platform,
		"arch":             device.KernelArch,
		"uptime":           device.UptimeHuman,
		"media_device":     device.MediaDevice,
		"media_mount":      device.MediaMount,
		"agent":            "reeldeck",
		"version":          Version,
		"media_root":       h.cfg.MediaRoot,
		"video_extensions": h.cfg.VideoExtensions,
		"browse_sessions":  browse,
		"player_sessions":  play,
	})
}

// GetStorage handles GET /api/storage
func (h *Handlers) GetStorage(c *gin.Context) {
	info, err := h.reporter.Storage()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// GetPermission handles GET /api/permission
func (h *Handlers) GetPermission(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": h.permission.Query(c.Request.Context()),
	})
}

// RequestPermission handles POST /api/permission/request
func (h *Handlers) RequestPermission(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": h.permission.Request(c.Request.Context()),
	})
}

type pathRequest struct {
	Path string `json:"path" binding:"required"`
}

// IssueMediaToken handles POST /api/token. The token unlocks streaming of
// one file and nothing else.
func (h *Handlers) IssueMediaToken(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: path is required"})
		return
	}

	path := files.CleanPath(req.Path)
	if _, err := h.mediaFile(path); err != nil {
		respondError(c, err)
		return
	}

	token, err := h.auth.GenerateMediaToken(path, MediaTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	q := url.Values{}
	q.Set("path", path)
	q.Set("token", token)
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"path":       path,
		"expires_at": time.Now().Add(MediaTokenTTL).UTC(),
		"url":        "/api/media?" + q.Encode(),
	})
}

// StreamMedia handles GET /api/media?path=. Range requests are honoured.
func (h *Handlers) StreamMedia(c *gin.Context) {
	path := files.CleanPath(c.Query("path"))
	if c.Query("path") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	if claims := ClaimsFrom(c); claims != nil && claims.Role == RoleMedia && claims.Subject != path {
		c.JSON(http.StatusForbidden, gin.H{"error": "token does not cover this file"})
		return
	}

	onDisk, err := h.mediaFile(path)
	if err != nil {
		respondError(c, err)
		return
	}

	c.File(onDisk)
}

// mediaFile resolves a playable regular file under the media root
func (h *Handlers) mediaFile(path string) (string, error) {
	if !h.playable(path) {
		return "", session.ErrNotPlayable
	}
	onDisk, err := h.lister.Resolve(path)
	if err != nil {
		return "", files.ClassifyError(path, err)
	}
	info, err := os.Stat(onDisk)
	if err != nil {
		return "", files.ClassifyError(path, err)
	}
	if info.IsDir() {
		return "", session.ErrNotPlayable
	}
	return onDisk, nil
}

// Close cleans up handlers resources
func (h *Handlers) Close() error {
	h.reporter.Close()
	h.sessions.Shutdown()
	return nil
}

// statusFor maps an error onto an HTTP status
func statusFor(err error) int {
	var fsErr *files.FilesystemError
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, files.ErrNavigatorClosed):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotPlayable), errors.Is(err, files.ErrCrumbOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, files.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.As(err, &fsErr):
		switch fsErr.Kind {
		case files.PermissionDenied:
			return http.StatusForbidden
		case files.NotFound:
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var fsErr *files.FilesystemError
	if errors.As(err, &fsErr) {
		body["kind"] = fsErr.Kind
		body["message"] = fsErr.Message()
	}
	c.JSON(statusFor(err), body)
}
