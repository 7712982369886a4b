package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/reeldeck/config"
)

// SetupHandlers handles the setup and settings endpoints
type SetupHandlers struct {
	mu  sync.RWMutex
	cfg *config.Config
}

// NewSetupHandlers creates setup handlers
func NewSetupHandlers(cfg *config.Config) *SetupHandlers {
	return &SetupHandlers{cfg: cfg}
}

// GetSettings returns current settings (requires auth)
func (h *SetupHandlers) GetSettings(c *gin.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"port":                h.cfg.Port,
		"host":                h.cfg.Host,
		"allowed_origins":     h.cfg.AllowedOrigins,
		"media_root":          h.cfg.MediaRoot,
		"video_extensions":    h.cfg.VideoExtensions,
		"seek_step_seconds":   h.cfg.SeekStep.Seconds(),
		"controls_timeout_ms": h.cfg.ControlsTimeout.Milliseconds(),
		"auto_fullscreen":     h.cfg.AutoFullscreen,
		"session_ttl_minutes": h.cfg.SessionTTL.Minutes(),
		"log_level":           h.cfg.LogLevel,
		"rate_limit_rps":      h.cfg.RateLimitRPS,
		"env_file":            h.cfg.EnvFile,
		"setup_mode":          h.cfg.SetupMode,
		// Don't expose the actual API key, just indicate if it's set
		"api_key_configured": h.cfg.APIKey != "",
	})
}

// GenerateKey generates a new API key
func (h *SetupHandlers) GenerateKey(c *gin.Context) {
	apiKey, err := config.GenerateAPIKey()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate API key: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"api_key": apiKey,
	})
}

// SaveKey saves the API key to the .env file
func (h *SetupHandlers) SaveKey(c *gin.Context) {
	var req struct {
		APIKey string `json:"api_key" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: api_key is required",
		})
		return
	}

	if len(req.APIKey) < 32 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "API key must be at least 32 characters",
		})
		return
	}

	h.mu.Lock()
	err := h.cfg.SaveAPIKey(req.APIKey)
	envFile := h.cfg.EnvFile
	h.mu.Unlock()

	if errors.Is(err, config.ErrInvalidSetting) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "API key must be a single line",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save API key: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "API key saved successfully",
		"api_key":  req.APIKey,
		"env_file": envFile,
		"note":     "Restart the agent to apply the new API key for authentication",
	})
}

// UpdateSettings persists library settings to the .env file. The running
// server keeps its settings until restart.
func (h *SetupHandlers) UpdateSettings(c *gin.Context) {
	var req struct {
		VideoExtensions []string `json:"video_extensions"`
		AllowedOrigins  []string `json:"allowed_origins"`
		AutoFullscreen  *bool    `json:"auto_fullscreen"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request",
		})
		return
	}

	updates := make(map[string]string)

	if req.VideoExtensions != nil {
		exts, err := config.ParseExtensions(req.VideoExtensions)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates["VIDEO_EXTENSIONS"] = strings.Join(exts, ",")
	}

	if req.AllowedOrigins != nil {
		origins, err := config.ParseOrigins(req.AllowedOrigins)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updates["ALLOWED_ORIGINS"] = strings.Join(origins, ",")
	}

	if req.AutoFullscreen != nil {
		updates["AUTO_FULLSCREEN"] = strconv.FormatBool(*req.AutoFullscreen)
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Nothing to update",
		})
		return
	}

	h.mu.RLock()
	envFile := h.cfg.EnvFile
	h.mu.RUnlock()

	if err := config.UpdateEnvFile(envFile, updates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save settings: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Settings saved",
		"updated": len(updates),
		"note":    "Restart the agent to apply the new settings",
	})
}
