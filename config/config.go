package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultVideoExtensions are the playable suffixes when VIDEO_EXTENSIONS is unset
var DefaultVideoExtensions = []string{"mp4", "mkv", "avi", "mov", "webm"}

// GenerateAPIKey generates a secure random API key
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Config holds all configuration for the player agent
type Config struct {
	// Server settings
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Authentication
	APIKey    string
	JWTSecret string

	// Security
	AllowedOrigins []string
	RateLimitRPS   int

	// Logging
	LogLevel string

	// Media library
	MediaRoot       string
	VideoExtensions []string

	// Player tuning
	SeekStep        time.Duration
	ControlsTimeout time.Duration
	AutoFullscreen  bool

	// Sessions idle longer than this are torn down
	SessionTTL time.Duration

	// Setup mode
	SetupMode bool
	EnvFile   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	envFile := getEnvFile()

	// A missing .env is fine, the environment may carry everything
	_ = godotenv.Load(envFile)

	cfg := &Config{
		Port:            getEnvInt("PORT", 8092),
		Host:            getEnv("HOST", "0.0.0.0"),
		ReadTimeout:     time.Duration(getEnvInt("READ_TIMEOUT_SECONDS", 30)) * time.Second,
		WriteTimeout:    time.Duration(getEnvInt("WRITE_TIMEOUT_SECONDS", 0)) * time.Second,
		APIKey:          getEnv("API_KEY", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		AllowedOrigins:  getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:    getEnvInt("RATE_LIMIT_RPS", 100),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		MediaRoot:       getEnv("MEDIA_ROOT", "/sdcard"),
		VideoExtensions: normalizeExtensions(getEnvSlice("VIDEO_EXTENSIONS", DefaultVideoExtensions)),
		SeekStep:        time.Duration(getEnvInt("SEEK_STEP_SECONDS", 10)) * time.Second,
		ControlsTimeout: time.Duration(getEnvInt("CONTROLS_TIMEOUT_MS", 3000)) * time.Millisecond,
		AutoFullscreen:  getEnvBool("AUTO_FULLSCREEN", true),
		SessionTTL:      time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)) * time.Minute,
		EnvFile:         envFile,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.APIKey == "" {
		cfg.SetupMode = true
		return cfg, nil
	}

	if cfg.JWTSecret == "" {
		// Use API key as fallback for JWT secret
		cfg.JWTSecret = cfg.APIKey
	}

	return cfg, nil
}

// Validate rejects tuning values the player cannot run with
func (c *Config) Validate() error {
	if c.SeekStep <= 0 {
		return errors.New("SEEK_STEP_SECONDS must be positive")
	}
	if c.ControlsTimeout <= 0 {
		return errors.New("CONTROLS_TIMEOUT_MS must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL_MINUTES must be positive")
	}
	if strings.TrimSpace(c.MediaRoot) == "" {
		return errors.New("MEDIA_ROOT must not be empty")
	}
	if len(c.VideoExtensions) == 0 {
		return errors.New("VIDEO_EXTENSIONS must list at least one extension")
	}
	return nil
}

// ErrInvalidSetting is returned for values that cannot be stored in the .env file
var ErrInvalidSetting = errors.New("invalid setting")

// ParseExtensions normalizes a list of video extensions. Each one must be
// letters and digits only.
func ParseExtensions(exts []string) ([]string, error) {
	out := normalizeExtensions(exts)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no extensions given", ErrInvalidSetting)
	}
	for _, ext := range out {
		for _, r := range ext {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
				return nil, fmt.Errorf("%w: extension %q", ErrInvalidSetting, ext)
			}
		}
	}
	return out, nil
}

// ParseOrigins validates CORS origins for storage as a comma separated list
func ParseOrigins(origins []string) ([]string, error) {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" || strings.ContainsAny(o, ",=#\"' \t\r\n") {
			return nil, fmt.Errorf("%w: origin %q", ErrInvalidSetting, o)
		}
		out = append(out, o)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no origins given", ErrInvalidSetting)
	}
	return out, nil
}

// getEnvFile returns the path to the .env file
func getEnvFile() string {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		return envFile
	}

	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}

	// Fall back to the directory holding the binary
	if exe, err := os.Executable(); err == nil {
		envPath := filepath.Join(filepath.Dir(exe), ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	return ".env"
}

// SaveAPIKey persists the API key and leaves setup mode
func (c *Config) SaveAPIKey(apiKey string) error {
	if err := UpdateEnvFile(c.EnvFile, map[string]string{"API_KEY": apiKey}); err != nil {
		return err
	}

	c.APIKey = apiKey
	if c.JWTSecret == "" {
		c.JWTSecret = apiKey
	}
	c.SetupMode = false

	return nil
}

// UpdateEnvFile rewrites the given keys in a .env file, appending the ones
// that are not present yet. Other lines are preserved.
func UpdateEnvFile(envFile string, updates map[string]string) error {
	for key, value := range updates {
		if key == "" || strings.ContainsAny(key, "=\r\n") || strings.ContainsAny(value, "\r\n") {
			return fmt.Errorf("%w: %s", ErrInvalidSetting, key)
		}
	}

	var lines []string
	if data, err := os.ReadFile(envFile); err == nil {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .env file: %w", err)
	}

	written := make(map[string]bool, len(updates))
	for i, line := range lines {
		key, _, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if value, found := updates[strings.TrimSpace(key)]; found {
			lines[i] = strings.TrimSpace(key) + "=" + value
			written[strings.TrimSpace(key)] = true
		}
	}

	for key, value := range updates {
		if !written[key] {
			lines = append(lines, key+"="+value)
		}
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(envFile, []byte(strings.TrimLeft(content, "\n")), 0600); err != nil {
		return fmt.Errorf("failed to write .env file: %w", err)
	}

	return nil
}

// LoadWithDefaults loads config with defaults for testing
func LoadWithDefaults() *Config {
	return &Config{
		Port:            8092,
		Host:            "0.0.0.0",
		ReadTimeout:     30 * time.Second,
		APIKey:          "test-api-key",
		JWTSecret:       "test-jwt-secret",
		AllowedOrigins:  []string{"*"},
		RateLimitRPS:    100,
		LogLevel:        "info",
		MediaRoot:       os.TempDir(),
		VideoExtensions: append([]string(nil), DefaultVideoExtensions...),
		SeekStep:        10 * time.Second,
		ControlsTimeout: 3 * time.Second,
		AutoFullscreen:  true,
		SessionTTL:      30 * time.Minute,
	}
}

// Addr returns the server address string
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Debug reports whether verbose logging is enabled
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
