// Package config parses duologue.toml project configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultAccentColor is the default TUI accent color (terminal green).
const DefaultAccentColor = "#00FF00"

// hexColorRe matches a 6-digit hex color string like "#00FF00".
var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Config is the top-level duologue.toml configuration.
type Config struct {
	Project       ProjectConfig       `toml:"project"`
	Backend       BackendConfig       `toml:"backend"`
	Retry         RetryConfig         `toml:"retry"`
	Chat          ChatConfig          `toml:"chat"`
	Schedule      ScheduleConfig      `toml:"schedule"`
	Store         StoreConfig         `toml:"store"`
	TUI           TUIConfig           `toml:"tui"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// ProjectConfig identifies the deployment.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// BackendConfig controls the completion backend.
type BackendConfig struct {
	Model          string `toml:"model"`
	BaseURL        string `toml:"base_url"` // empty = public Gemini endpoint
	APIKeyEnv      string `toml:"api_key_env"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// RetryConfig bounds the backend retry policy.
type RetryConfig struct {
	MaxAttempts     int `toml:"max_attempts"`
	MinDelaySeconds int `toml:"min_delay_seconds"`
	MaxDelaySeconds int `toml:"max_delay_seconds"`
}

// ChatConfig controls the conversation behavior.
type ChatConfig struct {
	Pack                string `toml:"pack"`
	ContextWindow       int    `toml:"context_window"`
	CompletionThreshold int    `toml:"completion_threshold"`
}

// ScheduleConfig bounds the jittered delay between turns.
type ScheduleConfig struct {
	MinDelaySeconds int `toml:"min_delay_seconds"`
	MaxDelaySeconds int `toml:"max_delay_seconds"`
}

// StoreConfig locates the session directory.
type StoreConfig struct {
	Dir string `toml:"dir"`
}

// TUIConfig controls the terminal UI appearance.
type TUIConfig struct {
	AccentColor string `toml:"accent_color"`
}

// NotificationsConfig controls webhook/ntfy.sh notifications.
type NotificationsConfig struct {
	URL             string `toml:"url"`
	OnTopicComplete bool   `toml:"on_topic_complete"`
	OnError         bool   `toml:"on_error"`
}

// Validate checks the configuration for issues that would cause confusing
// runtime failures. It returns all found issues joined together.
func (c *Config) Validate() error {
	var errs []error

	if c.Backend.Model == "" {
		errs = append(errs, fmt.Errorf("backend.model must not be empty"))
	}
	if c.Backend.APIKeyEnv == "" {
		errs = append(errs, fmt.Errorf("backend.api_key_env must not be empty"))
	}
	if c.Backend.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("backend.timeout_seconds must be >= 0 (0 = default)"))
	}

	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be >= 1"))
	}
	if c.Retry.MinDelaySeconds < 0 || c.Retry.MaxDelaySeconds < 0 {
		errs = append(errs, fmt.Errorf("retry delays must be >= 0"))
	}
	if c.Retry.MaxDelaySeconds < c.Retry.MinDelaySeconds {
		errs = append(errs, fmt.Errorf("retry.max_delay_seconds must be >= retry.min_delay_seconds"))
	}

	if c.Chat.Pack == "" {
		errs = append(errs, fmt.Errorf("chat.pack must not be empty"))
	}
	if c.Chat.ContextWindow < 1 {
		errs = append(errs, fmt.Errorf("chat.context_window must be >= 1"))
	}
	if c.Chat.CompletionThreshold < 1 {
		errs = append(errs, fmt.Errorf("chat.completion_threshold must be >= 1"))
	}

	if c.Schedule.MinDelaySeconds < 1 {
		errs = append(errs, fmt.Errorf("schedule.min_delay_seconds must be >= 1"))
	}
	if c.Schedule.MaxDelaySeconds < c.Schedule.MinDelaySeconds {
		errs = append(errs, fmt.Errorf("schedule.max_delay_seconds must be >= schedule.min_delay_seconds"))
	}

	if c.Store.Dir == "" {
		errs = append(errs, fmt.Errorf("store.dir must not be empty"))
	}

	if c.TUI.AccentColor != "" && !hexColorRe.MatchString(c.TUI.AccentColor) {
		errs = append(errs, fmt.Errorf("tui.accent_color must be a hex color (e.g. \"#00FF00\")"))
	}

	if c.Notifications.URL != "" {
		u, parseErr := url.ParseRequestURI(c.Notifications.URL)
		if parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("notifications.url must be a valid http or https URL"))
		}
	}

	return errors.Join(errs...)
}

// Defaults returns a Config with sensible defaults: the public Gemini
// backend, the mainframe pack, and a 10-15 minute turn cadence.
func Defaults() Config {
	return Config{
		Project: ProjectConfig{Name: ""},
		Backend: BackendConfig{
			Model:          "gemini-pro",
			APIKeyEnv:      "GOOGLE_API_KEY",
			TimeoutSeconds: 60,
		},
		Retry: RetryConfig{
			MaxAttempts:     3,
			MinDelaySeconds: 4,
			MaxDelaySeconds: 10,
		},
		Chat: ChatConfig{
			Pack:                "mainframe",
			ContextWindow:       5,
			CompletionThreshold: 8,
		},
		Schedule: ScheduleConfig{
			MinDelaySeconds: 600,
			MaxDelaySeconds: 900,
		},
		Store: StoreConfig{
			Dir: "chat_logs/topics",
		},
		TUI: TUIConfig{
			AccentColor: DefaultAccentColor,
		},
		Notifications: NotificationsConfig{
			URL:             "",
			OnTopicComplete: true,
			OnError:         true,
		},
	}
}

// Load reads duologue.toml from the given path. If path is empty, it
// walks up from the current working directory looking for duologue.toml.
// Returns an error if the file contains unknown keys (likely typos).
func Load(path string) (*Config, error) {
	if path == "" {
		found, err := findConfig()
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := Defaults()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: unknown keys in %s: %s (possible typos?)", path, strings.Join(keys, ", "))
	}

	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(filepath.Dir(path))
	}

	return &cfg, nil
}

// findConfig walks up from the current directory looking for duologue.toml.
func findConfig() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("config: get working directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, "duologue.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("config: duologue.toml not found (searched up from %s)", dir)
		}
		dir = parent
	}
}

// InitFile writes a default duologue.toml template to the given directory.
func InitFile(dir string) (string, error) {
	path := filepath.Join(dir, "duologue.toml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config: duologue.toml already exists at %s", path)
	}

	content := `# duologue.toml — Duologue project configuration
# Place this file where you run duologue from.

[project]
name = ""

[backend]
model = "gemini-pro"
base_url = ""                 # empty = public Gemini endpoint
api_key_env = "GOOGLE_API_KEY"
timeout_seconds = 60

[retry]
max_attempts = 3
min_delay_seconds = 4
max_delay_seconds = 10

[chat]
pack = "mainframe"        # personality pack; see 'duologue packs'
context_window = 5        # messages of context per turn prompt
completion_threshold = 8  # minimum messages before completion checks

[schedule]
min_delay_seconds = 600  # jitter lower bound between turns
max_delay_seconds = 900  # jitter upper bound between turns

[store]
dir = "chat_logs/topics"

[tui]
accent_color = "#00FF00"  # hex color for header/accent elements

[notifications]
url = ""                 # ntfy.sh topic URL or any HTTP webhook (empty = disabled)
on_topic_complete = true # notify when a topic wraps up
on_error = true          # notify on save/backend errors
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}
