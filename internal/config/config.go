package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/hochfrequenz/jira-todo/internal/parser"
	"github.com/hochfrequenz/jira-todo/internal/policy"
	"github.com/hochfrequenz/jira-todo/internal/tracker"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	Check         CheckConfig         `toml:"check"`
	Tracker       TrackerConfig       `toml:"tracker"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// CheckConfig holds the TODO policy
type CheckConfig struct {
	Projects          []string `toml:"projects"`
	IssueRegex        string   `toml:"issue_regex"`
	AllowedStatuses   []int    `toml:"allowed_statuses"`
	AllowedIssueTypes []int    `toml:"allowed_issue_types"`
	IssueRequired     bool     `toml:"issue_required"`
}

// TrackerConfig holds Jira connection settings
type TrackerConfig struct {
	URL           string   `toml:"url"`
	Username      string   `toml:"username"`
	Password      string   `toml:"password"`
	MaxConcurrent int      `toml:"max_concurrent"`
	Timeout       Duration `toml:"timeout"`
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	SlackWebhook string `toml:"slack_webhook"`
}

// Duration decodes TOML strings such as "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a Config with sensible defaults
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Check.AllowedStatuses == nil {
		c.Check.AllowedStatuses = append([]int(nil), policy.DefaultAllowedStatuses...)
	}
	if c.Check.AllowedIssueTypes == nil {
		c.Check.AllowedIssueTypes = append([]int(nil), policy.DefaultAllowedIssueTypes...)
	}
	if c.Tracker.MaxConcurrent == 0 {
		c.Tracker.MaxConcurrent = tracker.DefaultMaxConcurrent
	}
	if c.Tracker.Timeout.Duration == 0 {
		c.Tracker.Timeout.Duration = tracker.DefaultTimeout
	}
}

// Load reads configuration from a TOML file, falling back to defaults,
// then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// LoadDotEnv loads variables from .env files without overriding the
// existing environment. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("JIRA_URL"); v != "" {
		c.Tracker.URL = v
	}
	if v := os.Getenv("JIRA_USERNAME"); v != "" {
		c.Tracker.Username = v
	}
	if v := os.Getenv("JIRA_PASSWORD"); v != "" {
		c.Tracker.Password = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		c.Notifications.SlackWebhook = v
	}
	c.Tracker.URL = strings.TrimRight(c.Tracker.URL, "/")
}

// Validate checks required options before any processing starts.
func (c *Config) Validate() error {
	if len(c.Check.Projects) == 0 {
		return fmt.Errorf("%w: you have not specified any projects", ErrInvalid)
	}
	for i, p := range c.Check.Projects {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: check.projects[%d] is empty", ErrInvalid, i)
		}
	}
	if _, err := parser.CompilePattern(c.Check.IssueRegex); err != nil {
		return fmt.Errorf("%w: check.issue_regex: %v", ErrInvalid, err)
	}

	if c.Tracker.URL == "" {
		return fmt.Errorf("%w: tracker.url is missing", ErrInvalid)
	}
	u, err := url.Parse(c.Tracker.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: tracker.url %q is not an http(s) URL", ErrInvalid, c.Tracker.URL)
	}
	if c.Tracker.Username == "" {
		return fmt.Errorf("%w: tracker.username is missing", ErrInvalid)
	}
	if c.Tracker.Password == "" {
		return fmt.Errorf("%w: tracker.password is missing", ErrInvalid)
	}
	if c.Tracker.MaxConcurrent < 1 {
		return fmt.Errorf("%w: tracker.max_concurrent must be at least 1", ErrInvalid)
	}
	if c.Tracker.Timeout.Duration <= 0 {
		return fmt.Errorf("%w: tracker.timeout must be positive", ErrInvalid)
	}
	return nil
}

// TrackerClientConfig converts the tracker section for tracker.NewClient.
func (c *Config) TrackerClientConfig() tracker.Config {
	return tracker.Config{
		URL:           c.Tracker.URL,
		Username:      c.Tracker.Username,
		Password:      c.Tracker.Password,
		MaxConcurrent: c.Tracker.MaxConcurrent,
		Timeout:       c.Tracker.Timeout.Duration,
	}
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	return ".jira-todo.toml"
}
