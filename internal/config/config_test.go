package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"JIRA_URL", "JIRA_USERNAME", "JIRA_PASSWORD", "SLACK_WEBHOOK_URL"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func validConfig() *Config {
	cfg := Default()
	cfg.Check.Projects = []string{"PM"}
	cfg.Tracker.URL = "https://jira.example.com"
	cfg.Tracker.Username = "ci"
	cfg.Tracker.Password = "secret"
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Default()

	if !reflect.DeepEqual(cfg.Check.AllowedStatuses, []int{1}) {
		t.Errorf("AllowedStatuses = %v, want [1]", cfg.Check.AllowedStatuses)
	}
	if !reflect.DeepEqual(cfg.Check.AllowedIssueTypes, []int{1, 3, 4, 5}) {
		t.Errorf("AllowedIssueTypes = %v, want [1 3 4 5]", cfg.Check.AllowedIssueTypes)
	}
	if cfg.Check.IssueRequired {
		t.Error("IssueRequired should default to false")
	}
	if cfg.Tracker.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, want 3", cfg.Tracker.MaxConcurrent)
	}
	if cfg.Tracker.Timeout.Duration != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Tracker.Timeout)
	}
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[check]
projects = ["PM", "ABC"]
allowed_statuses = [1, 3]
issue_required = true

[tracker]
url = "https://jira.example.com/"
username = "ci"
password = "secret"
timeout = "30s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(cfg.Check.Projects, []string{"PM", "ABC"}) {
		t.Errorf("Projects = %v", cfg.Check.Projects)
	}
	if !reflect.DeepEqual(cfg.Check.AllowedStatuses, []int{1, 3}) {
		t.Errorf("AllowedStatuses = %v, want [1 3]", cfg.Check.AllowedStatuses)
	}
	if !reflect.DeepEqual(cfg.Check.AllowedIssueTypes, []int{1, 3, 4, 5}) {
		t.Errorf("AllowedIssueTypes = %v, want defaults", cfg.Check.AllowedIssueTypes)
	}
	if !cfg.Check.IssueRequired {
		t.Error("IssueRequired = false, want true")
	}
	if cfg.Tracker.URL != "https://jira.example.com" {
		t.Errorf("URL = %q, trailing slash should be trimmed", cfg.Tracker.URL)
	}
	if cfg.Tracker.Timeout.Duration != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Tracker.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tracker.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, want 3", cfg.Tracker.MaxConcurrent)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate() error = %v, want ErrInvalid", err)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	path := writeConfig(t, "[check\nprojects = ")
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() error = %v, want ErrInvalid", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JIRA_URL", "https://env.example.com")
	t.Setenv("JIRA_USERNAME", "env-user")
	t.Setenv("JIRA_PASSWORD", "env-pass")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.example.com/x")

	path := writeConfig(t, `
[tracker]
url = "https://file.example.com"
username = "file-user"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tracker.URL != "https://env.example.com" {
		t.Errorf("URL = %q", cfg.Tracker.URL)
	}
	if cfg.Tracker.Username != "env-user" || cfg.Tracker.Password != "env-pass" {
		t.Errorf("credentials = %q/%q", cfg.Tracker.Username, cfg.Tracker.Password)
	}
	if cfg.Notifications.SlackWebhook != "https://hooks.example.com/x" {
		t.Errorf("SlackWebhook = %q", cfg.Notifications.SlackWebhook)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("JIRA_PASSWORD")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("JIRA_PASSWORD=from-dotenv\n"), 0600); err != nil {
		t.Fatal(err)
	}

	LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env"))

	if got := os.Getenv("JIRA_PASSWORD"); got != "from-dotenv" {
		t.Errorf("JIRA_PASSWORD = %q, want from-dotenv", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no projects", func(c *Config) { c.Check.Projects = nil }},
		{"blank project", func(c *Config) { c.Check.Projects = []string{"PM", " "} }},
		{"bad regex", func(c *Config) { c.Check.IssueRegex = `(?P<key>[A-Z]+-\d+)` }},
		{"missing url", func(c *Config) { c.Tracker.URL = "" }},
		{"non http url", func(c *Config) { c.Tracker.URL = "ftp://jira" }},
		{"missing username", func(c *Config) { c.Tracker.Username = "" }},
		{"missing password", func(c *Config) { c.Tracker.Password = "" }},
		{"zero concurrency", func(c *Config) { c.Tracker.MaxConcurrent = 0 }},
		{"negative timeout", func(c *Config) { c.Tracker.Timeout.Duration = -time.Second }},
	}

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestTrackerClientConfig(t *testing.T) {
	cfg := validConfig()
	tc := cfg.TrackerClientConfig()
	if tc.URL != cfg.Tracker.URL || tc.MaxConcurrent != 3 || tc.Timeout != 10*time.Second {
		t.Errorf("TrackerClientConfig() = %+v", tc)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input string
		want  string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		got := ExpandPath(tt.input)
		if got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
