package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hochfrequenz/jira-todo/internal/config"
	"github.com/hochfrequenz/jira-todo/internal/pipeline"
	"github.com/hochfrequenz/jira-todo/internal/tracker"
)

func jiraServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/api/2/issue/PM-1":
			fmt.Fprint(w, `{"fields":{"status":{"id":"1","name":"Open"},"issuetype":{"id":"1","name":"Bug"}}}`)
		case "/rest/api/2/issue/PM-2":
			fmt.Fprint(w, `{"fields":{"status":{"id":"6","name":"Closed"},"issuetype":{"id":"1","name":"Bug"}}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func setup(t *testing.T, issueRequired bool) (dir, cfgPath string) {
	t.Helper()
	for _, k := range []string{"JIRA_URL", "JIRA_USERNAME", "JIRA_PASSWORD", "SLACK_WEBHOOK_URL"} {
		t.Setenv(k, "")
	}

	server := jiraServer(t)
	dir = t.TempDir()
	cfgPath = writeFile(t, dir, "jira-todo.toml", fmt.Sprintf(`
[check]
projects = ["PM"]
allowed_statuses = [1]
allowed_issue_types = [1]
issue_required = %t

[tracker]
url = %q
username = "ci"
password = "secret"
`, issueRequired, server.URL))
	return dir, cfgPath
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheck_Clean(t *testing.T) {
	dir, cfgPath := setup(t, false)
	input := writeFile(t, dir, "todos.json", `[{"text":"todo PM-1","file":"a.go","line":3}]`)

	out, err := execute(t, "", "check", "--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"),
		"--format", "text", "--input-format", "", input)
	if err != nil {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(out, "OK") {
		t.Errorf("output = %q, want OK", out)
	}
}

func TestCheck_ViolationFromStdinYAML(t *testing.T) {
	dir, cfgPath := setup(t, true)
	stdin := `
todos:
  - text: see PM-2
    file: b.go
    line: 9
  - text: nothing
    file: c.go
    line: 1
`

	out, err := execute(t, stdin, "check", "--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"),
		"--format", "json", "--input-format", "yaml")
	if !errors.Is(err, pipeline.ErrPolicyViolation) {
		t.Fatalf("check error = %v, want policy violation", err)
	}

	var res pipeline.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	want := []string{
		`File "c.go" has a todo without a specified issue in line 1.`,
		`File "b.go" has a todo for issue PM-2 in line 9 (issue status: "Closed").`,
	}
	if len(res.Failures) != 2 || res.Failures[0] != want[0] || res.Failures[1] != want[1] {
		t.Errorf("Failures = %q, want %q", res.Failures, want)
	}
}

func TestCheck_TrackerFailure(t *testing.T) {
	dir, cfgPath := setup(t, false)
	input := writeFile(t, dir, "todos.json", `{"todos":[{"text":"PM-404","file":"a.go","line":1}]}`)

	out, err := execute(t, "", "check", "--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"),
		"--format", "text", "--input-format", "", input)
	if !errors.Is(err, tracker.ErrTrackerRequestFailed) {
		t.Errorf("check error = %v, want ErrTrackerRequestFailed", err)
	}
	if out != "" {
		t.Errorf("output = %q, want nothing on failure", out)
	}
}

func TestCheck_InvalidConfig(t *testing.T) {
	dir, _ := setup(t, false)
	cfgPath := writeFile(t, dir, "bad.toml", `[check]
projects = []
`)

	_, err := execute(t, "[]", "check", "--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"),
		"--format", "text", "--input-format", "")
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("check error = %v, want config.ErrInvalid", err)
	}
}

func TestCheck_WatchNeedsFile(t *testing.T) {
	dir, cfgPath := setup(t, false)

	_, err := execute(t, "[]", "check", "--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"),
		"--format", "text", "--input-format", "", "--watch")
	checkWatch = false
	if err == nil || !strings.Contains(err.Error(), "--watch requires") {
		t.Errorf("check error = %v, want --watch usage error", err)
	}
}

func TestConfigValidate(t *testing.T) {
	dir, cfgPath := setup(t, false)

	out, err := execute(t, "", "config", "validate", "--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"))
	if err != nil {
		t.Fatalf("config validate error = %v", err)
	}
	if !strings.Contains(out, "Configuration OK: 1 project(s)") {
		t.Errorf("output = %q", out)
	}
}
