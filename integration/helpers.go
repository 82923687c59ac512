//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

// FixturesDir returns the path to the fixtures directory
func FixturesDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(filename), "fixtures")
}

// TempConfigPath creates a temporary config file path for testing
func TempConfigPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "jira-todo.toml")
}

// fakeJira serves issues from a fixed table and records requested keys.
type fakeJira struct {
	*httptest.Server

	mu        sync.Mutex
	requested []string
}

type fakeIssue struct {
	statusID, statusName, typeID, typeName string
}

func newFakeJira(t *testing.T, issues map[string]fakeIssue) *fakeJira {
	t.Helper()
	fj := &fakeJira{}
	fj.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/rest/api/2/issue/")

		fj.mu.Lock()
		fj.requested = append(fj.requested, key)
		fj.mu.Unlock()

		issue, ok := issues[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"errorMessages":["Issue Does Not Exist"],"errors":{}}`)
			return
		}
		fmt.Fprintf(w, `{"key":%q,"fields":{"status":{"id":%q,"name":%q},"issuetype":{"id":%q,"name":%q}}}`,
			key, issue.statusID, issue.statusName, issue.typeID, issue.typeName)
	}))
	t.Cleanup(fj.Close)
	return fj
}

func (fj *fakeJira) Requested() []string {
	fj.mu.Lock()
	defer fj.mu.Unlock()
	return append([]string(nil), fj.requested...)
}

// createTestConfig writes a config pointing at the fake tracker
func createTestConfig(t *testing.T, jiraURL string, issueRequired bool) string {
	t.Helper()
	configPath := TempConfigPath(t)

	config := fmt.Sprintf(`[check]
projects = ["PM", "ABC"]
allowed_statuses = [1]
allowed_issue_types = [1]
issue_required = %t

[tracker]
url = %q
username = "ci"
password = "secret"
timeout = "5s"
`, issueRequired, jiraURL)

	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	return configPath
}
