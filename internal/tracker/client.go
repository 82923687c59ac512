package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hochfrequenz/jira-todo/internal/domain"
)

const (
	// DefaultMaxConcurrent bounds the number of in-flight requests.
	DefaultMaxConcurrent = 3
	// DefaultTimeout applies to each request.
	DefaultTimeout = 10 * time.Second
)

// Config holds connection settings for a Jira instance.
type Config struct {
	URL           string
	Username      string
	Password      string
	MaxConcurrent int
	Timeout       time.Duration
}

// Client looks up issue status and type via the Jira REST API v2.
type Client struct {
	baseURL       string
	username      string
	password      string
	maxConcurrent int
	client        *http.Client
	logger        *slog.Logger
}

// NewClient creates a new Jira client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.URL, "/"),
		username:      cfg.Username,
		password:      cfg.Password,
		maxConcurrent: cfg.MaxConcurrent,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// FetchStatuses returns the status of every distinct key. Lookups run
// concurrently up to the configured limit. The first failure cancels the
// remaining lookups and is returned without a partial result.
func (c *Client) FetchStatuses(ctx context.Context, keys []string) (map[string]domain.IssueStatus, error) {
	unique := dedupe(keys)
	results := make([]domain.IssueStatus, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrent)

	for i, key := range unique {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			status, err := c.FetchStatus(gctx, key)
			if err != nil {
				return err
			}
			results[i] = status
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	statuses := make(map[string]domain.IssueStatus, len(unique))
	for i, key := range unique {
		statuses[key] = results[i]
	}
	return statuses, nil
}

// FetchStatus looks up a single issue.
func (c *Client) FetchStatus(ctx context.Context, key string) (domain.IssueStatus, error) {
	u := fmt.Sprintf("%s/rest/api/2/issue/%s", c.baseURL, url.PathEscape(key))
	c.logger.Debug("sending request", "key", key, "url", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.IssueStatus{}, &Error{Kind: KindUnreachable, Key: key, Err: err}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.IssueStatus{}, &Error{Kind: KindUnreachable, Key: key, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return domain.IssueStatus{}, &Error{Kind: KindRequestFailed, Key: key, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.IssueStatus{}, &Error{Kind: KindUnreachable, Key: key, Err: err}
	}

	return parseIssue(key, body)
}

type issueResponse struct {
	ErrorMessages []string `json:"errorMessages"`
	Fields        *struct {
		Status    *namedID `json:"status"`
		IssueType *namedID `json:"issuetype"`
	} `json:"fields"`
}

type namedID struct {
	ID   flexInt `json:"id"`
	Name string  `json:"name"`
}

// flexInt accepts both "3" and 3.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("id %s is not an integer", data)
	}
	*f = flexInt(n)
	return nil
}

func parseIssue(key string, body []byte) (domain.IssueStatus, error) {
	var data issueResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.IssueStatus{}, &Error{Kind: KindResponseMalformed, Key: key, Err: err}
	}

	if len(data.ErrorMessages) > 0 {
		return domain.IssueStatus{}, &Error{Kind: KindIssueError, Key: key, Message: data.ErrorMessages[0]}
	}

	if data.Fields == nil || data.Fields.Status == nil || data.Fields.IssueType == nil {
		return domain.IssueStatus{}, &Error{
			Kind: KindResponseMalformed,
			Key:  key,
			Err:  errors.New("missing fields.status or fields.issuetype"),
		}
	}

	return domain.IssueStatus{
		ID:         int(data.Fields.Status.ID),
		StatusName: data.Fields.Status.Name,
		Type:       int(data.Fields.IssueType.ID),
		TypeName:   data.Fields.IssueType.Name,
	}, nil
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	unique := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, k)
	}
	return unique
}
