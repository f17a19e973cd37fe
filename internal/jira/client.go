// Package jira is a minimal client for the Jira Cloud REST API: sprint
// lookups on the agile API, issue search, and comment creation.
package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sprintqa/qaboard/internal/adf"
)

// searchPathV3 is the current Jira Cloud search surface. Older deployments
// expose POST /rest/api/2/search instead; the Client.searchPath field is the
// single switch between the two.
const searchPathV3 = "/rest/api/3/search/jql"

const maxSprintIssues = 200
const maxSearchResults = 1000

// Client issues authenticated calls against one Jira site. The basic auth
// header is computed once at construction and never changes.
type Client struct {
	baseURL    string
	authHeader string
	searchPath string
	http       *http.Client
}

// NewClient builds a client for the given Jira base URL. When email or token
// is empty the client still serves reads against unauthenticated endpoints
// but refuses to post comments.
func NewClient(baseURL, email, token string) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		searchPath: searchPathV3,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
	if email != "" && token != "" {
		c.authHeader = "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+token))
	}
	return c
}

func (c *Client) configured() bool {
	return c.baseURL != "" && c.authHeader != ""
}

// ActiveSprint returns the board's active sprint, or nil when none is active.
func (c *Client) ActiveSprint(ctx context.Context, boardID string) (*SprintDetail, error) {
	path := fmt.Sprintf("/rest/agile/1.0/board/%s/sprint?state=active", url.PathEscape(boardID))
	var page sprintPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, fmt.Errorf("active sprint lookup: %w", err)
	}
	if len(page.Values) == 0 {
		return nil, nil
	}
	return &page.Values[0], nil
}

// Sprint fetches sprint metadata by id.
func (c *Client) Sprint(ctx context.Context, sprintID string) (*SprintDetail, error) {
	var detail SprintDetail
	path := "/rest/agile/1.0/sprint/" + url.PathEscape(sprintID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &detail); err != nil {
		return nil, fmt.Errorf("sprint detail: %w", err)
	}
	return &detail, nil
}

// SprintIssues fetches the sprint's issues with the fixed field projection
// used by the board UI.
func (c *Client) SprintIssues(ctx context.Context, sprintID string) ([]Issue, error) {
	path := fmt.Sprintf(
		"/rest/agile/1.0/sprint/%s/issue?maxResults=%d&fields=summary,assignee,reporter,duedate,labels,status,subtasks",
		url.PathEscape(sprintID), maxSprintIssues,
	)
	var page issuePage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, fmt.Errorf("sprint issues: %w", err)
	}
	return page.Issues, nil
}

// SearchByParent returns all issues whose parent is one of the given keys.
// Callers must not pass an empty key set.
func (c *Client) SearchByParent(ctx context.Context, parentKeys []string) ([]Issue, error) {
	quoted := make([]string, len(parentKeys))
	for i, key := range parentKeys {
		quoted[i] = `"` + key + `"`
	}
	req := searchRequest{
		JQL:        fmt.Sprintf("parent in (%s)", strings.Join(quoted, ",")),
		Fields:     []string{"summary", "status", "parent"},
		MaxResults: maxSearchResults,
	}

	var page issuePage
	if err := c.doJSON(ctx, http.MethodPost, c.searchPath, req, &page); err != nil {
		return nil, fmt.Errorf("subtask search: %w", err)
	}
	return page.Issues, nil
}

// PostComment adds the document as a new comment on the issue. Failures are
// folded into the result value; this call never returns an error, so a broken
// Jira can never break a caller that treats the comment as best-effort.
func (c *Client) PostComment(ctx context.Context, issueKey string, doc adf.Doc) CommentResult {
	if !c.configured() {
		log.Printf("Warning: Jira credentials not configured, skipping comment for %s", issueKey)
		return CommentResult{Success: false, Message: "jira credentials not configured"}
	}

	path := "/rest/api/3/issue/" + url.PathEscape(issueKey) + "/comment"
	if err := c.doJSON(ctx, http.MethodPost, path, commentRequest{Body: doc}, nil); err != nil {
		return CommentResult{Success: false, Message: err.Error()}
	}
	return CommentResult{Success: true}
}

// doJSON performs one API call. The full body is read before decoding so that
// error values can carry an excerpt of whatever Jira actually sent.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{Status: resp.StatusCode, Body: excerpt(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Msg: err.Error(), Body: excerpt(data)}
	}
	return nil
}
