package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprintqa/qaboard/internal/adf"
	"github.com/sprintqa/qaboard/internal/checklist"
)

func newTestClient(url string) *Client {
	return NewClient(url, "qa@example.com", "token-123")
}

func TestActiveSprint(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"values": []map[string]any{{"id": 42, "name": "Sprint 7", "state": "active"}},
		})
	}))
	defer srv.Close()

	sprint, err := newTestClient(srv.URL).ActiveSprint(context.Background(), "12")
	require.NoError(t, err)
	require.NotNil(t, sprint)
	assert.Equal(t, int64(42), sprint.ID)
	assert.Equal(t, "Sprint 7", sprint.Name)
	assert.Equal(t, "/rest/agile/1.0/board/12/sprint?state=active", gotPath)

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("qa@example.com:token-123"))
	assert.Equal(t, wantAuth, gotAuth)
}

func TestActiveSprintNoneIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"values": []any{}})
	}))
	defer srv.Close()

	sprint, err := newTestClient(srv.URL).ActiveSprint(context.Background(), "12")
	require.NoError(t, err)
	assert.Nil(t, sprint)
}

func TestStatusErrorCarriesBodyExcerpt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, strings.Repeat("x", 500))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Sprint(context.Background(), "42")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Status)
	assert.Len(t, statusErr.Body, maxBodyExcerpt)
}

func TestParseErrorOnNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>login page</html>")
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SprintIssues(context.Background(), "42")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Body, "<html>")
}

func TestSprintIssuesRequestsFixedProjection(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]any{
			"issues": []map[string]any{{"key": "QA-1", "fields": map[string]any{"summary": "s"}}},
		})
	}))
	defer srv.Close()

	issues, err := newTestClient(srv.URL).SprintIssues(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "QA-1", issues[0].Key)
	assert.Contains(t, gotQuery, "maxResults=200")
	assert.Contains(t, gotQuery, "fields=summary,assignee,reporter,duedate,labels,status,subtasks")
}

func TestSearchByParentBuildsJQL(t *testing.T) {
	var gotPath string
	var gotBody searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"issues": []map[string]any{{
				"key": "QA-10",
				"fields": map[string]any{
					"summary": "child",
					"status":  map[string]any{"name": "Done"},
					"parent":  map[string]any{"key": "QA-1"},
				},
			}},
		})
	}))
	defer srv.Close()

	issues, err := newTestClient(srv.URL).SearchByParent(context.Background(), []string{"QA-1", "QA-2"})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "QA-1", issues[0].Fields.Parent.Key)

	assert.Equal(t, "/rest/api/3/search/jql", gotPath)
	assert.Equal(t, `parent in ("QA-1","QA-2")`, gotBody.JQL)
	assert.Equal(t, []string{"summary", "status", "parent"}, gotBody.Fields)
}

func TestPostComment(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"1000"}`)
	}))
	defer srv.Close()

	doc := adf.ChecklistDoc([]checklist.Item{{Text: "a", Checked: true}}, nil)
	result := newTestClient(srv.URL).PostComment(context.Background(), "QA-1", doc)

	assert.True(t, result.Success)
	assert.Empty(t, result.Message)
	assert.Equal(t, "/rest/api/3/issue/QA-1/comment", gotPath)

	body, ok := gotBody["body"].(map[string]any)
	require.True(t, ok, "comment payload must wrap the document under body")
	assert.Equal(t, "doc", body["type"])
}

func TestPostCommentFailureIsAValueNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"errorMessages":["no permission"]}`)
	}))
	defer srv.Close()

	result := newTestClient(srv.URL).PostComment(context.Background(), "QA-1", adf.ChecklistDoc(nil, nil))

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "403")
	assert.Contains(t, result.Message, "no permission")
}

func TestPostCommentWithoutCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent without credentials")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "")
	result := client.PostComment(context.Background(), "QA-1", adf.ChecklistDoc(nil, nil))

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "not configured")
}
