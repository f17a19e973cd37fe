// Package api exposes the HTTP surface of the QA board: sprint issue
// listing, checklist state load/save, and the Jira import action.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sprintqa/qaboard/internal/adf"
	"github.com/sprintqa/qaboard/internal/checklist"
	"github.com/sprintqa/qaboard/internal/jira"
	"github.com/sprintqa/qaboard/internal/qastore"
	"github.com/sprintqa/qaboard/internal/sprint"
)

// SprintLister lists normalized sprint issues.
type SprintLister interface {
	SprintIssues(ctx context.Context, sprintID string) (*sprint.Result, error)
}

// ChecklistStore loads and saves per-issue checklist state.
type ChecklistStore interface {
	Load(ctx context.Context, issueKey string) (*qastore.State, error)
	Save(ctx context.Context, issueKey string, ac, dod []checklist.Item) (time.Time, error)
}

// CommentPoster posts a checklist comment to the tracker. Failure comes back
// as a value, never an error.
type CommentPoster interface {
	PostComment(ctx context.Context, issueKey string, doc adf.Doc) jira.CommentResult
}

// Handler composes the tracker, normalizer and store per request.
type Handler struct {
	sprints SprintLister
	store   ChecklistStore
	poster  CommentPoster
}

func NewHandler(sprints SprintLister, store ChecklistStore, poster CommentPoster) *Handler {
	return &Handler{sprints: sprints, store: store, poster: poster}
}

// RegisterRoutes registers the API routes on the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/jira-sprint-issues", h.handleSprintIssues).Methods("GET")
	r.HandleFunc("/api/qa-state/{issueKey}", h.handleLoadState).Methods("GET")
	r.HandleFunc("/api/qa-state/{issueKey}", h.handleSaveState).Methods("POST")
	r.HandleFunc("/api/jira-import/{issueKey}", h.handleImport).Methods("POST")
	r.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
}

func (h *Handler) handleSprintIssues(w http.ResponseWriter, r *http.Request) {
	result, err := h.sprints.SprintIssues(r.Context(), r.URL.Query().Get("sprintId"))
	if err != nil {
		log.Printf("Sprint issue fetch failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch Jira issues", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleLoadState(w http.ResponseWriter, r *http.Request) {
	issueKey := mux.Vars(r)["issueKey"]

	state, err := h.store.Load(r.Context(), issueKey)
	if err != nil {
		log.Printf("Failed to load qa state for %s: %v", issueKey, err)
		writeError(w, http.StatusInternalServerError, "Failed to load qa state", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

type saveRequest struct {
	AC  []checklist.Item `json:"ac"`
	DoD []checklist.Item `json:"dod"`
}

type saveResponse struct {
	OK          bool      `json:"ok"`
	LastSavedAt time.Time `json:"lastSavedAt"`
}

func (h *Handler) handleSaveState(w http.ResponseWriter, r *http.Request) {
	issueKey := mux.Vars(r)["issueKey"]

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Malformed qa state body for %s: %v", issueKey, err)
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	savedAt, err := h.store.Save(r.Context(), issueKey, req.AC, req.DoD)
	if err != nil {
		log.Printf("Failed to save qa state for %s: %v", issueKey, err)
		writeError(w, http.StatusInternalServerError, "Failed to save qa state", err)
		return
	}

	// Detached from the request on purpose: a slow or failing Jira must never
	// delay or fail a checklist save.
	go h.postChecklistComment(issueKey, req.AC, req.DoD)

	writeJSON(w, http.StatusOK, saveResponse{OK: true, LastSavedAt: savedAt})
}

// postChecklistComment runs as a fire-and-forget goroutine and logs its own
// outcome instead of surfacing it to any request.
func (h *Handler) postChecklistComment(issueKey string, ac, dod []checklist.Item) {
	result := h.poster.PostComment(context.Background(), issueKey, adf.ChecklistDoc(ac, dod))
	if result.Success {
		log.Printf("Posted checklist comment to %s", issueKey)
		return
	}
	log.Printf("Checklist comment for %s not posted: %s", issueKey, result.Message)
}

type importResponse struct {
	OK      bool               `json:"ok"`
	Comment jira.CommentResult `json:"comment"`
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	issueKey := mux.Vars(r)["issueKey"]

	state, err := h.store.Load(r.Context(), issueKey)
	if err != nil {
		log.Printf("Failed to load qa state for import of %s: %v", issueKey, err)
		writeError(w, http.StatusInternalServerError, "Failed to load qa state", err)
		return
	}

	// A failed post is still a 200: the outcome travels inside the body.
	result := h.poster.PostComment(r.Context(), issueKey, adf.ChecklistDoc(state.AC, state.DoD))
	writeJSON(w, http.StatusOK, importResponse{OK: true, Comment: result})
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := errorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
