// Package web serves the embedded single-page board UI.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"
)

//go:embed static/*
var staticFS embed.FS

// Handler serves the browser UI
type Handler struct {
	files fs.FS
}

// NewHandler creates a new web handler
func NewHandler() (*Handler, error) {
	files, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	return &Handler{files: files}, nil
}

// RegisterRoutes registers the UI routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleIndex).Methods("GET")
	r.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.FS(h.files))),
	)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, h.files, "qa-ui.html")
}
