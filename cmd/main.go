package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/sprintqa/qaboard/internal/api"
	"github.com/sprintqa/qaboard/internal/config"
	"github.com/sprintqa/qaboard/internal/jira"
	"github.com/sprintqa/qaboard/internal/qastore"
	"github.com/sprintqa/qaboard/internal/sprint"
	"github.com/sprintqa/qaboard/internal/web"
)

var (
	loadDotEnv         = godotenv.Load
	openStore          = qastore.Open
	newWebHandler      = web.NewHandler
	defaultListenServe = http.ListenAndServe
)

func main() {
	if err := run(context.Background(), defaultListenServe); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(ctx context.Context, serve func(string, http.Handler) error) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("Starting sprint QA board server...")
	log.Printf("Port: %d", cfg.Port)
	log.Printf("Jira board: %s", cfg.BoardID)

	// Open the checklist store; a down database is logged, not fatal, so the
	// Jira-proxy side of the service keeps working (matching how the store
	// errors surface per request anyway).
	store, err := openStore(cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		log.Printf("PostgreSQL connection error: %v", err)
	} else {
		log.Printf("Connected to PostgreSQL")
	}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Printf("Failed to create qa_states table: %v", err)
	} else {
		log.Printf("QA states table ready")
	}

	// Jira client and issue normalizer
	jiraClient := jira.NewClient(cfg.JiraURL, cfg.JiraEmail, cfg.JiraToken)
	sprints := sprint.NewService(jiraClient, cfg.BoardID)

	// Handlers
	apiHandler := api.NewHandler(sprints, store, jiraClient)
	webHandler, err := newWebHandler()
	if err != nil {
		return fmt.Errorf("failed to initialize web handler: %w", err)
	}

	// Setup router
	r := mux.NewRouter()
	apiHandler.RegisterRoutes(r)
	webHandler.RegisterRoutes(r)

	// Single-tenant internal tool: cross-origin requests are allowed
	// unconditionally.
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Board UI: http://localhost%s/", addr)
	log.Printf("Health check: http://localhost%s/api/health", addr)

	if err := serve(addr, cors(r)); err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}
