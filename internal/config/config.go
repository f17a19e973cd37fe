package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the QA board service
type Config struct {
	// Server settings
	Port int

	// Jira settings
	JiraURL   string
	JiraEmail string
	JiraToken string
	BoardID   string

	// Postgres settings: DatabaseURL wins when set, otherwise the discrete
	// PG_* variables are assembled into a DSN.
	DatabaseURL string
	PGHost      string
	PGPort      int
	PGUser      string
	PGPassword  string
	PGDatabase  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 3000),
		JiraURL:     strings.TrimRight(os.Getenv("JIRA_URL"), "/"),
		JiraEmail:   os.Getenv("JIRA_EMAIL"),
		JiraToken:   os.Getenv("JIRA_TOKEN"),
		BoardID:     os.Getenv("BOARD_ID"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		PGHost:      getEnv("PG_HOST", "localhost"),
		PGPort:      getEnvInt("PG_PORT", 5432),
		PGUser:      os.Getenv("PG_USER"),
		PGPassword:  os.Getenv("PG_PASSWORD"),
		PGDatabase:  os.Getenv("PG_DATABASE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks required settings. Missing Jira credentials are a warning,
// not an error: the service keeps running with comment posting disabled.
func (c *Config) validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("PORT must be greater than 0")
	}
	if c.DatabaseURL == "" && c.PGDatabase == "" {
		return fmt.Errorf("DATABASE_URL or PG_DATABASE is required")
	}

	if !c.HasJiraCredentials() {
		log.Printf("Warning: missing Jira environment variables (JIRA_URL, JIRA_EMAIL, JIRA_TOKEN); comments will not be posted")
	}
	if c.BoardID == "" {
		log.Printf("Warning: BOARD_ID not set; active sprint resolution will fail")
	}
	return nil
}

// HasJiraCredentials reports whether the tracker credentials are complete.
func (c *Config) HasJiraCredentials() bool {
	return c.JiraURL != "" && c.JiraEmail != "" && c.JiraToken != ""
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(c.PGUser),
		url.QueryEscape(c.PGPassword),
		c.PGHost,
		c.PGPort,
		c.PGDatabase,
	)
}

// getEnv gets environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as int with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
