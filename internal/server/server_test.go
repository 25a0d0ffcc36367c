package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-api/internal/config"
	"catalog-api/internal/database"

	"go.uber.org/zap"
)

func TestHealthEndpointReportsDatabaseDown(t *testing.T) {
	// Nothing listens on this port, so the pool's ping must fail
	dbService, err := database.New(config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		User:     "catalog",
		Password: "catalog",
		Database: "catalog",
		Schema:   "public",
	})
	if err != nil {
		t.Fatalf("failed to open database service: %v", err)
	}
	defer dbService.Close()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: "0",
			Env:  "development",
		},
	}

	srv := NewServer(cfg, zap.NewNop(), dbService)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for an unreachable database, got %d", rec.Code)
	}

	var health map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to decode health body: %v", err)
	}
	if health["status"] != "down" {
		t.Errorf("expected status down, got %q", health["status"])
	}
	if health["error"] == "" {
		t.Error("expected an error detail in the health body")
	}
}
