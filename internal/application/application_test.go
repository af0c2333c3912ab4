package application

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/outpost-calculator/internal/calculator"
	"github.com/eugenenazirov/outpost-calculator/internal/config"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if app.Catalog() == nil || app.Catalog().Len() == 0 {
		t.Fatalf("expected bundled catalog to be loaded")
	}
	if app.server == nil || app.router == nil || app.handler == nil || app.storage == nil {
		t.Fatalf("expected server, router, handler, and storage to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewLoadsCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modules.json")
	doc := `{"Power":[{"id":"gen1","name":"Generator","materialCosts":[{"material":"steel","quantity":2}]}]}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cfg := baseTestConfig(":0")
	cfg.CatalogFile = path

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if app.Catalog().Len() != 1 {
		t.Fatalf("expected catalog from file, got %d items", app.Catalog().Len())
	}
}

func TestNewReturnsErrorForMissingCatalog(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")

	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for missing catalog")
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestPruneIdleSessions(t *testing.T) {
	cfg := baseTestConfig(":0")
	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := app.storage.Create(calculator.NewSelection(app.Catalog())); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if removed := app.pruneIdleSessions(time.Now()); removed != 0 {
		t.Fatalf("expected fresh session to survive, removed %d", removed)
	}
	if removed := app.pruneIdleSessions(time.Now().Add(cfg.SessionTTL + time.Second)); removed != 1 {
		t.Fatalf("expected idle session to be pruned, removed %d", removed)
	}
	if app.storage.Len() != 0 {
		t.Fatalf("expected empty storage, got %d", app.storage.Len())
	}
}

func TestStopWithoutStart(t *testing.T) {
	app, err := New(baseTestConfig(":0"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	app.Stop()
	app.Stop()
}

func TestJanitorInterval(t *testing.T) {
	if got := janitorInterval(10 * time.Minute); got != 5*time.Minute {
		t.Fatalf("expected half the TTL, got %s", got)
	}
	if got := janitorInterval(time.Millisecond); got != time.Second {
		t.Fatalf("expected one second floor, got %s", got)
	}
}

func TestResolveProjectPathFindsGoMod(t *testing.T) {
	path, err := resolveProjectPath("go.mod")
	if err != nil {
		t.Fatalf("resolveProjectPath returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected go.mod to exist at %s: %v", path, err)
	}
}

func TestResolveProjectPathUnknownTarget(t *testing.T) {
	if _, err := resolveProjectPath("definitely-not-a-real-file"); err == nil {
		t.Fatalf("expected error for missing resource")
	}
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                 port,
		MaxSessions:          10,
		SessionTTL:           time.Minute,
		LogLevel:             "info",
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
