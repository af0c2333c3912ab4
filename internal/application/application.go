package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/outpost-calculator/internal/api"
	"github.com/eugenenazirov/outpost-calculator/internal/catalog"
	"github.com/eugenenazirov/outpost-calculator/internal/config"
	"github.com/eugenenazirov/outpost-calculator/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	catalog    *catalog.Catalog
	storage    storage.Storage
	handler    *api.Handler
	router     http.Handler
	logger     *zap.Logger
	server     *http.Server
	sessionTTL time.Duration

	stopJanitor context.CancelFunc
	janitorDone chan struct{}
	stopOnce    sync.Once
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("catalog loaded",
		zap.String("source", catalogSource(cfg.CatalogFile)),
		zap.Int("categories", len(cat.Categories())),
		zap.Int("items", cat.Len()),
	)

	store := storage.NewMemoryStorage(storage.WithMaxSessions(cfg.MaxSessions))
	handler := api.NewHandler(cat, store, api.WithHandlerLogger(logger))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	rootHandler, err := BuildRootHandler(apiRouter)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP handler: %w", err)
	}

	return &App{
		catalog:    cat,
		storage:    store,
		handler:    handler,
		router:     apiRouter,
		logger:     logger,
		server:     NewServer(cfg, rootHandler),
		sessionTTL: cfg.SessionTTL,
	}, nil
}

// BuildRootHandler constructs the root HTTP handler that serves static files and routes API requests.
func BuildRootHandler(apiHandler http.Handler) (http.Handler, error) {
	mux := http.NewServeMux()

	staticPath, err := resolveProjectPath(filepath.Join("web", "static"))
	if err != nil {
		return nil, err
	}
	staticDir := http.Dir(staticPath)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(staticDir)))
	mux.Handle("/api/", apiHandler)

	indexPath, err := resolveProjectPath(filepath.Join("web", "templates", "index.html"))
	if err != nil {
		return nil, err
	}
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, indexPath)
	}))

	return mux, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server and the idle-session janitor in goroutines.
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopJanitor = cancel
	a.janitorDone = make(chan struct{})
	go func() {
		defer close(a.janitorDone)
		a.runJanitor(ctx, janitorInterval(a.sessionTTL))
	}()

	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop halts background work started by Start. The HTTP server is shut down separately.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		if a.stopJanitor == nil {
			return
		}
		a.stopJanitor()
		<-a.janitorDone
	})
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Catalog returns the loaded module catalog.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

func (a *App) runJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			a.pruneIdleSessions(now)
		}
	}
}

func (a *App) pruneIdleSessions(now time.Time) int {
	removed := a.storage.Prune(now.UTC().Add(-a.sessionTTL))
	if removed > 0 {
		a.logger.Debug("pruned idle selections",
			zap.Int("removed", removed),
			zap.Int("remaining", a.storage.Len()),
		)
	}
	return removed
}

func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

func catalogSource(path string) string {
	if strings.TrimSpace(path) == "" {
		return "bundled"
	}
	return path
}

// resolveProjectPath locates a file or directory relative to the project root by walking up the directory tree.
func resolveProjectPath(relative string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, relative)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", relative)
}
