// Package server implements the development server: it serves the built
// site from memory, watches the source tree, rebuilds on change, and pushes
// live reload messages to connected browsers over WebSocket.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/stanza-dev/stanza/internal/build"
	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/content"
	"github.com/stanza-dev/stanza/internal/i18n"
	"github.com/stanza-dev/stanza/internal/logging"
	"github.com/stanza-dev/stanza/internal/registry"
	"github.com/stanza-dev/stanza/internal/scanner"
	"github.com/stanza-dev/stanza/internal/types"
	"github.com/stanza-dev/stanza/internal/watcher"
)

// DevServer serves the site during development with rebuild-on-change.
type DevServer struct {
	root    string
	cfg     *config.Config
	locales *i18n.Locales
	logger  logging.Logger

	registry *registry.ContentRegistry
	scanner  *scanner.ContentScanner
	builder  *build.Builder
	watcher  *watcher.FileWatcher

	httpServer  *http.Server
	serverMutex sync.Mutex

	result      *build.Result
	resultMutex sync.RWMutex

	lastChange      *types.ContentEvent
	lastChangeMutex sync.RWMutex

	// WebSocket hub
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	hubMutex   sync.RWMutex

	shutdown     chan struct{}
	shutdownOnce sync.Once
}

// New creates a development server for the site rooted at root.
func New(root string, cfg *config.Config, logger logging.Logger) (*DevServer, error) {
	locales, err := i18n.New(cfg.I18n.DefaultLocale, cfg.I18n.Locales)
	if err != nil {
		return nil, err
	}

	authors, err := content.LoadAuthors(filepath.Join(root, cfg.Blog.AuthorsFile))
	if err != nil {
		return nil, err
	}

	reg := registry.NewContentRegistry()
	return &DevServer{
		root:       root,
		cfg:        cfg,
		locales:    locales,
		logger:     logger.WithComponent("server"),
		registry:   reg,
		scanner:    scanner.NewContentScanner(reg, locales, cfg),
		builder:    build.NewBuilder(root, cfg, locales, reg, authors, logger),
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 16),
		shutdown:   make(chan struct{}),
	}, nil
}

// Start runs the initial build and serves until the context is canceled or
// ListenAndServe fails.
func (s *DevServer) Start(ctx context.Context) error {
	if err := s.rebuild(ctx, true); err != nil {
		return err
	}

	if err := s.setupFileWatcher(ctx); err != nil {
		return err
	}
	defer s.watcher.Stop()

	go s.runHub(ctx)
	go s.watchContent(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/__stanza/ws", s.handleWebSocket)
	mux.HandleFunc("/__stanza/health", s.handleHealth)
	mux.HandleFunc("/", s.handleSite)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.addMiddleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	httpServer := s.httpServer
	s.serverMutex.Unlock()

	if s.cfg.Server.Open {
		go s.openBrowser(fmt.Sprintf("http://%s", addr))
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "development server listening", "addr", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server and closes all WebSocket clients.
func (s *DevServer) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() { close(s.shutdown) })

	s.hubMutex.Lock()
	for c := range s.clients {
		c.close()
		delete(s.clients, c)
	}
	s.hubMutex.Unlock()

	s.serverMutex.Lock()
	httpServer := s.httpServer
	s.serverMutex.Unlock()
	if httpServer == nil {
		return nil
	}
	return httpServer.Shutdown(ctx)
}

// rebuild scans (fully on the first run) and renders the site, storing the
// result for the request handlers.
func (s *DevServer) rebuild(ctx context.Context, initial bool) error {
	if initial {
		collector, err := s.scanner.ScanSite(s.root)
		if err != nil {
			return err
		}
		for _, buildErr := range collector.GetErrors() {
			s.logger.Warn(ctx, nil, "content error", "detail", buildErr.Error())
		}
	}

	result, err := s.builder.Build(ctx)
	if err != nil {
		return err
	}
	for _, buildErr := range result.Collector.GetErrors() {
		s.logger.Warn(ctx, nil, "render error", "detail", buildErr.Error())
	}

	s.resultMutex.Lock()
	s.result = result
	s.resultMutex.Unlock()
	return nil
}

func (s *DevServer) setupFileWatcher(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(300 * time.Millisecond)
	if err != nil {
		return err
	}
	s.watcher = fw

	fw.AddFilter(watcher.SiteSourceFilter)
	fw.AddFilter(watcher.NoGitFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.NoOutputFilter(s.outputDir()))
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		return s.handleFileChanges(ctx, events)
	})

	for _, dir := range []string{
		filepath.Join(s.root, s.cfg.Build.ContentDir),
		filepath.Join(s.root, s.cfg.Build.StaticDir),
	} {
		if err := fw.AddRecursive(dir); err != nil {
			s.logger.Warn(ctx, err, "cannot watch directory", "dir", dir)
		}
	}

	return fw.Start(ctx)
}

func (s *DevServer) handleFileChanges(ctx context.Context, events []watcher.ChangeEvent) error {
	for _, event := range events {
		s.logger.Debug(ctx, "source changed", "path", event.Path, "type", event.Type.String())
		if !isMarkdown(event.Path) {
			continue
		}
		if event.Type == watcher.EventTypeDeleted || event.Type == watcher.EventTypeRenamed {
			s.scanner.RemoveFile(event.Path)
			continue
		}
		if err := s.scanner.ScanFile(s.root, event.Path); err != nil {
			s.logger.Warn(ctx, err, "rescan failed", "path", event.Path)
		}
	}

	if err := s.rebuild(ctx, false); err != nil {
		s.logger.Error(ctx, err, "rebuild failed")
		return err
	}

	s.broadcastReload()
	return nil
}

// watchContent consumes registry events so the health endpoint and logs
// reflect what the last rescan actually changed, not just that a file moved.
func (s *DevServer) watchContent(ctx context.Context) {
	events := s.registry.Watch()
	defer s.registry.UnWatch(events)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Page != nil {
				s.logger.Debug(ctx, "content "+string(event.Type),
					"route", event.Page.Route,
					"locale", event.Page.Locale,
				)
			}
			s.lastChangeMutex.Lock()
			s.lastChange = &event
			s.lastChangeMutex.Unlock()
		}
	}
}

func isMarkdown(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".md" || ext == ".markdown"
}

func (s *DevServer) outputDir() string {
	if filepath.IsAbs(s.cfg.Build.OutputDir) {
		return s.cfg.Build.OutputDir
	}
	return filepath.Join(s.root, s.cfg.Build.OutputDir)
}

// addMiddleware wraps the mux with request logging and dev CORS headers.
func (s *DevServer) addMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if s.isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		handler.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String(),
		)
	})
}

func (s *DevServer) isAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	host := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	return origin == "http://"+host || origin == "https://"+host ||
		strings.HasPrefix(origin, "http://localhost:") ||
		strings.HasPrefix(origin, "http://127.0.0.1:")
}

func (s *DevServer) openBrowser(url string) {
	// Give the listener a moment to come up
	time.Sleep(200 * time.Millisecond)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		s.logger.Debug(context.Background(), "cannot open browser", "error", err.Error())
	}
}
