package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanza-dev/stanza/internal/config"
	"github.com/stanza-dev/stanza/internal/logging"
	"github.com/stanza-dev/stanza/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		Site: config.SiteConfig{
			Title:   "Jane Doe",
			Tagline: "Notes",
			URL:     "http://localhost:3000",
			BaseURL: "/",
		},
		Theme: config.ThemeConfig{DefaultMode: "light"},
		Blog: config.BlogConfig{
			Dir:            "blog",
			RouteBase:      "/blog",
			PostsPerPage:   10,
			AuthorsFile:    "content/authors.yml",
			TruncateMarker: "<!--truncate-->",
		},
		I18n: config.I18nConfig{DefaultLocale: "en", Locales: []string{"en", "de"}},
		Build: config.BuildConfig{
			ContentDir: "content",
			StaticDir:  "static",
			OutputDir:  "public",
			Workers:    2,
		},
		Server: config.ServerConfig{Host: "localhost", Port: 3000},
	}
}

func newTestServer(t *testing.T) *DevServer {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"content/en/blog/2024-03-01-hello.md": "---\ntitle: Hello\n---\n\nHi there.\n",
		"content/en/pages/about.md":           "---\ntitle: About\n---\n\nAbout me.\n",
		"static/img/logo.svg":                 "<svg></svg>",
	}
	for rel, body := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}

	srv, err := New(root, testConfig(), logging.NewLogger(logging.DefaultConfig()))
	require.NoError(t, err)
	require.NoError(t, srv.rebuild(context.Background(), true))
	return srv
}

func TestHandleSite_ServesDocumentWithLiveReload(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleSite(rec, httptest.NewRequest(http.MethodGet, "/blog/hello/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Hello")
	assert.Contains(t, body, "/__stanza/ws")
}

func TestHandleSite_ExtensionlessPath(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleSite(rec, httptest.NewRequest(http.MethodGet, "/about", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "About")
}

func TestHandleSite_ServesAssetFromOutputDir(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleSite(rec, httptest.NewRequest(http.MethodGet, "/img/logo.svg", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg>")
}

func TestHandleSite_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleSite(rec, httptest.NewRequest(http.MethodGet, "/nope/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404")
}

func TestHandleSite_NotFoundLocalized(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope/", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	rec := httptest.NewRecorder()
	srv.handleSite(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "nicht gefunden")
}

func TestHandleSite_RejectsTraversal(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x/", nil)
	req.URL.Path = "/../secrets.txt"
	srv.handleSite(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/__stanza/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])
	assert.Greater(t, status["routes"].(float64), float64(0))
}

func TestWatchContent_SurfacesRegistryEvents(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.watchContent(ctx)

	// watchContent must be subscribed before the registration fires.
	require.Eventually(t, func() bool {
		return srv.registry.Register(&types.PageInfo{
			Kind:   types.KindPost,
			Slug:   "fresh",
			Locale: "en",
			Route:  "/blog/fresh/",
		}) == nil && func() bool {
			srv.lastChangeMutex.RLock()
			defer srv.lastChangeMutex.RUnlock()
			return srv.lastChange != nil
		}()
	}, time.Second, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/__stanza/health", nil))

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	change, ok := status["last_change"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "/blog/fresh/", change["route"])
}

func TestCheckOrigin(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/__stanza/ws", nil)
	assert.False(t, srv.checkOrigin(req), "missing origin is rejected")

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, srv.checkOrigin(req))

	req.Header.Set("Origin", "http://evil.example.com")
	assert.False(t, srv.checkOrigin(req))
}

func TestCheckOrigin_Configured(t *testing.T) {
	srv := newTestServer(t)
	srv.cfg.Server.AllowedOrigins = []string{"https://preview.example.com"}

	req := httptest.NewRequest(http.MethodGet, "/__stanza/ws", nil)
	req.Header.Set("Origin", "https://preview.example.com")
	assert.True(t, srv.checkOrigin(req))
}

func TestRouteFromPath(t *testing.T) {
	assert.Equal(t, "/", routeFromPath("/"))
	assert.Equal(t, "/blog/", routeFromPath("/blog"))
	assert.Equal(t, "/blog/", routeFromPath("/blog/"))
	assert.Equal(t, "/blog/", routeFromPath("/blog/index.html"))
	assert.Equal(t, "/css/main.css", routeFromPath("/css/main.css"))
	assert.Equal(t, "/de/blog/x/", routeFromPath("/de/blog/x"))
}

func TestInjectLiveReload(t *testing.T) {
	doc := "<html><body><p>hi</p></body></html>"
	injected := injectLiveReload(doc)
	assert.Contains(t, injected, "<script>")
	assert.Less(t, len(doc), len(injected))
	// Script lands before the closing body tag
	assert.Regexp(t, `</script></body></html>$`, injected)
}
