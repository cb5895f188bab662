package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/stanza-dev/stanza/internal/renderer"
)

// handleSite serves the built site: documents come from the in-memory build
// result with the live reload client injected, assets from the output tree.
func (s *DevServer) handleSite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.resultMutex.RLock()
	result := s.result
	s.resultMutex.RUnlock()
	if result == nil {
		http.Error(w, "site not built yet", http.StatusServiceUnavailable)
		return
	}

	route := routeFromPath(r.URL.Path)
	if doc, ok := result.Documents[route]; ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(injectLiveReload(doc)))
		return
	}

	if s.serveAsset(w, r) {
		return
	}

	s.serveNotFound(w, r)
}

// serveAsset serves a file straight from the output directory. Returns false
// when the path does not resolve to a regular file inside it.
func (s *DevServer) serveAsset(w http.ResponseWriter, r *http.Request) bool {
	outputDir := s.outputDir()
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(r.URL.Path, "/")))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return false
	}

	target := filepath.Join(outputDir, clean)
	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		return false
	}

	http.ServeFile(w, r, target)
	return true
}

func (s *DevServer) serveNotFound(w http.ResponseWriter, r *http.Request) {
	locale := s.locales.Match(r.Header.Get("Accept-Language"))
	page := h.Div(
		h.Class("not-found"),
		h.H1(g.Text("404")),
		h.P(g.Text(notFoundMessage(locale))),
		h.A(h.Href(s.locales.Localize(locale, "/")), g.Text(s.cfg.Site.Title)),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templ.Handler(renderer.Component(page), templ.WithStatus(http.StatusNotFound)).ServeHTTP(w, r)
}

func notFoundMessage(locale string) string {
	if locale == "de" || strings.HasPrefix(locale, "de-") {
		return "Diese Seite wurde nicht gefunden."
	}
	return "This page could not be found."
}

func (s *DevServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.resultMutex.RLock()
	result := s.result
	s.resultMutex.RUnlock()

	status := map[string]interface{}{
		"status": "ok",
	}
	if result != nil {
		status["routes"] = len(result.Documents)
		status["last_build_ms"] = result.Duration.Milliseconds()
		status["build_errors"] = len(result.Collector.GetErrors())
	}

	s.lastChangeMutex.RLock()
	change := s.lastChange
	s.lastChangeMutex.RUnlock()
	if change != nil && change.Page != nil {
		status["last_change"] = map[string]interface{}{
			"type":  string(change.Type),
			"route": change.Page.Route,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

// routeFromPath maps a request path onto the route form the builder emits.
func routeFromPath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}
	if strings.HasSuffix(path, "/index.html") {
		path = strings.TrimSuffix(path, "index.html")
	}
	last := path[strings.LastIndex(path, "/")+1:]
	if last != "" && strings.Contains(last, ".") {
		return path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path
}

// injectLiveReload appends the reload client before the closing body tag.
func injectLiveReload(doc string) string {
	script := "<script>" + liveReloadScript + "</script>"
	if idx := strings.LastIndex(doc, "</body>"); idx >= 0 {
		return doc[:idx] + script + doc[idx:]
	}
	return doc + script
}

const liveReloadScript = `(function() {
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var delay = 1000;
  function connect() {
    var ws = new WebSocket(proto + location.host + '/__stanza/ws');
    ws.onmessage = function(ev) {
      var msg = JSON.parse(ev.data);
      if (msg.type === 'reload') { location.reload(); }
    };
    ws.onclose = function() {
      setTimeout(connect, delay);
      delay = Math.min(delay * 2, 10000);
    };
    ws.onopen = function() { delay = 1000; };
  }
  connect();
})();`
