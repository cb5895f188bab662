package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	fw, err := NewFileWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	assert.NotNil(t, fw.watcher)
	assert.NotNil(t, fw.debouncer)
	assert.Empty(t, fw.filters)
	assert.Empty(t, fw.handlers)
}

func TestFileWatcherAddFilter(t *testing.T) {
	fw, err := NewFileWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(MarkdownFilter)
	assert.Len(t, fw.filters, 1)

	fw.AddFilter(NoGitFilter)
	assert.Len(t, fw.filters, 2)
}

func TestFileWatcherAddHandler(t *testing.T) {
	fw, err := NewFileWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	handlerCalled := false
	fw.AddHandler(func(events []ChangeEvent) error {
		handlerCalled = true
		return nil
	})
	assert.Len(t, fw.handlers, 1)

	fw.mutex.RLock()
	for _, h := range fw.handlers {
		h([]ChangeEvent{{Type: EventTypeCreated, Path: "post.md"}})
	}
	fw.mutex.RUnlock()

	assert.True(t, handlerCalled)
}

func TestFileWatcherAddRecursive(t *testing.T) {
	fw, err := NewFileWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	tempDir := "test_temp_watch"
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "blog"), 0755))
	defer os.RemoveAll(tempDir)

	assert.NoError(t, fw.AddRecursive(tempDir))

	// Paths outside the site directory are rejected
	assert.Error(t, fw.AddRecursive("/non/existent/path"))
	assert.Error(t, fw.AddRecursive("../outside"))
}

func TestFileWatcherReceivesDebouncedEvents(t *testing.T) {
	fw, err := NewFileWatcher(50 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	tempDir := "test_temp_events"
	require.NoError(t, os.MkdirAll(tempDir, 0755))
	defer os.RemoveAll(tempDir)

	require.NoError(t, fw.AddRecursive(tempDir))

	var mu sync.Mutex
	var received []ChangeEvent
	fw.AddFilter(MarkdownFilter)
	fw.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		received = append(received, events...)
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	// A burst of writes to the same file collapses to one event.
	path := filepath.Join(tempDir, "hello.md")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("# hi"), 0644))
		time.Sleep(5 * time.Millisecond)
	}
	// Filtered extension never reaches the handler.
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "scratch.tmp"), []byte("x"), 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) > 0
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, ev := range received {
		assert.Equal(t, path, ev.Path)
	}
}

func TestDebouncerDeduplicatesByPath(t *testing.T) {
	d := &Debouncer{
		delay:   10 * time.Millisecond,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}

	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "a.md"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "a.md"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "b.md"})

	select {
	case events := <-d.output:
		assert.Len(t, events, 2)
		paths := map[string]EventType{}
		for _, ev := range events {
			paths[ev.Path] = ev.Type
		}
		// The last event for a path wins.
		assert.Equal(t, EventTypeModified, paths["a.md"])
		assert.Equal(t, EventTypeModified, paths["b.md"])
	case <-time.After(time.Second):
		t.Fatal("debouncer never flushed")
	}
}

func TestMarkdownFilter(t *testing.T) {
	assert.True(t, MarkdownFilter("blog/2024-01-01-hello.md"))
	assert.True(t, MarkdownFilter("notes.markdown"))
	assert.False(t, MarkdownFilter("style.css"))
	assert.False(t, MarkdownFilter("config.yml"))
}

func TestSiteSourceFilter(t *testing.T) {
	accepted := []string{
		"blog/post.md", "authors.yml", "custom.css", "toggle.js",
		"static/img/logo.svg", "static/img/photo.png", "static/favicon.ico",
	}
	for _, p := range accepted {
		assert.True(t, SiteSourceFilter(p), p)
	}

	rejected := []string{"binary.exe", "notes.txt", "Makefile"}
	for _, p := range rejected {
		assert.False(t, SiteSourceFilter(p), p)
	}
}

func TestNoOutputFilter(t *testing.T) {
	filter := NoOutputFilter("public")

	assert.False(t, filter(filepath.Join("public", "blog", "index.html")))
	assert.False(t, filter("public"))
	assert.True(t, filter(filepath.Join("blog", "post.md")))
}

func TestNoGitFilter(t *testing.T) {
	sep := string(os.PathSeparator)
	assert.False(t, NoGitFilter("site"+sep+".git"+sep+"HEAD"))
	assert.True(t, NoGitFilter("site"+sep+"blog"+sep+"post.md"))
}

func TestNoHiddenFilter(t *testing.T) {
	assert.False(t, NoHiddenFilter("blog/.post.md.swp"))
	assert.True(t, NoHiddenFilter("blog/post.md"))
	// The site config is a dotfile we do want rebuilds for.
	assert.True(t, NoHiddenFilter(".stanza.yml"))
}
