// Package registry maintains the in-memory index of all discovered content:
// pages and posts keyed by route, per-locale slug indexes, and the tag index.
// Registrations broadcast change events to watchers; the development server
// subscribes to surface content changes in its logs and health endpoint.
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stanza-dev/stanza/internal/errors"
	"github.com/stanza-dev/stanza/internal/types"
)

// ContentRegistry manages all discovered content documents
type ContentRegistry struct {
	pages    map[string]*types.PageInfo            // keyed by route
	bySlug   map[string]map[string]*types.PageInfo // locale -> slug -> page
	mutex    sync.RWMutex
	watchers []chan types.ContentEvent
}

// NewContentRegistry creates a new content registry
func NewContentRegistry() *ContentRegistry {
	return &ContentRegistry{
		pages:    make(map[string]*types.PageInfo),
		bySlug:   make(map[string]map[string]*types.PageInfo),
		watchers: make([]chan types.ContentEvent, 0),
	}
}

// Register adds or updates a document in the registry. Two distinct source
// files must not claim the same slug within one locale.
func (r *ContentRegistry) Register(page *types.PageInfo) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	locale := r.bySlug[page.Locale]
	if locale == nil {
		locale = make(map[string]*types.PageInfo)
		r.bySlug[page.Locale] = locale
	}

	if existing, ok := locale[slugKey(page)]; ok && existing.SourcePath != page.SourcePath {
		return errors.NewValidationError("duplicate_slug",
			fmt.Sprintf("duplicate slug %q in locale %q: %s and %s",
				page.Slug, page.Locale, existing.SourcePath, page.SourcePath))
	}

	eventType := types.EventTypeAdded
	if _, exists := r.pages[page.Route]; exists {
		eventType = types.EventTypeUpdated
	}

	r.pages[page.Route] = page
	locale[slugKey(page)] = page

	r.notify(types.ContentEvent{
		Type:      eventType,
		Page:      page,
		Timestamp: time.Now(),
	})
	return nil
}

// Get retrieves a document by route
func (r *ContentRegistry) Get(route string) (*types.PageInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	page, exists := r.pages[route]
	return page, exists
}

// GetBySlug retrieves a document by locale and slug
func (r *ContentRegistry) GetBySlug(locale, slug string, kind types.ContentKind) (*types.PageInfo, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	byLocale, ok := r.bySlug[locale]
	if !ok {
		return nil, false
	}
	page, ok := byLocale[string(kind)+"/"+slug]
	return page, ok
}

// Counterpart returns the same document in another locale, if present.
// Localized post pairs share a slug, so locale switching resolves to the
// translated counterpart.
func (r *ContentRegistry) Counterpart(page *types.PageInfo, locale string) (*types.PageInfo, bool) {
	return r.GetBySlug(locale, page.Slug, page.Kind)
}

// Posts returns all posts for a locale, newest first. Draft posts are
// included; the build pipeline filters them per configuration.
func (r *ContentRegistry) Posts(locale string) []*types.PageInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var posts []*types.PageInfo
	for _, page := range r.pages {
		if page.Kind == types.KindPost && page.Locale == locale {
			posts = append(posts, page)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Slug < posts[j].Slug
		}
		return posts[i].Date.After(posts[j].Date)
	})
	return posts
}

// Pages returns all standalone pages for a locale, sorted by slug.
func (r *ContentRegistry) Pages(locale string) []*types.PageInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var pages []*types.PageInfo
	for _, page := range r.pages {
		if page.Kind == types.KindPage && page.Locale == locale {
			pages = append(pages, page)
		}
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })
	return pages
}

// Tags returns the tag index for a locale: tag label to posts, newest first.
func (r *ContentRegistry) Tags(locale string) map[string][]*types.PageInfo {
	tags := make(map[string][]*types.PageInfo)
	for _, post := range r.Posts(locale) {
		for _, tag := range post.Tags {
			tags[tag] = append(tags[tag], post)
		}
	}
	return tags
}

// GetAll returns all registered documents keyed by route
func (r *ContentRegistry) GetAll() map[string]*types.PageInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*types.PageInfo, len(r.pages))
	for route, page := range r.pages {
		result[route] = page
	}
	return result
}

// Remove removes a document from the registry
func (r *ContentRegistry) Remove(route string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	page, exists := r.pages[route]
	if !exists {
		return
	}

	delete(r.pages, route)
	if byLocale, ok := r.bySlug[page.Locale]; ok {
		delete(byLocale, slugKey(page))
	}

	r.notify(types.ContentEvent{
		Type:      types.EventTypeRemoved,
		Page:      page,
		Timestamp: time.Now(),
	})
}

// RemoveBySource removes any document that came from the given source file.
func (r *ContentRegistry) RemoveBySource(sourcePath string) {
	r.mutex.RLock()
	var routes []string
	for route, page := range r.pages {
		if page.SourcePath == sourcePath {
			routes = append(routes, route)
		}
	}
	r.mutex.RUnlock()

	for _, route := range routes {
		r.Remove(route)
	}
}

// Watch returns a channel that receives content events
func (r *ContentRegistry) Watch() <-chan types.ContentEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.ContentEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *ContentRegistry) UnWatch(ch <-chan types.ContentEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

// Count returns the number of registered documents
func (r *ContentRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.pages)
}

// notify must be called with the mutex held.
func (r *ContentRegistry) notify(event types.ContentEvent) {
	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}

func slugKey(page *types.PageInfo) string {
	return string(page.Kind) + "/" + page.Slug
}
