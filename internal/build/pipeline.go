package build

import (
	"context"
	"sync"
	"time"

	g "maragu.dev/gomponents"

	"github.com/stanza-dev/stanza/internal/renderer"
)

// RenderTask is one output document waiting to be rendered.
type RenderTask struct {
	// Route is the site-relative route, e.g. "/de/blog/k8s-scheduling/".
	Route string
	// CacheKey enables result caching when non-empty. Keys must change
	// whenever any input of the page changes.
	CacheKey string
	// Render produces the page node. Called from a worker goroutine.
	Render func() (g.Node, error)
}

// RenderResult is the outcome of rendering one route.
type RenderResult struct {
	Route    string
	HTML     string
	Err      error
	Duration time.Duration
	CacheHit bool
}

// RenderCallback observes completed renders, e.g. for logging progress.
type RenderCallback func(result RenderResult)

// Metrics tracks pipeline counters across builds.
type Metrics struct {
	TotalRenders  int64
	FailedRenders int64
	CacheHits     int64
	TotalDuration time.Duration
	mutex         sync.Mutex
}

func (m *Metrics) record(result RenderResult) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.TotalRenders++
	if result.Err != nil {
		m.FailedRenders++
	}
	if result.CacheHit {
		m.CacheHits++
	}
	m.TotalDuration += result.Duration
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Metrics {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return Metrics{
		TotalRenders:  m.TotalRenders,
		FailedRenders: m.FailedRenders,
		CacheHits:     m.CacheHits,
		TotalDuration: m.TotalDuration,
	}
}

// Pipeline renders routes concurrently through a fixed worker pool, caching
// results between builds so serve-mode rebuilds only re-render what changed.
type Pipeline struct {
	workers   int
	cache     *RenderCache
	metrics   *Metrics
	callbacks []RenderCallback
	mutex     sync.RWMutex
}

// NewPipeline creates a pipeline with the given worker count.
func NewPipeline(workers int) *Pipeline {
	if workers < 1 {
		workers = 4
	}
	return &Pipeline{
		workers: workers,
		cache:   NewRenderCache(64*1024*1024, time.Hour),
		metrics: &Metrics{},
	}
}

// AddCallback registers a callback invoked after every completed render.
func (p *Pipeline) AddCallback(callback RenderCallback) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.callbacks = append(p.callbacks, callback)
}

// Metrics returns a snapshot of the pipeline counters.
func (p *Pipeline) Metrics() Metrics {
	return p.metrics.Snapshot()
}

// ClearCache drops the render cache, forcing a full re-render.
func (p *Pipeline) ClearCache() {
	p.cache.Clear()
}

// CacheStats returns entry count, current size, and max size of the cache.
func (p *Pipeline) CacheStats() (int, int64, int64) {
	return p.cache.GetStats()
}

// Run renders all tasks and returns their results keyed by route. Rendering
// continues past individual failures; callers inspect RenderResult.Err.
func (p *Pipeline) Run(ctx context.Context, tasks []RenderTask) (map[string]RenderResult, error) {
	jobs := make(chan RenderTask)
	results := make(chan RenderResult, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				results <- p.renderOne(task)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, task := range tasks {
			select {
			case <-ctx.Done():
				return
			case jobs <- task:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make(map[string]RenderResult, len(tasks))
	for result := range results {
		out[result.Route] = result
		p.metrics.record(result)
		p.notify(result)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

func (p *Pipeline) renderOne(task RenderTask) RenderResult {
	start := time.Now()

	if task.CacheKey != "" {
		if html, found := p.cache.Get(task.CacheKey); found {
			return RenderResult{
				Route:    task.Route,
				HTML:     html,
				Duration: time.Since(start),
				CacheHit: true,
			}
		}
	}

	node, err := task.Render()
	if err != nil {
		return RenderResult{Route: task.Route, Err: err, Duration: time.Since(start)}
	}

	html, err := renderer.RenderHTML(node)
	if err != nil {
		return RenderResult{Route: task.Route, Err: err, Duration: time.Since(start)}
	}

	if task.CacheKey != "" {
		p.cache.Set(task.CacheKey, html)
	}

	return RenderResult{Route: task.Route, HTML: html, Duration: time.Since(start)}
}

func (p *Pipeline) notify(result RenderResult) {
	p.mutex.RLock()
	callbacks := p.callbacks
	p.mutex.RUnlock()

	for _, callback := range callbacks {
		callback(result)
	}
}
