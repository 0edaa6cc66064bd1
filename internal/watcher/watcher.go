// Package watcher resolves listing rows as they become visible.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/rfcpaths/internal/cache"
	"github.com/mmcdole/rfcpaths/internal/domain"
	"github.com/mmcdole/rfcpaths/internal/queue"
)

// DefaultThreshold is the visible share an element needs before it is resolved
const DefaultThreshold = 0.5

// Placeholder receives the rendering for one element. Methods are called
// from the resolution worker, never concurrently with each other.
type Placeholder interface {
	ShowPending(key string)
	ShowOutcome(key string, outcome *domain.ResolutionOutcome, fromCache bool)
	ShowError(key string, err error)
}

// Element is one observed row. Top and Height use the same units as Viewport.
type Element struct {
	Key         string
	Top         int
	Height      int
	Placeholder Placeholder
}

// Viewport is the visible span of the scroll container
type Viewport struct {
	Offset int
	Height int
}

// visibleRatio returns the share of e inside v, between 0 and 1
func (v Viewport) visibleRatio(e Element) float64 {
	top := max(e.Top, v.Offset)
	bottom := min(e.Top+e.Height, v.Offset+v.Height)
	if bottom <= top {
		return 0
	}
	return float64(bottom-top) / float64(e.Height)
}

// Options configures a Watcher
type Options struct {
	// Prefix is prepended to every key before it is resolved
	Prefix    string
	Threshold float64
	Logger    *slog.Logger
}

// Watcher resolves the keys of elements as they scroll into view. It owns a
// single resolution queue, so at most one request is in flight.
type Watcher struct {
	cache    *cache.Cache[*domain.ResolutionOutcome]
	release  func()
	resolver domain.PathResolver
	prefix   string
	minRatio float64
	logger   *slog.Logger
	queue    *queue.Queue[string]

	mu       sync.Mutex
	observed map[string]Element
	inView   map[string]bool
	gen      uint64
	closed   bool

	closeOnce sync.Once
}

// New creates a watcher. It holds a reference on c until Close.
func New(c *cache.Cache[*domain.ResolutionOutcome], resolver domain.PathResolver, opts Options) *Watcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	threshold := opts.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}

	w := &Watcher{
		cache:    c,
		release:  c.Retain(),
		resolver: resolver,
		prefix:   opts.Prefix,
		minRatio: threshold,
		logger:   logger,
		observed: make(map[string]Element),
		inView:   make(map[string]bool),
	}
	w.queue = queue.New(w.process, queue.Options[string]{
		Logger: logger,
		OnError: func(err error, key string) {
			w.logger.Error("failed to resolve", "key", key, "error", err)
		},
	})
	return w
}

// Watch replaces the observed set with elements. Elements already in view
// stay armed, so a window refresh does not re-queue them. The returned func
// stops observing this set unless a later Watch replaced it.
func (w *Watcher) Watch(elements []Element) (unwatch func()) {
	next := make(map[string]Element, len(elements))
	for _, e := range elements {
		if e.Key == "" || e.Placeholder == nil {
			w.logger.Warn("element is missing a resolution key or placeholder", "key", e.Key)
			continue
		}
		if e.Height <= 0 {
			w.logger.Warn("element has no height", "key", e.Key)
			continue
		}
		next[e.Key] = e
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return func() {}
	}

	for key := range w.inView {
		if _, ok := next[key]; !ok {
			delete(w.inView, key)
		}
	}
	w.observed = next
	w.gen++
	gen := w.gen

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.gen != gen {
			return
		}
		w.observed = make(map[string]Element)
		w.inView = make(map[string]bool)
	}
}

// Check runs one intersection pass against view. Elements crossing the
// threshold are queued; elements dropping below it are re-armed.
func (w *Watcher) Check(view Viewport) {
	w.mu.Lock()
	var entered []Element
	for key, e := range w.observed {
		visible := view.visibleRatio(e) >= w.minRatio
		switch {
		case visible && !w.inView[key]:
			w.inView[key] = true
			entered = append(entered, e)
		case !visible && w.inView[key]:
			delete(w.inView, key)
		}
	}
	w.mu.Unlock()

	// Map order is random; queue top to bottom
	slices.SortFunc(entered, func(a, b Element) int { return a.Top - b.Top })

	for _, e := range entered {
		if err := w.queue.Push(e.Key); err != nil {
			w.logger.Debug("resolution not queued", "key", e.Key, "error", err)
			return
		}
	}
}

// Rearm forgets which elements are in view, so the next Check queues every
// visible element again. Cached outcomes are rendered without a request.
func (w *Watcher) Rearm() {
	w.mu.Lock()
	w.inView = make(map[string]bool)
	w.mu.Unlock()
}

// Wait blocks until every queued resolution has been processed
func (w *Watcher) Wait() {
	w.queue.Wait()
}

// Close stops observing, cancels the request in flight and releases the
// cache reference. Persisted cache entries are kept.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.observed = make(map[string]Element)
		w.inView = make(map[string]bool)
		w.mu.Unlock()

		w.queue.Shutdown()
		w.release()
	})
}

func (w *Watcher) process(ctx context.Context, key string) error {
	w.mu.Lock()
	e, ok := w.observed[key]
	w.mu.Unlock()
	if !ok {
		w.logger.Warn("no element observed for key", "key", key)
		return nil
	}

	if outcome, hit := w.cache.Get(key); hit {
		e.Placeholder.ShowOutcome(key, outcome, true)
		return nil
	}

	e.Placeholder.ShowPending(key)

	outcome, err := w.resolver.Resolve(ctx, w.prefix+key, domain.ResolveOptions{})
	if err != nil {
		e.Placeholder.ShowError(key, err)
		return fmt.Errorf("resolve %q: %w", key, err)
	}

	e.Placeholder.ShowOutcome(key, outcome, false)
	w.cache.Set(key, outcome)
	return nil
}

// Env carries the collaborators of the one-shot Watch
type Env struct {
	Resolver  domain.PathResolver
	Prefix    string
	Threshold float64
	Logger    *slog.Logger
}

// Watch observes elements inside view, resolving each one as it becomes
// visible. The returned func disconnects everything and releases the cache.
func Watch(c *cache.Cache[*domain.ResolutionOutcome], elements []Element, view Viewport, env Env) (unwatch func()) {
	w := New(c, env.Resolver, Options{
		Prefix:    env.Prefix,
		Threshold: env.Threshold,
		Logger:    env.Logger,
	})
	w.Watch(elements)
	w.Check(view)
	return w.Close
}
