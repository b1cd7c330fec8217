package listkit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Page is one fetched slice of a remote collection plus its pre-filter total.
type Page[T any] struct {
	Items      []T
	TotalCount int
}

// Query carries the pagination window handed to the remote collection.
type Query struct {
	Limit  int
	Offset int
}

// Source lists one page of a remote collection.
type Source[T any] interface {
	List(ctx context.Context, q Query) (Page[T], error)
}

// Notifier receives user-facing mutation outcomes. Injected explicitly so
// tests can supply isolated instances instead of a shared dispatcher.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// PendingKind names a per-row in-flight mutation marker.
type PendingKind string

const (
	PendingCreate PendingKind = "creating"
	PendingDelete PendingKind = "deleting"
	PendingToggle PendingKind = "toggling"
	PendingRun    PendingKind = "running"
)

// ErrMutationPending is returned when a mutation of the same kind is already
// in flight for the same row.
var ErrMutationPending = errors.New("listkit: mutation already pending for row")

// Controller owns the load, render, mutate, reload cycle of one list view.
// All state transitions happen under its own mutex; a monotonically
// increasing request generation discards stale load responses so a slow
// response can never overwrite newer data.
type Controller[T any] struct {
	source Source[T]
	schema *Schema[T]
	notify Notifier

	generation atomic.Uint64

	prefs    PrefStore
	viewKey  string
	debounce *Debouncer

	mu      sync.Mutex
	pager   *Pager
	filter  FilterState
	records []T
	loading bool
	loadErr error
	pending map[PendingKind]string
}

// ControllerOption customises optional controller behaviour.
type ControllerOption[T any] func(*Controller[T])

// WithPrefs restores and persists view preferences under viewKey.
func WithPrefs[T any](store PrefStore, viewKey string) ControllerOption[T] {
	return func(c *Controller[T]) {
		c.prefs = store
		c.viewKey = viewKey
	}
}

// WithSearchDebounce routes SetSearchDebounced through a cancellable
// debouncer with the given quiet period.
func WithSearchDebounce[T any](delay time.Duration) ControllerOption[T] {
	return func(c *Controller[T]) {
		c.debounce = NewDebouncer(delay)
	}
}

// NewController wires a list controller for one view.
func NewController[T any](source Source[T], schema *Schema[T], pager *Pager, notify Notifier, opts ...ControllerOption[T]) *Controller[T] {
	if notify == nil {
		notify = NopNotifier{}
	}
	if pager == nil {
		pager = NewPager(DefaultPageSizes[0])
	}
	c := &Controller[T]{
		source:  source,
		schema:  schema,
		notify:  notify,
		pager:   pager,
		pending: make(map[PendingKind]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RestorePrefs applies saved preferences ahead of the first load. Missing or
// unreadable preferences leave the defaults untouched.
func (c *Controller[T]) RestorePrefs(ctx context.Context) {
	if c.prefs == nil {
		return
	}
	p, ok, err := c.prefs.Load(ctx, c.viewKey)
	if err != nil || !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.PageSize > 0 {
		c.pager.SetPageSize(p.PageSize)
	}
	if c.schema == nil || p.Filter.SortField == "" || c.schema.Sortable(p.Filter.SortField) {
		c.filter = p.Filter
	}
}

// savePrefs is best effort; a failed save never disturbs the view.
func (c *Controller[T]) savePrefs(ctx context.Context) {
	if c.prefs == nil {
		return
	}
	c.mu.Lock()
	p := Prefs{PageSize: c.pager.PageSize(), Filter: c.filter}
	c.mu.Unlock()
	_ = c.prefs.Save(ctx, c.viewKey, p)
}

// Load fetches the current page and replaces the record slice on success.
// On failure the previous records are kept and the error state is set; the
// loading flag is always cleared. Load never returns an error to the caller.
func (c *Controller[T]) Load(ctx context.Context) {
	gen := c.generation.Add(1)

	c.mu.Lock()
	c.loading = true
	q := Query{Limit: c.pager.PageSize(), Offset: c.pager.Offset()}
	c.mu.Unlock()

	page, err := c.source.List(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation.Load() {
		// A newer load was issued while this one was in flight; its response
		// owns the state now.
		return
	}
	c.loading = false
	if err != nil {
		c.loadErr = err
		return
	}
	c.loadErr = nil
	c.records = page.Items
	c.pager.SetTotal(page.TotalCount)
}

// SetSearch updates the search query, resets to the first page and reloads.
func (c *Controller[T]) SetSearch(ctx context.Context, query string) {
	c.mu.Lock()
	if c.filter.SearchQuery == query {
		c.mu.Unlock()
		return
	}
	c.filter.SearchQuery = query
	c.pager.ResetToFirstPage()
	c.mu.Unlock()
	c.Load(ctx)
	c.savePrefs(ctx)
}

// SetSearchDebounced schedules SetSearch after the quiet period. A newer
// keystroke cancels both the scheduled call and the context handed to any
// in-flight load it issued. Without a configured debouncer it degrades to an
// immediate SetSearch.
func (c *Controller[T]) SetSearchDebounced(ctx context.Context, query string) {
	if c.debounce == nil {
		c.SetSearch(ctx, query)
		return
	}
	c.debounce.Do(ctx, func(ctx context.Context) {
		c.SetSearch(ctx, query)
	})
}

// Close stops the search debouncer.
func (c *Controller[T]) Close() {
	if c.debounce != nil {
		c.debounce.Stop()
	}
}

// SetSort updates the sort selection, resets to the first page and reloads.
// Unknown sort fields are ignored.
func (c *Controller[T]) SetSort(ctx context.Context, field string, order SortOrder) {
	c.mu.Lock()
	if c.schema != nil && field != "" && !c.schema.Sortable(field) {
		c.mu.Unlock()
		return
	}
	if c.filter.SortField == field && c.filter.SortOrder == order {
		c.mu.Unlock()
		return
	}
	c.filter.SortField = field
	c.filter.SortOrder = order
	c.pager.ResetToFirstPage()
	c.mu.Unlock()
	c.Load(ctx)
	c.savePrefs(ctx)
}

// GoToPage navigates and reloads when the transition is valid.
func (c *Controller[T]) GoToPage(ctx context.Context, n int) {
	c.mu.Lock()
	changed := c.pager.GoToPage(n)
	c.mu.Unlock()
	if changed {
		c.Load(ctx)
	}
}

// SetPageSize changes the page size, resets to page 1 and reloads.
func (c *Controller[T]) SetPageSize(ctx context.Context, size int) {
	c.mu.Lock()
	changed := c.pager.SetPageSize(size)
	c.mu.Unlock()
	if changed {
		c.Load(ctx)
		c.savePrefs(ctx)
	}
}

// Visible applies the filter-sort engine to the current page.
func (c *Controller[T]) Visible() Result[T] {
	c.mu.Lock()
	records := append([]T(nil), c.records...)
	filter := c.filter
	c.mu.Unlock()
	return Apply(records, filter, c.schema)
}

// Filter returns the current filter state.
func (c *Controller[T]) Filter() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// PageState returns a copy of the pagination state.
func (c *Controller[T]) PageState() Pager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.pager
}

// Loading reports whether a load is in flight.
func (c *Controller[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LoadError returns the recoverable error state of the last load, nil after
// a successful load.
func (c *Controller[T]) LoadError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

// Pending returns the row id carrying an in-flight mutation of the given
// kind, or the empty string.
func (c *Controller[T]) Pending(kind PendingKind) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[kind]
}

// Mutate runs op with a pending marker of the given kind on rowID. The marker
// is cleared whether op succeeds or fails; on success the controller notifies
// and reloads the current page so it reflects server truth.
func (c *Controller[T]) Mutate(ctx context.Context, kind PendingKind, rowID string, op func(context.Context) error, successMsg string) error {
	c.mu.Lock()
	if _, busy := c.pending[kind]; busy {
		c.mu.Unlock()
		return ErrMutationPending
	}
	c.pending[kind] = rowID
	c.mu.Unlock()

	err := op(ctx)

	c.mu.Lock()
	delete(c.pending, kind)
	c.mu.Unlock()

	if err != nil {
		c.notify.Error(err.Error())
		return err
	}
	if successMsg != "" {
		c.notify.Success(successMsg)
	}
	c.Load(ctx)
	return nil
}

// Create runs a create mutation followed by a reload.
func (c *Controller[T]) Create(ctx context.Context, op func(context.Context) error, successMsg string) error {
	return c.Mutate(ctx, PendingCreate, "", op, successMsg)
}

// Delete runs a delete mutation for rowID.
func (c *Controller[T]) Delete(ctx context.Context, rowID string, op func(context.Context) error, successMsg string) error {
	return c.Mutate(ctx, PendingDelete, rowID, op, successMsg)
}

// Toggle runs an enabled-flag toggle for rowID.
func (c *Controller[T]) Toggle(ctx context.Context, rowID string, op func(context.Context) error, successMsg string) error {
	return c.Mutate(ctx, PendingToggle, rowID, op, successMsg)
}

// Run executes an action-style mutation for rowID.
func (c *Controller[T]) Run(ctx context.Context, rowID string, op func(context.Context) error, successMsg string) error {
	return c.Mutate(ctx, PendingRun, rowID, op, successMsg)
}
