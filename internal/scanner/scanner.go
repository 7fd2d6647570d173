// Package scanner is the scan scheduling, deduplication, and notification
// throttling engine. It keeps one timer per active saved search, re-reads the
// search on every firing, fetches listings, filters and dedups them, and
// forwards genuinely new listings to the Discord sink.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/crucial707/kijiji-watch/internal/models"
)

// SearchStore is the saved-search persistence surface the scanner reads.
type SearchStore interface {
	ListActive(ctx context.Context) ([]models.Search, error)
	GetByID(ctx context.Context, id int64) (*models.Search, error)
	UpdateLastScan(ctx context.Context, id int64) error
}

// ResultStore persists which listings have been processed per search.
type ResultStore interface {
	IsNew(ctx context.Context, searchID int64, listingID string) (bool, error)
	HasDuplicate(ctx context.Context, searchID int64, title string, price *int64, description string) (bool, error)
	Add(ctx context.Context, searchID int64, listingID, title string, price *int64, url, description string) error
	CountForSearch(ctx context.Context, searchID int64) (int, error)
}

// Source fetches listings from the classifieds site.
type Source interface {
	BuildSearchURL(regionURL, keyword, category string, radius int) string
	SearchListings(ctx context.Context, searchURL string) ([]models.Listing, error)
}

// Notifier delivers one listing notification.
type Notifier interface {
	Dispatch(ctx context.Context, webhookURL string, listing models.Listing, searchName, regionName string) error
}

// Options tune the scanner. Zero values fall back to defaults.
type Options struct {
	// ReconcileInterval is the fixed cadence at which timers are re-diffed
	// against the searches table. Default 60s.
	ReconcileInterval time.Duration
	// DispatchDelay is the pause between successive notification sends within
	// one scan. Default 1s.
	DispatchDelay time.Duration
	// ImmediateStart runs every active search once during Start.
	ImmediateStart bool
}

// Scanner drives the per-search timers and runs scans when they fire.
type Scanner struct {
	searches SearchStore
	results  ResultStore
	source   Source
	notifier Notifier
	dedup    DedupPolicy

	sched    Scheduler
	registry *Registry
	pace     *rate.Limiter

	reconcileEvery  time.Duration
	immediateStart  bool
	reconcileHandle JobHandle

	mu       sync.Mutex
	inflight map[int64]bool
	started  bool
}

// New wires a Scanner. Start must be called before any timer fires.
func New(searches SearchStore, results ResultStore, source Source, notifier Notifier, sched Scheduler, opts Options) *Scanner {
	if opts.ReconcileInterval <= 0 {
		opts.ReconcileInterval = 60 * time.Second
	}
	if opts.DispatchDelay <= 0 {
		opts.DispatchDelay = time.Second
	}

	s := &Scanner{
		searches:       searches,
		results:        results,
		source:         source,
		notifier:       notifier,
		dedup:          DedupPolicy{results: results},
		sched:          sched,
		pace:           rate.NewLimiter(rate.Every(opts.DispatchDelay), 1),
		reconcileEvery: opts.ReconcileInterval,
		immediateStart: opts.ImmediateStart,
		inflight:       make(map[int64]bool),
	}
	s.registry = NewRegistry(sched, s.runScheduled)
	return s
}

// Registry exposes the schedule registry (for the API's status endpoint).
func (s *Scanner) Registry() *Registry {
	return s.registry
}

// Start loads all active searches, schedules a timer for each, and installs
// the reconciliation tick. With ImmediateStart it then scans every active
// search once synchronously.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	active, err := s.searches.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("load active searches: %w", err)
	}

	for _, search := range active {
		if err := s.registry.Upsert(search); err != nil {
			slog.Error("schedule failed", "search", search.Name, "error", err)
		}
	}

	handle, err := s.sched.Schedule(s.reconcileEvery, s.reconcile)
	if err != nil {
		return fmt.Errorf("install reconcile tick: %w", err)
	}
	s.reconcileHandle = handle

	slog.Info("scanner started", "searches", len(active), "reconcile_interval", s.reconcileEvery)

	if s.immediateStart {
		for _, search := range active {
			slog.Info("performing immediate scan", "search", search.Name)
			s.PerformSearch(ctx, search.ID)
		}
	}
	return nil
}

// Stop cancels the reconciliation tick and every scheduled job. A scan already
// running finishes on its own.
func (s *Scanner) Stop() {
	s.sched.Cancel(s.reconcileHandle)
	s.registry.Clear()
	s.sched.Stop()
	slog.Info("scanner stopped")
}

// Reconcile re-diffs the timers against the current active-search set. Called
// on the fixed tick; exported so the API can force a refresh.
func (s *Scanner) Reconcile(ctx context.Context) {
	active, err := s.searches.ListActive(ctx)
	if err != nil {
		// Schedules stay as they are; next tick retries.
		slog.Error("reconcile: load active searches", "error", err)
		return
	}
	s.registry.Sync(active)
}

func (s *Scanner) reconcile() {
	s.Reconcile(context.Background())
}

func (s *Scanner) runScheduled(searchID int64) {
	s.PerformSearch(context.Background(), searchID)
}

// tryAcquire marks a search as in-flight. A firing that finds its search
// already running must no-op instead of interleaving reads and writes of the
// same result rows.
func (s *Scanner) tryAcquire(searchID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[searchID] {
		return false
	}
	s.inflight[searchID] = true
	return true
}

func (s *Scanner) release(searchID int64) {
	s.mu.Lock()
	delete(s.inflight, searchID)
	s.mu.Unlock()
}
