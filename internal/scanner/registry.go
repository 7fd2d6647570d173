package scanner

import (
	"log/slog"
	"sync"
	"time"

	"github.com/crucial707/kijiji-watch/internal/models"
)

type job struct {
	handle   JobHandle
	interval time.Duration
	name     string
}

// Registry owns the live timers, one per active search. All mutation of the
// search-id → job map goes through Upsert, Remove, and Sync.
type Registry struct {
	sched   Scheduler
	execute func(searchID int64)

	mu   sync.Mutex
	jobs map[int64]job
}

// NewRegistry returns a Registry that fires execute(searchID) on each timer tick.
func NewRegistry(sched Scheduler, execute func(searchID int64)) *Registry {
	return &Registry{
		sched:   sched,
		execute: execute,
		jobs:    make(map[int64]job),
	}
}

// Upsert schedules a timer for the search at its interval, replacing any
// existing timer for the same id.
func (r *Registry) Upsert(s models.Search) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertLocked(s)
}

func (r *Registry) upsertLocked(s models.Search) error {
	if old, ok := r.jobs[s.ID]; ok {
		r.sched.Cancel(old.handle)
		delete(r.jobs, s.ID)
	}

	interval := time.Duration(s.IntervalMinutes) * time.Minute
	id := s.ID
	handle, err := r.sched.Schedule(interval, func() { r.execute(id) })
	if err != nil {
		return err
	}

	r.jobs[s.ID] = job{handle: handle, interval: interval, name: s.Name}
	slog.Info("scheduled search", "search", s.Name, "search_id", s.ID, "interval_minutes", s.IntervalMinutes)
	return nil
}

// Remove stops and discards the timer for a search id, if one exists.
func (r *Registry) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(id)
}

func (r *Registry) removeLocked(id int64) {
	j, ok := r.jobs[id]
	if !ok {
		return
	}
	r.sched.Cancel(j.handle)
	delete(r.jobs, id)
	slog.Info("unscheduled search", "search", j.name, "search_id", id)
}

// Sync diffs the live timers against the given set of active searches: adds
// missing jobs, reschedules jobs whose interval changed, and removes jobs for
// ids no longer in the set (deleted or paused searches). Idempotent.
func (r *Registry) Sync(active []models.Search) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[int64]bool, len(active))
	for _, s := range active {
		want[s.ID] = true
		j, ok := r.jobs[s.ID]
		if ok && j.interval == time.Duration(s.IntervalMinutes)*time.Minute {
			continue
		}
		if err := r.upsertLocked(s); err != nil {
			slog.Error("reschedule failed", "search", s.Name, "search_id", s.ID, "error", err)
		}
	}

	for id := range r.jobs {
		if !want[id] {
			r.removeLocked(id)
		}
	}
}

// ScheduledIDs returns the ids that currently have a live timer.
func (r *Registry) ScheduledIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.jobs))
	for id := range r.jobs {
		ids = append(ids, id)
	}
	return ids
}

// Clear cancels every timer.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.jobs {
		r.removeLocked(id)
	}
}
