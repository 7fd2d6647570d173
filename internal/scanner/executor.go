package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/crucial707/kijiji-watch/internal/metrics"
	"github.com/crucial707/kijiji-watch/internal/models"
)

// firstScanDispatchCap bounds notifications on a search's first scan. The
// first fetch returns the whole current result page; only the newest listings
// are worth announcing, the rest just seed the seen set.
const firstScanDispatchCap = 2

// fetchError marks a failure to fetch listings from the source. The scan
// aborts without touching the seen set or the last-scan timestamp, so the next
// firing retries from the same state.
type fetchError struct {
	err error
}

func (e *fetchError) Error() string { return "fetch listings: " + e.err.Error() }
func (e *fetchError) Unwrap() error { return e.err }

// PerformSearch runs one scan for the search id. At most one scan per search
// runs at a time; a firing that overlaps a still-running scan is skipped.
func (s *Scanner) PerformSearch(ctx context.Context, searchID int64) {
	if !s.tryAcquire(searchID) {
		slog.Warn("scan already in progress, skipping", "search_id", searchID)
		return
	}
	defer s.release(searchID)

	metrics.IncScansRunning()
	defer metrics.DecScansRunning()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("scan panicked", "search_id", searchID, "panic", r)
			metrics.IncScansTotal("error")
		}
	}()

	err := s.performSearch(ctx, searchID)
	switch {
	case err == nil:
		metrics.IncScansTotal("completed")
	case isFetchError(err):
		slog.Error("scan failed", "search_id", searchID, "error", err)
		metrics.IncScansTotal("fetch_error")
	default:
		slog.Error("scan failed", "search_id", searchID, "error", err)
		metrics.IncScansTotal("error")
	}
}

func isFetchError(err error) bool {
	var fe *fetchError
	return errors.As(err, &fe)
}

func (s *Scanner) performSearch(ctx context.Context, searchID int64) error {
	search, err := s.searches.GetByID(ctx, searchID)
	if err != nil {
		return fmt.Errorf("load search: %w", err)
	}
	if search == nil || !search.IsActive {
		// Deleted or paused between the firing and now.
		slog.Debug("search gone or inactive, skipping", "search_id", searchID)
		return nil
	}

	searchURL := s.source.BuildSearchURL(search.RegionURL, search.Keyword, search.Category, search.Radius)
	listings, err := s.source.SearchListings(ctx, searchURL)
	if err != nil {
		return &fetchError{err: err}
	}

	listings = filterByPrice(listings, search.MinPrice, search.MaxPrice)

	count, err := s.results.CountForSearch(ctx, search.ID)
	if err != nil {
		return fmt.Errorf("count results: %w", err)
	}
	firstScan := count == 0

	newListings := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		isNew, err := s.dedup.IsNew(ctx, search.ID, l.ID)
		if err != nil {
			return fmt.Errorf("check listing %s: %w", l.ID, err)
		}
		if isNew {
			newListings = append(newListings, l)
		}
	}

	var sent, recorded int
	if firstScan {
		sent, recorded, err = s.runFirstScan(ctx, search, newListings)
	} else {
		sent, recorded, err = s.runSteady(ctx, search, newListings)
	}
	if err != nil {
		return err
	}

	if err := s.searches.UpdateLastScan(ctx, search.ID); err != nil {
		slog.Error("update last scan", "search", search.Name, "error", err)
	}

	slog.Info("scan complete",
		"search", search.Name,
		"fetched", len(listings),
		"new", len(newListings),
		"notified", sent,
		"recorded", recorded,
		"first_scan", firstScan)
	return nil
}

// runFirstScan seeds the seen set with every new listing and announces only
// the first few, so a fresh search does not flood the webhook with the entire
// current result page.
func (s *Scanner) runFirstScan(ctx context.Context, search *models.Search, listings []models.Listing) (sent, recorded int, err error) {
	for i, l := range listings {
		dup := false
		if search.NoDuplicates {
			dup, err = s.dedup.IsContentDuplicate(ctx, search.ID, l.Title, l.Price, l.Description)
			if err != nil {
				return sent, recorded, fmt.Errorf("check duplicate %s: %w", l.ID, err)
			}
		}

		if i < firstScanDispatchCap && !dup {
			if derr := s.dispatch(ctx, search, l); derr != nil {
				slog.Error("notification failed", "search", search.Name, "listing", l.ID, "error", derr)
			} else {
				sent++
			}
		}

		// Recorded regardless of dispatch outcome; the first scan only
		// establishes the baseline.
		if err := s.record(ctx, search.ID, l); err != nil {
			return sent, recorded, err
		}
		recorded++
	}
	return sent, recorded, nil
}

// runSteady announces every new listing. A listing is recorded as seen only
// once its notification succeeds, or when it is skipped as a content
// duplicate; a failed send leaves it unrecorded so the next scan retries it.
func (s *Scanner) runSteady(ctx context.Context, search *models.Search, listings []models.Listing) (sent, recorded int, err error) {
	for _, l := range listings {
		if search.NoDuplicates {
			dup, err := s.dedup.IsContentDuplicate(ctx, search.ID, l.Title, l.Price, l.Description)
			if err != nil {
				return sent, recorded, fmt.Errorf("check duplicate %s: %w", l.ID, err)
			}
			if dup {
				slog.Info("skipping duplicate listing", "search", search.Name, "listing", l.ID, "title", l.Title)
				if err := s.record(ctx, search.ID, l); err != nil {
					return sent, recorded, err
				}
				recorded++
				continue
			}
		}

		if derr := s.dispatch(ctx, search, l); derr != nil {
			slog.Error("notification failed", "search", search.Name, "listing", l.ID, "error", derr)
			continue
		}
		sent++

		if err := s.record(ctx, search.ID, l); err != nil {
			return sent, recorded, err
		}
		recorded++
	}
	return sent, recorded, nil
}

func (s *Scanner) dispatch(ctx context.Context, search *models.Search, l models.Listing) error {
	if err := s.pace.Wait(ctx); err != nil {
		return err
	}
	if err := s.notifier.Dispatch(ctx, search.WebhookURL, l, search.Name, search.RegionName); err != nil {
		metrics.IncNotifications("failed")
		return err
	}
	metrics.IncNotifications("sent")
	slog.Info("notification sent", "search", search.Name, "listing", l.ID, "title", l.Title)
	return nil
}

func (s *Scanner) record(ctx context.Context, searchID int64, l models.Listing) error {
	if err := s.results.Add(ctx, searchID, l.ID, l.Title, l.Price, l.URL, l.Description); err != nil {
		return fmt.Errorf("record listing %s: %w", l.ID, err)
	}
	metrics.IncListingsRecorded()
	return nil
}

// filterByPrice keeps listings whose price in cents falls inside the search's
// bounds, given in whole dollars. When either bound is set, listings without a
// price are dropped.
func filterByPrice(listings []models.Listing, min, max *int64) []models.Listing {
	if min == nil && max == nil {
		return listings
	}

	kept := listings[:0]
	for _, l := range listings {
		if l.Price == nil {
			continue
		}
		if min != nil && *l.Price < *min*100 {
			continue
		}
		if max != nil && *l.Price > *max*100 {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}
