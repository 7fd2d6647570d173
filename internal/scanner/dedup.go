package scanner

import "context"

// DedupPolicy decides whether a fetched listing is new for a search, and
// whether it repeats the content of an already-recorded listing.
type DedupPolicy struct {
	results ResultStore
}

// IsNew reports whether no result exists for (searchID, listingID).
func (p DedupPolicy) IsNew(ctx context.Context, searchID int64, listingID string) (bool, error) {
	return p.results.IsNew(ctx, searchID, listingID)
}

// IsContentDuplicate reports whether the search already has a result with the
// same title, price, and description under any listing id. Only consulted for
// searches with the no-duplicates flag, and only for listings that are new by id.
func (p DedupPolicy) IsContentDuplicate(ctx context.Context, searchID int64, title string, price *int64, description string) (bool, error) {
	return p.results.HasDuplicate(ctx, searchID, title, price, description)
}
