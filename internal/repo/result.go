package repo

import (
	"context"
	"database/sql"

	"github.com/crucial707/kijiji-watch/internal/models"
)

// ResultRepo persists seen-listing records.
type ResultRepo struct {
	DB *sql.DB
}

// NewResultRepo returns a new ResultRepo.
func NewResultRepo(db *sql.DB) *ResultRepo {
	return &ResultRepo{DB: db}
}

// IsNew reports whether no result exists yet for (searchID, listingID).
func (r *ResultRepo) IsNew(ctx context.Context, searchID int64, listingID string) (bool, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM results WHERE search_id = ? AND listing_id = ?`,
		searchID, listingID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// HasDuplicate reports whether a result with the same title, price, and
// description already exists for the search under a different (or the same)
// listing id. Empty and absent descriptions compare equal. A nil price never
// matches (SQL NULL comparison), same as the sqlite query it mirrors.
func (r *ResultRepo) HasDuplicate(ctx context.Context, searchID int64, title string, price *int64, description string) (bool, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM results
		 WHERE search_id = ? AND title = ? AND price = ?
		   AND (description IS NULL OR description = ?)`,
		searchID, title, nullInt(price), description,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Add records a listing as seen. Idempotent: a second add for the same
// (searchID, listingID) is ignored.
func (r *ResultRepo) Add(ctx context.Context, searchID int64, listingID, title string, price *int64, url, description string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO results (search_id, listing_id, title, price, url, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		searchID, listingID, title, nullInt(price), url, description,
	)
	return err
}

// CountForSearch returns how many results are stored for a search. Zero means
// the search has never completed a scan (or was purged).
func (r *ResultRepo) CountForSearch(ctx context.Context, searchID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM results WHERE search_id = ?`, searchID).Scan(&n)
	return n, err
}

// ListForSearch returns all stored results for a search.
func (r *ResultRepo) ListForSearch(ctx context.Context, searchID int64) ([]models.Result, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, search_id, listing_id, title, price, url, COALESCE(description, ''), sent_at
		 FROM results WHERE search_id = ? ORDER BY sent_at DESC`,
		searchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Result
	for rows.Next() {
		var (
			res   models.Result
			price sql.NullInt64
		)
		if err := rows.Scan(&res.ID, &res.SearchID, &res.ListingID, &res.Title,
			&price, &res.URL, &res.Description, &res.SentAt); err != nil {
			return nil, err
		}
		if price.Valid {
			res.Price = &price.Int64
		}
		list = append(list, res)
	}
	return list, rows.Err()
}
