package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/kijiji-watch/internal/models"
)

// selectSearch joins searches with their region and webhook, matching what the
// scanner and the API both need in one read.
const selectSearch = `
	SELECT s.id, s.name, COALESCE(s.keyword, ''), s.region_id, s.webhook_id,
	       s.interval_minutes, s.min_price, s.max_price, COALESCE(s.category, ''),
	       s.no_duplicates, s.radius, s.is_active, s.last_scan, s.created_at,
	       r.name, r.url, w.name, w.url
	FROM searches s
	JOIN regions r ON s.region_id = r.id
	JOIN webhooks w ON s.webhook_id = w.id
`

// SearchRepo persists saved searches.
type SearchRepo struct {
	DB *sql.DB
}

// NewSearchRepo returns a new SearchRepo.
func NewSearchRepo(db *sql.DB) *SearchRepo {
	return &SearchRepo{DB: db}
}

func scanSearch(rows interface {
	Scan(dest ...any) error
}) (models.Search, error) {
	var (
		s        models.Search
		minPrice sql.NullInt64
		maxPrice sql.NullInt64
		lastScan sql.NullTime
	)
	err := rows.Scan(&s.ID, &s.Name, &s.Keyword, &s.RegionID, &s.WebhookID,
		&s.IntervalMinutes, &minPrice, &maxPrice, &s.Category,
		&s.NoDuplicates, &s.Radius, &s.IsActive, &lastScan, &s.CreatedAt,
		&s.RegionName, &s.RegionURL, &s.WebhookName, &s.WebhookURL)
	if err != nil {
		return s, err
	}
	if minPrice.Valid {
		s.MinPrice = &minPrice.Int64
	}
	if maxPrice.Valid {
		s.MaxPrice = &maxPrice.Int64
	}
	if lastScan.Valid {
		t := lastScan.Time
		s.LastScan = &t
	}
	return s, nil
}

// List returns all searches (active and paused), ordered by name.
func (r *SearchRepo) List(ctx context.Context) ([]models.Search, error) {
	rows, err := r.DB.QueryContext(ctx, selectSearch+` ORDER BY s.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Search
	for rows.Next() {
		s, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// ListActive returns all active searches (for the scanner).
func (r *SearchRepo) ListActive(ctx context.Context) ([]models.Search, error) {
	rows, err := r.DB.QueryContext(ctx, selectSearch+` WHERE s.is_active = 1 ORDER BY s.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Search
	for rows.Next() {
		s, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetByID returns one search by id regardless of active state, or nil if not found.
func (r *SearchRepo) GetByID(ctx context.Context, id int64) (*models.Search, error) {
	row := r.DB.QueryRowContext(ctx, selectSearch+` WHERE s.id = ?`, id)
	s, err := scanSearch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new search and returns its id.
func (r *SearchRepo) Create(ctx context.Context, s models.Search) (int64, error) {
	radius := s.Radius
	if radius <= 0 {
		radius = 50
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO searches (name, keyword, region_id, webhook_id, interval_minutes,
		                       min_price, max_price, category, no_duplicates, radius)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Name, nullStr(s.Keyword), s.RegionID, s.WebhookID, s.IntervalMinutes,
		nullInt(s.MinPrice), nullInt(s.MaxPrice), nullStr(s.Category), s.NoDuplicates, radius,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update replaces all editable fields of a search.
func (r *SearchRepo) Update(ctx context.Context, id int64, s models.Search) error {
	radius := s.Radius
	if radius <= 0 {
		radius = 50
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE searches SET name = ?, keyword = ?, region_id = ?, webhook_id = ?,
		        interval_minutes = ?, min_price = ?, max_price = ?, category = ?,
		        no_duplicates = ?, radius = ?
		 WHERE id = ?`,
		s.Name, nullStr(s.Keyword), s.RegionID, s.WebhookID, s.IntervalMinutes,
		nullInt(s.MinPrice), nullInt(s.MaxPrice), nullStr(s.Category), s.NoDuplicates, radius, id,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errors.New("search not found")
	}
	return nil
}

// ToggleActive flips the active flag (pause/resume).
func (r *SearchRepo) ToggleActive(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE searches SET is_active = NOT is_active WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errors.New("search not found")
	}
	return nil
}

// UpdateLastScan stamps the search with the current time.
func (r *SearchRepo) UpdateLastScan(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE searches SET last_scan = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// Delete removes a search and all of its results.
func (r *SearchRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE search_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM searches WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errors.New("search not found")
	}
	return tx.Commit()
}

// PurgeOrphaned removes results whose search is gone and searches whose webhook
// or region is gone (database maintenance).
func (r *SearchRepo) PurgeOrphaned(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx,
		`DELETE FROM results WHERE search_id NOT IN (SELECT id FROM searches)`); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM searches WHERE webhook_id NOT IN (SELECT id FROM webhooks)
		    OR region_id NOT IN (SELECT id FROM regions)`)
	return err
}

func nullStr(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
