package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/kijiji-watch/internal/models"
)

// RegionRepo persists Kijiji regions.
type RegionRepo struct {
	DB *sql.DB
}

// NewRegionRepo returns a new RegionRepo.
func NewRegionRepo(db *sql.DB) *RegionRepo {
	return &RegionRepo{DB: db}
}

// List returns all regions ordered by name.
func (r *RegionRepo) List(ctx context.Context) ([]models.Region, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, url, created_at FROM regions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Region
	for rows.Next() {
		var reg models.Region
		if err := rows.Scan(&reg.ID, &reg.Name, &reg.URL, &reg.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// GetByID returns one region by id, or nil if not found.
func (r *RegionRepo) GetByID(ctx context.Context, id int64) (*models.Region, error) {
	var reg models.Region
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, url, created_at FROM regions WHERE id = ?`, id,
	).Scan(&reg.ID, &reg.Name, &reg.URL, &reg.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Create inserts a region and returns its id. The URL is unique.
func (r *RegionRepo) Create(ctx context.Context, name, url string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO regions (name, url) VALUES (?, ?)`, name, url)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Delete removes a region by id.
func (r *RegionRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM regions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errors.New("region not found")
	}
	return nil
}
