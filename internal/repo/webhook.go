package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/crucial707/kijiji-watch/internal/models"
)

// WebhookRepo persists Discord webhook endpoints.
type WebhookRepo struct {
	DB *sql.DB
}

// NewWebhookRepo returns a new WebhookRepo.
func NewWebhookRepo(db *sql.DB) *WebhookRepo {
	return &WebhookRepo{DB: db}
}

// List returns all webhooks ordered by name.
func (r *WebhookRepo) List(ctx context.Context) ([]models.Webhook, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, url, created_at FROM webhooks ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Webhook
	for rows.Next() {
		var w models.Webhook
		if err := rows.Scan(&w.ID, &w.Name, &w.URL, &w.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

// GetByID returns one webhook by id, or nil if not found.
func (r *WebhookRepo) GetByID(ctx context.Context, id int64) (*models.Webhook, error) {
	var w models.Webhook
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, url, created_at FROM webhooks WHERE id = ?`, id,
	).Scan(&w.ID, &w.Name, &w.URL, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Create inserts a webhook and returns its id. The URL is unique.
func (r *WebhookRepo) Create(ctx context.Context, name, url string) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO webhooks (name, url) VALUES (?, ?)`, name, url)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Delete removes a webhook by id.
func (r *WebhookRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM webhooks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errors.New("webhook not found")
	}
	return nil
}
