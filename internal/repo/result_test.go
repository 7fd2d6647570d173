package repo

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestResultRepo_IsNew(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id FROM results WHERE search_id`).
		WithArgs(int64(1), "listing-a").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT id FROM results WHERE search_id`).
		WithArgs(int64(1), "listing-b").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	repo := NewResultRepo(db)

	isNew, err := repo.IsNew(context.Background(), 1, "listing-a")
	if err != nil {
		t.Fatalf("IsNew: %v", err)
	}
	if !isNew {
		t.Error("unseen listing reported as not new")
	}

	isNew, err = repo.IsNew(context.Background(), 1, "listing-b")
	if err != nil {
		t.Fatalf("IsNew: %v", err)
	}
	if isNew {
		t.Error("seen listing reported as new")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestResultRepo_HasDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	price := int64(10000)
	mock.ExpectQuery(`SELECT id FROM results`).
		WithArgs(int64(1), "GPU", price, "mint").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	repo := NewResultRepo(db)
	dup, err := repo.HasDuplicate(context.Background(), 1, "GPU", &price, "mint")
	if err != nil {
		t.Fatalf("HasDuplicate: %v", err)
	}
	if !dup {
		t.Error("matching content not reported as duplicate")
	}
}

func TestResultRepo_HasDuplicate_NilPrice(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	// price = NULL never matches in SQL, so the query returns no rows.
	mock.ExpectQuery(`SELECT id FROM results`).
		WithArgs(int64(1), "GPU", nil, "mint").
		WillReturnError(sql.ErrNoRows)

	repo := NewResultRepo(db)
	dup, err := repo.HasDuplicate(context.Background(), 1, "GPU", nil, "mint")
	if err != nil {
		t.Fatalf("HasDuplicate: %v", err)
	}
	if dup {
		t.Error("nil price reported as duplicate")
	}
}

func TestResultRepo_Add(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	price := int64(10000)
	mock.ExpectExec(`INSERT OR IGNORE INTO results`).
		WithArgs(int64(1), "listing-a", "GPU", price, "https://example.com/a", "mint").
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewResultRepo(db)
	if err := repo.Add(context.Background(), 1, "listing-a", "GPU", &price, "https://example.com/a", "mint"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestResultRepo_CountForSearch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM results`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	repo := NewResultRepo(db)
	n, err := repo.CountForSearch(context.Background(), 1)
	if err != nil {
		t.Fatalf("CountForSearch: %v", err)
	}
	if n != 6 {
		t.Errorf("count: got %d, want 6", n)
	}
}
