package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/kijiji-watch/internal/repo"
	"github.com/go-chi/chi/v5"
)

type fakeScanner struct {
	mu         sync.Mutex
	reconciles int
	performed  []int64
}

func (f *fakeScanner) Reconcile(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconciles++
}

func (f *fakeScanner) PerformSearch(ctx context.Context, searchID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.performed = append(f.performed, searchID)
}

func (f *fakeScanner) reconcileCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reconciles
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func searchRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "keyword", "region_id", "webhook_id",
		"interval_minutes", "min_price", "max_price", "category",
		"no_duplicates", "radius", "is_active", "last_scan", "created_at",
		"region_name", "region_url", "webhook_name", "webhook_url",
	})
}

func TestSearchHandler_ListSearches(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT s.id, s.name`).
		WillReturnRows(searchRows().
			AddRow(1, "gpu deals", "rtx 3080", 1, 1, 5, nil, nil, "", false, 50, true, nil, now,
				"Edmonton", "rurl", "alerts", "wurl"))

	h := &SearchHandler{Repo: repo.NewSearchRepo(db)}

	req := httptest.NewRequest("GET", "/searches", nil)
	rr := httptest.NewRecorder()
	h.ListSearches(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("ListSearches status: got %d, want 200", rr.Code)
	}
	var out []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 || out[0].Name != "gpu deals" {
		t.Errorf("unexpected list: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestSearchHandler_CreateSearch_Validation(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &SearchHandler{Repo: repo.NewSearchRepo(db)}

	body := []byte(`{"keyword": "rtx 3080"}`)
	req := httptest.NewRequest("POST", "/searches", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateSearch(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("CreateSearch status: got %d, want 400", rr.Code)
	}
	var out struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, field := range []string{"name", "region_id", "webhook_id", "interval_minutes"} {
		if out.Fields[field] == "" {
			t.Errorf("missing validation for %s: %+v", field, out.Fields)
		}
	}
}

func TestSearchHandler_CreateSearch_PriceBoundsOrdered(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &SearchHandler{Repo: repo.NewSearchRepo(db)}

	body := []byte(`{"name": "x", "region_id": 1, "webhook_id": 1, "interval_minutes": 5, "min_price": 500, "max_price": 100}`)
	req := httptest.NewRequest("POST", "/searches", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateSearch(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("CreateSearch status: got %d, want 400", rr.Code)
	}
}

func TestSearchHandler_ToggleSearch_Reconciles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT s.id, s.name`).
		WithArgs(int64(1)).
		WillReturnRows(searchRows().
			AddRow(1, "gpu deals", "", 1, 1, 5, nil, nil, "", false, 50, true, nil, now,
				"Edmonton", "rurl", "alerts", "wurl"))
	mock.ExpectExec(`UPDATE searches SET is_active = NOT is_active`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT s.id, s.name`).
		WithArgs(int64(1)).
		WillReturnRows(searchRows().
			AddRow(1, "gpu deals", "", 1, 1, 5, nil, nil, "", false, 50, false, nil, now,
				"Edmonton", "rurl", "alerts", "wurl"))

	scan := &fakeScanner{}
	h := &SearchHandler{Repo: repo.NewSearchRepo(db), Scanner: scan}

	req := withURLParam(httptest.NewRequest("PATCH", "/searches/1/toggle", nil), "id", "1")
	rr := httptest.NewRecorder()
	h.ToggleSearch(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ToggleSearch status: got %d, want 200", rr.Code)
	}
	if scan.reconcileCount() != 1 {
		t.Errorf("reconciles: got %d, want 1", scan.reconcileCount())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestSearchHandler_DeleteSearch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM results WHERE search_id`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM searches WHERE id`).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	scan := &fakeScanner{}
	h := &SearchHandler{Repo: repo.NewSearchRepo(db), Scanner: scan}

	req := withURLParam(httptest.NewRequest("DELETE", "/searches/3", nil), "id", "3")
	rr := httptest.NewRecorder()
	h.DeleteSearch(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("DeleteSearch status: got %d, want 204", rr.Code)
	}
	if scan.reconcileCount() != 1 {
		t.Errorf("reconciles: got %d, want 1", scan.reconcileCount())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestSearchHandler_GetSearch_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT s.id, s.name`).
		WithArgs(int64(99)).
		WillReturnRows(searchRows())

	h := &SearchHandler{Repo: repo.NewSearchRepo(db)}

	req := withURLParam(httptest.NewRequest("GET", "/searches/99", nil), "id", "99")
	rr := httptest.NewRecorder()
	h.GetSearch(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("GetSearch status: got %d, want 404", rr.Code)
	}
}
