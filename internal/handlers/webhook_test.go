package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/kijiji-watch/internal/repo"
)

type fakeTester struct {
	urls []string
	err  error
}

func (f *fakeTester) TestWebhook(ctx context.Context, webhookURL string) error {
	f.urls = append(f.urls, webhookURL)
	return f.err
}

func TestWebhookHandler_CreateWebhook(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO webhooks`).
		WithArgs("alerts", "https://discord.com/api/webhooks/1/abc").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery(`SELECT id, name, url, created_at FROM webhooks WHERE id`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "created_at"}).
			AddRow(4, "alerts", "https://discord.com/api/webhooks/1/abc", time.Now()))

	h := &WebhookHandler{Repo: repo.NewWebhookRepo(db)}

	body := []byte(`{"name": "alerts", "url": "https://discord.com/api/webhooks/1/abc"}`)
	req := httptest.NewRequest("POST", "/webhooks", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateWebhook(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("CreateWebhook status: got %d, want 201", rr.Code)
	}
	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ID != 4 || out.Name != "alerts" {
		t.Errorf("created webhook: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestWebhookHandler_CreateWebhook_RejectsPlainHTTP(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &WebhookHandler{Repo: repo.NewWebhookRepo(db)}

	body := []byte(`{"name": "alerts", "url": "http://discord.com/api/webhooks/1/abc"}`)
	req := httptest.NewRequest("POST", "/webhooks", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.CreateWebhook(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("CreateWebhook status: got %d, want 400", rr.Code)
	}
}

func TestWebhookHandler_TestWebhook(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, url, created_at FROM webhooks WHERE id`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "created_at"}).
			AddRow(2, "alerts", "https://discord.com/api/webhooks/2/xyz", time.Now()))

	tester := &fakeTester{}
	h := &WebhookHandler{Repo: repo.NewWebhookRepo(db), Tester: tester}

	req := withURLParam(httptest.NewRequest("POST", "/webhooks/2/test", nil), "id", "2")
	rr := httptest.NewRecorder()
	h.TestWebhook(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("TestWebhook status: got %d, want 200", rr.Code)
	}
	if len(tester.urls) != 1 || tester.urls[0] != "https://discord.com/api/webhooks/2/xyz" {
		t.Errorf("tester urls: %v", tester.urls)
	}
}

func TestWebhookHandler_TestWebhook_SendFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, url, created_at FROM webhooks WHERE id`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "created_at"}).
			AddRow(2, "alerts", "https://discord.com/api/webhooks/2/xyz", time.Now()))

	tester := &fakeTester{err: errors.New("webhook gone")}
	h := &WebhookHandler{Repo: repo.NewWebhookRepo(db), Tester: tester}

	req := withURLParam(httptest.NewRequest("POST", "/webhooks/2/test", nil), "id", "2")
	rr := httptest.NewRecorder()
	h.TestWebhook(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("TestWebhook status: got %d, want 502", rr.Code)
	}
}

func TestWebhookHandler_TestWebhook_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, url, created_at FROM webhooks WHERE id`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "created_at"}))

	h := &WebhookHandler{Repo: repo.NewWebhookRepo(db), Tester: &fakeTester{}}

	req := withURLParam(httptest.NewRequest("POST", "/webhooks/9/test", nil), "id", "9")
	rr := httptest.NewRecorder()
	h.TestWebhook(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("TestWebhook status: got %d, want 404", rr.Code)
	}
}

func TestWebhookHandler_DeleteWebhook_InvalidID(t *testing.T) {
	h := &WebhookHandler{}

	req := withURLParam(httptest.NewRequest("DELETE", "/webhooks/abc", nil), "id", "abc")
	rr := httptest.NewRecorder()
	h.DeleteWebhook(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("DeleteWebhook status: got %d, want 400", rr.Code)
	}
}
