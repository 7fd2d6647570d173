package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthHandler_Login(t *testing.T) {
	h := &AuthHandler{APIToken: "secret-token", Secret: []byte("jwt-secret"), ExpireHours: 24}

	body := []byte(`{"token": "secret-token"}`)
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Login status: got %d, want 200", rr.Code)
	}
	var out struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ExpiresIn != 24*3600 {
		t.Errorf("expires_in: got %d, want %d", out.ExpiresIn, 24*3600)
	}

	parsed, err := jwt.Parse(out.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("jwt-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub != "admin" {
		t.Errorf("subject: got %q, err %v", sub, err)
	}
}

func TestAuthHandler_Login_WrongToken(t *testing.T) {
	h := &AuthHandler{APIToken: "secret-token", Secret: []byte("jwt-secret")}

	body := []byte(`{"token": "wrong"}`)
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Login status: got %d, want 401", rr.Code)
	}
}

func TestAuthHandler_Login_EmptyToken(t *testing.T) {
	h := &AuthHandler{APIToken: "", Secret: []byte("jwt-secret")}

	body := []byte(`{"token": ""}`)
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("empty token must never authenticate: got %d", rr.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := &AuthHandler{APIToken: "secret-token", Secret: []byte("jwt-secret")}

	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte(`{`)))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Login status: got %d, want 400", rr.Code)
	}
}
