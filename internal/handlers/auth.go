package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthHandler exchanges the static API token for a short-lived JWT.
type AuthHandler struct {
	APIToken    string
	Secret      []byte
	ExpireHours int
}

// Login verifies the API token and issues a JWT. Body: {"token": "..."}.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if input.Token == "" || subtle.ConstantTimeCompare([]byte(input.Token), []byte(h.APIToken)) != 1 {
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	expire := h.ExpireHours
	if expire <= 0 {
		expire = 24
	}
	claims := jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Duration(expire) * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":      signed,
		"expires_in": expire * 3600,
	})
}
