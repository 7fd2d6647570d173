package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// SubjectKey holds the authenticated token subject in the request context.
const SubjectKey contextKey = "subject"

// JWTMiddleware rejects requests without a valid HS256 bearer token and puts
// the token subject in the context.
func JWTMiddleware(secret []byte) func(http.Handler) http.Handler {
	keyFunc := func(*jwt.Token) (interface{}, error) { return secret, nil }
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, keyFunc,
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			sub, _ := claims["sub"].(string)
			ctx := context.WithValue(r.Context(), SubjectKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
