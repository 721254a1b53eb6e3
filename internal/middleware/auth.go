package middleware

import (
	"context"
	"net/http"
	"strings"
)

type credKey struct{}

// Credential returns the bearer credential captured by Bearer.
func Credential(ctx context.Context) string {
	v, _ := ctx.Value(credKey{}).(string)
	return v
}

// Bearer copies the Authorization bearer value into the request context.
// It does not judge the credential; every core entry point authorizes it.
func Bearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		var token string
		if len(ah) > len("bearer ") && strings.EqualFold(ah[:len("bearer ")], "bearer ") {
			token = strings.TrimSpace(ah[len("bearer "):])
		}
		ctx := context.WithValue(r.Context(), credKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
