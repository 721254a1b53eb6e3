package middleware

import (
	"net/http"

	"github.com/baharkarakas/wallet-ops/internal/api/httpx"
	"github.com/baharkarakas/wallet-ops/internal/logger"
)

func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.From(r.Context()).ErrorContext(r.Context(), "panic", "err", rec, "path", r.URL.Path)
				httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
