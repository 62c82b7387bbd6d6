package middleware

import (
	"net/http"

	"github.com/google/uuid"

	pkgctx "github.com/parkwise/auth-service/internal/pkg/context"
)

const HeaderXRequestID = "X-Request-Id"

// RequestID propagates an incoming X-Request-Id or generates one, and
// echoes it back on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		w.Header().Set(HeaderXRequestID, reqID)

		ctx := pkgctx.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
