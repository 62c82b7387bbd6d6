package response

import (
	"net/http"

	pkgctx "github.com/parkwise/auth-service/internal/pkg/context"
)

// RequestIDFromContext extracts the request id set by the request-id
// middleware, or "" when it is absent.
func RequestIDFromContext(r *http.Request) string {
	return pkgctx.GetRequestID(r.Context())
}
