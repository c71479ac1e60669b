package middleware

import (
	"net/http"

	"github.com/arman-qz/parking-system/internal/domain/types"
	wrap "github.com/arman-qz/parking-system/pkg/logger/wrapper"
	"github.com/arman-qz/parking-system/pkg/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags every request with an id for log correlation. An id
// supplied by the client is kept so callers can trace across services.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			generated, err := uuid.New()
			if err == nil {
				id = generated.String()
			}
		}

		ctx := r.Context()
		if id != "" {
			ctx = types.WithRequestIDContext(ctx, id)
			ctx = wrap.WithRequestID(ctx, id)
			w.Header().Set(requestIDHeader, id)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
