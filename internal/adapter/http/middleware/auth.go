package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/arman-qz/parking-system/internal/domain/models"
	"github.com/arman-qz/parking-system/internal/domain/types"
	wrap "github.com/arman-qz/parking-system/pkg/logger/wrapper"
)

// Auth resolves the bearer token into a principal and injects it into the
// context. Requests without an Authorization header pass through as
// anonymous; protected endpoints reject those via RequireRoles.
func (m *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		if header == "" {
			r = r.WithContext(models.WithPrincipal(ctx, models.AnonymousPrincipal()))
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			m.log.Error(wrap.ErrorCtx(ctx, err), "failed to authenticate request", err)
			errorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		principal := &models.Principal{
			Email: claims.Email,
			Role:  claims.Role,
		}
		ctx = models.WithPrincipal(ctx, principal)
		ctx = wrap.WithUserEmail(ctx, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles allows only principals with one of the given roles.
func (m *Middleware) RequireRoles(next http.HandlerFunc, allowedRoles ...types.AccountRole) http.Handler {
	allowed := make(map[types.AccountRole]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := models.PrincipalFromContext(r.Context())
		if principal.IsAnonymous() {
			errorResponse(w, http.StatusUnauthorized, "authorization required")
			return
		}
		if len(allowed) > 0 {
			if _, ok := allowed[principal.Role]; !ok {
				errorResponse(w, http.StatusForbidden, "forbidden: insufficient role")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return parts[1], nil
}
