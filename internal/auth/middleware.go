package auth

import (
	"net/http"
	"strings"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// RequireToken guards routes behind a valid console token.
func (s *Service) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.Verify(r.Context(), bearerToken(r)); err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
