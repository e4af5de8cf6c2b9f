package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/healthboard/healthboard/internal/server/auth"
	"github.com/healthboard/healthboard/internal/server/reqctx"
)

// requestID tags every request with an identifier and logs the outcome.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info(r.Context(), "request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
		)
	})
}

// authenticate validates the bearer token and binds the principal identity
// and token scope to the request context. The binding lives exactly as long
// as the request; nothing downstream ever unbinds it explicitly.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "Access denied. Malformed authorization header.")
			return
		}

		claims, err := auth.ParseToken(parts[1], s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token.")
			return
		}

		ctx := reqctx.WithPrincipal(r.Context(), claims.UserID)
		ctx = reqctx.WithScope(ctx, string(claims.Scope))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireFull rejects tokens that have not completed second-factor
// verification.
func (s *Server) requireFull(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, ok := reqctx.Scope(r.Context())
		if !ok || scope != string(auth.ScopeFull) {
			writeError(w, http.StatusForbidden, "MFA verification required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
