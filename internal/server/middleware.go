package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyeonlab/moneyflow/backend/internal/auth"
)

// TokenVerifier verifies a bearer token into user claims.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, idToken string) (*auth.UserClaims, error)
}

const debugUserHeader = "X-Debug-User-Id"

// authMiddleware extracts and verifies the Firebase bearer token, attaching
// the resulting claims to the request context. With skipAuth set, requests
// are trusted and the debug user header (or a fixed local user) names the
// caller instead.
func authMiddleware(verifier TokenVerifier, skipAuth bool, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipAuth {
				uid := r.Header.Get(debugUserHeader)
				if uid == "" {
					uid = "local-dev-user"
				}
				ctx := auth.WithUserClaims(r.Context(), &auth.UserClaims{UID: uid})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing bearer token", "")
				return
			}

			claims, err := verifier.VerifyToken(r.Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.Debug().Err(err).Msg("token verification failed")
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid token", "")
				return
			}

			ctx := auth.WithUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestLogger emits one structured line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// currentUserID returns the authenticated user id, or "" when the request
// skipped the auth middleware.
func currentUserID(r *http.Request) string {
	claims, ok := auth.UserClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	return claims.UID
}
