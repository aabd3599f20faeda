package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"delivery-storefront/storefront-svc/internal/domain"
	"delivery-storefront/storefront-svc/internal/service"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// requireAuth restores the caller's session into the request context.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required", Redirect: domain.LoginPage})
			return
		}

		session, err := h.Sessions.Restore(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		if !session.IsAuthenticated() {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required", Redirect: domain.LoginPage})
			return
		}
		next(w, r.WithContext(service.WithSession(r.Context(), session)))
	}
}

// requireRole admits authenticated callers holding one of roles. Everyone
// else is pointed at their own landing page.
func (h *Handler) requireRole(next http.HandlerFunc, roles ...domain.Role) http.HandlerFunc {
	return h.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		session, _ := service.SessionFrom(r.Context())
		for _, role := range roles {
			if session.User.Role == role {
				next(w, r)
				return
			}
		}
		writeJSON(w, http.StatusForbidden, errorResponse{
			Error:    "access denied for role " + string(session.User.Role),
			Redirect: session.User.Role.LandingPage(),
		})
	})
}
