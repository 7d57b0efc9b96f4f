package exchangetest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/menjava/internal/auth"
)

type contextKey string

const userKey contextKey = "user"

// authenticate validates the bearer token and puts the account in the context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			jsonError(w, http.StatusUnauthorized, "missing or invalid authorization header")
			return
		}

		claims, err := auth.ValidateToken(s.secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		s.mu.Lock()
		u := s.users[id]
		s.mu.Unlock()
		if u == nil || u.Deleted {
			jsonError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole rejects accounts without the given role.
func requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := currentUser(r.Context())
			if u == nil {
				jsonError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if u.Role != role {
				jsonError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireActive rejects suspended users.
func requireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := currentUser(r.Context()); u != nil && u.SuspensionReason != "" {
			jsonError(w, http.StatusForbidden, "Your account is suspended")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(ctx context.Context) *User {
	u, _ := ctx.Value(userKey).(*User)
	return u
}

// record counts each request and logs method, path, status and duration.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		s.requestIDs = append(s.requestIDs, middleware.GetReqID(r.Context()))
		s.mu.Unlock()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("backend request", "method", r.Method, "path", r.URL.RequestURI(), "status", ww.Status(), "duration", time.Since(start).Round(time.Millisecond))
	})
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"message": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
