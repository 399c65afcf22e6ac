package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pagepace/pagepace-server/internal/domain"
	"github.com/pagepace/pagepace-server/internal/store"
)

// userIDHeader is set by the authenticating reverse proxy in front of this
// server. The server trusts it; authentication itself lives upstream.
const userIDHeader = "X-User-ID"

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// userIDKey is the context key for the authenticated user ID.
const userIDKey ctxKey = "userID"

// GetUserID returns the authenticated user ID from context.
// Returns a 401 error if no identity was provided.
func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", huma.Error401Unauthorized("Authentication required")
	}
	return userID, nil
}

// getUserID is the plain-handler variant; empty means unauthenticated.
func getUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// setUserID stores the user ID in context.
func setUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// identityMiddleware reads the proxy identity header, provisions the user
// record on first sight, and stores the user ID in context. Requests without
// the header continue anonymously; handlers reject them via GetUserID.
func (s *Server) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(userIDHeader)
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		if err := s.ensureUser(r.Context(), userID); err != nil {
			s.logger.Error("failed to provision user",
				"user_id", userID,
				"error", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(setUserID(r.Context(), userID)))
	})
}

// ensureUser creates the user record the first time an identity shows up.
func (s *Server) ensureUser(ctx context.Context, userID string) error {
	_, err := s.store.GetUser(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	user := domain.NewUser(userID, userID+"@users.local", "", s.clk.Now().UTC())
	if err := s.store.CreateUser(ctx, user); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return err
	}
	return nil
}
