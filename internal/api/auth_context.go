package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/bookbuddy/bookbuddy-server/internal/auth"
	domainerrors "github.com/bookbuddy/bookbuddy-server/internal/errors"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	userIDKey    ctxKey = "userID"
	sessionIDKey ctxKey = "sessionID"
	authErrKey   ctxKey = "authErr"
)

// GetUserID returns the authenticated user ID from context.
// Returns a 401 error if the request carried no valid token.
func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		if err, ok := ctx.Value(authErrKey).(error); ok {
			return "", err
		}
		return "", domainerrors.Unauthorized("authentication required")
	}
	return userID, nil
}

// optionalUserID returns the caller's ID, or "" for anonymous requests.
func optionalUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// getSessionID returns the session the access token belongs to.
func getSessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionIDKey).(string)
	return sessionID
}

func withIdentity(ctx context.Context, userID string, claims *auth.AccessClaims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, sessionIDKey, claims.SessionID)
}

// authMiddleware returns a middleware that validates Bearer tokens and stores user ID in context.
// If no token is present or invalid, continues without user in context.
// Handlers use GetUserID to check authentication.
func authMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, claims, err := authService.VerifyAccessToken(r.Context(), token)
			if err != nil {
				// Remember why so protected handlers can say "token expired".
				ctx := context.WithValue(r.Context(), authErrKey, err)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), user.ID, claims)))
		})
	}
}
