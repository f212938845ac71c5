package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mishastik78/yamdb-final/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const userKey contextKey = "user"

// Verifier checks a bearer token and returns the user id it is bound to.
type Verifier interface {
	Verify(token string) (primitive.ObjectID, error)
}

// UserLoader resolves the authenticated user record, role included.
type UserLoader interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Auth requires a valid bearer token and puts the resolved user into the
// request context.
func Auth(tokens Verifier, users UserLoader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := resolve(w, r, tokens, users)
			if !ok {
				return
			}
			if user == nil {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
		})
	}
}

// OptionalAuth lets anonymous requests through (safe verbs are public) but
// still rejects a token that is present and invalid.
func OptionalAuth(tokens Verifier, users UserLoader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := resolve(w, r, tokens, users)
			if !ok {
				return
			}
			ctx := r.Context()
			if user != nil {
				ctx = context.WithValue(ctx, userKey, user)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolve parses the Authorization header. It returns (nil, true) when no
// header is present, and writes the 401 itself when the token is bad.
func resolve(w http.ResponseWriter, r *http.Request, tokens Verifier, users UserLoader) (*models.User, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, true
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		http.Error(w, `{"error":"invalid authorization format"}`, http.StatusUnauthorized)
		return nil, false
	}
	userID, err := tokens.Verify(parts[1])
	if err != nil {
		http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
		return nil, false
	}
	user, err := users.UserByID(r.Context(), userID)
	if err != nil {
		http.Error(w, `{"error":"authentication failed"}`, http.StatusInternalServerError)
		return nil, false
	}
	if user == nil {
		http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
