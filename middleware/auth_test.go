package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mishastik78/yamdb-final/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeVerifier struct {
	userID primitive.ObjectID
}

func (f fakeVerifier) Verify(token string) (primitive.ObjectID, error) {
	if token == "good" {
		return f.userID, nil
	}
	return primitive.NilObjectID, errors.New("invalid token")
}

type fakeLoader struct {
	user *models.User
}

func (f fakeLoader) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, nil
}

func newStack(t *testing.T) (fakeVerifier, fakeLoader, *models.User) {
	t.Helper()
	user := &models.User{ID: primitive.NewObjectID(), Username: "someone", Role: models.RoleUser}
	return fakeVerifier{userID: user.ID}, fakeLoader{user: user}, user
}

func capture(handlerUser **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*handlerUser = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthValidToken(t *testing.T) {
	verifier, loader, user := newStack(t)
	var got *models.User
	h := Auth(verifier, loader)(capture(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user, got)
}

func TestAuthMissingHeader(t *testing.T) {
	verifier, loader, _ := newStack(t)
	var got *models.User
	h := Auth(verifier, loader)(capture(&got))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, got)
}

func TestAuthBadToken(t *testing.T) {
	verifier, loader, _ := newStack(t)
	h := Auth(verifier, loader)(capture(new(*models.User)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthUnknownUser(t *testing.T) {
	verifier, _, _ := newStack(t)
	h := Auth(verifier, fakeLoader{})(capture(new(*models.User)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code, "token bound to a deleted user is rejected")
}

func TestOptionalAuthAnonymous(t *testing.T) {
	verifier, loader, _ := newStack(t)
	var got *models.User
	h := OptionalAuth(verifier, loader)(capture(&got))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code, "anonymous reads pass through")
	assert.Nil(t, got)
}

func TestOptionalAuthWithToken(t *testing.T) {
	verifier, loader, user := newStack(t)
	var got *models.User
	h := OptionalAuth(verifier, loader)(capture(&got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user, got)
}

func TestOptionalAuthInvalidToken(t *testing.T) {
	verifier, loader, _ := newStack(t)
	h := OptionalAuth(verifier, loader)(capture(new(*models.User)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code, "a present but invalid token is still rejected")
}
