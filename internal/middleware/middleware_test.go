package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/models"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(subject string) Claims {
	now := time.Now()
	return Claims{
		Email: subject + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

type fakeUsers struct {
	err error
}

func (f fakeUsers) Resolve(_ context.Context, subject, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: "id-" + subject, Subject: subject, Email: email}, nil
}

func engine(users UserResolver, key string) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Auth(func(context.Context) string { return key }), ResolveUser(users))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUserID(c), "email": c.GetString(EmailKey)})
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsValidToken(t *testing.T) {
	w := get(engine(fakeUsers{}, secret), sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims("ada")))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"id-ada","email":"ada@example.com"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestAuthRejects(t *testing.T) {
	expired := validClaims("ada")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not.a.jwt"},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims("ada"))},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(secret), expired)},
		{"no subject", sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims(""))},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, []byte(secret), validClaims("ada"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(engine(fakeUsers{}, secret), tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthWithoutSecret(t *testing.T) {
	w := get(engine(fakeUsers{}, ""), "anything")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestResolveUserErrors(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte(secret), validClaims("ada"))

	w := get(engine(fakeUsers{err: models.ErrUserNotFound}, secret), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(engine(fakeUsers{err: errors.New("db down")}, secret), token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestIssueTokenRoundTrip(t *testing.T) {
	tok, err := IssueToken(secret, "grace", "grace@example.com", time.Minute)
	require.NoError(t, err)

	w := get(engine(fakeUsers{}, secret), tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"id-grace","email":"grace@example.com"}`, w.Body.String())
}
