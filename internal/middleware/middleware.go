package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"planner/internal/config"
	"planner/internal/models"
	"planner/pkg/logger"
)

// Keys under which the middlewares store request identity in the gin context.
const (
	SubjectKey = "subject"
	EmailKey   = "email"
	UserKey    = "user"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// Claims are the token claims the service reads.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for subject that expires after ttl.
func IssueToken(secret, subject, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// AuthMiddleware verifies bearer tokens against the configured JWT secret.
func AuthMiddleware() gin.HandlerFunc {
	return Auth(config.GetJWTSecret)
}

// Auth verifies an HS256 bearer token signed with the secret returned by
// secret and stores its subject and email in the gin context.
func Auth(secret func(context.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		auth := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if auth == "" || !strings.HasPrefix(auth, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			logger.Debug(ctx, "Missing or invalid Authorization header")
			return
		}
		tokenStr := strings.TrimSpace(auth[len(prefix):])
		key := secret(ctx)
		if key == "" {
			logger.Error(ctx, "JWT secret is not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server misconfiguration"})
			return
		}
		claims := &Claims{}
		_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(key), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			logger.Debug(ctx, "JWT parse failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(SubjectKey, claims.Subject)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

// UserResolver maps a token subject to a user record.
type UserResolver interface {
	Resolve(ctx context.Context, subject, email string) (*models.User, error)
}

// ResolveUser loads the user behind the authenticated subject and stores it
// under UserKey. It must run after Auth.
func ResolveUser(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user, err := users.Resolve(ctx, c.GetString(SubjectKey), c.GetString(EmailKey))
		switch {
		case errors.Is(err, models.ErrUnauthenticated):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		case errors.Is(err, models.ErrUserNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		case err != nil:
			logger.Error(ctx, "Resolving user failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.Set(UserKey, user)
		c.Request = c.Request.WithContext(logger.With(ctx, "user_id", user.ID))
		c.Next()
	}
}

// CurrentUserID returns the id of the resolved user, or "" when none is set.
func CurrentUserID(c *gin.Context) string {
	if u, ok := c.Get(UserKey); ok {
		if user, ok := u.(*models.User); ok && user != nil {
			return user.ID
		}
	}
	return ""
}

// RequestID tags the request context logger with the incoming X-Request-ID,
// or a fresh one, and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
