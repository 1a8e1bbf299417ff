package mw

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"society-booking-backend/internal/booking"
)

const (
	// RoleResident and RoleAdmin are the two caller capabilities.
	RoleResident = "resident"
	RoleAdmin    = "admin"

	callerKey = "caller"
)

// Claims is the JWT payload: subject carries the account id, Role the
// capability.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the given account.
func IssueToken(secret, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ResolveCaller parses and verifies a bearer token, returning the resolved
// caller identity. This is the single capability-resolution point; handlers
// never touch tokens.
func ResolveCaller(secret, token string) (booking.Caller, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return booking.Caller{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return booking.Caller{}, fmt.Errorf("token payload is invalid")
	}
	return booking.Caller{ID: claims.Subject, IsAdmin: claims.Role == RoleAdmin}, nil
}

// Authenticate is a middleware that resolves the bearer token to a caller
// and stores it in the request context.
func Authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		fields := strings.Fields(header)
		if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be a bearer token"})
			return
		}

		caller, err := ResolveCaller(secret, fields[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is invalid or expired"})
			return
		}

		c.Set(callerKey, caller)
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the authenticated caller holds the
// administrative capability. Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok || !caller.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin capability required"})
			return
		}
		c.Next()
	}
}

// CallerFrom returns the caller resolved by Authenticate.
func CallerFrom(c *gin.Context) (booking.Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return booking.Caller{}, false
	}
	caller, ok := v.(booking.Caller)
	return caller, ok
}
