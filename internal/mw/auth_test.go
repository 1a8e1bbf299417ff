package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"society-booking-backend/internal/booking"
)

const secret = "unit-test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := IssueToken(secret, "u-1", RoleResident, time.Hour)
	require.NoError(t, err)

	caller, err := ResolveCaller(secret, token)
	require.NoError(t, err)
	assert.Equal(t, booking.Caller{ID: "u-1"}, caller)

	adminToken, err := IssueToken(secret, "a-1", RoleAdmin, time.Hour)
	require.NoError(t, err)
	caller, err = ResolveCaller(secret, adminToken)
	require.NoError(t, err)
	assert.True(t, caller.IsAdmin)
}

func TestResolveCallerRejectsBadTokens(t *testing.T) {
	expired, err := IssueToken(secret, "u-1", RoleResident, -time.Minute)
	require.NoError(t, err)
	_, err = ResolveCaller(secret, expired)
	assert.Error(t, err)

	forged, err := IssueToken("other-secret", "u-1", RoleResident, time.Hour)
	require.NoError(t, err)
	_, err = ResolveCaller(secret, forged)
	assert.Error(t, err)

	_, err = ResolveCaller(secret, "not-a-token")
	assert.Error(t, err)
}

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("", Authenticate(secret))
	authed.GET("/whoami", func(c *gin.Context) {
		caller, _ := CallerFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": caller.ID})
	})
	authed.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthenticateMiddleware(t *testing.T) {
	router := setupAuthRouter()
	token, err := IssueToken(secret, "u-1", RoleResident, time.Hour)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		path   string
		header string
		code   int
	}{
		{"Missing header", "/whoami", "", http.StatusUnauthorized},
		{"Not a bearer scheme", "/whoami", "Basic abc", http.StatusUnauthorized},
		{"Garbage token", "/whoami", "Bearer garbage", http.StatusUnauthorized},
		{"Valid resident", "/whoami", "Bearer " + token, http.StatusOK},
		{"Resident hits admin route", "/admin", "Bearer " + token, http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.code, w.Code)
		})
	}

	t.Run("Admin hits admin route", func(t *testing.T) {
		adminToken, err := IssueToken(secret, "a-1", RoleAdmin, time.Hour)
		require.NoError(t, err)
		req, _ := http.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
