package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"society-booking-backend/config"
	"society-booking-backend/internal/booking"
	"society-booking-backend/internal/model"
	"society-booking-backend/internal/mw"
	"society-booking-backend/internal/store"
)

const testSecret = "test-secret"

// setupBookingRouter wires the full router against a private in-memory
// database and returns tokens for a resident and the admin.
func setupBookingRouter(t *testing.T) (*gin.Engine, string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:api-%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(&model.User{}, &model.Admin{}, &model.Amenity{}, &model.Booking{}, &model.PushSubscription{}))
	require.NoError(t, testDB.Create(&model.User{ID: "u-res", Name: "Asha", ResidentID: "A-101"}).Error)

	cfg := &config.Config{}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.CacheTTLSeconds = 1
	cfg.Auth.JWTSecret = testSecret
	cfg.Auth.TokenTTLMinutes = 60

	st := store.NewGormStore(testDB, 5*time.Second)
	h := NewHandler(st, booking.NewService(st), cfg, nil, nil)

	residentToken, err := mw.IssueToken(testSecret, "u-res", mw.RoleResident, time.Hour)
	require.NoError(t, err)
	adminToken, err := mw.IssueToken(testSecret, "admin", mw.RoleAdmin, time.Hour)
	require.NoError(t, err)

	return NewRouter(h), residentToken, adminToken
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func bookingBody(amenity string, start, end time.Time) gin.H {
	return gin.H{
		"amenityName": amenity,
		"startTime":   start.Format(time.RFC3339),
		"endTime":     end.Format(time.RFC3339),
	}
}

func TestBookingsRequireAuth(t *testing.T) {
	router, _, _ := setupBookingRouter(t)

	w := doJSON(router, "GET", "/api/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, "POST", "/api/bookings", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateBookingFlow(t *testing.T) {
	router, residentToken, adminToken := setupBookingRouter(t)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	end := start.Add(2 * time.Hour)

	w := doJSON(router, "POST", "/api/bookings", residentToken, bookingBody("Clubhouse", start, end))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Equal(t, "General Booking", created.EventDescription)
	if assert.NotNil(t, created.BookedBy) {
		assert.Equal(t, "Asha", created.BookedBy.Name)
	}

	t.Run("Overlap returns 409 with the held window", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/bookings", residentToken, bookingBody("Clubhouse", start.Add(time.Hour), end.Add(time.Hour)))
		require.Equal(t, http.StatusConflict, w.Code)

		var resp struct {
			Error    string `json:"error"`
			Conflict struct {
				Start time.Time `json:"start"`
				End   time.Time `json:"end"`
				Event string    `json:"event"`
			} `json:"conflict"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Conflict.Start.Equal(start))
		assert.True(t, resp.Conflict.End.Equal(end))
		assert.Equal(t, "General Booking", resp.Conflict.Event)
	})

	t.Run("Admins cannot create bookings", func(t *testing.T) {
		other := start.Add(48 * time.Hour)
		w := doJSON(router, "POST", "/api/bookings", adminToken, bookingBody("Gym", other, other.Add(time.Hour)))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Missing fields return 400", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/bookings", residentToken, gin.H{"amenityName": "Gym"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateBookingStatusFlow(t *testing.T) {
	router, residentToken, adminToken := setupBookingRouter(t)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)

	w := doJSON(router, "POST", "/api/bookings", residentToken, bookingBody("Gym", start, start.Add(time.Hour)))
	require.Equal(t, http.StatusCreated, w.Code)
	var created bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	statusPath := "/api/bookings/" + created.ID + "/status"

	t.Run("Residents cannot decide", func(t *testing.T) {
		w := doJSON(router, "PATCH", statusPath, residentToken, gin.H{"status": "Approved"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Unknown status is refused", func(t *testing.T) {
		w := doJSON(router, "PATCH", statusPath, adminToken, gin.H{"status": "Confirmed"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Admin approves", func(t *testing.T) {
		w := doJSON(router, "PATCH", statusPath, adminToken, gin.H{"status": "Approved"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp bookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, model.StatusApproved, resp.Status)
	})

	t.Run("Approved booking cannot be rejected", func(t *testing.T) {
		w := doJSON(router, "PATCH", statusPath, adminToken, gin.H{"status": "Rejected"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Approved")
	})

	t.Run("Unknown booking is 404", func(t *testing.T) {
		w := doJSON(router, "PATCH", "/api/bookings/nope/status", adminToken, gin.H{"status": "Approved"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCancelBookingFlow(t *testing.T) {
	router, residentToken, _ := setupBookingRouter(t)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)

	w := doJSON(router, "POST", "/api/bookings", residentToken, bookingBody("Swimming Pool", start, start.Add(time.Hour)))
	require.Equal(t, http.StatusCreated, w.Code)
	var created bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	t.Run("Another resident cannot cancel it", func(t *testing.T) {
		otherToken, err := mw.IssueToken(testSecret, "u-other", mw.RoleResident, time.Hour)
		require.NoError(t, err)
		w := doJSON(router, "POST", "/api/bookings/"+created.ID+"/cancel", otherToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Owner cancels", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/bookings/"+created.ID+"/cancel", residentToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp bookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, model.StatusCancelled, resp.Status)
	})

	t.Run("Cancelling twice reports the terminal state", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/bookings/"+created.ID+"/cancel", residentToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "already Cancelled")
	})
}

func TestListBookingsFilters(t *testing.T) {
	router, residentToken, _ := setupBookingRouter(t)
	day := time.Now().UTC().AddDate(0, 0, 2).Truncate(24 * time.Hour)

	for hour, amenity := range map[int]string{9: "Gym", 14: "Clubhouse"} {
		start := day.Add(time.Duration(hour) * time.Hour)
		w := doJSON(router, "POST", "/api/bookings", residentToken, bookingBody(amenity, start, start.Add(time.Hour)))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("Filter by amenity", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/bookings?amenityName=Gym", residentToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out []bookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		require.Len(t, out, 1)
		assert.Equal(t, "Gym", out[0].AmenityName)
	})

	t.Run("Filter by day", func(t *testing.T) {
		d := day.Format("2006-01-02")
		w := doJSON(router, "GET", "/api/bookings?startDate="+d+"&endDate="+d, residentToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out []bookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Len(t, out, 2)
	})

	t.Run("Bad date is refused", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/bookings?startDate=yesterday", residentToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("My bookings lists only the caller's", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/bookings/my", residentToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out []bookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Len(t, out, 2)
	})
}
