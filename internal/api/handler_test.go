package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"slotify-backend/config"
	"slotify-backend/internal/db"
	"slotify-backend/internal/model"
	"slotify-backend/internal/reminder"
	"slotify-backend/internal/roster"
	"slotify-backend/internal/store"
)

// testEnv is a full router over an in-memory database, with one building of
// machines, a resident, and an admin, each holding a live token.
type testEnv struct {
	t      *testing.T
	gdb    *gorm.DB
	store  store.Store
	router *gin.Engine

	building model.Building
	other    model.Building
	machine  model.Machine
	resident model.User
	admin    model.User

	residentToken string
	adminToken    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	s := store.NewGormStore(gdb, store.Rules{
		HorizonDays:        90,
		MaxPerDay:          1,
		WeeklyMachineLimit: 3,
		Location:           time.UTC,
	})

	e := &testEnv{t: t, gdb: gdb, store: s}

	e.building = model.Building{Name: "Ashoka", Code: "ASH"}
	require.NoError(t, gdb.Create(&e.building).Error)
	e.other = model.Building{Name: "Rohini", Code: "ROH"}
	require.NoError(t, gdb.Create(&e.other).Error)

	e.machine = model.Machine{
		Name:         "Ashoka GF Washer",
		Code:         "ASH-W1",
		BuildingID:   e.building.ID,
		Status:       model.MachineAvailable,
		SlotCount:    3,
		SlotTemplate: "07:00-10:00,10:00-13:00,17:00-20:00",
	}
	require.NoError(t, gdb.Create(&e.machine).Error)

	e.resident = model.User{
		Username:   "asha",
		Email:      "bmat2301@isibang.ac.in",
		FirstName:  "Asha",
		LastName:   "Verma",
		Role:       model.RoleUser,
		BuildingID: e.building.ID,
		RoomNo:     "114",
	}
	require.NoError(t, gdb.Create(&e.resident).Error)
	e.admin = model.User{
		Username:   "warden",
		Email:      "warden@isibang.ac.in",
		FirstName:  "Meera",
		Role:       model.RoleAdmin,
		BuildingID: e.other.ID,
	}
	require.NoError(t, gdb.Create(&e.admin).Error)

	e.residentToken = e.issueToken(e.resident)
	e.adminToken = e.issueToken(e.admin)

	scanner := reminder.NewService(&config.ReminderConfig{
		Enabled:  true,
		Interval: time.Hour,
		Window:   time.Hour,
	}, s, nil)

	e.router = NewRouter(s, Options{
		WebPush: &webpush.Options{
			VAPIDPublicKey:  "test-public-key",
			VAPIDPrivateKey: "test-private-key",
			Subscriber:      "mailto:ops@example.com",
			TTL:             3600,
		},
		Roster:    roster.NewParser([]string{"bmat", "mmat", "rs_"}, "isibang.ac.in"),
		Scanner:   scanner,
		TokenDays: 15,
		Location:  time.UTC,
	})
	return e
}

func (e *testEnv) issueToken(u model.User) string {
	e.t.Helper()
	issued, err := e.store.IssueToken(context.Background(), time.Now(), u.UUID, 15)
	require.NoError(e.t, err)
	return issued.Token
}

// request fires one request at the router and returns the recorder.
func (e *testEnv) request(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(e.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) decode(w *httptest.ResponseRecorder, out any) {
	e.t.Helper()
	require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

// daysOut returns a date n days from now, formatted for the API.
func (e *testEnv) daysOut(n int) string {
	return time.Now().UTC().AddDate(0, 0, n).Format("2006-01-02")
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)

	w := e.request(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthFlows(t *testing.T) {
	e := newTestEnv(t)

	t.Run("missing token", func(t *testing.T) {
		w := e.request(http.MethodGet, "/api/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		w := e.request(http.MethodGet, "/api/me", "deadbeefdeadbeef", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		issued, err := e.store.IssueToken(context.Background(), time.Now().AddDate(0, 0, -2), e.resident.UUID, 1)
		require.NoError(t, err)

		w := e.request(http.MethodGet, "/api/me", issued.Token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("valid token resolves the profile", func(t *testing.T) {
		w := e.request(http.MethodGet, "/api/me", e.residentToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var me UserResponse
		e.decode(w, &me)
		assert.Equal(t, "asha", me.Username)
		assert.Equal(t, "Asha Verma", me.FullName)
		assert.Equal(t, "Ashoka", me.Building)
		assert.Contains(t, me.Avatar, "gravatar.com/avatar/")
	})

	t.Run("admin routes reject plain users", func(t *testing.T) {
		w := e.request(http.MethodGet, "/api/admin/users", e.residentToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = e.request(http.MethodGet, "/api/admin/users", e.adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	e := newTestEnv(t)

	hours := 2
	w := e.request(http.MethodPatch, "/api/me", e.residentToken, gin.H{
		"reminder_hours": hours,
		"contact_no":     "9876500011",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var me UserResponse
	e.decode(w, &me)
	assert.Equal(t, 2, me.ReminderHours)
	assert.Equal(t, "9876500011", me.ContactNo)

	w = e.request(http.MethodPatch, "/api/me", e.residentToken, gin.H{"reminder_hours": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
