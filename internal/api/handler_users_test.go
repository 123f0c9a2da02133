package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotify-backend/internal/model"
)

func TestUserProvisioning(t *testing.T) {
	e := newTestEnv(t)

	t.Run("user accounts need a roster entry", func(t *testing.T) {
		w := e.request(http.MethodPost, "/api/admin/users", e.adminToken, gin.H{
			"username":      "tanvi",
			"email":         "bmat2411@isibang.ac.in",
			"first_name":    "Tanvi",
			"building_uuid": e.building.UUID,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "not on the enrollment roster")
	})

	t.Run("provisioning works once enrolled", func(t *testing.T) {
		w := e.request(http.MethodPost, "/api/admin/students", e.adminToken, gin.H{
			"fullname": "Tanvi Rao",
			"email":    "bmat2411@isibang.ac.in",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		w = e.request(http.MethodPost, "/api/admin/users", e.adminToken, gin.H{
			"username":      "tanvi",
			"email":         "bmat2411@isibang.ac.in",
			"first_name":    "Tanvi",
			"last_name":     "Rao",
			"building_uuid": e.building.UUID,
			"room_no":       "210",
		})
		require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

		var created UserResponse
		e.decode(w, &created)
		assert.Equal(t, "user", created.Role)
		assert.Equal(t, "Ashoka", created.Building)
	})

	t.Run("guests skip the roster", func(t *testing.T) {
		w := e.request(http.MethodPost, "/api/admin/users", e.adminToken, gin.H{
			"username":      "visiting-prof",
			"email":         "guest@example.org",
			"first_name":    "Gauri",
			"role":          "guest",
			"building_uuid": e.other.UUID,
			"host_name":     "Prof. Iyer",
		})
		require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

		var created UserResponse
		e.decode(w, &created)
		assert.Equal(t, "guest", created.Role)
		assert.Equal(t, "Prof. Iyer", created.HostName)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		w := e.request(http.MethodPost, "/api/admin/users", e.adminToken, gin.H{
			"username":      "tanvi",
			"email":         "other@example.org",
			"first_name":    "Other",
			"role":          "guest",
			"building_uuid": e.building.UUID,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown building", func(t *testing.T) {
		w := e.request(http.MethodPost, "/api/admin/users", e.adminToken, gin.H{
			"username":      "nowhere",
			"email":         "nowhere@example.org",
			"first_name":    "No",
			"role":          "guest",
			"building_uuid": "nope",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		w := e.request(http.MethodPost, "/api/admin/users", e.adminToken, gin.H{
			"username":      "royalty",
			"email":         "king@example.org",
			"first_name":    "Rex",
			"role":          "king",
			"building_uuid": e.building.UUID,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestRoleManagement(t *testing.T) {
	e := newTestEnv(t)

	boss := model.User{
		Username:   "boss",
		Email:      "boss@isibang.ac.in",
		FirstName:  "Indira",
		Role:       model.RoleSuperadmin,
		BuildingID: e.building.ID,
	}
	require.NoError(t, e.gdb.Create(&boss).Error)
	bossToken := e.issueToken(boss)

	roleURL := "/api/admin/users/" + e.resident.UUID + "/role"

	t.Run("admins cannot mint superadmins", func(t *testing.T) {
		w := e.request(http.MethodPut, roleURL, e.adminToken, gin.H{"role": "superadmin"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admins promote within bounds", func(t *testing.T) {
		w := e.request(http.MethodPut, roleURL, e.adminToken, gin.H{"role": "admin"})
		require.Equal(t, http.StatusOK, w.Code)

		var updated UserResponse
		e.decode(w, &updated)
		assert.Equal(t, "admin", updated.Role)
	})

	t.Run("superadmins hand out superadmin", func(t *testing.T) {
		w := e.request(http.MethodPut, roleURL, bossToken, gin.H{"role": "superadmin"})
		require.Equal(t, http.StatusOK, w.Code)

		// Now only another superadmin may touch this account's role.
		w = e.request(http.MethodPut, roleURL, e.adminToken, gin.H{"role": "user"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = e.request(http.MethodPut, roleURL, bossToken, gin.H{"role": "user"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		w := e.request(http.MethodPut, roleURL, bossToken, gin.H{"role": "king"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestDeleteUserGuards(t *testing.T) {
	e := newTestEnv(t)

	t.Run("no self deletion", func(t *testing.T) {
		w := e.request(http.MethodDelete, "/api/admin/users/"+e.admin.UUID, e.adminToken, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("deletion revokes the account's tokens", func(t *testing.T) {
		w := e.request(http.MethodDelete, "/api/admin/users/"+e.resident.UUID, e.adminToken, nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = e.request(http.MethodGet, "/api/me", e.residentToken, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
