package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"quayside/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserApp(t *testing.T) *handlerFixture {
	t.Helper()
	f := newHandlerFixture(t)

	users := f.app.Group("/api/users")
	users.Get("/me", f.srv.GetMyProfile)
	users.Put("/me", f.srv.UpdateMyProfile)
	users.Get("/", f.srv.GetAllUsers)
	users.Post("/:id/accesslevel", f.srv.SetAccessLevel)
	users.Get("/:id", f.srv.GetUserProfile)
	return f
}

func TestGetAndUpdateMyProfile(t *testing.T) {
	f := newUserApp(t)
	alice := f.createUser(t, "alice")

	resp := f.request(t, alice.ID, http.MethodGet, "/api/users/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	_ = resp.Body.Close()
	assert.Equal(t, "alice", me.Username)

	resp = f.request(t, alice.ID, http.MethodPut, "/api/users/me", fiber.Map{
		"display_name": "Alice A.",
		"bio":          "Deck 5 regular",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	_ = resp.Body.Close()
	assert.Equal(t, "Alice A.", me.DisplayName)
	assert.Equal(t, "Deck 5 regular", me.Bio)
}

func TestGetUserProfileHiddenWhenBlocked(t *testing.T) {
	f := newUserApp(t)
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	resp := f.request(t, alice.ID, http.MethodGet, "/api/users/"+strconv.Itoa(int(bob.ID)), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = f.request(t, alice.ID, http.MethodPost, "/api/users/"+strconv.Itoa(int(bob.ID))+"/block", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = f.request(t, alice.ID, http.MethodGet, "/api/users/"+strconv.Itoa(int(bob.ID)), nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetUserProfileUnknown(t *testing.T) {
	f := newUserApp(t)
	alice := f.createUser(t, "alice")

	resp := f.request(t, alice.ID, http.MethodGet, "/api/users/999", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetAccessLevel(t *testing.T) {
	f := newUserApp(t)
	admin := f.createUser(t, "admin")
	bob := f.createUser(t, "bob")

	resp := f.request(t, admin.ID, http.MethodPost,
		"/api/users/"+strconv.Itoa(int(bob.ID))+"/accesslevel",
		fiber.Map{"level": int(models.AccessBanned)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	_ = resp.Body.Close()
	assert.Equal(t, models.AccessBanned, updated.AccessLevel)

	// Out-of-range levels are rejected.
	resp = f.request(t, admin.ID, http.MethodPost,
		"/api/users/"+strconv.Itoa(int(bob.ID))+"/accesslevel",
		fiber.Map{"level": 42})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetAllUsers(t *testing.T) {
	f := newUserApp(t)
	alice := f.createUser(t, "alice")
	f.createUser(t, "bob")

	resp := f.request(t, alice.ID, http.MethodGet, "/api/users/", nil)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Users []models.User `json:"users"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Users, 2)
}
