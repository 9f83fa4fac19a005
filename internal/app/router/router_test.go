package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"account_backend/internal/feature/users/adapters"
	"account_backend/internal/feature/users/domain/entity"
	usershandler "account_backend/internal/feature/users/transport/handler"
	"account_backend/internal/feature/users/usecase"
	"account_backend/internal/platform/hash"
	jwtmw "account_backend/internal/platform/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// setupServer wires the full stack against an in-memory SQLite database.
func setupServer(t *testing.T) (*gin.Engine, usecase.UserRepository) {
	t.Helper()
	t.Setenv(jwtmw.EnvKeyJWTSecret, "test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&entity.User{}), "failed to migrate table")

	repo := adapters.NewUserGorm(db)
	uc := usecase.NewDirectoryUsecase(repo, hash.NewBcryptHasher(), jwtmw.NewGenerator("test-secret", time.Hour))

	r := NewRouter(usershandler.NewAuthHandler(uc), usershandler.NewUserHandler(uc))
	return r, repo
}

// doJSON sends a JSON request with an optional bearer token and returns the recorder.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, username, password string) (string, string, int) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{"username": username, "password": password})
	if w.Code != http.StatusOK {
		return "", "", w.Code
	}
	var resp struct {
		Token    string `json:"token"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.Role, w.Code
}

func TestRouter_HealthAndAuthRequirements(t *testing.T) {
	r, _ := setupServer(t)

	t.Run("healthz needs no token", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("admin routes reject missing token", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/users", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("change-password rejects missing token", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/users/change-password", "", gin.H{"oldPassword": "a", "newPassword": "newpass1"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// TestRouter_EndToEnd exercises the full register/login/admin lifecycle
// against the real usecase, repository and middleware stack.
func TestRouter_EndToEnd(t *testing.T) {
	r, repo := setupServer(t)

	// --- registration ---
	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"username": "alice", "password": "secret1", "fullName": "Alice A",
	})
	require.Equal(t, http.StatusOK, w.Code, "registration should succeed: %s", w.Body.String())

	// Registering the same username twice fails and leaves one record.
	w = doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"username": "alice", "password": "other-pass", "fullName": "Alice Clone",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "duplicate username should be rejected")
	assert.Contains(t, w.Body.String(), "username already exists")

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1, "store should contain exactly one record")
	assert.Equal(t, entity.RoleStaff, all[0].Role, "role should default to staff")

	// An admin account for the privileged calls. Mixed-case role must be
	// normalized to lower case in storage.
	w = doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"username": "root-admin", "password": "admin-pass", "fullName": "Root Admin", "role": "Admin",
	})
	require.Equal(t, http.StatusOK, w.Code)
	admin, err := repo.FindByUsername(context.Background(), "root-admin")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, admin.Role)

	// --- login ---
	aliceToken, role, code := login(t, r, "alice", "secret1")
	require.Equal(t, http.StatusOK, code, "login should succeed")
	assert.Equal(t, "staff", role)
	require.NotEmpty(t, aliceToken)

	// Wrong password and unknown user fail identically.
	wWrong := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{"username": "alice", "password": "wrong"})
	wGhost := doJSON(t, r, http.MethodPost, "/auth/login", "", gin.H{"username": "ghost", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, wWrong.Code)
	assert.Equal(t, http.StatusBadRequest, wGhost.Code)
	assert.Equal(t, wWrong.Body.String(), wGhost.Body.String(), "failure responses must be indistinguishable")

	adminToken, adminRole, code := login(t, r, "root-admin", "admin-pass")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "admin", adminRole)

	alice, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	aliceID := alice.ID
	aliceHash := alice.PasswordHash

	// --- authorization gate ---
	// A staff token must be rejected before any business logic runs.
	w = doJSON(t, r, http.MethodPut, "/users/"+uintStr(aliceID), aliceToken, gin.H{
		"fullName": "Hacked Name", "role": "admin",
	})
	assert.Equal(t, http.StatusForbidden, w.Code, "staff token must not pass the admin gate")

	unchanged, err := repo.FindByID(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, "Alice A", unchanged.FullName, "rejected request must have no side effects")
	assert.Equal(t, entity.RoleStaff, unchanged.Role)

	// --- admin list ---
	w = doJSON(t, r, http.MethodGet, "/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "passwordHash", "list must not expose hashes")
	assert.NotContains(t, w.Body.String(), aliceHash, "list must not expose hash values")

	// --- admin update ---
	w = doJSON(t, r, http.MethodPut, "/users/"+uintStr(aliceID), adminToken, gin.H{
		"fullName": "Alice B", "role": "admin",
	})
	require.Equal(t, http.StatusOK, w.Code, "update should succeed: %s", w.Body.String())

	updated, err := repo.FindByID(context.Background(), aliceID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.FullName)
	assert.Equal(t, entity.RoleAdmin, updated.Role, "record should reflect role admin")

	// --- admin password reset (no old-password check) ---
	w = doJSON(t, r, http.MethodPost, "/users/"+uintStr(aliceID)+"/reset-password", adminToken, gin.H{
		"newPassword": "reset-pass1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	_, _, code = login(t, r, "alice", "reset-pass1")
	assert.Equal(t, http.StatusOK, code, "authenticate with the reset password should succeed")
	_, _, code = login(t, r, "alice", "secret1")
	assert.Equal(t, http.StatusBadRequest, code, "the old password should no longer verify")

	// --- self-service password change ---
	aliceToken, _, code = login(t, r, "alice", "reset-pass1")
	require.Equal(t, http.StatusOK, code)

	w = doJSON(t, r, http.MethodPost, "/users/change-password", aliceToken, gin.H{
		"oldPassword": "wrong-old", "newPassword": "selfpass1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "wrong old password should be rejected")

	midway, err := repo.FindByID(context.Background(), aliceID)
	require.NoError(t, err)

	w = doJSON(t, r, http.MethodPost, "/users/change-password", aliceToken, gin.H{
		"oldPassword": "reset-pass1", "newPassword": "selfpass1",
	})
	require.Equal(t, http.StatusOK, w.Code, "change with correct old password should succeed")

	final, err := repo.FindByID(context.Background(), aliceID)
	require.NoError(t, err)
	assert.NotEqual(t, midway.PasswordHash, final.PasswordHash, "hash should change")

	_, _, code = login(t, r, "alice", "selfpass1")
	assert.Equal(t, http.StatusOK, code)

	// --- delete, twice ---
	w = doJSON(t, r, http.MethodDelete, "/users/"+uintStr(aliceID), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code, "first delete should succeed")

	w = doJSON(t, r, http.MethodDelete, "/users/"+uintStr(aliceID), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "second delete of the same id should report not found")
}

func uintStr(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
