package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/eion/usersvc/internal/config"
	"github.com/eion/usersvc/internal/database"
	"github.com/eion/usersvc/internal/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, opts Options) (*gin.Engine, *bun.DB) {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := database.Open(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		SQLite: config.SQLiteConfig{Path: ":memory:"},
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.NewCreateTable().Model((*users.UserSchema)(nil)).Exec(ctx)
	require.NoError(t, err)

	health := database.NewHealthManager(logger)
	health.AddChecker(database.NewDatabaseHealthChecker(db))

	service := users.NewUserService(users.NewUserStore(db))
	router := NewRouter(users.NewUserHandlers(service, logger), health, logger, opts)
	return router, db
}

func request(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUsersAPIScenario(t *testing.T) {
	router, _ := setupRouter(t, Options{})

	w := request(router, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = request(router, http.MethodPut, "/api/users/1", `{"id":1,"name":"John Doe","age":30}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = request(router, http.MethodPost, "/api/users", `{"name":"John Doe","age":30}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"User created successfully"}`, w.Body.String())

	w = request(router, http.MethodPost, "/api/users", `{"name":"","age":30}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(router, http.MethodPost, "/api/users", `{"name":"X","age":151}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(router, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []users.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	id := list[0].ID

	path := "/api/users/" + jsonNumber(id)
	w = request(router, http.MethodPut, path, `{"id":`+jsonNumber(id)+`,"name":"John Smith","age":31}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodDelete, "/api/users/0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(router, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestStorageFailureIsNotEchoed(t *testing.T) {
	router, db := setupRouter(t, Options{})
	require.NoError(t, db.Close())

	w := request(router, http.MethodGet, "/api/users", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"An error occurred while fetching users"}`, w.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	router, db := setupRouter(t, Options{})

	w := request(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, db.Close())

	w = request(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	router, _ := setupRouter(t, Options{})

	w := request(router, http.MethodGet, "/health", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestMaxBodySize(t *testing.T) {
	router, _ := setupRouter(t, Options{MaxRequestSize: 16})

	w := request(router, http.MethodPost, "/api/users", `{"name":"`+strings.Repeat("a", 64)+`","age":30}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
