package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree_go/internal/graph"
	"familytree_go/internal/model"
	"familytree_go/internal/repository"
	"familytree_go/internal/service"
)

func setupServer(t *testing.T) (*gin.Engine, *repository.DB, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.InitDB(repository.DriverSQLite, ":memory:")
	require.NoError(t, err)

	logger := service.NewDefaultLogger()
	auth := service.NewAuth(&service.AuthConfig{SecretKey: "test-secret"}, db, logger)
	cache := service.NewCacheService("localhost:6399", "", 0, logger)
	upload, err := service.NewUploadService(t.TempDir(), logger)
	require.NoError(t, err)
	search := service.NewMemberSearch(db, logger)
	resolver := graph.NewResolver(db, logger)
	metrics := service.NewMetricsService()
	limiter := service.NewRateLimiter(service.DefaultRateLimiterConfig(), logger)
	t.Cleanup(limiter.Stop)

	r := gin.New()
	h := New(db, resolver, cache, upload, auth, search, metrics, limiter, logger)
	h.RegisterRoutes(r)

	user := &model.User{Username: "tester", Email: "tester@example.com", Password: "secret", Role: model.RoleUser}
	require.NoError(t, db.Create(user).Error)
	token, err := auth.GenerateToken(user)
	require.NoError(t, err)

	return r, db, token
}

func seedFamily(t *testing.T, db *repository.DB) (father, mother, child *model.Member) {
	t.Helper()
	father = &model.Member{FirstName: "Pierre", LastName: "Durand"}
	require.NoError(t, db.Create(father).Error)
	mother = &model.Member{FirstName: "Marie", LastName: "Durand"}
	require.NoError(t, db.Create(mother).Error)
	child = &model.Member{FirstName: "Luc", LastName: "Durand", FatherID: &father.ID, MotherID: &mother.ID}
	require.NoError(t, db.Create(child).Error)
	return father, mother, child
}

func TestTreeEndpoint(t *testing.T) {
	r, db, token := setupServer(t)
	father, mother, child := seedFamily(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/tree?person_id="+itoa(child.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var snap graph.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.NotNil(t, snap.Person)
	assert.Equal(t, child.ID, snap.Person.ID)
	require.NotNil(t, snap.Father)
	assert.Equal(t, father.ID, snap.Father.ID)
	require.NotNil(t, snap.Mother)
	assert.Equal(t, mother.ID, snap.Mother.ID)
	assert.NotNil(t, snap.Siblings)
}

func TestTreeEndpointNotFound(t *testing.T) {
	r, _, token := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tree?person_id=9999", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTreeEndpointRequiresAuth(t *testing.T) {
	r, db, _ := setupServer(t)
	_, _, child := seedFamily(t, db)

	req := httptest.NewRequest(http.MethodGet, "/api/tree?person_id="+itoa(child.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTreeEndpointRequiresPersonID(t *testing.T) {
	r, _, token := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tree", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// itoa 数字ID转字符串
func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
