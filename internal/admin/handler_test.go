package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animeverse/internal/auth"
	"animeverse/internal/store"
	"animeverse/pkg/models"
)

type testEnv struct {
	router *gin.Engine
	p      *store.Provider
	tokens auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	p := store.NewProvider(store.NewMemStore())
	tokens := auth.TokenService{Secret: []byte("test-secret"), Issuer: "animeverse-test", Duration: time.Hour}
	r := gin.New()
	r.Use(sessions.Sessions("animeverse_session", memstore.NewStore([]byte("test-session-secret"))))
	NewHandler(p, tokens).RegisterRoutes(r.Group("/api/admin"))
	return &testEnv{router: r, p: p, tokens: tokens}
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	admin, err := e.p.Memory().GetUserByUsername(context.Background(), "admin")
	require.NoError(t, err)
	token, _, err := e.tokens.Sign(admin)
	require.NoError(t, err)
	return token
}

func (e *testEnv) userToken(t *testing.T) string {
	t.Helper()
	u, err := e.p.Memory().CreateUser(context.Background(), models.NewUser{
		Username: "plain", Email: "plain@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	token, _, err := e.tokens.Sign(u)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAdminGateRejectsAnonymous(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminGateRejectsNonAdmin(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/api/admin/stats", e.userToken(t), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", decode(t, rec)["error"])
}

func TestStats(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/api/admin/stats", e.adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.EqualValues(t, 15, body["genreCount"])
	assert.EqualValues(t, 1, body["userCount"])
}

func TestPromoteAndDemoteUser(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)

	u, err := e.p.Memory().CreateUser(context.Background(), models.NewUser{
		Username: "dave", Email: "d@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	// string payload normalizes to a real bool
	rec := e.do(t, http.MethodPatch, "/api/admin/users/"+u.ID+"/admin", token, gin.H{"isAdmin": "true"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["isAdmin"])

	rec = e.do(t, http.MethodPatch, "/api/admin/users/"+u.ID+"/admin", token, gin.H{"isAdmin": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["isAdmin"])
}

func TestLastAdminProtection(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)

	admin, err := e.p.Memory().GetUserByUsername(context.Background(), "admin")
	require.NoError(t, err)

	rec := e.do(t, http.MethodDelete, "/api/admin/users/"+admin.ID, token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete the last admin user", decode(t, rec)["error"])

	rec = e.do(t, http.MethodPatch, "/api/admin/users/"+admin.ID+"/admin", token, gin.H{"isAdmin": false})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot demote the last admin user", decode(t, rec)["error"])
}

func TestDeleteUser(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)

	u, err := e.p.Memory().CreateUser(context.Background(), models.NewUser{
		Username: "erin", Email: "e@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	rec := e.do(t, http.MethodDelete, "/api/admin/users/"+u.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/admin/users/"+u.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAnimeValidation(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)

	rec := e.do(t, http.MethodPost, "/api/admin/animes", token, gin.H{"title": "Missing Fields"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/admin/animes", token, gin.H{
		"title":       "Bad Status",
		"description": "d",
		"coverImage":  "https://example.com/c.jpg",
		"releaseYear": 2024,
		"status":      "Airing",
		"type":        "TV Series",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status", decode(t, rec)["error"])
}

func TestAnimeLifecycle(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)

	rec := e.do(t, http.MethodPost, "/api/admin/animes", token, gin.H{
		"title":       "Frieren",
		"description": "An elf mage outlives her party.",
		"coverImage":  "https://example.com/frieren.jpg",
		"releaseYear": 2023,
		"status":      "Ongoing",
		"type":        "TV Series",
		"studio":      "Madhouse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode(t, rec)["id"].(string)

	rec = e.do(t, http.MethodPatch, "/api/admin/animes/"+id, token, gin.H{"status": "Completed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Completed", decode(t, rec)["status"])

	rec = e.do(t, http.MethodDelete, "/api/admin/animes/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/admin/animes/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidIDFormat(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)

	rec := e.do(t, http.MethodDelete, "/api/admin/animes/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid ID format", decode(t, rec)["error"])
}

func TestGenreConflictResponse(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)

	rec := e.do(t, http.MethodPost, "/api/admin/genres", token, gin.H{"name": "Action"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Genre already exists", decode(t, rec)["error"])
}

func TestGenreLinking(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)
	ctx := context.Background()

	animes, err := e.p.Memory().ListAnimes(ctx)
	require.NoError(t, err)
	animeID := animes[0].ID

	g, err := e.p.Memory().CreateGenre(ctx, "Isekai")
	require.NoError(t, err)

	rec := e.do(t, http.MethodPost, "/api/admin/animes/"+animeID+"/genres/"+g.ID, token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/admin/animes/"+animeID+"/genres/"+g.ID, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/admin/animes/9999/genres/"+g.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Anime not found", decode(t, rec)["error"])

	rec = e.do(t, http.MethodDelete, "/api/admin/animes/"+animeID+"/genres/"+g.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/admin/animes/"+animeID+"/genres/"+g.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEpisodeConflictResponse(t *testing.T) {
	e := newTestEnv(t)
	token := e.adminToken(t)
	ctx := context.Background()

	animes, err := e.p.Memory().SearchAnimes(ctx, "my hero")
	require.NoError(t, err)
	require.Len(t, animes, 1)

	rec := e.do(t, http.MethodPost, "/api/admin/episodes", token, gin.H{
		"animeId":  animes[0].ID,
		"title":    "Duplicate",
		"number":   1,
		"videoUrl": "https://example.com/v.mp4",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Episode number already exists for this anime", decode(t, rec)["error"])

	rec = e.do(t, http.MethodPost, "/api/admin/episodes", token, gin.H{
		"animeId":  "9999",
		"title":    "Orphan",
		"number":   1,
		"videoUrl": "https://example.com/v.mp4",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
