package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animeverse/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.Provider) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	p := store.NewProvider(store.NewMemStore())
	r := gin.New()
	NewHandler(p).RegisterRoutes(r.Group("/api"))
	return r, p
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestListGenres(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := get(t, r, "/api/genres")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 15)
}

func TestListAnimesIncludesGenres(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := get(t, r, "/api/animes")
	require.Equal(t, http.StatusOK, rec.Code)

	animes := decodeList(t, rec)
	require.NotEmpty(t, animes)
	for _, a := range animes {
		_, ok := a["genres"]
		assert.True(t, ok, "anime %v missing genres", a["title"])
	}
}

func TestGetAnimeDetail(t *testing.T) {
	r, p := newTestRouter(t)

	animes, err := p.Memory().SearchAnimes(context.Background(), "attack on titan")
	require.NoError(t, err)
	require.Len(t, animes, 1)

	rec := get(t, r, "/api/animes/"+animes[0].ID)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Attack on Titan", detail["title"])
	assert.NotEmpty(t, detail["genres"])
	assert.NotEmpty(t, detail["episodes"])
}

func TestGetAnimeNotFoundAndInvalid(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := get(t, r, "/api/animes/9999")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, r, "/api/animes/not-an-id")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid ID format", body["error"])
}

func TestSearch(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := get(t, r, "/api/search?q=titan")
	require.Equal(t, http.StatusOK, rec.Code)
	results := decodeList(t, rec)
	require.Len(t, results, 1)
	assert.Equal(t, "Attack on Titan", results[0]["title"])

	rec = get(t, r, "/api/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeeds(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := get(t, r, "/api/trending?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)

	rec = get(t, r, "/api/top-rated")
	require.Equal(t, http.StatusOK, rec.Code)
	top := decodeList(t, rec)
	require.NotEmpty(t, top)
	assert.Equal(t, "4.9", top[0]["rating"])

	rec = get(t, r, "/api/recently-added")
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decodeList(t, rec)
	require.NotEmpty(t, recent)
	_, hasAnime := recent[0]["anime"]
	_, hasEpisode := recent[0]["episode"]
	assert.True(t, hasAnime)
	assert.True(t, hasEpisode)
}

func TestAnimesForGenre(t *testing.T) {
	r, p := newTestRouter(t)

	g, err := p.Memory().GetGenreByName(context.Background(), "Action")
	require.NoError(t, err)
	require.NotNil(t, g)

	rec := get(t, r, "/api/genres/"+g.ID+"/animes")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeList(t, rec))

	rec = get(t, r, "/api/genres/9999/animes")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEpisode(t *testing.T) {
	r, p := newTestRouter(t)

	animes, err := p.Memory().SearchAnimes(context.Background(), "attack on titan")
	require.NoError(t, err)
	eps, err := p.Memory().EpisodesForAnime(context.Background(), store.ParseID(animes[0].ID))
	require.NoError(t, err)
	require.NotEmpty(t, eps)

	rec := get(t, r, "/api/episodes/"+eps[0].ID)
	require.Equal(t, http.StatusOK, rec.Code)

	var ep map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ep))
	assert.Equal(t, eps[0].Title, ep["title"])

	rec = get(t, r, "/api/episodes/9999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
