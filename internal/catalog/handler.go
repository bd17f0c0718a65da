package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"animeverse/internal/store"
	"animeverse/pkg/models"
)

const defaultFeedLimit = 10

// Handler serves the public, read-only catalog surface. No authentication:
// everything here is browseable by anonymous visitors.
type Handler struct {
	Provider *store.Provider
}

func NewHandler(p *store.Provider) *Handler {
	return &Handler{Provider: p}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/genres", h.listGenres)
	rg.GET("/genres/:id/animes", h.animesForGenre)
	rg.GET("/animes", h.listAnimes)
	rg.GET("/animes/:id", h.getAnime)
	rg.GET("/animes/:id/genres", h.genresForAnime)
	rg.GET("/animes/:id/episodes", h.episodesForAnime)
	rg.GET("/episodes/:id", h.getEpisode)
	rg.GET("/search", h.search)
	rg.GET("/trending", h.trending)
	rg.GET("/recently-added", h.recentlyAdded)
	rg.GET("/top-rated", h.topRated)
}

// fail maps store errors onto the uniform response shapes; unexpected
// failures are logged with context and hidden from the client.
func fail(c *gin.Context, op string, err error) {
	if err == store.ErrInvalidID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	log.Error().Err(err).Str("op", op).Str("id", c.Param("id")).Msg("catalog query failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func feedLimit(c *gin.Context) int {
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			return n
		}
	}
	return defaultFeedLimit
}

func (h *Handler) listGenres(c *gin.Context) {
	genres, err := h.Provider.Store().ListGenres(c.Request.Context())
	if err != nil {
		fail(c, "list genres", err)
		return
	}
	c.JSON(http.StatusOK, genres)
}

func (h *Handler) animesForGenre(c *gin.Context) {
	st := h.Provider.Store()
	id := store.ParseID(c.Param("id"))
	g, err := st.GetGenre(c.Request.Context(), id)
	if err != nil {
		fail(c, "get genre", err)
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Genre not found"})
		return
	}
	animes, err := st.AnimesForGenre(c.Request.Context(), id)
	if err != nil {
		fail(c, "animes for genre", err)
		return
	}
	c.JSON(http.StatusOK, animes)
}

// withGenres decorates each anime with its linked genres so list responses
// match the detail shape.
func withGenres(c *gin.Context, st store.Store, animes []models.Anime) ([]models.AnimeWithGenres, error) {
	out := make([]models.AnimeWithGenres, 0, len(animes))
	for _, a := range animes {
		genres, err := st.GenresForAnime(c.Request.Context(), store.ParseID(a.ID))
		if err != nil {
			return nil, err
		}
		if genres == nil {
			genres = []models.Genre{}
		}
		out = append(out, models.AnimeWithGenres{Anime: a, Genres: genres})
	}
	return out, nil
}

func (h *Handler) listAnimes(c *gin.Context) {
	st := h.Provider.Store()
	animes, err := st.ListAnimes(c.Request.Context())
	if err != nil {
		fail(c, "list animes", err)
		return
	}
	enriched, err := withGenres(c, st, animes)
	if err != nil {
		fail(c, "list animes", err)
		return
	}
	c.JSON(http.StatusOK, enriched)
}

type animeDetail struct {
	models.Anime
	Genres   []models.Genre   `json:"genres"`
	Episodes []models.Episode `json:"episodes"`
}

func (h *Handler) getAnime(c *gin.Context) {
	st := h.Provider.Store()
	id := store.ParseID(c.Param("id"))
	a, err := st.GetAnime(c.Request.Context(), id)
	if err != nil {
		fail(c, "get anime", err)
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Anime not found"})
		return
	}
	genres, err := st.GenresForAnime(c.Request.Context(), id)
	if err != nil {
		fail(c, "get anime genres", err)
		return
	}
	episodes, err := st.EpisodesForAnime(c.Request.Context(), id)
	if err != nil {
		fail(c, "get anime episodes", err)
		return
	}
	if genres == nil {
		genres = []models.Genre{}
	}
	if episodes == nil {
		episodes = []models.Episode{}
	}
	c.JSON(http.StatusOK, animeDetail{Anime: *a, Genres: genres, Episodes: episodes})
}

func (h *Handler) genresForAnime(c *gin.Context) {
	st := h.Provider.Store()
	id := store.ParseID(c.Param("id"))
	a, err := st.GetAnime(c.Request.Context(), id)
	if err != nil {
		fail(c, "get anime", err)
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Anime not found"})
		return
	}
	genres, err := st.GenresForAnime(c.Request.Context(), id)
	if err != nil {
		fail(c, "genres for anime", err)
		return
	}
	if genres == nil {
		genres = []models.Genre{}
	}
	c.JSON(http.StatusOK, genres)
}

func (h *Handler) episodesForAnime(c *gin.Context) {
	st := h.Provider.Store()
	id := store.ParseID(c.Param("id"))
	a, err := st.GetAnime(c.Request.Context(), id)
	if err != nil {
		fail(c, "get anime", err)
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Anime not found"})
		return
	}
	episodes, err := st.EpisodesForAnime(c.Request.Context(), id)
	if err != nil {
		fail(c, "episodes for anime", err)
		return
	}
	if episodes == nil {
		episodes = []models.Episode{}
	}
	c.JSON(http.StatusOK, episodes)
}

func (h *Handler) getEpisode(c *gin.Context) {
	ep, err := h.Provider.Store().GetEpisode(c.Request.Context(), store.ParseID(c.Param("id")))
	if err != nil {
		fail(c, "get episode", err)
		return
	}
	if ep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Episode not found"})
		return
	}
	c.JSON(http.StatusOK, ep)
}

func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}
	animes, err := h.Provider.Store().SearchAnimes(c.Request.Context(), q)
	if err != nil {
		fail(c, "search animes", err)
		return
	}
	c.JSON(http.StatusOK, animes)
}

func (h *Handler) trending(c *gin.Context) {
	animes, err := h.Provider.Store().TrendingAnimes(c.Request.Context(), feedLimit(c))
	if err != nil {
		fail(c, "trending animes", err)
		return
	}
	c.JSON(http.StatusOK, animes)
}

func (h *Handler) recentlyAdded(c *gin.Context) {
	recent, err := h.Provider.Store().RecentEpisodes(c.Request.Context(), feedLimit(c))
	if err != nil {
		fail(c, "recent episodes", err)
		return
	}
	c.JSON(http.StatusOK, recent)
}

func (h *Handler) topRated(c *gin.Context) {
	animes, err := h.Provider.Store().TopRatedAnimes(c.Request.Context(), feedLimit(c))
	if err != nil {
		fail(c, "top rated animes", err)
		return
	}
	c.JSON(http.StatusOK, animes)
}
