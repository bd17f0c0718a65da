package favorites

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"animeverse/internal/auth"
	"animeverse/internal/store"
	"animeverse/pkg/models"
)

// Handler manages the authenticated user's favorites list.
type Handler struct {
	Provider *store.Provider
	Tokens   auth.TokenService
}

func NewHandler(p *store.Provider, tokens auth.TokenService) *Handler {
	return &Handler{Provider: p, Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(auth.RequireUser(h.Provider, h.Tokens))
	rg.GET("", h.list)
	rg.POST("", h.add)
	rg.DELETE("/:animeId", h.remove)
}

func fail(c *gin.Context, op string, err error) {
	if err == store.ErrInvalidID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	log.Error().Err(err).Str("op", op).Msg("favorites operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func (h *Handler) list(c *gin.Context) {
	st := h.Provider.Store()
	u := auth.CurrentUser(c)
	animes, err := st.FavoriteAnimes(c.Request.Context(), u.ID)
	if err != nil {
		fail(c, "list favorites", err)
		return
	}
	out := make([]models.AnimeWithGenres, 0, len(animes))
	for _, a := range animes {
		genres, err := st.GenresForAnime(c.Request.Context(), store.ParseID(a.ID))
		if err != nil {
			fail(c, "list favorites", err)
			return
		}
		if genres == nil {
			genres = []models.Genre{}
		}
		out = append(out, models.AnimeWithGenres{Anime: a, Genres: genres})
	}
	c.JSON(http.StatusOK, out)
}

type addReq struct {
	AnimeID string `json:"animeId" binding:"required"`
}

func (h *Handler) add(c *gin.Context) {
	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "animeId is required"})
		return
	}
	u := auth.CurrentUser(c)
	fav, err := h.Provider.Store().AddFavorite(c.Request.Context(), u.ID, store.ParseID(req.AnimeID))
	if err == store.ErrConflict {
		c.JSON(http.StatusConflict, gin.H{"error": "Anime already in favorites"})
		return
	}
	if err != nil {
		fail(c, "add favorite", err)
		return
	}
	if fav == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Anime not found"})
		return
	}
	c.JSON(http.StatusCreated, fav)
}

func (h *Handler) remove(c *gin.Context) {
	u := auth.CurrentUser(c)
	ok, err := h.Provider.Store().RemoveFavorite(c.Request.Context(), u.ID, store.ParseID(c.Param("animeId")))
	if err != nil {
		fail(c, "remove favorite", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Favorite not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
}
