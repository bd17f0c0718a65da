package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"animeverse/internal/auth"
	"animeverse/internal/store"
	"animeverse/pkg/models"
	"animeverse/pkg/utils"
)

// Handler is the privileged write surface: catalog management, user
// management, and the dashboard stats. Every route requires an
// authenticated admin.
type Handler struct {
	Provider *store.Provider
	Tokens   auth.TokenService
}

func NewHandler(p *store.Provider, tokens auth.TokenService) *Handler {
	return &Handler{Provider: p, Tokens: tokens}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(auth.RequireUser(h.Provider, h.Tokens), auth.RequireAdmin())

	rg.GET("/stats", h.stats)

	rg.GET("/users", h.listUsers)
	rg.PATCH("/users/:id/admin", h.setUserAdmin)
	rg.DELETE("/users/:id", h.deleteUser)

	rg.POST("/animes", h.createAnime)
	rg.PATCH("/animes/:id", h.updateAnime)
	rg.DELETE("/animes/:id", h.deleteAnime)
	rg.POST("/animes/:id/genres/:genreId", h.linkGenre)
	rg.DELETE("/animes/:id/genres/:genreId", h.unlinkGenre)

	rg.POST("/genres", h.createGenre)
	rg.PATCH("/genres/:id", h.updateGenre)
	rg.DELETE("/genres/:id", h.deleteGenre)

	rg.POST("/episodes", h.createEpisode)
	rg.PATCH("/episodes/:id", h.updateEpisode)
	rg.DELETE("/episodes/:id", h.deleteEpisode)
}

// fail maps store sentinels; conflictMsg customizes the 409 body per
// entity. Unexpected errors get logged with enough context to find the
// failing operation and are never echoed to the client.
func fail(c *gin.Context, op, entity, conflictMsg string, err error) {
	switch err {
	case store.ErrInvalidID:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
	case store.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": conflictMsg})
	case store.ErrLastAdmin:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete the last admin user"})
	default:
		log.Error().Err(err).
			Str("op", op).
			Str("entity", entity).
			Str("id", c.Param("id")).
			Msg("admin operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// stats

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.Provider.Store().Counts(c.Request.Context())
	if err != nil {
		fail(c, "stats", "stats", "", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// users

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.Provider.Store().ListUsers(c.Request.Context())
	if err != nil {
		fail(c, "list users", "user", "", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type setAdminReq struct {
	// IsAdmin tolerates boolean or string payloads; normalized on receipt.
	IsAdmin any `json:"isAdmin"`
}

func (h *Handler) setUserAdmin(c *gin.Context) {
	var req setAdminReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := h.Provider.Store().SetUserAdmin(c.Request.Context(),
		store.ParseID(c.Param("id")), utils.NormalizeBool(req.IsAdmin))
	if err == store.ErrLastAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot demote the last admin user"})
		return
	}
	if err != nil {
		fail(c, "set user admin", "user", "", err)
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) deleteUser(c *gin.Context) {
	ok, err := h.Provider.Store().DeleteUser(c.Request.Context(), store.ParseID(c.Param("id")))
	if err != nil {
		fail(c, "delete user", "user", "", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// animes

func validateAnimeEnums(c *gin.Context, status, animeType string) bool {
	if status != "" && !models.ValidAnimeStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return false
	}
	if animeType != "" && !models.ValidAnimeType(animeType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid type"})
		return false
	}
	return true
}

func (h *Handler) createAnime(c *gin.Context) {
	var in models.AnimeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if !validateAnimeEnums(c, in.Status, in.Type) {
		return
	}
	a, err := h.Provider.Store().CreateAnime(c.Request.Context(), in)
	if err != nil {
		fail(c, "create anime", "anime", "", err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) updateAnime(c *gin.Context) {
	var patch models.AnimePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	status, animeType := "", ""
	if patch.Status != nil {
		status = *patch.Status
	}
	if patch.Type != nil {
		animeType = *patch.Type
	}
	if !validateAnimeEnums(c, status, animeType) {
		return
	}
	a, err := h.Provider.Store().UpdateAnime(c.Request.Context(), store.ParseID(c.Param("id")), patch)
	if err != nil {
		fail(c, "update anime", "anime", "", err)
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Anime not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) deleteAnime(c *gin.Context) {
	ok, err := h.Provider.Store().DeleteAnime(c.Request.Context(), store.ParseID(c.Param("id")))
	if err != nil {
		fail(c, "delete anime", "anime", "", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Anime not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Anime deleted"})
}

// anime-genre links

func (h *Handler) linkGenre(c *gin.Context) {
	st := h.Provider.Store()
	animeID := store.ParseID(c.Param("id"))
	genreID := store.ParseID(c.Param("genreId"))

	a, err := st.GetAnime(c.Request.Context(), animeID)
	if err != nil {
		fail(c, "link genre", "anime", "", err)
		return
	}
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Anime not found"})
		return
	}
	g, err := st.GetGenre(c.Request.Context(), genreID)
	if err != nil {
		fail(c, "link genre", "genre", "", err)
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Genre not found"})
		return
	}

	link, err := st.LinkGenre(c.Request.Context(), animeID, genreID)
	if err != nil {
		fail(c, "link genre", "anime_genre", "Genre already linked to this anime", err)
		return
	}
	if link == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Anime not found"})
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *Handler) unlinkGenre(c *gin.Context) {
	ok, err := h.Provider.Store().UnlinkGenre(c.Request.Context(),
		store.ParseID(c.Param("id")), store.ParseID(c.Param("genreId")))
	if err != nil {
		fail(c, "unlink genre", "anime_genre", "", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Genre link not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Genre unlinked"})
}

// genres

type genreReq struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) createGenre(c *gin.Context) {
	var req genreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Genre name is required"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Genre name is required"})
		return
	}
	g, err := h.Provider.Store().CreateGenre(c.Request.Context(), req.Name)
	if err != nil {
		fail(c, "create genre", "genre", "Genre already exists", err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *Handler) updateGenre(c *gin.Context) {
	var req genreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Genre name is required"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Genre name is required"})
		return
	}
	g, err := h.Provider.Store().UpdateGenre(c.Request.Context(), store.ParseID(c.Param("id")), req.Name)
	if err != nil {
		fail(c, "update genre", "genre", "Genre already exists", err)
		return
	}
	if g == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Genre not found"})
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) deleteGenre(c *gin.Context) {
	ok, err := h.Provider.Store().DeleteGenre(c.Request.Context(), store.ParseID(c.Param("id")))
	if err != nil {
		fail(c, "delete genre", "genre", "", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Genre not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Genre deleted"})
}

// episodes

type episodeReq struct {
	AnimeID     string     `json:"animeId" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Number      int        `json:"number" binding:"required"`
	Description *string    `json:"description"`
	Thumbnail   *string    `json:"thumbnail"`
	VideoURL    string     `json:"videoUrl" binding:"required"`
	Duration    *string    `json:"duration"`
	ReleaseDate *time.Time `json:"releaseDate"`
}

func (h *Handler) createEpisode(c *gin.Context) {
	var req episodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if req.Number < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Episode number must be positive"})
		return
	}
	in := store.EpisodeInput{
		AnimeID:     store.ParseID(req.AnimeID),
		Title:       req.Title,
		Number:      req.Number,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		VideoURL:    req.VideoURL,
		Duration:    req.Duration,
	}
	if req.ReleaseDate != nil {
		in.ReleaseDate = *req.ReleaseDate
	}
	ep, err := h.Provider.Store().CreateEpisode(c.Request.Context(), in)
	if err != nil {
		fail(c, "create episode", "episode", "Episode number already exists for this anime", err)
		return
	}
	if ep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Anime not found"})
		return
	}
	c.JSON(http.StatusCreated, ep)
}

type episodePatchReq struct {
	AnimeID     *string    `json:"animeId"`
	Title       *string    `json:"title"`
	Number      *int       `json:"number"`
	Description *string    `json:"description"`
	Thumbnail   *string    `json:"thumbnail"`
	VideoURL    *string    `json:"videoUrl"`
	Duration    *string    `json:"duration"`
	ReleaseDate *time.Time `json:"releaseDate"`
}

func (h *Handler) updateEpisode(c *gin.Context) {
	var req episodePatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Number != nil && *req.Number < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Episode number must be positive"})
		return
	}
	patch := store.EpisodePatch{
		Title:       req.Title,
		Number:      req.Number,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		VideoURL:    req.VideoURL,
		Duration:    req.Duration,
		ReleaseDate: req.ReleaseDate,
	}
	if req.AnimeID != nil {
		id := store.ParseID(*req.AnimeID)
		patch.AnimeID = &id
	}
	ep, err := h.Provider.Store().UpdateEpisode(c.Request.Context(), store.ParseID(c.Param("id")), patch)
	if err != nil {
		fail(c, "update episode", "episode", "Episode number already exists for this anime", err)
		return
	}
	if ep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Episode not found"})
		return
	}
	c.JSON(http.StatusOK, ep)
}

func (h *Handler) deleteEpisode(c *gin.Context) {
	ok, err := h.Provider.Store().DeleteEpisode(c.Request.Context(), store.ParseID(c.Param("id")))
	if err != nil {
		fail(c, "delete episode", "episode", "", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Episode not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Episode deleted"})
}
