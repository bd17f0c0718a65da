package auth

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"animeverse/internal/store"
	"animeverse/pkg/models"
	"animeverse/pkg/utils"
)

type Handler struct {
	Provider *store.Provider
	Tokens   TokenService
	// Secure marks auth cookies Secure; on in production, off for local
	// http development.
	Secure bool
}

func NewHandler(p *store.Provider, tokens TokenService, secure bool) *Handler {
	return &Handler{Provider: p, Tokens: tokens, Secure: secure}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.POST("/logout", h.logout)
	rg.GET("/me", RequireUser(h.Provider, h.Tokens), h.me)
}

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// IsAdmin tolerates boolean or string payloads; normalized on receipt.
	IsAdmin any `json:"isAdmin"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if len(req.Username) < 3 || len(req.Username) > 20 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username must be 3-20 chars"})
		return
	}
	if !strings.Contains(req.Email, "@") || len(req.Email) > 255 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 72 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be 6-72 chars"})
		return
	}

	st := h.Provider.Store()
	u, err := st.CreateUser(c.Request.Context(), models.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  utils.NormalizeBool(req.IsAdmin),
	})
	if err == store.ErrConflict {
		c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("op", "register").Msg("create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := h.establish(c, u)
	if err != nil {
		log.Error().Err(err).Str("op", "register").Msg("establish session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": u, "token": token})
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	u, err := h.Provider.Store().Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		log.Error().Err(err).Str("op", "login").Msg("authenticate failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if u == nil {
		// don't reveal which part failed
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.establish(c, u)
	if err != nil {
		log.Error().Err(err).Str("op", "login").Msg("establish session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": u, "token": token})
}

// establish starts the session and mints the matching bearer token; the
// token also rides a cookie for browser clients.
func (h *Handler) establish(c *gin.Context, u *models.User) (string, error) {
	session := sessions.Default(c)
	session.Set(sessionUserKey, u.ID)
	if err := session.Save(); err != nil {
		return "", err
	}

	token, _, err := h.Tokens.Sign(u)
	if err != nil {
		return "", err
	}
	c.SetCookie(TokenCookie, token, int(TokenTTL.Seconds()), "/", "", h.Secure, true)
	return token, nil
}

func (h *Handler) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		log.Error().Err(err).Str("op", "logout").Msg("clear session failed")
	}
	c.SetCookie(TokenCookie, "", -1, "/", "", h.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": CurrentUser(c)})
}
