package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"animeverse/internal/admin"
	"animeverse/internal/auth"
	"animeverse/internal/catalog"
	"animeverse/internal/favorites"
	"animeverse/internal/store"
	"animeverse/pkg/config"
	"animeverse/pkg/database"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	// The in-memory store is always ready: it serves every request until
	// MongoDB connects, and again whenever MongoDB drops out.
	provider := store.NewProvider(store.NewMemStore())

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	client, db, err := database.Connect(startCtx, database.Config{
		URI:      cfg.MongoURI,
		User:     cfg.MongoUser,
		Password: cfg.MongoPassword,
		Name:     cfg.MongoDBName,
	}, provider.SetLive)
	cancelStart()
	if err != nil {
		log.Warn().Err(err).Msg("mongodb unavailable, starting with in-memory store")
	} else {
		ms := store.NewMongoStore(db)
		setupCtx, cancelSetup := context.WithTimeout(context.Background(), 30*time.Second)
		if err := ms.EnsureIndexes(setupCtx); err != nil {
			log.Warn().Err(err).Msg("ensure indexes")
		}
		if err := ms.EnsureAdminUser(setupCtx); err != nil {
			log.Warn().Err(err).Msg("ensure admin user")
		}
		cancelSetup()
		provider.AttachMongo(ms)
	}

	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Duration: auth.TokenTTL,
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	sessionStore := memstore.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(auth.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Production(),
	})
	router.Use(sessions.Sessions("animeverse_session", sessionStore))

	router.GET("/health", func(c *gin.Context) {
		backend := "memory"
		if provider.Live() {
			backend = "mongodb"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": backend})
	})

	api := router.Group("/api")
	auth.NewHandler(provider, tokenSvc, cfg.Production()).RegisterRoutes(api.Group("/auth"))
	catalog.NewHandler(provider).RegisterRoutes(api)
	favorites.NewHandler(provider, tokenSvc).RegisterRoutes(api.Group("/favorites"))
	admin.NewHandler(provider, tokenSvc).RegisterRoutes(api.Group("/admin"))

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpSrv.Addr).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	if err := database.Disconnect(client); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect error")
	}
	log.Info().Msg("server stopped")
}
