package store

import (
	"context"
	"time"

	"animeverse/pkg/models"
)

// Store is the uniform data-access contract both backends implement. Every
// method behaves identically regardless of which backend answers: public
// `id` strings out, parsed IDs in, (nil, nil) / (false, nil) for not-found,
// sentinel errors for conflicts. A handler resolves its Store once per
// request so a read and the write that follows it hit the same backend.
type Store interface {
	// users
	GetUser(ctx context.Context, id ID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, in models.NewUser) (*models.User, error)
	// Authenticate returns the user when the credentials match, (nil, nil)
	// when they do not; it never reveals which factor was wrong.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserAdmin(ctx context.Context, id ID, isAdmin bool) (*models.User, error)
	DeleteUser(ctx context.Context, id ID) (bool, error)

	// animes
	ListAnimes(ctx context.Context) ([]models.Anime, error)
	GetAnime(ctx context.Context, id ID) (*models.Anime, error)
	CreateAnime(ctx context.Context, in models.AnimeInput) (*models.Anime, error)
	UpdateAnime(ctx context.Context, id ID, patch models.AnimePatch) (*models.Anime, error)
	DeleteAnime(ctx context.Context, id ID) (bool, error)
	SearchAnimes(ctx context.Context, query string) ([]models.Anime, error)
	TrendingAnimes(ctx context.Context, limit int) ([]models.Anime, error)
	TopRatedAnimes(ctx context.Context, limit int) ([]models.Anime, error)

	// genres
	ListGenres(ctx context.Context) ([]models.Genre, error)
	GetGenre(ctx context.Context, id ID) (*models.Genre, error)
	GetGenreByName(ctx context.Context, name string) (*models.Genre, error)
	CreateGenre(ctx context.Context, name string) (*models.Genre, error)
	UpdateGenre(ctx context.Context, id ID, name string) (*models.Genre, error)
	DeleteGenre(ctx context.Context, id ID) (bool, error)

	// anime-genre links
	GenresForAnime(ctx context.Context, animeID ID) ([]models.Genre, error)
	AnimesForGenre(ctx context.Context, genreID ID) ([]models.Anime, error)
	LinkGenre(ctx context.Context, animeID, genreID ID) (*models.AnimeGenre, error)
	UnlinkGenre(ctx context.Context, animeID, genreID ID) (bool, error)

	// episodes
	GetEpisode(ctx context.Context, id ID) (*models.Episode, error)
	EpisodesForAnime(ctx context.Context, animeID ID) ([]models.Episode, error)
	RecentEpisodes(ctx context.Context, limit int) ([]models.RecentEpisode, error)
	CreateEpisode(ctx context.Context, in EpisodeInput) (*models.Episode, error)
	UpdateEpisode(ctx context.Context, id ID, patch EpisodePatch) (*models.Episode, error)
	DeleteEpisode(ctx context.Context, id ID) (bool, error)

	// favorites
	FavoriteAnimes(ctx context.Context, userID string) ([]models.Anime, error)
	AddFavorite(ctx context.Context, userID string, animeID ID) (*models.Favorite, error)
	RemoveFavorite(ctx context.Context, userID string, animeID ID) (bool, error)

	// stats
	Counts(ctx context.Context) (models.Stats, error)
}

// EpisodeInput carries a create payload with the anime reference already
// parsed; the caller decides how the raw string should be interpreted.
type EpisodeInput struct {
	AnimeID     ID
	Title       string
	Number      int
	Description *string
	Thumbnail   *string
	VideoURL    string
	Duration    *string
	ReleaseDate time.Time
}

// EpisodePatch is the partial-update payload; nil means "leave unchanged".
type EpisodePatch struct {
	AnimeID     *ID
	Title       *string
	Number      *int
	Description *string
	Thumbnail   *string
	VideoURL    *string
	Duration    *string
	ReleaseDate *time.Time
}
