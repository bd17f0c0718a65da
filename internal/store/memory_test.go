package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"animeverse/pkg/models"
)

func TestMemStoreSeed(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	u, err := m.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.IsAdmin)

	genres, err := m.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 15)

	animes, err := m.ListAnimes(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, animes)

	stats, err := m.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(animes), stats.AnimeCount)
	assert.Equal(t, 15, stats.GenreCount)
	assert.Equal(t, 1, stats.UserCount)
}

func TestMemStoreAuthenticate(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	u, err := m.Authenticate(ctx, "admin", "admin123")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "admin", u.Username)

	u, err = m.Authenticate(ctx, "admin", "wrong")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = m.Authenticate(ctx, "nobody", "admin123")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestMemStoreUserConflict(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	_, err := m.CreateUser(ctx, models.NewUser{Username: "alice", Email: "a@example.com", Password: "pw123456"})
	require.NoError(t, err)

	_, err = m.CreateUser(ctx, models.NewUser{Username: "alice", Email: "b@example.com", Password: "pw123456"})
	assert.Equal(t, ErrConflict, err)
}

func TestMemStoreIDKinds(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	// invalid ids surface the sentinel
	_, err := m.GetAnime(ctx, ParseID("not-an-id"))
	assert.Equal(t, ErrInvalidID, err)

	// a foreign ObjectID can never exist here: not-found, not an error
	a, err := m.GetAnime(ctx, ObjectID(primitive.NewObjectID()))
	require.NoError(t, err)
	assert.Nil(t, a)

	// out-of-range sequence ids are not-found
	a, err = m.GetAnime(ctx, SeqID(9999))
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestMemStoreLastAdminGuard(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	admin, err := m.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	adminID := ParseID(admin.ID)

	// sole admin can be neither demoted nor deleted
	_, err = m.SetUserAdmin(ctx, adminID, false)
	assert.Equal(t, ErrLastAdmin, err)
	_, err = m.DeleteUser(ctx, adminID)
	assert.Equal(t, ErrLastAdmin, err)

	// promoting a second admin lifts the guard
	other, err := m.CreateUser(ctx, models.NewUser{Username: "backup", Email: "b@example.com", Password: "pw123456", IsAdmin: true})
	require.NoError(t, err)

	demoted, err := m.SetUserAdmin(ctx, adminID, false)
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)

	// backup is now the sole admin and protected in turn
	_, err = m.DeleteUser(ctx, ParseID(other.ID))
	assert.Equal(t, ErrLastAdmin, err)
}

func TestMemStoreGenreConflict(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	_, err := m.CreateGenre(ctx, "Action")
	assert.Equal(t, ErrConflict, err)

	// case-insensitive
	_, err = m.CreateGenre(ctx, "aCtIoN")
	assert.Equal(t, ErrConflict, err)

	g, err := m.CreateGenre(ctx, "Isekai")
	require.NoError(t, err)

	_, err = m.UpdateGenre(ctx, ParseID(g.ID), "action")
	assert.Equal(t, ErrConflict, err)

	// renaming to itself is fine
	same, err := m.UpdateGenre(ctx, ParseID(g.ID), "ISEKAI")
	require.NoError(t, err)
	assert.Equal(t, "ISEKAI", same.Name)
}

func TestMemStoreAnimeCascade(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	animes, err := m.SearchAnimes(ctx, "attack on titan")
	require.NoError(t, err)
	require.Len(t, animes, 1)
	id := ParseID(animes[0].ID)

	eps, err := m.EpisodesForAnime(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, eps)
	epID := ParseID(eps[0].ID)

	genres, err := m.GenresForAnime(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, genres)

	ok, err := m.DeleteAnime(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)

	ep, err := m.GetEpisode(ctx, epID)
	require.NoError(t, err)
	assert.Nil(t, ep)

	// links are gone too: the genre no longer lists the anime
	linked, err := m.AnimesForGenre(ctx, ParseID(genres[0].ID))
	require.NoError(t, err)
	for _, a := range linked {
		assert.NotEqual(t, animes[0].ID, a.ID)
	}
}

func TestMemStoreGenreCascade(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	g, err := m.GetGenreByName(ctx, "Action")
	require.NoError(t, err)
	require.NotNil(t, g)

	ok, err := m.DeleteGenre(ctx, ParseID(g.ID))
	require.NoError(t, err)
	require.True(t, ok)

	animes, err := m.ListAnimes(ctx)
	require.NoError(t, err)
	for _, a := range animes {
		genres, err := m.GenresForAnime(ctx, ParseID(a.ID))
		require.NoError(t, err)
		for _, ag := range genres {
			assert.NotEqual(t, g.ID, ag.ID)
		}
	}
}

func TestMemStoreEpisodeUniqueness(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	animes, err := m.SearchAnimes(ctx, "my hero")
	require.NoError(t, err)
	require.Len(t, animes, 1)
	id := ParseID(animes[0].ID)

	_, err = m.CreateEpisode(ctx, EpisodeInput{AnimeID: id, Title: "dup", Number: 1, VideoURL: "https://example.com/v.mp4"})
	assert.Equal(t, ErrConflict, err)

	ep, err := m.CreateEpisode(ctx, EpisodeInput{AnimeID: id, Title: "new", Number: 3, VideoURL: "https://example.com/v.mp4"})
	require.NoError(t, err)

	// moving onto an occupied number is rejected
	n := 1
	_, err = m.UpdateEpisode(ctx, ParseID(ep.ID), EpisodePatch{Number: &n})
	assert.Equal(t, ErrConflict, err)

	// episode for a missing anime is not-found
	missing, err := m.CreateEpisode(ctx, EpisodeInput{AnimeID: SeqID(9999), Title: "x", Number: 1, VideoURL: "https://example.com/v.mp4"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemStoreFavorites(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	u, err := m.CreateUser(ctx, models.NewUser{Username: "carol", Email: "c@example.com", Password: "pw123456"})
	require.NoError(t, err)

	animes, err := m.ListAnimes(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, animes)
	animeID := ParseID(animes[0].ID)

	fav, err := m.AddFavorite(ctx, u.ID, animeID)
	require.NoError(t, err)
	require.NotNil(t, fav)

	_, err = m.AddFavorite(ctx, u.ID, animeID)
	assert.Equal(t, ErrConflict, err)

	favs, err := m.FavoriteAnimes(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, animes[0].ID, favs[0].ID)

	// deleting the anime orphans the favorite; reads skip it
	ok, err := m.DeleteAnime(ctx, animeID)
	require.NoError(t, err)
	require.True(t, ok)
	favs, err = m.FavoriteAnimes(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)

	ok, err = m.RemoveFavorite(ctx, u.ID, ParseID(animes[0].ID))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemStoreTopRatedAndTrending(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	top, err := m.TopRatedAnimes(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, *top[i-1].Rating, *top[i].Rating)
	}

	trending, err := m.TrendingAnimes(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, trending, 2)
}
