package store

import (
	"context"
	"crypto/subtle"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"animeverse/pkg/models"
)

// MemStore is the process-local fallback backend: plain maps keyed by
// sequential integers assigned at insertion. Unlike the document backend it
// is reset on restart and keeps credentials in plaintext — it only ever
// holds the seeded demo data plus whatever was created while degraded.
// Handlers run concurrently, so every operation takes the mutex; the
// compound reads (cascades, joins) scan several maps and must see a
// consistent snapshot.
type MemStore struct {
	mu sync.RWMutex

	users       map[int]models.User
	animes      map[int]models.Anime
	genres      map[int]models.Genre
	animeGenres map[int]models.AnimeGenre
	episodes    map[int]models.Episode
	favorites   map[int]models.Favorite

	nextUser     int
	nextAnime    int
	nextGenre    int
	nextLink     int
	nextEpisode  int
	nextFavorite int
}

// NewMemStore returns a store pre-seeded with the baseline dataset: the
// bootstrap admin account, the genre list, and a starter catalog with
// episodes and genre links.
func NewMemStore() *MemStore {
	m := &MemStore{
		users:        make(map[int]models.User),
		animes:       make(map[int]models.Anime),
		genres:       make(map[int]models.Genre),
		animeGenres:  make(map[int]models.AnimeGenre),
		episodes:     make(map[int]models.Episode),
		favorites:    make(map[int]models.Favorite),
		nextUser:     1,
		nextAnime:    1,
		nextGenre:    1,
		nextLink:     1,
		nextEpisode:  1,
		nextFavorite: 1,
	}
	m.seed()
	return m
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// users

func (m *MemStore) GetUser(_ context.Context, id ID) (*models.User, error) {
	if id.IsInvalid() {
		return nil, ErrInvalidID
	}
	if id.Kind() != KindSeq {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id.Seq()]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MemStore) CreateUser(_ context.Context, in models.NewUser) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == in.Username {
			return nil, ErrConflict
		}
	}
	id := m.nextUser
	m.nextUser++
	u := models.User{
		ID:        strconv.Itoa(id),
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password, // plaintext: this backend holds demo data only
		IsAdmin:   in.IsAdmin,
		CreatedAt: time.Now().UTC(),
	}
	m.users[id] = u
	return &u, nil
}

func (m *MemStore) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := m.GetUserByUsername(ctx, username)
	if err != nil || u == nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return nil, nil
	}
	return u, nil
}

func (m *MemStore) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.User, 0, len(m.users))
	for _, k := range sortedKeys(m.users) {
		out = append(out, m.users[k])
	}
	return out, nil
}

func (m *MemStore) adminCountLocked() int {
	n := 0
	for _, u := range m.users {
		if u.IsAdmin {
			n++
		}
	}
	return n
}

func (m *MemStore) SetUserAdmin(_ context.Context, id ID, isAdmin bool) (*models.User, error) {
	if id.IsInvalid() {
		return nil, ErrInvalidID
	}
	if id.Kind() != KindSeq {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id.Seq()]
	if !ok {
		return nil, nil
	}
	if u.IsAdmin && !isAdmin && m.adminCountLocked() <= 1 {
		return nil, ErrLastAdmin
	}
	u.IsAdmin = isAdmin
	m.users[id.Seq()] = u
	return &u, nil
}

func (m *MemStore) DeleteUser(_ context.Context, id ID) (bool, error) {
	if id.IsInvalid() {
		return false, ErrInvalidID
	}
	if id.Kind() != KindSeq {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id.Seq()]
	if !ok {
		return false, nil
	}
	if u.IsAdmin && m.adminCountLocked() <= 1 {
		return false, ErrLastAdmin
	}
	delete(m.users, id.Seq())
	return true, nil
}

// animes

func (m *MemStore) ListAnimes(_ context.Context) ([]models.Anime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Anime, 0, len(m.animes))
	for _, k := range sortedKeys(m.animes) {
		out = append(out, m.animes[k])
	}
	return out, nil
}

func (m *MemStore) GetAnime(_ context.Context, id ID) (*models.Anime, error) {
	if id.IsInvalid() {
		return nil, ErrInvalidID
	}
	if id.Kind() != KindSeq {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.animes[id.Seq()]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *MemStore) CreateAnime(_ context.Context, in models.AnimeInput) (*models.Anime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createAnimeLocked(in), nil
}

func (m *MemStore) createAnimeLocked(in models.AnimeInput) *models.Anime {
	id := m.nextAnime
	m.nextAnime++
	a := models.Anime{
		ID:          strconv.Itoa(id),
		Title:       in.Title,
		Description: in.Description,
		CoverImage:  in.CoverImage,
		BannerImage: in.BannerImage,
		ReleaseYear: in.ReleaseYear,
		Status:      in.Status,
		Type:        in.Type,
		Episodes:    in.Episodes,
		Rating:      in.Rating,
		Studio:      in.Studio,
	}
	m.animes[id] = a
	return &a
}

func (m *MemStore) UpdateAnime(_ context.Context, id ID, patch models.AnimePatch) (*models.Anime, error) {
	if id.IsInvalid() {
		return nil, ErrInvalidID
	}
	if id.Kind() != KindSeq {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.animes[id.Seq()]
	if !ok {
		return nil, nil
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.CoverImage != nil {
		a.CoverImage = *patch.CoverImage
	}
	if patch.BannerImage != nil {
		a.BannerImage = patch.BannerImage
	}
	if patch.ReleaseYear != nil {
		a.ReleaseYear = *patch.ReleaseYear
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Type != nil {
		a.Type = *patch.Type
	}
	if patch.Episodes != nil {
		a.Episodes = patch.Episodes
	}
	if patch.Rating != nil {
		a.Rating = patch.Rating
	}
	if patch.Studio != nil {
		a.Studio = patch.Studio
	}
	m.animes[id.Seq()] = a
	return &a, nil
}

func (m *MemStore) DeleteAnime(_ context.Context, id ID) (bool, error) {
	if id.IsInvalid() {
		return false, ErrInvalidID
	}
	if id.Kind() != KindSeq {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.animes[id.Seq()]; !ok {
		return false, nil
	}
	animeID := strconv.Itoa(id.Seq())
	for k, link := range m.animeGenres {
		if link.AnimeID == animeID {
			delete(m.animeGenres, k)
		}
	}
	for k, ep := range m.episodes {
		if ep.AnimeID == animeID {
			delete(m.episodes, k)
		}
	}
	delete(m.animes, id.Seq())
	return true, nil
}

func (m *MemStore) SearchAnimes(_ context.Context, query string) ([]models.Anime, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Anime
	for _, k := range sortedKeys(m.animes) {
		a := m.animes[k]
		if strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Description), q) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemStore) TrendingAnimes(_ context.Context, limit int) ([]models.Anime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := sortedKeys(m.animes)
	// newest first, insertion id as the recency proxy
	var out []models.Anime
	for i := len(keys) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.animes[keys[i]])
	}
	return out, nil
}

func (m *MemStore) TopRatedAnimes(_ context.Context, limit int) ([]models.Anime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rated []models.Anime
	for _, k := range sortedKeys(m.animes) {
		a := m.animes[k]
		if a.Rating != nil && *a.Rating != "" {
			rated = append(rated, a)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		ri, _ := strconv.ParseFloat(*rated[i].Rating, 64)
		rj, _ := strconv.ParseFloat(*rated[j].Rating, 64)
		return ri > rj
	})
	if len(rated) > limit {
		rated = rated[:limit]
	}
	return rated, nil
}

// genres

func (m *MemStore) ListGenres(_ context.Context) ([]models.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Genre, 0, len(m.genres))
	for _, k := range sortedKeys(m.genres) {
		out = append(out, m.genres[k])
	}
	return out, nil
}

func (m *MemStore) GetGenre(_ context.Context, id ID) (*models.Genre, error) {
	if id.IsInvalid() {
		return nil, ErrInvalidID
	}
	if id.Kind() != KindSeq {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.genres[id.Seq()]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (m *MemStore) GetGenreByName(_ context.Context, name string) (*models.Genre, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g := m.genreByNameLocked(name); g != nil {
		out := *g
		return &out, nil
	}
	return nil, nil
}

func (m *MemStore) genreByNameLocked(name string) *models.Genre {
	for _, g := range m.genres {
		if strings.EqualFold(g.Name, name) {
			out := g
			return &out
		}
	}
	return nil
}

func (m *MemStore) CreateGenre(_ context.Context, name string) (*models.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.genreByNameLocked(name) != nil {
		return nil, ErrConflict
	}
	return m.createGenreLocked(name), nil
}

func (m *MemStore) createGenreLocked(name string) *models.Genre {
	id := m.nextGenre
	m.nextGenre++
	g := models.Genre{ID: strconv.Itoa(id), Name: name}
	m.genres[id] = g
	return &g
}

func (m *MemStore) UpdateGenre(_ context.Context, id ID, name string) (*models.Genre, error) {
	if id.IsInvalid() {
		return nil, ErrInvalidID
	}
	if id.Kind() != KindSeq {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.genres[id.Seq()]
	if !ok {
		return nil, nil
	}
	if existing := m.genreByNameLocked(name); existing != nil && existing.ID != g.ID {
		return nil, ErrConflict
	}
	g.Name = name
	m.genres[id.Seq()] = g
	return &g, nil
}

func (m *MemStore) DeleteGenre(_ context.Context, id ID) (bool, error) {
	if id.IsInvalid() {
		return false, ErrInvalidID
	}
	if id.Kind() != KindSeq {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.genres[id.Seq()]; !ok {
		return false, nil
	}
	genreID := strconv.Itoa(id.Seq())
	for k, link := range m.animeGenres {
		if link.GenreID == genreID {
			delete(m.animeGenres, k)
		}
	}
	delete(m.genres, id.Seq())
	return true, nil
}

// anime-genre links

func (m *MemStore) GenresForAnime(_ context.Context, animeID ID) ([]models.Genre, error) {
	if animeID.IsInvalid() {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := animeID.String()
	var out []models.Genre
	for _, k := range sortedKeys(m.genres) {
		g := m.genres[k]
		for _, link := range m.animeGenres {
			if link.AnimeID == want && link.GenreID == g.ID {
				out = append(out, g)
				break
			}
		}
	}
	return out, nil
}

func (m *MemStore) AnimesForGenre(_ context.Context, genreID ID) ([]models.Anime, error) {
	if genreID.IsInvalid() {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := genreID.String()
	var out []models.Anime
	for _, k := range sortedKeys(m.animes) {
		a := m.animes[k]
		for _, link := range m.animeGenres {
			if link.GenreID == want && link.AnimeID == a.ID {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

func (m *MemStore) LinkGenre(_ context.Context, animeID, genreID ID) (*models.AnimeGenre, error) {
	if animeID.IsInvalid() || genreID.IsInvalid() {
		return nil, ErrInvalidID
	}
	if animeID.Kind() != KindSeq || genreID.Kind() != KindSeq {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.animes[animeID.Seq()]; !ok {
		return nil, nil
	}
	if _, ok := m.genres[genreID.Seq()]; !ok {
		return nil, nil
	}
	aid, gid := animeID.String(), genreID.String()
	for _, link := range m.animeGenres {
		if link.AnimeID == aid && link.GenreID == gid {
			return nil, ErrConflict
		}
	}
	id := m.nextLink
	m.nextLink++
	link := models.AnimeGenre{ID: strconv.Itoa(id), AnimeID: aid, GenreID: gid}
	m.animeGenres[id] = link
	return &link, nil
}

func (m *MemStore) UnlinkGenre(_ context.Context, animeID, genreID ID) (bool, error) {
	if animeID.IsInvalid() || genreID.IsInvalid() {
		return false, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	aid, gid := animeID.String(), genreID.String()
	found := false
	for k, link := range m.animeGenres {
		if link.AnimeID == aid && link.GenreID == gid {
			delete(m.animeGenres, k)
			found = true
		}
	}
	return found, nil
}

// episodes

func (m *MemStore) GetEpisode(_ context.Context, id ID) (*models.Episode, error) {
	if id.IsInvalid() {
		return nil, ErrInvalidID
	}
	if id.Kind() != KindSeq {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ep, ok := m.episodes[id.Seq()]
	if !ok {
		return nil, nil
	}
	return &ep, nil
}

func (m *MemStore) EpisodesForAnime(_ context.Context, animeID ID) ([]models.Episode, error) {
	if animeID.IsInvalid() {
		return nil, ErrInvalidID
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := animeID.String()
	var out []models.Episode
	for _, ep := range m.episodes {
		if ep.AnimeID == want {
			out = append(out, ep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *MemStore) RecentEpisodes(_ context.Context, limit int) ([]models.RecentEpisode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	eps := make([]models.Episode, 0, len(m.episodes))
	for _, ep := range m.episodes {
		eps = append(eps, ep)
	}
	sort.Slice(eps, func(i, j int) bool { return eps[i].ReleaseDate.After(eps[j].ReleaseDate) })
	var out []models.RecentEpisode
	for _, ep := range eps {
		if len(out) >= limit {
			break
		}
		n, err := strconv.Atoi(ep.AnimeID)
		if err != nil {
			continue
		}
		a, ok := m.animes[n]
		if !ok {
			continue
		}
		out = append(out, models.RecentEpisode{Anime: a, Episode: ep})
	}
	return out, nil
}

func (m *MemStore) CreateEpisode(_ context.Context, in EpisodeInput) (*models.Episode, error) {
	if in.AnimeID.IsInvalid() {
		return nil, ErrInvalidID
	}
	if in.AnimeID.Kind() != KindSeq {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.animes[in.AnimeID.Seq()]; !ok {
		return nil, nil
	}
	aid := in.AnimeID.String()
	for _, ep := range m.episodes {
		if ep.AnimeID == aid && ep.Number == in.Number {
			return nil, ErrConflict
		}
	}
	return m.createEpisodeLocked(aid, in), nil
}

func (m *MemStore) createEpisodeLocked(animeID string, in EpisodeInput) *models.Episode {
	id := m.nextEpisode
	m.nextEpisode++
	release := in.ReleaseDate
	if release.IsZero() {
		release = time.Now().UTC()
	}
	ep := models.Episode{
		ID:          strconv.Itoa(id),
		AnimeID:     animeID,
		Title:       in.Title,
		Number:      in.Number,
		Description: in.Description,
		Thumbnail:   in.Thumbnail,
		VideoURL:    in.VideoURL,
		Duration:    in.Duration,
		ReleaseDate: release,
	}
	m.episodes[id] = ep
	return &ep
}

func (m *MemStore) UpdateEpisode(_ context.Context, id ID, patch EpisodePatch) (*models.Episode, error) {
	if id.IsInvalid() {
		return nil, ErrInvalidID
	}
	if id.Kind() != KindSeq {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ep, ok := m.episodes[id.Seq()]
	if !ok {
		return nil, nil
	}
	if patch.AnimeID != nil {
		if patch.AnimeID.Kind() != KindSeq {
			return nil, ErrInvalidID
		}
		if _, ok := m.animes[patch.AnimeID.Seq()]; !ok {
			return nil, nil
		}
		ep.AnimeID = patch.AnimeID.String()
	}
	if patch.Number != nil {
		ep.Number = *patch.Number
	}
	for _, other := range m.episodes {
		if other.ID != ep.ID && other.AnimeID == ep.AnimeID && other.Number == ep.Number {
			return nil, ErrConflict
		}
	}
	if patch.Title != nil {
		ep.Title = *patch.Title
	}
	if patch.Description != nil {
		ep.Description = patch.Description
	}
	if patch.Thumbnail != nil {
		ep.Thumbnail = patch.Thumbnail
	}
	if patch.VideoURL != nil {
		ep.VideoURL = *patch.VideoURL
	}
	if patch.Duration != nil {
		ep.Duration = patch.Duration
	}
	if patch.ReleaseDate != nil {
		ep.ReleaseDate = *patch.ReleaseDate
	}
	m.episodes[id.Seq()] = ep
	return &ep, nil
}

func (m *MemStore) DeleteEpisode(_ context.Context, id ID) (bool, error) {
	if id.IsInvalid() {
		return false, ErrInvalidID
	}
	if id.Kind() != KindSeq {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.episodes[id.Seq()]; !ok {
		return false, nil
	}
	delete(m.episodes, id.Seq())
	return true, nil
}

// favorites

func (m *MemStore) FavoriteAnimes(_ context.Context, userID string) ([]models.Anime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Anime
	for _, k := range sortedKeys(m.favorites) {
		fav := m.favorites[k]
		if fav.UserID != userID {
			continue
		}
		n, err := strconv.Atoi(fav.AnimeID)
		if err != nil {
			continue
		}
		// favorites may outlive their anime; skip the orphans
		if a, ok := m.animes[n]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemStore) AddFavorite(_ context.Context, userID string, animeID ID) (*models.Favorite, error) {
	if animeID.IsInvalid() {
		return nil, ErrInvalidID
	}
	if animeID.Kind() != KindSeq {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.animes[animeID.Seq()]; !ok {
		return nil, nil
	}
	aid := animeID.String()
	for _, fav := range m.favorites {
		if fav.UserID == userID && fav.AnimeID == aid {
			return nil, ErrConflict
		}
	}
	id := m.nextFavorite
	m.nextFavorite++
	fav := models.Favorite{ID: strconv.Itoa(id), UserID: userID, AnimeID: aid}
	m.favorites[id] = fav
	return &fav, nil
}

func (m *MemStore) RemoveFavorite(_ context.Context, userID string, animeID ID) (bool, error) {
	if animeID.IsInvalid() {
		return false, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	aid := animeID.String()
	for k, fav := range m.favorites {
		if fav.UserID == userID && fav.AnimeID == aid {
			delete(m.favorites, k)
			return true, nil
		}
	}
	return false, nil
}

// stats

func (m *MemStore) Counts(_ context.Context) (models.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.Stats{
		AnimeCount:   len(m.animes),
		EpisodeCount: len(m.episodes),
		GenreCount:   len(m.genres),
		UserCount:    len(m.users),
	}, nil
}
