package models

type Favorite struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	AnimeID string `json:"animeId"`
}

// Stats is the admin dashboard count summary.
type Stats struct {
	AnimeCount   int `json:"animeCount"`
	EpisodeCount int `json:"episodeCount"`
	GenreCount   int `json:"genreCount"`
	UserCount    int `json:"userCount"`
}
