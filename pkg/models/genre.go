package models

type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AnimeGenre is one row of the anime/genre many-to-many join.
type AnimeGenre struct {
	ID      string `json:"id"`
	AnimeID string `json:"animeId"`
	GenreID string `json:"genreId"`
}
