package models

import "time"

type Episode struct {
	ID          string    `json:"id"`
	AnimeID     string    `json:"animeId"`
	Title       string    `json:"title"`
	Number      int       `json:"number"`
	Description *string   `json:"description"`
	Thumbnail   *string   `json:"thumbnail"`
	VideoURL    string    `json:"videoUrl"`
	Duration    *string   `json:"duration"`
	ReleaseDate time.Time `json:"releaseDate"`
}

// RecentEpisode pairs an episode with its anime for the recently-added feed.
type RecentEpisode struct {
	Anime   Anime   `json:"anime"`
	Episode Episode `json:"episode"`
}
