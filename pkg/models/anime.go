package models

import "strings"

type Anime struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CoverImage  string  `json:"coverImage"`
	BannerImage *string `json:"bannerImage"`
	ReleaseYear int     `json:"releaseYear"`
	Status      string  `json:"status"`
	Type        string  `json:"type"`
	Episodes    *int    `json:"episodes"`
	Rating      *string `json:"rating"`
	Studio      *string `json:"studio"`
}

// AnimeWithGenres is the enriched read shape used by listing endpoints.
type AnimeWithGenres struct {
	Anime
	Genres []Genre `json:"genres"`
}

// AnimeInput is the create payload; optional fields stay nil when absent.
type AnimeInput struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description" binding:"required"`
	CoverImage  string  `json:"coverImage" binding:"required"`
	BannerImage *string `json:"bannerImage"`
	ReleaseYear int     `json:"releaseYear" binding:"required"`
	Status      string  `json:"status" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Episodes    *int    `json:"episodes"`
	Rating      *string `json:"rating"`
	Studio      *string `json:"studio"`
}

// AnimePatch is the partial-update payload; nil means "leave unchanged".
type AnimePatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CoverImage  *string `json:"coverImage"`
	BannerImage *string `json:"bannerImage"`
	ReleaseYear *int    `json:"releaseYear"`
	Status      *string `json:"status"`
	Type        *string `json:"type"`
	Episodes    *int    `json:"episodes"`
	Rating      *string `json:"rating"`
	Studio      *string `json:"studio"`
}

var animeStatuses = []string{"Ongoing", "Completed", "Announced", "Cancelled"}

var animeTypes = []string{"TV Series", "Movie", "OVA", "Special", "ONA"}

func ValidAnimeStatus(s string) bool { return containsFold(animeStatuses, s) }

func ValidAnimeType(s string) bool { return containsFold(animeTypes, s) }

func containsFold(set []string, s string) bool {
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
