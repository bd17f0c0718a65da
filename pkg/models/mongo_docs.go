package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"animeverse/pkg/utils"
)

// Document shapes as stored in MongoDB. The native _id never leaks past the
// conversion methods below; API shapes always carry the public `id` string.
// IsAdmin is decoded as `any` on purpose: legacy documents hold the flag as
// the strings "true"/"false" and the converter normalizes it.

type UserDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	IsAdmin   any                `bson:"isAdmin"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d UserDoc) ToUser() User {
	return User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Email:     d.Email,
		Password:  d.Password,
		IsAdmin:   utils.NormalizeBool(d.IsAdmin),
		CreatedAt: d.CreatedAt,
	}
}

type AnimeDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	CoverImage  string             `bson:"coverImage"`
	BannerImage *string            `bson:"bannerImage"`
	ReleaseYear int                `bson:"releaseYear"`
	Status      string             `bson:"status"`
	Type        string             `bson:"type"`
	Episodes    *int               `bson:"episodes"`
	Rating      *string            `bson:"rating"`
	Studio      *string            `bson:"studio"`
}

func (d AnimeDoc) ToAnime() Anime {
	return Anime{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		CoverImage:  d.CoverImage,
		BannerImage: d.BannerImage,
		ReleaseYear: d.ReleaseYear,
		Status:      d.Status,
		Type:        d.Type,
		Episodes:    d.Episodes,
		Rating:      d.Rating,
		Studio:      d.Studio,
	}
}

type GenreDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

func (d GenreDoc) ToGenre() Genre {
	return Genre{ID: d.ID.Hex(), Name: d.Name}
}

type AnimeGenreDoc struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	AnimeID primitive.ObjectID `bson:"animeId"`
	GenreID primitive.ObjectID `bson:"genreId"`
}

func (d AnimeGenreDoc) ToAnimeGenre() AnimeGenre {
	return AnimeGenre{ID: d.ID.Hex(), AnimeID: d.AnimeID.Hex(), GenreID: d.GenreID.Hex()}
}

type EpisodeDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	AnimeID     primitive.ObjectID `bson:"animeId"`
	Title       string             `bson:"title"`
	Number      int                `bson:"number"`
	Description *string            `bson:"description"`
	Thumbnail   *string            `bson:"thumbnail"`
	VideoURL    string             `bson:"videoUrl"`
	Duration    *string            `bson:"duration"`
	ReleaseDate time.Time          `bson:"releaseDate"`
}

func (d EpisodeDoc) ToEpisode() Episode {
	return Episode{
		ID:          d.ID.Hex(),
		AnimeID:     d.AnimeID.Hex(),
		Title:       d.Title,
		Number:      d.Number,
		Description: d.Description,
		Thumbnail:   d.Thumbnail,
		VideoURL:    d.VideoURL,
		Duration:    d.Duration,
		ReleaseDate: d.ReleaseDate,
	}
}

type FavoriteDoc struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	UserID  string             `bson:"userId"`
	AnimeID string             `bson:"animeId"`
}

func (d FavoriteDoc) ToFavorite() Favorite {
	return Favorite{ID: d.ID.Hex(), UserID: d.UserID, AnimeID: d.AnimeID}
}
