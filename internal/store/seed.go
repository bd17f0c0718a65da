package store

import (
	"strconv"
	"time"

	"animeverse/pkg/models"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

type seedAnime struct {
	input    models.AnimeInput
	genres   []string
	episodes []seedEpisode
}

type seedEpisode struct {
	title    string
	number   int
	videoURL string
	duration string
	released string
}

var seedGenres = []string{
	"Action", "Adventure", "Comedy", "Drama", "Fantasy",
	"Horror", "Mystery", "Romance", "Sci-Fi", "Slice of Life",
	"Sports", "Supernatural", "Thriller", "Mecha", "Psychological",
}

var seedAnimes = []seedAnime{
	{
		input: models.AnimeInput{
			Title:       "Demon Slayer",
			Description: "A young man becomes a demon slayer after his family is slaughtered and his sister is turned into a demon.",
			CoverImage:  "https://example.com/covers/demon-slayer.jpg",
			BannerImage: strPtr("https://example.com/banners/demon-slayer.jpg"),
			ReleaseYear: 2019,
			Status:      "Ongoing",
			Type:        "TV Series",
			Episodes:    intPtr(26),
			Rating:      strPtr("4.9"),
			Studio:      strPtr("ufotable"),
		},
		genres: []string{"Action", "Supernatural", "Drama"},
	},
	{
		input: models.AnimeInput{
			Title:       "Attack on Titan",
			Description: "Humanity fights for survival behind walls that keep out man-eating titans, until the walls fail.",
			CoverImage:  "https://example.com/covers/attack-on-titan.jpg",
			BannerImage: strPtr("https://example.com/banners/attack-on-titan.jpg"),
			ReleaseYear: 2013,
			Status:      "Completed",
			Type:        "TV Series",
			Episodes:    intPtr(87),
			Rating:      strPtr("4.9"),
			Studio:      strPtr("Wit Studio / MAPPA"),
		},
		genres: []string{"Action", "Drama", "Fantasy", "Mystery"},
		episodes: []seedEpisode{
			{"To You, 2000 Years From Now", 1, "https://example.com/videos/aot-1.mp4", "24:00", "2023-01-01"},
			{"That Day", 2, "https://example.com/videos/aot-2.mp4", "24:00", "2023-01-08"},
			{"A Dim Light Amid Despair", 3, "https://example.com/videos/aot-3.mp4", "24:00", "2023-01-15"},
		},
	},
	{
		input: models.AnimeInput{
			Title:       "My Hero Academia",
			Description: "In a world where most people have superpowers, a powerless boy enrolls in a hero academy.",
			CoverImage:  "https://example.com/covers/my-hero-academia.jpg",
			ReleaseYear: 2016,
			Status:      "Ongoing",
			Type:        "TV Series",
			Episodes:    intPtr(113),
			Rating:      strPtr("4.7"),
			Studio:      strPtr("Bones"),
		},
		genres: []string{"Action", "Comedy", "Adventure"},
		episodes: []seedEpisode{
			{"Izuku Midoriya: Origin", 1, "https://example.com/videos/mha-1.mp4", "24:00", "2023-02-01"},
			{"What It Takes to Be a Hero", 2, "https://example.com/videos/mha-2.mp4", "24:00", "2023-02-08"},
		},
	},
	{
		input: models.AnimeInput{
			Title:       "Fullmetal Alchemist: Brotherhood",
			Description: "Two brothers search for the Philosopher's Stone to restore their bodies after a failed alchemical ritual.",
			CoverImage:  "https://example.com/covers/fmab.jpg",
			ReleaseYear: 2009,
			Status:      "Completed",
			Type:        "TV Series",
			Episodes:    intPtr(64),
			Rating:      strPtr("4.9"),
			Studio:      strPtr("Bones"),
		},
		genres: []string{"Action", "Adventure", "Drama", "Fantasy"},
	},
	{
		input: models.AnimeInput{
			Title:       "One Piece",
			Description: "A rubber-bodied pirate and his crew sail the Grand Line in search of the ultimate treasure.",
			CoverImage:  "https://example.com/covers/one-piece.jpg",
			ReleaseYear: 1999,
			Status:      "Ongoing",
			Type:        "TV Series",
			Episodes:    intPtr(1000),
			Rating:      strPtr("4.8"),
			Studio:      strPtr("Toei Animation"),
		},
		genres: []string{"Action", "Adventure", "Comedy", "Fantasy"},
	},
	{
		input: models.AnimeInput{
			Title:       "Jujutsu Kaisen",
			Description: "A student swallows a cursed object and joins a secret school of sorcerers to fight curses.",
			CoverImage:  "https://example.com/covers/jujutsu-kaisen.jpg",
			BannerImage: strPtr("https://example.com/banners/jujutsu-kaisen.jpg"),
			ReleaseYear: 2020,
			Status:      "Ongoing",
			Type:        "TV Series",
			Episodes:    intPtr(24),
			Rating:      strPtr("4.8"),
			Studio:      strPtr("MAPPA"),
		},
		genres: []string{"Action", "Supernatural", "Horror"},
	},
}

// seed loads the demo dataset. Only called from NewMemStore, before the
// store is shared, so no locking here.
func (m *MemStore) seed() {
	id := m.nextUser
	m.nextUser++
	m.users[id] = models.User{
		ID:        strconv.Itoa(id),
		Username:  "admin",
		Email:     "admin@animeverse.com",
		Password:  "admin123",
		IsAdmin:   true,
		CreatedAt: time.Now().UTC(),
	}

	for _, name := range seedGenres {
		m.createGenreLocked(name)
	}

	for _, sa := range seedAnimes {
		a := m.createAnimeLocked(sa.input)
		for _, gname := range sa.genres {
			g := m.genreByNameLocked(gname)
			if g == nil {
				continue
			}
			linkID := m.nextLink
			m.nextLink++
			m.animeGenres[linkID] = models.AnimeGenre{
				ID:      strconv.Itoa(linkID),
				AnimeID: a.ID,
				GenreID: g.ID,
			}
		}
		for _, se := range sa.episodes {
			released, _ := time.Parse("2006-01-02", se.released)
			m.createEpisodeLocked(a.ID, EpisodeInput{
				Title:       se.title,
				Number:      se.number,
				VideoURL:    se.videoURL,
				Duration:    strPtr(se.duration),
				ReleaseDate: released,
			})
		}
	}
}
