package movies

import (
	"time"
)

// Movie is a locally cached catalog entry. TMDbID is the provider's id and
// the natural key for synchronization; at most one row exists per TMDbID.
type Movie struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TMDbID           int        `gorm:"column:tmdb_id;uniqueIndex;not null" json:"tmdb_id"`
	Title            string     `gorm:"not null" json:"title"`
	Slug             string     `gorm:"index" json:"slug"`
	Description      string     `json:"description"`
	ReleaseDate      *time.Time `json:"release_date"`
	Rating           float64    `json:"rating"`
	PosterURL        string     `json:"poster_url"`
	OriginalLanguage string     `json:"original_language"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Genres           []Genre    `gorm:"many2many:movie_genres;" json:"genres"`
	Actors           []Actor    `gorm:"many2many:movie_actors;" json:"actors,omitempty"`
}

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null" json:"name"`
}

type Actor struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null" json:"name"`
}

type MovieGenre struct {
	MovieID uint `gorm:"primaryKey"`
	GenreID uint `gorm:"primaryKey"`
}

type MovieActor struct {
	MovieID uint `gorm:"primaryKey"`
	ActorID uint `gorm:"primaryKey"`
}
