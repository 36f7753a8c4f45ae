package catalog

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/yc6789/imovie/internal/movies"
	"github.com/yc6789/imovie/internal/tmdb"
)

// Defaults applied when a payload omits a field on first creation.
const (
	defaultTitle    = "Untitled"
	defaultLanguage = "Unknown"
)

// Synchronizer upserts provider payloads into the local movie/genre tables.
// All writes for one payload happen in a single transaction.
type Synchronizer struct {
	db     *gorm.DB
	genres *GenreCache
}

func NewSynchronizer(db *gorm.DB, genres *GenreCache) *Synchronizer {
	return &Synchronizer{db: db, genres: genres}
}

// UpsertMovie creates or updates the local row matching the payload's TMDb id.
// Fields absent from the payload keep their stored value on update and fall
// back to defaults on create. A duplicate-key failure on create (two callers
// racing on the same id) is retried once as an update.
func (s *Synchronizer) UpsertMovie(payload *tmdb.MoviePayload) (*movies.Movie, error) {
	if payload == nil || payload.ID == 0 {
		return nil, errors.New("payload has no tmdb id")
	}

	genreNames := s.resolveGenreNames(payload)

	movie, err := s.upsert(payload, genreNames)
	if err != nil && isDuplicateKey(err) {
		log.Printf("concurrent create for tmdb_id=%d, retrying as update", payload.ID)
		movie, err = s.upsert(payload, genreNames)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert movie tmdb_id=%d: %w", payload.ID, err)
	}
	return movie, nil
}

// SyncTrending ingests trending payloads, creating rows only for TMDb ids not
// already present. Existing rows are never modified by this path. Returns the
// number of newly created movies.
func (s *Synchronizer) SyncTrending(payloads []tmdb.MoviePayload) (int, error) {
	created := 0
	for i := range payloads {
		payload := &payloads[i]
		if payload.ID == 0 {
			continue
		}

		var count int64
		if err := s.db.Model(&movies.Movie{}).Where("tmdb_id = ?", payload.ID).Count(&count).Error; err != nil {
			return created, fmt.Errorf("check tmdb_id=%d: %w", payload.ID, err)
		}
		if count > 0 {
			continue
		}

		if _, err := s.UpsertMovie(payload); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// AnnotatedMovie is a transient search result carrying resolved genre names
// and a full poster URL. Never persisted.
type AnnotatedMovie struct {
	tmdb.MoviePayload
	GenreNames []string `json:"genre_names"`
	PosterURL  string   `json:"poster_url"`
}

// AnnotateSearchResults resolves genre names and poster URLs for search
// payloads without touching the database.
func (s *Synchronizer) AnnotateSearchResults(payloads []tmdb.MoviePayload) []AnnotatedMovie {
	annotated := make([]AnnotatedMovie, 0, len(payloads))
	for i := range payloads {
		payload := payloads[i]
		annotated = append(annotated, AnnotatedMovie{
			MoviePayload: payload,
			GenreNames:   s.resolveGenreNames(&payload),
			PosterURL:    tmdb.BuildPosterURL(payload.PosterPath),
		})
	}
	return annotated
}

// resolveGenreNames prefers the embedded genre objects of the details
// endpoint and falls back to resolving genre_ids through the cache.
func (s *Synchronizer) resolveGenreNames(payload *tmdb.MoviePayload) []string {
	if len(payload.Genres) > 0 {
		names := make([]string, 0, len(payload.Genres))
		for _, g := range payload.Genres {
			if g.Name != "" {
				names = append(names, g.Name)
			} else {
				names = append(names, s.genres.Name(g.ID))
			}
		}
		return names
	}
	return s.genres.Names(payload.GenreIDs)
}

func (s *Synchronizer) upsert(payload *tmdb.MoviePayload, genreNames []string) (*movies.Movie, error) {
	var movie movies.Movie

	err := s.db.Transaction(func(tx *gorm.DB) error {
		genreRows, err := findOrCreateGenres(tx, genreNames)
		if err != nil {
			return fmt.Errorf("genres: %w", err)
		}

		actorRows, err := findOrCreateActors(tx, payload.CastNames())
		if err != nil {
			return fmt.Errorf("actors: %w", err)
		}

		err = tx.Where("tmdb_id = ?", payload.ID).First(&movie).Error
		switch {
		case err == nil:
			applyPayload(&movie, payload)
			if err := tx.Save(&movie).Error; err != nil {
				return err
			}
			// Replace associations only when the payload carried them, so a
			// sparse payload does not blank out stored sets.
			if len(genreRows) > 0 {
				if err := tx.Model(&movie).Association("Genres").Replace(genreRows); err != nil {
					return err
				}
			}
			if len(actorRows) > 0 {
				if err := tx.Model(&movie).Association("Actors").Replace(actorRows); err != nil {
					return err
				}
			}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			movie = newMovie(payload)
			movie.Genres = genreRows
			movie.Actors = actorRows
			return tx.Create(&movie).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// findOrCreateGenres resolves each name to an existing Genre row or creates
// one, never duplicating a name. Lookup is case-sensitive by exact name.
func findOrCreateGenres(tx *gorm.DB, names []string) ([]movies.Genre, error) {
	var rows []movies.Genre
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var genre movies.Genre
		err := tx.Where("name = ?", name).First(&genre).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			genre = movies.Genre{Name: name}
			err = tx.Create(&genre).Error
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, genre)
	}
	return rows, nil
}

func findOrCreateActors(tx *gorm.DB, names []string) ([]movies.Actor, error) {
	var rows []movies.Actor
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		var actor movies.Actor
		err := tx.Where("name = ?", name).First(&actor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			actor = movies.Actor{Name: name}
			err = tx.Create(&actor).Error
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, actor)
	}
	return rows, nil
}

func newMovie(payload *tmdb.MoviePayload) movies.Movie {
	movie := movies.Movie{
		TMDbID:           payload.ID,
		Title:            defaultTitle,
		Description:      "",
		Rating:           0,
		OriginalLanguage: defaultLanguage,
	}
	applyPayload(&movie, payload)
	if movie.Slug == "" {
		movie.Slug = slug.Make(movie.Title)
	}
	return movie
}

// applyPayload copies present payload fields onto the row. Absent fields
// (JSON zero values) leave the stored value alone.
func applyPayload(movie *movies.Movie, payload *tmdb.MoviePayload) {
	if payload.Title != "" {
		movie.Title = payload.Title
		movie.Slug = slug.Make(payload.Title)
	}
	if payload.Overview != "" {
		movie.Description = payload.Overview
	}
	if payload.VoteAverage != 0 {
		movie.Rating = payload.VoteAverage
	}
	if payload.PosterPath != "" {
		movie.PosterURL = tmdb.BuildPosterURL(payload.PosterPath)
	}
	if payload.OriginalLanguage != "" {
		movie.OriginalLanguage = payload.OriginalLanguage
	}
	if payload.ReleaseDate != "" {
		if releaseDate, err := time.Parse("2006-01-02", payload.ReleaseDate); err == nil {
			movie.ReleaseDate = &releaseDate
		}
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// Drivers that gorm does not translate surface the raw constraint error.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
