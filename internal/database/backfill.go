package database

import (
	"fmt"
	"log"
)

// legacyMovie mirrors the movies table from before the tmdb_id column existed.
type legacyMovie struct {
	ID     uint
	TMDbID *int64 `gorm:"column:tmdb_id"`
}

func (legacyMovie) TableName() string { return "movies" }

// BackfillMovieExternalIDs adds the tmdb_id column to a pre-existing movies
// table and fills rows that predate it with synthetic ids (id * 1000) so the
// unique not-null constraint can be enforced by the subsequent AutoMigrate.
// One-time bootstrap for databases migrated from before provider sync; the
// synthetic ids can collide with genuine TMDb ids and are not safe to extend.
// Fresh databases skip it entirely.
func BackfillMovieExternalIDs() error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}

	m := DB.Migrator()
	if !m.HasTable(&legacyMovie{}) {
		return nil
	}

	if !m.HasColumn(&legacyMovie{}, "tmdb_id") {
		log.Println("adding tmdb_id column to movies")
		if err := m.AddColumn(&legacyMovie{}, "TMDbID"); err != nil {
			return fmt.Errorf("add tmdb_id column: %w", err)
		}
	}

	res := DB.Exec("UPDATE movies SET tmdb_id = id * 1000 WHERE tmdb_id IS NULL")
	if res.Error != nil {
		return fmt.Errorf("backfill tmdb_id: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		log.Printf("backfilled tmdb_id for %d pre-existing movies", res.RowsAffected)
	}
	return nil
}
