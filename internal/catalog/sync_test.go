package catalog

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yc6789/imovie/internal/movies"
	"github.com/yc6789/imovie/internal/tmdb"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.SetupJoinTable(&movies.Movie{}, "Genres", &movies.MovieGenre{}); err != nil {
		t.Fatalf("failed to set up movie_genres join table: %v", err)
	}
	if err := db.SetupJoinTable(&movies.Movie{}, "Actors", &movies.MovieActor{}); err != nil {
		t.Fatalf("failed to set up movie_actors join table: %v", err)
	}
	if err := db.AutoMigrate(&movies.Movie{}, &movies.Genre{}, &movies.Actor{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func newTestSynchronizer(t *testing.T) (*Synchronizer, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	cache := NewGenreCache(&fakeGenreSource{genres: []tmdb.Genre{
		{ID: 18, Name: "Drama"},
		{ID: 80, Name: "Crime"},
	}})
	return NewSynchronizer(db, cache), db
}

func fightClubPayload() *tmdb.MoviePayload {
	return &tmdb.MoviePayload{
		ID:          550,
		Title:       "Fight Club",
		GenreIDs:    []int{18},
		ReleaseDate: "1999-10-15",
		VoteAverage: 8.4,
		PosterPath:  "/poster.jpg",
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return count
}

func TestUpsertCreatesMovieWithGenres(t *testing.T) {
	sync, db := newTestSynchronizer(t)

	movie, err := sync.UpsertMovie(fightClubPayload())
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if movie.Title != "Fight Club" {
		t.Errorf("expected title Fight Club, got %q", movie.Title)
	}
	if movie.Rating != 8.4 {
		t.Errorf("expected rating 8.4, got %f", movie.Rating)
	}
	if movie.PosterURL != "https://image.tmdb.org/t/p/w500/poster.jpg" {
		t.Errorf("unexpected poster url: %s", movie.PosterURL)
	}
	if movie.ReleaseDate == nil || movie.ReleaseDate.Format("2006-01-02") != "1999-10-15" {
		t.Errorf("unexpected release date: %v", movie.ReleaseDate)
	}

	if got := countRows(t, db, &movies.Movie{}); got != 1 {
		t.Fatalf("expected 1 movie row, got %d", got)
	}
	if got := countRows(t, db, &movies.Genre{}); got != 1 {
		t.Fatalf("expected 1 genre row, got %d", got)
	}

	var stored movies.Movie
	if err := db.Preload("Genres").Where("tmdb_id = ?", 550).First(&stored).Error; err != nil {
		t.Fatalf("failed to load stored movie: %v", err)
	}
	if len(stored.Genres) != 1 || stored.Genres[0].Name != "Drama" {
		t.Fatalf("unexpected genres: %+v", stored.Genres)
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	sync, db := newTestSynchronizer(t)

	first, err := sync.UpsertMovie(fightClubPayload())
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second, err := sync.UpsertMovie(fightClubPayload())
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected the same row, got ids %d and %d", first.ID, second.ID)
	}
	if got := countRows(t, db, &movies.Movie{}); got != 1 {
		t.Errorf("expected 1 movie row after repeat, got %d", got)
	}
	if got := countRows(t, db, &movies.Genre{}); got != 1 {
		t.Errorf("expected 1 genre row after repeat, got %d", got)
	}
}

func TestUpsertSparsePayloadKeepsStoredFields(t *testing.T) {
	sync, db := newTestSynchronizer(t)

	if _, err := sync.UpsertMovie(fightClubPayload()); err != nil {
		t.Fatalf("initial upsert failed: %v", err)
	}

	// second payload carries only the id and title
	if _, err := sync.UpsertMovie(&tmdb.MoviePayload{ID: 550, Title: "Fight Club"}); err != nil {
		t.Fatalf("sparse upsert failed: %v", err)
	}

	var stored movies.Movie
	if err := db.Preload("Genres").Where("tmdb_id = ?", 550).First(&stored).Error; err != nil {
		t.Fatalf("failed to load stored movie: %v", err)
	}
	if stored.Rating != 8.4 {
		t.Errorf("rating must survive a sparse update, got %f", stored.Rating)
	}
	if stored.PosterURL != "https://image.tmdb.org/t/p/w500/poster.jpg" {
		t.Errorf("poster url must survive a sparse update, got %s", stored.PosterURL)
	}
	if len(stored.Genres) != 1 {
		t.Errorf("genre set must survive a sparse update, got %+v", stored.Genres)
	}
}

func TestUpsertUpdatesChangedFields(t *testing.T) {
	sync, db := newTestSynchronizer(t)

	if _, err := sync.UpsertMovie(fightClubPayload()); err != nil {
		t.Fatalf("initial upsert failed: %v", err)
	}

	updated := fightClubPayload()
	updated.VoteAverage = 8.8
	updated.Overview = "Updated overview"
	if _, err := sync.UpsertMovie(updated); err != nil {
		t.Fatalf("update upsert failed: %v", err)
	}

	var stored movies.Movie
	if err := db.Where("tmdb_id = ?", 550).First(&stored).Error; err != nil {
		t.Fatalf("failed to load stored movie: %v", err)
	}
	if stored.Rating != 8.8 {
		t.Errorf("expected updated rating 8.8, got %f", stored.Rating)
	}
	if stored.Description != "Updated overview" {
		t.Errorf("expected updated description, got %q", stored.Description)
	}
	if got := countRows(t, db, &movies.Movie{}); got != 1 {
		t.Errorf("update must not create rows, got %d", got)
	}
}

func TestUpsertAppliesDefaults(t *testing.T) {
	sync, _ := newTestSynchronizer(t)

	movie, err := sync.UpsertMovie(&tmdb.MoviePayload{ID: 4242})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if movie.Title != "Untitled" {
		t.Errorf("expected default title, got %q", movie.Title)
	}
	if movie.Description != "" {
		t.Errorf("expected empty description, got %q", movie.Description)
	}
	if movie.Rating != 0 {
		t.Errorf("expected rating 0, got %f", movie.Rating)
	}
	if movie.OriginalLanguage != "Unknown" {
		t.Errorf("expected language Unknown, got %q", movie.OriginalLanguage)
	}
}

func TestUpsertUnknownGenreID(t *testing.T) {
	sync, db := newTestSynchronizer(t)

	payload := fightClubPayload()
	payload.GenreIDs = []int{999}
	if _, err := sync.UpsertMovie(payload); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	var genre movies.Genre
	if err := db.Where("name = ?", UnknownGenre).First(&genre).Error; err != nil {
		t.Fatalf("expected an %q genre row: %v", UnknownGenre, err)
	}
}

func TestUpsertSharesGenreRows(t *testing.T) {
	sync, db := newTestSynchronizer(t)

	if _, err := sync.UpsertMovie(fightClubPayload()); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	other := &tmdb.MoviePayload{ID: 680, Title: "Pulp Fiction", GenreIDs: []int{18, 80}}
	if _, err := sync.UpsertMovie(other); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if got := countRows(t, db, &movies.Genre{}); got != 2 {
		t.Fatalf("expected 2 genre rows (Drama, Crime), got %d", got)
	}
}

func TestUpsertEmbeddedGenreObjects(t *testing.T) {
	db := newTestDB(t)
	// the details endpoint ships genre names, so the dictionary is never needed
	source := &fakeGenreSource{genres: nil}
	sync := NewSynchronizer(db, NewGenreCache(source))

	payload := &tmdb.MoviePayload{
		ID:     550,
		Title:  "Fight Club",
		Genres: []tmdb.Genre{{ID: 18, Name: "Drama"}},
	}
	if _, err := sync.UpsertMovie(payload); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if source.calls != 0 {
		t.Errorf("embedded genre names must not trigger a dictionary fetch, got %d calls", source.calls)
	}
	var genre movies.Genre
	if err := db.Where("name = ?", "Drama").First(&genre).Error; err != nil {
		t.Fatalf("expected Drama genre row: %v", err)
	}
}

func TestUpsertStoresCast(t *testing.T) {
	sync, db := newTestSynchronizer(t)

	payload := fightClubPayload()
	payload.Credits = &tmdb.Credits{Cast: []tmdb.CastMember{
		{ID: 819, Name: "Edward Norton"},
		{ID: 287, Name: "Brad Pitt"},
	}}
	if _, err := sync.UpsertMovie(payload); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	var stored movies.Movie
	if err := db.Preload("Actors").Where("tmdb_id = ?", 550).First(&stored).Error; err != nil {
		t.Fatalf("failed to load stored movie: %v", err)
	}
	if len(stored.Actors) != 2 {
		t.Fatalf("expected 2 actors, got %d", len(stored.Actors))
	}
}

func TestUpsertRetriesAfterDuplicateCreate(t *testing.T) {
	sync, db := newTestSynchronizer(t)

	// A competing writer claims the same tmdb_id between the synchronizer's
	// find and its create, so the create hits the unique constraint.
	conflicted := false
	err := db.Callback().Create().Before("gorm:create").Register("inject_conflict", func(tx *gorm.DB) {
		if conflicted {
			return
		}
		if _, ok := tx.Statement.Dest.(*movies.Movie); !ok {
			return
		}
		conflicted = true
		if err := tx.Session(&gorm.Session{NewDB: true}).Exec("INSERT INTO movies (tmdb_id, title) VALUES (550, 'Raced')").Error; err != nil {
			t.Errorf("conflicting insert failed: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("failed to register callback: %v", err)
	}

	movie, err := sync.UpsertMovie(fightClubPayload())
	if err != nil {
		t.Fatalf("upsert must recover from a create conflict: %v", err)
	}
	if !conflicted {
		t.Fatal("expected the conflicting insert to run")
	}
	if movie.Title != "Fight Club" {
		t.Errorf("unexpected title after retry: %q", movie.Title)
	}

	var count int64
	if err := db.Model(&movies.Movie{}).Where("tmdb_id = ?", 550).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 row for tmdb_id 550, got %d", count)
	}
}

func TestIsDuplicateKey(t *testing.T) {
	if !isDuplicateKey(gorm.ErrDuplicatedKey) {
		t.Error("translated duplicate error must be recognized")
	}
	if !isDuplicateKey(errors.New("UNIQUE constraint failed: movies.tmdb_id")) {
		t.Error("raw sqlite unique error must be recognized")
	}
	if !isDuplicateKey(errors.New(`pq: duplicate key value violates unique constraint "idx_movies_tmdb_id"`)) {
		t.Error("raw postgres unique error must be recognized")
	}
	if isDuplicateKey(errors.New("connection refused")) {
		t.Error("unrelated errors must not be treated as duplicates")
	}
}

func TestSyncTrendingIsCreateOnly(t *testing.T) {
	sync, db := newTestSynchronizer(t)

	if _, err := sync.UpsertMovie(fightClubPayload()); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}

	payloads := []tmdb.MoviePayload{
		{ID: 550, Title: "Fight Club RENAMED", VoteAverage: 1.0},
		{ID: 680, Title: "Pulp Fiction", GenreIDs: []int{80}, VoteAverage: 8.5},
	}
	created, err := sync.SyncTrending(payloads)
	if err != nil {
		t.Fatalf("trending sync failed: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 created row, got %d", created)
	}

	var existing movies.Movie
	if err := db.Where("tmdb_id = ?", 550).First(&existing).Error; err != nil {
		t.Fatalf("failed to load existing movie: %v", err)
	}
	if existing.Title != "Fight Club" || existing.Rating != 8.4 {
		t.Errorf("trending sync must not modify existing rows: %+v", existing)
	}
	if got := countRows(t, db, &movies.Movie{}); got != 2 {
		t.Fatalf("expected 2 movie rows, got %d", got)
	}
}

func TestAnnotateSearchResultsDoesNotPersist(t *testing.T) {
	sync, db := newTestSynchronizer(t)

	annotated := sync.AnnotateSearchResults([]tmdb.MoviePayload{
		{ID: 550, Title: "Fight Club", GenreIDs: []int{18, 999}, PosterPath: "/poster.jpg"},
	})

	if len(annotated) != 1 {
		t.Fatalf("expected 1 annotated result, got %d", len(annotated))
	}
	got := annotated[0]
	if len(got.GenreNames) != 2 || got.GenreNames[0] != "Drama" || got.GenreNames[1] != UnknownGenre {
		t.Errorf("unexpected genre names: %v", got.GenreNames)
	}
	if got.PosterURL != "https://image.tmdb.org/t/p/w500/poster.jpg" {
		t.Errorf("unexpected poster url: %s", got.PosterURL)
	}

	if got := countRows(t, db, &movies.Movie{}); got != 0 {
		t.Errorf("annotation must not write movies, got %d rows", got)
	}
	if got := countRows(t, db, &movies.Genre{}); got != 0 {
		t.Errorf("annotation must not write genres, got %d rows", got)
	}
}
