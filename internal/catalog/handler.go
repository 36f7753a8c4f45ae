package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yc6789/imovie/internal/tmdb"
)

// Handler exposes the provider-sync endpoints.
type Handler struct {
	client *tmdb.Client
	sync   *Synchronizer
}

func NewHandler(client *tmdb.Client, sync *Synchronizer) *Handler {
	return &Handler{client: client, sync: sync}
}

// FetchMovie fetches one movie from TMDb and upserts it locally.
// GET /fetch_movie/:tmdb_id
func (h *Handler) FetchMovie(c *gin.Context) {
	tmdbID, err := strconv.Atoi(c.Param("tmdb_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tmdb_id"})
		return
	}

	payload, err := h.client.GetMovieDetails(tmdbID)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
		} else {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch from TMDb: " + err.Error()})
		}
		return
	}

	// details responses may omit the appended credits; fetch them separately,
	// leaving the cast empty if that call fails too
	if payload.Credits == nil {
		if credits, err := h.client.GetMovieCredits(tmdbID); err == nil {
			payload.Credits = credits
		}
	}

	movie, err := h.sync.UpsertMovie(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save movie: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "movie fetched and stored successfully",
		"movie":   movie,
	})
}

// FetchTrending fetches the trending list and stores movies not yet present.
// GET /fetch_trending_movies?window=day
func (h *Handler) FetchTrending(c *gin.Context) {
	window := c.DefaultQuery("window", "day")

	payloads, err := h.client.GetTrending(window)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch trending movies: " + err.Error()})
		return
	}

	created, err := h.sync.SyncTrending(payloads)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store trending movies: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "trending movies fetched and stored successfully",
		"fetched": len(payloads),
		"created": created,
	})
}

// SearchTMDb searches the provider and returns annotated, non-persisted results.
// GET /search/tmdb?query=...
func (h *Handler) SearchTMDb(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter required"})
		return
	}

	opts := tmdb.SearchOptions{
		IncludeAdult: c.Query("include_adult") == "true",
		Language:     c.Query("language"),
		Region:       c.Query("region"),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		opts.Page = page
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		opts.Year = year
	}
	if year, err := strconv.Atoi(c.Query("primary_release_year")); err == nil {
		opts.PrimaryReleaseYear = year
	}

	payloads, err := h.client.SearchMovies(query, opts)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": h.sync.AnnotateSearchResults(payloads),
	})
}
