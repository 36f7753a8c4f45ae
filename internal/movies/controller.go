package movies

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/yc6789/imovie/internal/database"
)

// ListMoviesHandler returns a paginated list of movies with optional title
// search and genre filter.
func ListMoviesHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	search := c.Query("search")
	genre := c.Query("genre")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	query := database.DB.Preload("Genres")

	if search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+search+"%")
	}

	if genre != "" {
		query = query.Joins("JOIN movie_genres ON movie_genres.movie_id = movies.id").
			Joins("JOIN genres ON genres.id = movie_genres.genre_id").
			Where("LOWER(genres.name) = LOWER(?)", genre)
	}

	var total int64
	query.Model(&Movie{}).Count(&total)

	var movieList []Movie
	if err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&movieList).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": movieList,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// GetMovieHandler returns a single movie by numeric id or slug.
func GetMovieHandler(c *gin.Context) {
	identifier := c.Param("id")

	var movie Movie
	var err error

	if id, parseErr := strconv.Atoi(identifier); parseErr == nil {
		err = database.DB.Preload("Genres").Preload("Actors").First(&movie, id).Error
	} else {
		err = database.DB.Preload("Genres").Preload("Actors").Where("slug = ?", identifier).First(&movie).Error
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": movie})
}

type movieDTO struct {
	TMDbID      int     `json:"tmdb_id" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	ReleaseDate string  `json:"release_date"`
	Rating      float64 `json:"rating" binding:"omitempty,min=0,max=10"`
	PosterURL   string  `json:"poster_url"`
	GenreIDs    []uint  `json:"genre_ids"`
}

func CreateMovieHandler(c *gin.Context) {
	var body movieDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	movie := Movie{
		TMDbID:      body.TMDbID,
		Title:       body.Title,
		Slug:        slug.Make(body.Title),
		Description: body.Description,
		Rating:      body.Rating,
		PosterURL:   body.PosterURL,
	}

	if body.ReleaseDate != "" {
		releaseDate, err := time.Parse("2006-01-02", body.ReleaseDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid release date"})
			return
		}
		movie.ReleaseDate = &releaseDate
	}

	for _, gid := range body.GenreIDs {
		movie.Genres = append(movie.Genres, Genre{ID: gid})
	}

	if err := database.DB.Create(&movie).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": movie})
}

func UpdateMovieHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var movie Movie
	if err := database.DB.Preload("Genres").First(&movie, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var body struct {
		Title       string   `json:"title"`
		Description *string  `json:"description"`
		ReleaseDate string   `json:"release_date"`
		Rating      *float64 `json:"rating"`
		PosterURL   *string  `json:"poster_url"`
		GenreIDs    []uint   `json:"genre_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if body.Title != "" {
		movie.Title = body.Title
		movie.Slug = slug.Make(body.Title)
	}
	if body.Description != nil {
		movie.Description = *body.Description
	}
	if body.Rating != nil {
		movie.Rating = *body.Rating
	}
	if body.PosterURL != nil {
		movie.PosterURL = *body.PosterURL
	}
	if body.ReleaseDate != "" {
		releaseDate, err := time.Parse("2006-01-02", body.ReleaseDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid release date"})
			return
		}
		movie.ReleaseDate = &releaseDate
	}

	if err := database.DB.Save(&movie).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if body.GenreIDs != nil {
		var genres []Genre
		for _, gid := range body.GenreIDs {
			genres = append(genres, Genre{ID: gid})
		}
		if err := database.DB.Model(&movie).Association("Genres").Replace(genres); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": movie})
}

func DeleteMovieHandler(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := database.DB.Delete(&Movie{}, uint(id)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "movie deleted"})
}

func ListGenresHandler(c *gin.Context) {
	var genres []Genre
	if err := database.DB.Order("name ASC").Find(&genres).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": genres})
}

// TrendingMoviesHandler returns the most recently released local rows, the
// read side of the trending ingestion.
func TrendingMoviesHandler(c *gin.Context) {
	var movieList []Movie
	if err := database.DB.Preload("Genres").Order("release_date DESC").Limit(20).Find(&movieList).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": movieList})
}
