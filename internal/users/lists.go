package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yc6789/imovie/internal/database"
	"github.com/yc6789/imovie/internal/movies"
)

// currentUserID reads the id set by the auth middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return 0, false
	}
	uid, ok := v.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return 0, false
	}
	return uid, true
}

type movieRefDTO struct {
	MovieID uint `json:"movie_id" binding:"required"`
}

// movieExists guards list inserts against dangling movie references.
func movieExists(c *gin.Context, movieID uint) bool {
	var count int64
	if err := database.DB.Model(&movies.Movie{}).Where("id = ?", movieID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
		return false
	}
	return true
}

func listMoviesFor(c *gin.Context, joinTable string, userID uint) {
	var movieList []movies.Movie
	err := database.DB.Preload("Genres").
		Joins("JOIN "+joinTable+" ON "+joinTable+".movie_id = movies.id").
		Where(joinTable+".user_id = ?", userID).
		Order(joinTable + ".created_at DESC").
		Find(&movieList).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": movieList})
}

// Favorites

func ListFavoritesHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	listMoviesFor(c, "favorites", uid)
}

func AddFavoriteHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var body movieRefDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !movieExists(c, body.MovieID) {
		return
	}

	fav := Favorite{UserID: uid, MovieID: body.MovieID}
	if err := database.DB.Where(&fav).FirstOrCreate(&fav).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "added to favorites"})
}

func RemoveFavoriteHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	movieID, err := strconv.ParseUint(c.Param("movie_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie_id"})
		return
	}

	if err := database.DB.Delete(&Favorite{UserID: uid, MovieID: uint(movieID)}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed from favorites"})
}

// Watchlist

func ListWatchlistHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	listMoviesFor(c, "watchlist", uid)
}

func AddToWatchlistHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var body movieRefDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !movieExists(c, body.MovieID) {
		return
	}

	item := WatchlistItem{UserID: uid, MovieID: body.MovieID}
	if err := database.DB.Where(&item).FirstOrCreate(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "added to watchlist"})
}

func RemoveFromWatchlistHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	movieID, err := strconv.ParseUint(c.Param("movie_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie_id"})
		return
	}

	if err := database.DB.Delete(&WatchlistItem{UserID: uid, MovieID: uint(movieID)}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed from watchlist"})
}

// Ratings

func ListRatingsHandler(c *gin.Context) {
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var ratings []Rating
	if err := database.DB.Where("movie_id = ?", uint(movieID)).Order("created_at DESC").Find(&ratings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ratings})
}

type rateMovieDTO struct {
	Score  int    `json:"score" binding:"required,min=1,max=10"`
	Review string `json:"review"`
}

// RateMovieHandler creates or replaces the caller's rating for a movie.
func RateMovieHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	movieID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if !movieExists(c, uint(movieID)) {
		return
	}

	var body rateMovieDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rating Rating
	err = database.DB.Where("user_id = ? AND movie_id = ?", uid, uint(movieID)).First(&rating).Error
	switch {
	case err == nil:
		rating.Score = body.Score
		rating.Review = body.Review
		err = database.DB.Save(&rating).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		rating = Rating{UserID: uid, MovieID: uint(movieID), Score: body.Score, Review: body.Review}
		err = database.DB.Create(&rating).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rating})
}
