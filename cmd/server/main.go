package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/yc6789/imovie/internal/auth"
	"github.com/yc6789/imovie/internal/catalog"
	"github.com/yc6789/imovie/internal/database"
	"github.com/yc6789/imovie/internal/movies"
	"github.com/yc6789/imovie/internal/tmdb"
	"github.com/yc6789/imovie/internal/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded, continuing with environment variables")
	}

	if m := os.Getenv("GIN_MODE"); m != "" {
		gin.SetMode(m)
	}

	if err := database.Connect(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// one-time tmdb_id bootstrap for databases predating provider sync
	if err := database.BackfillMovieExternalIDs(); err != nil {
		log.Fatalf("tmdb_id backfill failed: %v", err)
	}

	if err := database.DB.SetupJoinTable(&movies.Movie{}, "Genres", &movies.MovieGenre{}); err != nil {
		log.Fatalf("join table setup failed: %v", err)
	}
	if err := database.DB.SetupJoinTable(&movies.Movie{}, "Actors", &movies.MovieActor{}); err != nil {
		log.Fatalf("join table setup failed: %v", err)
	}

	if err := database.Migrate(
		&users.User{},
		&users.Favorite{},
		&users.WatchlistItem{},
		&users.Rating{},
		&movies.Movie{},
		&movies.Genre{},
		&movies.Actor{},
	); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	auth.InitSessionStore()

	tmdbClient := tmdb.NewClient(tmdb.NewConfig())
	genreCache := catalog.NewGenreCache(tmdbClient)
	synchronizer := catalog.NewSynchronizer(database.DB, genreCache)
	catalogHandler := catalog.NewHandler(tmdbClient, synchronizer)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Auth routes
	r.POST("/users", users.CreateUserHandler)
	r.POST("/login", auth.LoginHandler)
	r.POST("/logout", auth.LogoutHandler)
	r.GET("/me", auth.RequireAuth(), auth.MeHandler)
	r.GET("/users/:id", users.GetUserHandler)

	// Catalog routes
	r.GET("/movies", movies.ListMoviesHandler)
	r.GET("/movies/:id", movies.GetMovieHandler)
	r.POST("/movies", auth.RequireAuth(), movies.CreateMovieHandler)
	r.PUT("/movies/:id", auth.RequireAuth(), movies.UpdateMovieHandler)
	r.DELETE("/movies/:id", auth.RequireAuth(), movies.DeleteMovieHandler)
	r.GET("/genres", movies.ListGenresHandler)
	r.GET("/trending_movies", movies.TrendingMoviesHandler)

	// Ratings
	r.GET("/movies/:id/ratings", users.ListRatingsHandler)
	r.POST("/movies/:id/ratings", auth.RequireAuth(), users.RateMovieHandler)

	// Provider sync routes
	r.GET("/fetch_movie/:tmdb_id", catalogHandler.FetchMovie)
	r.GET("/fetch_trending_movies", catalogHandler.FetchTrending)
	r.GET("/search/tmdb", catalogHandler.SearchTMDb)

	// Per-user lists
	r.GET("/favorites", auth.RequireAuth(), users.ListFavoritesHandler)
	r.POST("/favorites", auth.RequireAuth(), users.AddFavoriteHandler)
	r.DELETE("/favorites/:movie_id", auth.RequireAuth(), users.RemoveFavoriteHandler)
	r.GET("/watchlist", auth.RequireAuth(), users.ListWatchlistHandler)
	r.POST("/watchlist", auth.RequireAuth(), users.AddToWatchlistHandler)
	r.DELETE("/watchlist/:movie_id", auth.RequireAuth(), users.RemoveFromWatchlistHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r.Run(":" + port)
}
