package tmdb

import (
	"fmt"
	"os"
)

const (
	BaseURL      = "https://api.themoviedb.org/3"
	ImageBaseURL = "https://image.tmdb.org/t/p/"
)

const (
	SizePosterW92  = "w92"
	SizePosterW185 = "w185"
	SizePosterW342 = "w342"
	SizePosterW500 = "w500"
	SizeOriginal   = "original"
)

type Config struct {
	APIKey string

	// BaseURL overrides the production endpoint; empty means the BaseURL const.
	BaseURL string
}

func NewConfig() *Config {
	return &Config{
		APIKey: os.Getenv("TMDB_API_KEY"),
	}
}

func BuildImageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s%s%s", ImageBaseURL, size, path)
}

func BuildPosterURL(path string) string {
	return BuildImageURL(SizePosterW500, path)
}
