package tmdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound means the provider answered and the resource does not exist.
// Transport and server-side failures wrap other errors so callers can tell
// "missing" apart from "unreachable".
var ErrNotFound = errors.New("tmdb: not found")

// ErrEmptyQuery is returned before any network call when a search query is blank.
var ErrEmptyQuery = errors.New("tmdb: empty search query")

type Client struct {
	config     *Config
	baseURL    string
	httpClient *http.Client
}

func NewClient(config *Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		config:  config,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) get(endpoint string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.config.APIKey)

	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	// Log the request with the API key hidden
	log.Printf("TMDb API request: %s%s", c.baseURL, endpoint)

	resp, err := c.httpClient.Get(fullURL)
	if err != nil {
		log.Printf("TMDb request failed: %v", err)
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("TMDb API error: status %d, body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("tmdb api error: status %d", resp.StatusCode)
	}

	return body, nil
}

// GetMovieDetails fetches one movie by its TMDb id, with credits appended.
func (c *Client) GetMovieDetails(tmdbID int) (*MoviePayload, error) {
	endpoint := fmt.Sprintf("/movie/%d", tmdbID)
	params := url.Values{}
	params.Set("append_to_response", "credits")

	body, err := c.get(endpoint, params)
	if err != nil {
		return nil, err
	}

	var payload MoviePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("Failed to unmarshal movie details: %v", err)
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return &payload, nil
}

// GetTrending fetches the trending movie list for a time window ("day" or "week").
func (c *Client) GetTrending(window string) ([]MoviePayload, error) {
	if window != "week" {
		window = "day"
	}

	body, err := c.get("/trending/movie/"+window, nil)
	if err != nil {
		return nil, err
	}

	var result MovieListResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return result.Results, nil
}

// SearchMovies runs a free-text movie search with optional filters.
func (c *Client) SearchMovies(query string, opts SearchOptions) ([]MoviePayload, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", strconv.FormatBool(opts.IncludeAdult))
	if opts.Language != "" {
		params.Set("language", opts.Language)
	}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PrimaryReleaseYear > 0 {
		params.Set("primary_release_year", strconv.Itoa(opts.PrimaryReleaseYear))
	}
	if opts.Region != "" {
		params.Set("region", opts.Region)
	}
	if opts.Year > 0 {
		params.Set("year", strconv.Itoa(opts.Year))
	}

	body, err := c.get("/search/movie", params)
	if err != nil {
		return nil, err
	}

	var result MovieListResponse
	if err := json.Unmarshal(body, &result); err != nil {
		log.Printf("Failed to unmarshal search results: %v", err)
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return result.Results, nil
}

// GetGenres fetches the provider's movie genre dictionary.
func (c *Client) GetGenres() ([]Genre, error) {
	body, err := c.get("/genre/movie/list", nil)
	if err != nil {
		return nil, err
	}

	var result GenreListResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return result.Genres, nil
}

// GetMovieCredits fetches cast and crew for a movie on its own.
func (c *Client) GetMovieCredits(tmdbID int) (*Credits, error) {
	endpoint := fmt.Sprintf("/movie/%d/credits", tmdbID)

	body, err := c.get(endpoint, nil)
	if err != nil {
		return nil, err
	}

	var credits Credits
	if err := json.Unmarshal(body, &credits); err != nil {
		return nil, fmt.Errorf("unmarshal credits: %w", err)
	}

	return &credits, nil
}
