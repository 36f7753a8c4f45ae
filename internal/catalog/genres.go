package catalog

import (
	"log"
	"sync"

	"github.com/yc6789/imovie/internal/tmdb"
)

// UnknownGenre is the placeholder name for genre ids the provider dictionary
// does not contain, or when the dictionary could not be loaded.
const UnknownGenre = "Unknown"

// GenreSource supplies the provider's genre dictionary. *tmdb.Client satisfies
// it; tests plug in a fake.
type GenreSource interface {
	GetGenres() ([]tmdb.Genre, error)
}

// GenreCache is a process-lifetime id→name mapping, loaded lazily on first
// lookup and never refreshed after a successful load. A failed load leaves
// it empty; the next lookup tries again.
type GenreCache struct {
	mu     sync.RWMutex
	names  map[int]string
	source GenreSource
}

func NewGenreCache(source GenreSource) *GenreCache {
	return &GenreCache{source: source}
}

// Name resolves a provider genre id to its display name, loading the
// dictionary on demand. Unknown ids resolve to UnknownGenre, never an error.
func (c *GenreCache) Name(id int) string {
	c.ensureLoaded()

	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.names[id]; ok {
		return name
	}
	return UnknownGenre
}

// Names resolves a list of genre ids in order.
func (c *GenreCache) Names(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, c.Name(id))
	}
	return names
}

func (c *GenreCache) ensureLoaded() {
	c.mu.RLock()
	loaded := c.names != nil
	c.mu.RUnlock()
	if loaded {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.names != nil {
		return
	}

	genres, err := c.source.GetGenres()
	if err != nil {
		// Leave the cache empty; lookups resolve to UnknownGenre until a
		// later call succeeds.
		log.Printf("genre dictionary load failed: %v", err)
		return
	}

	names := make(map[int]string, len(genres))
	for _, g := range genres {
		names[g.ID] = g.Name
	}
	c.names = names
}
