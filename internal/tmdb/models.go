package tmdb

// MoviePayload is the normalized movie shape shared by the details, trending
// and search endpoints. List endpoints carry genre_ids, the details endpoint
// carries embedded genre objects; consumers handle both.
type MoviePayload struct {
	ID               int      `json:"id"`
	Title            string   `json:"title"`
	OriginalTitle    string   `json:"original_title"`
	Overview         string   `json:"overview"`
	PosterPath       string   `json:"poster_path"`
	ReleaseDate      string   `json:"release_date"`
	VoteAverage      float64  `json:"vote_average"`
	OriginalLanguage string   `json:"original_language"`
	Adult            bool     `json:"adult"`
	GenreIDs         []int    `json:"genre_ids,omitempty"`
	Genres           []Genre  `json:"genres,omitempty"`
	Credits          *Credits `json:"credits,omitempty"`
}

// CastNames returns the cast member names when credits were requested.
func (p *MoviePayload) CastNames() []string {
	if p.Credits == nil {
		return nil
	}
	names := make([]string, 0, len(p.Credits.Cast))
	for _, m := range p.Credits.Cast {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names
}

type MovieListResponse struct {
	Page         int            `json:"page"`
	Results      []MoviePayload `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type GenreListResponse struct {
	Genres []Genre `json:"genres"`
}

type CastMember struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

type CrewMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// SearchOptions are the optional TMDb search filters.
type SearchOptions struct {
	IncludeAdult       bool
	Language           string
	Page               int
	PrimaryReleaseYear int
	Region             string
	Year               int
}
