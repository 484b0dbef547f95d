package model

import "time"

// Movie is a catalog entry that screenings reference. DurationMin is the
// running time in minutes; ReleaseDate is nullable because upcoming titles
// are often announced without one.
type Movie struct {
	ID          uint64     `json:"id"`           // movies.id
	Title       string     `json:"title"`        // movies.title
	Description string     `json:"description"`  // movies.description
	DurationMin uint32     `json:"duration"`     // movies.duration_min
	Genre       string     `json:"genre"`        // movies.genre
	PosterURL   string     `json:"poster_url"`   // movies.poster_url
	TrailerURL  string     `json:"trailer_url"`  // movies.trailer_url
	ReleaseDate *time.Time `json:"release_date"` // movies.release_date (nullable)
	IsActive    bool       `json:"is_active"`    // movies.is_active
	CreatedAt   time.Time  `json:"created_at"`   // movies.created_at
	UpdatedAt   time.Time  `json:"updated_at"`   // movies.updated_at
}
