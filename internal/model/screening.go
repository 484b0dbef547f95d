package model

import "time"

// Screening is a scheduled showing of a movie in a theatre during the
// half-open interval [StartTime, EndTime). Times are stored in UTC.
type Screening struct {
	ID         uint64    `json:"id"`          // screenings.id
	MovieID    uint64    `json:"movie_id"`    // screenings.movie_id
	TheatreID  uint64    `json:"theatre_id"`  // screenings.theatre_id
	StartTime  time.Time `json:"start_time"`  // screenings.start_time
	EndTime    time.Time `json:"end_time"`    // screenings.end_time
	PriceCents int64     `json:"price_cents"` // screenings.price_cents
	IsActive   bool      `json:"is_active"`   // screenings.is_active
	CreatedAt  time.Time `json:"created_at"`  // screenings.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // screenings.updated_at
}

// Overlaps reports whether the screening intersects [start, end), i.e.
// NOT (s.end <= start OR s.start >= end).
func (s Screening) Overlaps(start, end time.Time) bool {
	return s.EndTime.After(start) && s.StartTime.Before(end)
}

// ScreeningDetail is a screening joined with the display fields of its
// movie and theatre, used by public listings.
type ScreeningDetail struct {
	Screening
	MovieTitle  string `json:"movie_title"`
	TheatreName string `json:"theatre_name"`
	ScreenType  string `json:"screen_type"`
	Currency    string `json:"currency"`
}
