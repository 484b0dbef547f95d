package model

import "time"

// DefaultCurrency is applied to theatres created without an explicit currency.
const DefaultCurrency = "LKR"

// Theatre is a screening room. It owns its seats and its screenings.
// PriceCents is the base ticket price used when a screening is created
// without one.
type Theatre struct {
	ID         uint64    `json:"id"`          // theatres.id
	Name       string    `json:"name"`        // theatres.name
	Capacity   uint32    `json:"capacity"`    // theatres.capacity
	ScreenType string    `json:"screen_type"` // theatres.screen_type (2D, 3D, IMAX...)
	PriceCents int64     `json:"price_cents"` // theatres.price_cents
	Currency   string    `json:"currency"`    // theatres.currency
	IsActive   bool      `json:"is_active"`   // theatres.is_active
	CreatedAt  time.Time `json:"created_at"`  // theatres.created_at
	UpdatedAt  time.Time `json:"updated_at"`  // theatres.updated_at
}
