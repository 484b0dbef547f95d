package model

// DashboardStats summarises the ledger for the admin dashboard.
type DashboardStats struct {
	TotalMovies      int64             `json:"total_movies"`
	ActiveScreenings int64             `json:"active_screenings"`
	TotalBookings    int64             `json:"total_bookings"`
	RevenueCents     int64             `json:"revenue_cents"`
	RecentBookings   []BookingDetail   `json:"recent_bookings"`
	PopularMovies    []MoviePopularity `json:"popular_movies"`
}

// MoviePopularity counts non-cancelled bookings per movie.
type MoviePopularity struct {
	MovieID  uint64 `json:"movie_id"`
	Title    string `json:"title"`
	Bookings int64  `json:"bookings"`
}
