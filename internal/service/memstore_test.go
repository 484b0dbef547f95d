package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// memDB is an in-memory stand-in for the MySQL schema. WithTx serializes
// units of work and rolls the whole state back when fn fails, which is the
// isolation the ledger relies on from row locks. Booking inserts enforce
// both unique keys of the bookings table.
type memDB struct {
	txMu sync.Mutex // held for the duration of a unit of work
	mu   sync.Mutex // guards the maps

	nextID     uint64
	movies     map[uint64]model.Movie
	theatres   map[uint64]model.Theatre
	seats      map[uint64]model.Seat
	screenings map[uint64]model.Screening
	bookings   map[uint64]model.Booking

	now func() time.Time
}

func newMemDB(now func() time.Time) *memDB {
	return &memDB{
		movies:     map[uint64]model.Movie{},
		theatres:   map[uint64]model.Theatre{},
		seats:      map[uint64]model.Seat{},
		screenings: map[uint64]model.Screening{},
		bookings:   map[uint64]model.Booking{},
		now:        now,
	}
}

type memTxKey struct{}

func (m *memDB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snap := m.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memState struct {
	nextID     uint64
	movies     map[uint64]model.Movie
	theatres   map[uint64]model.Theatre
	seats      map[uint64]model.Seat
	screenings map[uint64]model.Screening
	bookings   map[uint64]model.Booking
}

func copyMap[V any](src map[uint64]V) map[uint64]V {
	dst := make(map[uint64]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (m *memDB) snapshot() memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memState{
		nextID:     m.nextID,
		movies:     copyMap(m.movies),
		theatres:   copyMap(m.theatres),
		seats:      copyMap(m.seats),
		screenings: copyMap(m.screenings),
		bookings:   copyMap(m.bookings),
	}
}

func (m *memDB) restore(s memState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID = s.nextID
	m.movies, m.theatres, m.seats = s.movies, s.theatres, s.seats
	m.screenings, m.bookings = s.screenings, s.bookings
}

func (m *memDB) id() uint64 {
	m.nextID++
	return m.nextID
}

// ---- fixtures -------------------------------------------------------------

func (m *memDB) addMovie(t *testing.T, title string) model.Movie {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	mv := model.Movie{ID: m.id(), Title: title, DurationMin: 120, IsActive: true}
	m.movies[mv.ID] = mv
	return mv
}

func (m *memDB) addTheatre(t *testing.T, name string, priceCents int64) model.Theatre {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	th := model.Theatre{ID: m.id(), Name: name, ScreenType: "2D", PriceCents: priceCents, Currency: model.DefaultCurrency, IsActive: true}
	m.theatres[th.ID] = th
	return th
}

func (m *memDB) addSeat(t *testing.T, theatreID uint64, row string, number uint32) model.Seat {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	s := model.Seat{ID: m.id(), TheatreID: theatreID, Row: row, Number: number, Type: model.SeatRegular, Status: model.SeatAvailable}
	m.seats[s.ID] = s
	return s
}

func (m *memDB) addScreening(t *testing.T, movieID, theatreID uint64, start, end time.Time, priceCents int64) model.Screening {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	sc := model.Screening{ID: m.id(), MovieID: movieID, TheatreID: theatreID, StartTime: start, EndTime: end, PriceCents: priceCents, IsActive: true}
	m.screenings[sc.ID] = sc
	return sc
}

func (m *memDB) setSeatStatus(seatID uint64, st model.SeatStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.seats[seatID]
	s.Status = st
	m.seats[seatID] = s
}

func (m *memDB) setScreeningActive(id uint64, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc := m.screenings[id]
	sc.IsActive = active
	m.screenings[id] = sc
}

func (m *memDB) seat(id uint64) model.Seat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seats[id]
}

func (m *memDB) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func seatLess(a, b model.Seat) bool {
	if len(a.Row) != len(b.Row) {
		return len(a.Row) < len(b.Row)
	}
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Number < b.Number
}

// ---- bookings -------------------------------------------------------------

type memBookings struct{ db *memDB }

func (s memBookings) HasActive(_ context.Context, screeningID, seatID uint64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, b := range s.db.bookings {
		if b.ScreeningID == screeningID && b.SeatID == seatID && b.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (s memBookings) Create(_ context.Context, b *model.Booking) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, o := range s.db.bookings {
		if o.BookingNumber == b.BookingNumber {
			return repository.ErrDuplicateBookingNumber
		}
		if o.ScreeningID == b.ScreeningID && o.SeatID == b.SeatID && o.Status.Active() && b.Status.Active() {
			return repository.ErrActiveBookingExists
		}
	}
	b.ID = s.db.id()
	b.CreatedAt = s.db.now()
	b.UpdatedAt = b.CreatedAt
	s.db.bookings[b.ID] = *b
	return nil
}

func (s memBookings) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

func (s memBookings) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	return s.GetByID(ctx, id)
}

func (s memBookings) UpdateStatus(_ context.Context, id uint64, from, to model.BookingStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	b, ok := s.db.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.Status != from {
		return repository.ErrStaleStatus
	}
	if to.Active() && !b.Status.Active() {
		for _, o := range s.db.bookings {
			if o.ID != id && o.ScreeningID == b.ScreeningID && o.SeatID == b.SeatID && o.Status.Active() {
				return repository.ErrActiveBookingExists
			}
		}
	}
	b.Status = to
	b.UpdatedAt = s.db.now()
	s.db.bookings[id] = b
	return nil
}

func (s memBookings) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.bookings[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(s.db.bookings, id)
	return nil
}

func (s memBookings) ListDetails(_ context.Context, f repository.BookingFilter) ([]model.BookingDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.BookingDetail
	for _, b := range s.db.bookings {
		if f.UserID != 0 && b.UserID != f.UserID {
			continue
		}
		sc := s.db.screenings[b.ScreeningID]
		seat := s.db.seats[b.SeatID]
		out = append(out, model.BookingDetail{
			Booking:     b,
			MovieTitle:  s.db.movies[sc.MovieID].Title,
			TheatreName: s.db.theatres[sc.TheatreID].Name,
			SeatRow:     seat.Row,
			SeatNumber:  seat.Number,
			StartTime:   sc.StartTime,
			EndTime:     sc.EndTime,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s memBookings) CountByScreening(_ context.Context, screeningID uint64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, b := range s.db.bookings {
		if b.ScreeningID == screeningID {
			n++
		}
	}
	return n, nil
}

func (s memBookings) CountBySeat(_ context.Context, seatID uint64) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for _, b := range s.db.bookings {
		if b.SeatID == seatID {
			n++
		}
	}
	return n, nil
}

// ---- seats ----------------------------------------------------------------

type memSeats struct{ db *memDB }

func (s memSeats) checkInsert(seat model.Seat) error {
	if _, ok := s.db.theatres[seat.TheatreID]; !ok {
		return repository.ErrTheatreNotFound
	}
	for _, o := range s.db.seats {
		if o.ID != seat.ID && o.TheatreID == seat.TheatreID && o.Row == seat.Row && o.Number == seat.Number {
			return fmt.Errorf("seat %s: %w", seat.Label(), repository.ErrDuplicateSeat)
		}
	}
	return nil
}

func (s memSeats) Create(_ context.Context, seat *model.Seat) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.checkInsert(*seat); err != nil {
		return err
	}
	seat.ID = s.db.id()
	seat.CreatedAt = s.db.now()
	seat.UpdatedAt = seat.CreatedAt
	s.db.seats[seat.ID] = *seat
	return nil
}

func (s memSeats) CreateBulk(_ context.Context, seats []model.Seat) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	seen := map[string]bool{}
	for _, seat := range seats {
		if err := s.checkInsert(seat); err != nil {
			return 0, err
		}
		k := fmt.Sprintf("%d/%s", seat.TheatreID, seat.Label())
		if seen[k] {
			return 0, repository.ErrDuplicateSeat
		}
		seen[k] = true
	}
	for _, seat := range seats {
		seat.ID = s.db.id()
		s.db.seats[seat.ID] = seat
	}
	return int64(len(seats)), nil
}

func (s memSeats) GetByID(_ context.Context, id uint64) (*model.Seat, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	seat, ok := s.db.seats[id]
	if !ok {
		return nil, repository.ErrSeatNotFound
	}
	return &seat, nil
}

func (s memSeats) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Seat, error) {
	return s.GetByID(ctx, id)
}

func (s memSeats) ListByTheatre(_ context.Context, theatreID uint64) ([]model.Seat, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.Seat
	for _, seat := range s.db.seats {
		if seat.TheatreID == theatreID {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return seatLess(out[i], out[j]) })
	return out, nil
}

func (s memSeats) taken(screeningID, seatID uint64) bool {
	for _, b := range s.db.bookings {
		if b.ScreeningID == screeningID && b.SeatID == seatID && b.Status.Active() {
			return true
		}
	}
	return false
}

func (s memSeats) ListAvailableForScreening(ctx context.Context, screeningID, theatreID uint64) ([]model.Seat, error) {
	all, _ := s.ListByTheatre(ctx, theatreID)
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.Seat
	for _, seat := range all {
		if seat.Status != model.SeatMaintenance && !s.taken(screeningID, seat.ID) {
			out = append(out, seat)
		}
	}
	return out, nil
}

func (s memSeats) ListWithAvailability(ctx context.Context, screeningID, theatreID uint64) ([]model.SeatAvailability, error) {
	all, _ := s.ListByTheatre(ctx, theatreID)
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]model.SeatAvailability, 0, len(all))
	for _, seat := range all {
		out = append(out, model.SeatAvailability{
			Seat:      seat,
			Available: seat.Status != model.SeatMaintenance && !s.taken(screeningID, seat.ID),
		})
	}
	return out, nil
}

func (s memSeats) Update(_ context.Context, seat *model.Seat) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.seats[seat.ID]; !ok {
		return repository.ErrSeatNotFound
	}
	if err := s.checkInsert(*seat); err != nil {
		return err
	}
	s.db.seats[seat.ID] = *seat
	return nil
}

func (s memSeats) MarkBooked(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if seat, ok := s.db.seats[id]; ok && seat.Status != model.SeatMaintenance {
		seat.Status = model.SeatBooked
		s.db.seats[id] = seat
	}
	return nil
}

func (s memSeats) Release(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if seat, ok := s.db.seats[id]; ok && seat.Status == model.SeatBooked {
		seat.Status = model.SeatAvailable
		s.db.seats[id] = seat
	}
	return nil
}

func (s memSeats) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.seats[id]; !ok {
		return repository.ErrSeatNotFound
	}
	delete(s.db.seats, id)
	return nil
}

// ---- screenings -----------------------------------------------------------

type memScreenings struct{ db *memDB }

func (s memScreenings) Create(_ context.Context, sc *model.Screening) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sc.ID = s.db.id()
	s.db.screenings[sc.ID] = *sc
	return nil
}

func (s memScreenings) GetByID(_ context.Context, id uint64) (*model.Screening, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sc, ok := s.db.screenings[id]
	if !ok {
		return nil, repository.ErrScreeningNotFound
	}
	return &sc, nil
}

func (s memScreenings) detail(sc model.Screening) model.ScreeningDetail {
	th := s.db.theatres[sc.TheatreID]
	return model.ScreeningDetail{
		Screening:   sc,
		MovieTitle:  s.db.movies[sc.MovieID].Title,
		TheatreName: th.Name,
		ScreenType:  th.ScreenType,
		Currency:    th.Currency,
	}
}

func (s memScreenings) GetDetail(_ context.Context, id uint64) (*model.ScreeningDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sc, ok := s.db.screenings[id]
	if !ok {
		return nil, repository.ErrScreeningNotFound
	}
	d := s.detail(sc)
	return &d, nil
}

func (s memScreenings) FindOverlapping(_ context.Context, theatreID uint64, start, end time.Time, excludeID uint64) ([]model.Screening, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.Screening
	for _, sc := range s.db.screenings {
		if sc.TheatreID == theatreID && sc.IsActive && sc.ID != excludeID && sc.Overlaps(start, end) {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s memScreenings) Update(_ context.Context, sc *model.Screening) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.screenings[sc.ID]; !ok {
		return repository.ErrScreeningNotFound
	}
	s.db.screenings[sc.ID] = *sc
	return nil
}

func (s memScreenings) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.screenings[id]; !ok {
		return repository.ErrScreeningNotFound
	}
	delete(s.db.screenings, id)
	return nil
}

func (s memScreenings) ListUpcoming(_ context.Context, from time.Time, movieID uint64) ([]model.ScreeningDetail, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.ScreeningDetail
	for _, sc := range s.db.screenings {
		if !sc.IsActive || !sc.StartTime.After(from) || (movieID != 0 && sc.MovieID != movieID) {
			continue
		}
		out = append(out, s.detail(sc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// ---- theatres and movies --------------------------------------------------

type memTheatres struct{ db *memDB }

func (s memTheatres) GetByID(_ context.Context, id uint64) (*model.Theatre, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	th, ok := s.db.theatres[id]
	if !ok {
		return nil, repository.ErrTheatreNotFound
	}
	return &th, nil
}

func (s memTheatres) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Theatre, error) {
	return s.GetByID(ctx, id)
}

type memMovies struct{ db *memDB }

func (s memMovies) GetByID(_ context.Context, id uint64) (*model.Movie, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	mv, ok := s.db.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	return &mv, nil
}

// ---- events ---------------------------------------------------------------

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// ---- fixture --------------------------------------------------------------

var (
	testNow  = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	customer = model.Actor{UserID: 100, Role: model.RoleCustomer}
	other    = model.Actor{UserID: 200, Role: model.RoleCustomer}
	admin    = model.Actor{UserID: 1, Role: model.RoleAdmin}
)

type fixture struct {
	db        *memDB
	clock     *fakeClock
	events    *recordingPublisher
	ledger    *BookingService
	schedule  *ScheduleService
	inventory *InventoryService

	movie     model.Movie
	theatre   model.Theatre
	theatre2  model.Theatre
	seats     []model.Seat // A1, A2, A3 in theatre
	farSeat   model.Seat   // A1 in theatre2
	screening model.Screening
	later     model.Screening
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newFixture(t *testing.T, opts ...BookingOption) *fixture {
	t.Helper()
	clock := &fakeClock{now: testNow}
	db := newMemDB(clock.Now)
	f := &fixture{db: db, clock: clock, events: &recordingPublisher{}}

	f.movie = db.addMovie(t, "Arrival")
	f.theatre = db.addTheatre(t, "Hall 1", 1500)
	f.theatre2 = db.addTheatre(t, "Hall 2", 1800)
	for n := uint32(1); n <= 3; n++ {
		f.seats = append(f.seats, db.addSeat(t, f.theatre.ID, "A", n))
	}
	f.farSeat = db.addSeat(t, f.theatre2.ID, "A", 1)
	f.screening = db.addScreening(t, f.movie.ID, f.theatre.ID, testNow.Add(2*time.Hour), testNow.Add(4*time.Hour), 1200)
	f.later = db.addScreening(t, f.movie.ID, f.theatre.ID, testNow.Add(5*time.Hour), testNow.Add(7*time.Hour), 1400)

	f.ledger = NewBookingService(BookingDeps{
		Tx:         db,
		Bookings:   memBookings{db},
		Seats:      memSeats{db},
		Screenings: memScreenings{db},
		Clock:      clock,
		Events:     f.events,
	}, opts...)
	f.schedule = NewScheduleService(ScheduleDeps{
		Tx:         db,
		Screenings: memScreenings{db},
		Theatres:   memTheatres{db},
		Movies:     memMovies{db},
		Bookings:   memBookings{db},
		Clock:      clock,
	})
	f.inventory = NewInventoryService(InventoryDeps{
		Tx:       db,
		Seats:    memSeats{db},
		Theatres: memTheatres{db},
		Bookings: memBookings{db},
	})
	return f
}

func (f *fixture) book(t *testing.T, actor model.Actor, screeningID, seatID uint64) *model.Booking {
	t.Helper()
	b, err := f.ledger.CreateBooking(context.Background(), actor, screeningID, seatID)
	require.NoError(t, err)
	return b
}

func seatIDs(seats []model.Seat) []uint64 {
	out := make([]uint64, 0, len(seats))
	for _, s := range seats {
		out = append(out, s.ID)
	}
	return out
}
