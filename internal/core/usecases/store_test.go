package usecases_test

import (
	"context"
	"sort"
	"sync"

	"github.com/samirrijal/wanderbook/internal/core/domain"
)

// --- In-memory store ---
//
// memStore serialises every operation behind one mutex, which stands in for the row locks
// the Postgres adapter takes. Callbacks run against copies that are only written back when
// they succeed, so a failed callback leaves no partial state.

type memStore struct {
	mu        sync.Mutex
	trips     map[string]*domain.Trip
	bookings  map[string]*domain.Booking
	reviews   map[string]*domain.Review
	enquiries map[string]*domain.Enquiry
}

func newMemStore(trips ...domain.Trip) *memStore {
	s := &memStore{
		trips:     make(map[string]*domain.Trip),
		bookings:  make(map[string]*domain.Booking),
		reviews:   make(map[string]*domain.Review),
		enquiries: make(map[string]*domain.Enquiry),
	}
	for i := range trips {
		t := trips[i]
		s.trips[t.ID] = &t
	}
	return s
}

func (s *memStore) trip(id string) domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.trips[id]
}

func (s *memStore) addBooking(b domain.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = &b
}

type memTrips struct{ *memStore }

func (m memTrips) Create(ctx context.Context, t *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.trips {
		if existing.Slug == t.Slug {
			return domain.NewValidationError("slug", "already in use")
		}
	}
	cp := *t
	m.trips[t.ID] = &cp
	return nil
}

func (m memTrips) Update(ctx context.Context, t *domain.Trip) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.trips[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if err := domain.CheckCapacityEdit(cur, t.MaxParticipants); err != nil {
		return err
	}
	cp := *t
	cp.CurrentParticipants = cur.CurrentParticipants
	cp.Rating = cur.Rating
	cp.ReviewCount = cur.ReviewCount
	m.trips[t.ID] = &cp
	return nil
}

func (m memTrips) SetStatus(ctx context.Context, id string, status domain.TripStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = status
	return nil
}

func (m memTrips) SetCompleted(ctx context.Context, id string, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Completed = completed
	return nil
}

func (m memTrips) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m memTrips) GetBySlug(ctx context.Context, slug string) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m memTrips) List(ctx context.Context, f domain.TripFilter) ([]domain.Trip, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Trip
	for _, t := range m.trips {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f.Offset, f.Limit), len(out), nil
}

func (m memTrips) Mutate(ctx context.Context, id string, fn func(*domain.Trip) error) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	if err := fn(&cp); err != nil {
		return nil, err
	}
	m.trips[id] = &cp
	out := cp
	return &out, nil
}

type memBookings struct{ *memStore }

func (m memBookings) Admit(ctx context.Context, tripID string, b *domain.Booking, admit func(*domain.Trip, *domain.Booking) error) (*domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trips[tripID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	tc := *t
	if err := admit(&tc, b); err != nil {
		return nil, err
	}
	bc := *b
	m.bookings[b.ID] = &bc
	m.trips[tripID] = &tc
	out := tc
	return &out, nil
}

func (m memBookings) Transition(ctx context.Context, id string, fn func(*domain.Booking, *domain.Trip) error) (*domain.Booking, *domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	t, ok := m.trips[b.TripID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	bc, tc := *b, *t
	if err := fn(&bc, &tc); err != nil {
		return nil, nil, err
	}
	m.bookings[id] = &bc
	m.trips[tc.ID] = &tc
	bo, to := bc, tc
	return &bo, &to, nil
}

func (m memBookings) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m memBookings) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if f.TripID != "" && b.TripID != f.TripID {
			continue
		}
		if f.Email != "" && b.Email != f.Email {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f.Offset, f.Limit), len(out), nil
}

func (m memBookings) HasConfirmed(ctx context.Context, email, tripID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.Email == email && b.TripID == tripID && b.Status == domain.BookingConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (m memBookings) CountByStatus(ctx context.Context) (map[domain.BookingStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.BookingStatus]int)
	for _, b := range m.bookings {
		out[b.Status]++
	}
	return out, nil
}

type memReviews struct{ *memStore }

func (m memReviews) Create(ctx context.Context, r *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.reviews[r.ID] = &cp
	return nil
}

func (m memReviews) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m memReviews) List(ctx context.Context, f domain.ReviewFilter) ([]domain.Review, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Review
	for _, r := range m.reviews {
		if f.TripID != "" && r.TripID != f.TripID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f.Offset, f.Limit), len(out), nil
}

func (m memReviews) Moderate(ctx context.Context, id string, fn func(*domain.Review, *domain.Trip) error) (*domain.Review, *domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	t, ok := m.trips[r.TripID]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	rc, tc := *r, *t
	if err := fn(&rc, &tc); err != nil {
		return nil, nil, err
	}
	m.reviews[id] = &rc
	m.trips[tc.ID] = &tc
	ro, to := rc, tc
	return &ro, &to, nil
}

func (m memReviews) CountByStatus(ctx context.Context, status domain.ReviewStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.reviews {
		if r.Status == status {
			n++
		}
	}
	return n, nil
}

type memEnquiries struct{ *memStore }

func (m memEnquiries) Create(ctx context.Context, e *domain.Enquiry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.enquiries[e.ID] = &cp
	return nil
}

func (m memEnquiries) List(ctx context.Context, status domain.EnquiryStatus, offset, limit int) ([]domain.Enquiry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Enquiry
	for _, e := range m.enquiries {
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, offset, limit), len(out), nil
}

func (m memEnquiries) MarkResponded(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enquiries[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = domain.EnquiryResponded
	return nil
}

func (m memEnquiries) CountByStatus(ctx context.Context, status domain.EnquiryStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.enquiries {
		if e.Status == status {
			n++
		}
	}
	return n, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// --- Recording collaborators ---

type recordingPublisher struct {
	mu       sync.Mutex
	bookings []domain.BookingEvent
	reviews  []domain.ReviewEvent
}

func (p *recordingPublisher) PublishBookingEvent(ctx context.Context, e *domain.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bookings = append(p.bookings, *e)
	return nil
}

func (p *recordingPublisher) PublishReviewEvent(ctx context.Context, e *domain.ReviewEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reviews = append(p.reviews, *e)
	return nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
