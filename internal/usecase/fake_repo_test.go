package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory ledger with the same per-event locking contract as
// the Postgres repository.
type memStore struct {
	mu       sync.Mutex
	events   map[uuid.UUID]*entity.Event
	bookings map[uuid.UUID]*entity.Booking
	users    map[uuid.UUID]*entity.User
	sessions map[string]*entity.Session
	locks    map[uuid.UUID]*sync.Mutex

	// transient makes the next N lock attempts fail with ErrTransient.
	transient int
	lockCalls int
}

func newMemStore() *memStore {
	return &memStore{
		events:   map[uuid.UUID]*entity.Event{},
		bookings: map[uuid.UUID]*entity.Booking{},
		users:    map[uuid.UUID]*entity.User{},
		sessions: map[string]*entity.Session{},
		locks:    map[uuid.UUID]*sync.Mutex{},
	}
}

func (m *memStore) repository() *repository.Repository {
	return &repository.Repository{
		User:    &memUserRepo{m},
		Session: &memSessionRepo{m},
		Event:   &memEventRepo{m},
		Booking: &memBookingRepo{m},
	}
}

func (m *memStore) lockFor(id uuid.UUID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

func (m *memStore) takeTransient() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lockCalls++
	if m.transient > 0 {
		m.transient--
		return true
	}
	return false
}

func (m *memStore) addEvent(capacity int, price string) *entity.Event {
	now := time.Now().UTC()
	event := &entity.Event{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Title:     "Concert",
		StartsAt:  now.Add(48 * time.Hour),
		Capacity:  capacity,
		UnitPrice: decimal.RequireFromString(price),
		Status:    entity.EventStatusPublished,
	}

	m.mu.Lock()
	m.events[event.ID] = event
	m.mu.Unlock()
	return event
}

func (m *memStore) confirmed(eventID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	sum := 0
	for _, b := range m.bookings {
		if b.EventID == eventID && b.IsConfirmed() {
			sum += b.TicketCount
		}
	}
	return sum
}

type memEventRepo struct{ m *memStore }

func (r *memEventRepo) Create(_ context.Context, event *entity.Event) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	cp := *event
	r.m.events[event.ID] = &cp
	return nil
}

func (r *memEventRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Event, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	event, ok := r.m.events[id]
	if !ok || event.IsDeleted() {
		return nil, nil
	}
	cp := *event
	return &cp, nil
}

func (r *memEventRepo) UpdatePrice(_ context.Context, id uuid.UUID, price decimal.Decimal, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	event, ok := r.m.events[id]
	if !ok {
		return fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
	}
	event.UnitPrice = price
	event.UpdatedAt = at
	return nil
}

func (r *memEventRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.EventStatus, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	event, ok := r.m.events[id]
	if !ok {
		return fmt.Errorf("event %s: %w", id, repository.ErrNotFound)
	}
	event.Status = status
	event.UpdatedAt = at
	return nil
}

type memBookingRepo struct{ m *memStore }

type memEventLedger struct {
	m       *memStore
	event   *entity.Event
	pending []*entity.Booking
	newCap  int
}

func (l *memEventLedger) Event() *entity.Event { return l.event }

func (l *memEventLedger) ConfirmedTickets(context.Context) (int, error) {
	return l.m.confirmed(l.event.ID), nil
}

func (l *memEventLedger) InsertBooking(_ context.Context, booking *entity.Booking) error {
	if booking.EventID != l.event.ID {
		return fmt.Errorf("booking for event %s inserted under lock of %s", booking.EventID, l.event.ID)
	}
	l.pending = append(l.pending, booking)
	return nil
}

func (l *memEventLedger) SetCapacity(_ context.Context, capacity int, _ time.Time) error {
	l.newCap = capacity
	return nil
}

func (r *memBookingRepo) LockEvent(ctx context.Context, eventID uuid.UUID, fn func(ctx context.Context, ledger repository.EventLedger) error) error {
	if r.m.takeTransient() {
		return fmt.Errorf("lock event: %w", repository.ErrTransient)
	}

	lock := r.m.lockFor(eventID)
	lock.Lock()
	defer lock.Unlock()

	r.m.mu.Lock()
	event, ok := r.m.events[eventID]
	var snapshot entity.Event
	if ok {
		snapshot = *event
	}
	r.m.mu.Unlock()
	if !ok || snapshot.IsDeleted() {
		return fmt.Errorf("event %s: %w", eventID, repository.ErrNotFound)
	}

	ledger := &memEventLedger{m: r.m, event: &snapshot}
	if err := fn(ctx, ledger); err != nil {
		return err
	}

	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, b := range ledger.pending {
		cp := *b
		r.m.bookings[b.ID] = &cp
	}
	if ledger.newCap > 0 {
		r.m.events[eventID].Capacity = ledger.newCap
	}
	return nil
}

type memBookingLedger struct {
	booking *entity.Booking
	saved   bool
}

func (l *memBookingLedger) Booking() *entity.Booking { return l.booking }

func (l *memBookingLedger) SaveStatus(context.Context) error {
	l.saved = true
	return nil
}

func (r *memBookingRepo) LockBooking(ctx context.Context, bookingID uuid.UUID, fn func(ctx context.Context, ledger repository.BookingLedger) error) error {
	if r.m.takeTransient() {
		return fmt.Errorf("lock booking: %w", repository.ErrTransient)
	}

	lock := r.m.lockFor(bookingID)
	lock.Lock()
	defer lock.Unlock()

	r.m.mu.Lock()
	stored, ok := r.m.bookings[bookingID]
	var snapshot entity.Booking
	if ok {
		snapshot = *stored
	}
	r.m.mu.Unlock()
	if !ok {
		return fmt.Errorf("booking %s: %w", bookingID, repository.ErrNotFound)
	}

	ledger := &memBookingLedger{booking: &snapshot}
	if err := fn(ctx, ledger); err != nil {
		return err
	}

	if ledger.saved {
		r.m.mu.Lock()
		r.m.bookings[bookingID].Status = snapshot.Status
		r.m.bookings[bookingID].UpdatedAt = snapshot.UpdatedAt
		r.m.mu.Unlock()
	}
	return nil
}

func (r *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	b, ok := r.m.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *memBookingRepo) filter(keep func(*entity.Booking) bool) []*entity.Booking {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []*entity.Booking
	for _, b := range r.m.bookings {
		if keep(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	all := r.filter(func(b *entity.Booking) bool { return b.UserID == userID })
	if offset >= len(all) {
		return []*entity.Booking{}, nil
	}
	end := min(len(all), offset+limit)
	return all[offset:end], nil
}

func (r *memBookingRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(r.filter(func(b *entity.Booking) bool { return b.UserID == userID }))), nil
}

func (r *memBookingRepo) FindByEventID(_ context.Context, eventID uuid.UUID) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool { return b.EventID == eventID }), nil
}

func (r *memBookingRepo) FindByDateRange(_ context.Context, from, to time.Time) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool {
		return !b.CreatedAt.Before(from) && b.CreatedAt.Before(to)
	}), nil
}

func (r *memBookingRepo) SumConfirmedByEventID(_ context.Context, eventID uuid.UUID) (int, error) {
	return r.m.confirmed(eventID), nil
}

type memUserRepo struct{ m *memStore }

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	cp := *user
	r.m.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type memSessionRepo struct{ m *memStore }

func (r *memSessionRepo) Create(_ context.Context, session *entity.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	cp := *session
	r.m.sessions[session.Token.String()] = &cp
	return nil
}

func (r *memSessionRepo) FindValidSession(_ context.Context, token string) (*entity.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	s, ok := r.m.sessions[token]
	if !ok || !s.IsActive(time.Now()) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) Revoke(_ context.Context, token string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	s, ok := r.m.sessions[token]
	if !ok || s.RevokedAt != nil {
		return fmt.Errorf("session: %w", repository.ErrNotFound)
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

// memIdempotency mirrors the Redis claim/complete/release protocol.
type memIdempotency struct {
	mu   sync.Mutex
	keys map[string]uuid.UUID
	err  error
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{keys: map[string]uuid.UUID{}}
}

func (i *memIdempotency) Claim(_ context.Context, userID uuid.UUID, key string) (uuid.UUID, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.err != nil {
		return uuid.Nil, false, i.err
	}

	k := userID.String() + ":" + key
	id, ok := i.keys[k]
	if !ok {
		i.keys[k] = uuid.Nil
		return uuid.Nil, true, nil
	}
	if id == uuid.Nil {
		return uuid.Nil, false, repository.ErrKeyInFlight
	}
	return id, false, nil
}

func (i *memIdempotency) Complete(_ context.Context, userID uuid.UUID, key string, bookingID uuid.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.keys[userID.String()+":"+key] = bookingID
	return nil
}

func (i *memIdempotency) Release(_ context.Context, userID uuid.UUID, key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.keys, userID.String()+":"+key)
	return nil
}
