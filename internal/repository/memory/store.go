// Package memory is an in-process implementation of the storage ports.
// It backs DB_DSN=memory:// and the service tests.
//
// One mutex serializes every operation. WithinTx holds it for the whole
// callback and restores a snapshot when the callback fails, so readers
// never see uncommitted writes.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/google/uuid"
)

type slotKey struct {
	timeslotID int64
	date       string
}

type state struct {
	seq int64

	places      map[int64]model.Place
	timeslots   map[int64]model.Timeslot
	bookings    map[int64]model.Booking
	activeSlots map[slotKey]int64 // уникальный индекс (timeslot, date) для активных броней
	connections map[int64]model.Connection
	claims      map[uuid.UUID]model.Claim
	claimGroups map[string]uuid.UUID // group_id -> claim id
	users       map[int64]model.User // telegram_id -> user
	settings    map[string]string
}

func (s *state) clone() *state {
	return &state{
		seq:         s.seq,
		places:      maps.Clone(s.places),
		timeslots:   maps.Clone(s.timeslots),
		bookings:    maps.Clone(s.bookings),
		activeSlots: maps.Clone(s.activeSlots),
		connections: maps.Clone(s.connections),
		claims:      maps.Clone(s.claims),
		claimGroups: maps.Clone(s.claimGroups),
		users:       maps.Clone(s.users),
		settings:    maps.Clone(s.settings),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// Store holds all tables.
type Store struct {
	mu  sync.Mutex
	now func() time.Time
	st  *state
}

// New creates an empty store. now stamps created_at columns.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now: now,
		st: &state{
			places:      make(map[int64]model.Place),
			timeslots:   make(map[int64]model.Timeslot),
			bookings:    make(map[int64]model.Booking),
			activeSlots: make(map[slotKey]int64),
			connections: make(map[int64]model.Connection),
			claims:      make(map[uuid.UUID]model.Claim),
			claimGroups: make(map[string]uuid.UUID),
			users:       make(map[int64]model.User),
			settings:    make(map[string]string),
		},
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// WithinTx implements ports.TxManager.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// lock takes the store mutex unless ctx already runs inside WithinTx.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Places() *PlaceRepository           { return &PlaceRepository{s} }
func (s *Store) Timeslots() *TimeslotRepository     { return &TimeslotRepository{s} }
func (s *Store) Bookings() *BookingRepository       { return &BookingRepository{s} }
func (s *Store) Connections() *ConnectionRepository { return &ConnectionRepository{s} }
func (s *Store) Claims() *ClaimRepository           { return &ClaimRepository{s} }
func (s *Store) Users() *UserRepository             { return &UserRepository{s} }
func (s *Store) Settings() *SettingsRepository      { return &SettingsRepository{s} }
