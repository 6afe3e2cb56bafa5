// Package memory keeps every repository in process memory. It backs the
// "memory" storage driver and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

type membershipRow struct {
	domain.CircuitMembership
	WorkoutID string
}

type memberKey struct{ ClubID, UserID string }

type shareKey struct {
	ClubID      string
	ContentType domain.ContentType
	ContentID   string
}

// Store holds all records behind one lock.
type Store struct {
	mu sync.RWMutex

	programs    map[string]domain.WorkoutProgram
	weeks       map[string]domain.WorkoutWeek
	workouts    map[string]domain.Workout
	exercises   map[string]domain.Exercise
	sets        map[string]domain.Set
	circuits    map[string]domain.Circuit
	memberships map[string]membershipRow // by exercise id

	profiles  map[string]domain.Profile
	purchases map[string]domain.Purchase
	logs      map[string]domain.WorkoutLog

	clubs         map[string]domain.Club
	members       map[memberKey]domain.ClubMember
	events        map[string]domain.ClubEvent
	participants  map[memberKey]domain.EventParticipant // ClubID holds the event id
	posts         map[string]domain.ClubPost
	messages      map[string]domain.ClubMessage
	products      map[string]domain.ClubProduct
	productBuys   map[string]domain.ClubProductPurchase
	subscriptions map[memberKey]domain.ClubSubscription
	shares        map[shareKey]domain.ClubShare

	failures map[string]error
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		programs:      map[string]domain.WorkoutProgram{},
		weeks:         map[string]domain.WorkoutWeek{},
		workouts:      map[string]domain.Workout{},
		exercises:     map[string]domain.Exercise{},
		sets:          map[string]domain.Set{},
		circuits:      map[string]domain.Circuit{},
		memberships:   map[string]membershipRow{},
		profiles:      map[string]domain.Profile{},
		purchases:     map[string]domain.Purchase{},
		logs:          map[string]domain.WorkoutLog{},
		clubs:         map[string]domain.Club{},
		members:       map[memberKey]domain.ClubMember{},
		events:        map[string]domain.ClubEvent{},
		participants:  map[memberKey]domain.EventParticipant{},
		posts:         map[string]domain.ClubPost{},
		messages:      map[string]domain.ClubMessage{},
		products:      map[string]domain.ClubProduct{},
		productBuys:   map[string]domain.ClubProductPurchase{},
		subscriptions: map[memberKey]domain.ClubSubscription{},
		shares:        map[shareKey]domain.ClubShare{},
		failures:      map[string]error{},
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// FailOn makes the named operation (e.g. "sets.create") return err until
// cleared with a nil error.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// fail must be called with s.mu held.
func (s *Store) fail(op string) error {
	return s.failures[op]
}

// WithTransaction runs fn directly. The store has no rollback, so callers
// rely on their compensating deletes.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newID() string {
	return uuid.NewString()
}

var _ repository.Transactor = (*Store)(nil)

func set(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
