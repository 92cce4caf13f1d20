// Package coordinator keeps a client-side copy of a server listing and
// applies mutations to it before the server confirms them, rolling back on
// failure.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"
)

var (
	// ErrMutationInFlight is returned when a mutation is dispatched for an
	// entity that already has one pending.
	ErrMutationInFlight = errors.New("a mutation for this entity is already in flight")

	// ErrNotLoaded is returned when mutating an entity absent from local state.
	ErrNotLoaded = errors.New("entity is not in the local listing")
)

// MutationState is the lifecycle of the latest mutation on one entity.
type MutationState int

const (
	StateIdle MutationState = iota
	StatePending
	StateSucceeded
	StateFailed
)

func (s MutationState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// EventKind classifies a change notification.
type EventKind int

const (
	EventLoaded EventKind = iota
	EventStatsLoaded
	EventMutation
)

// Event is sent to subscribers after every local state change.
type Event struct {
	Kind  EventKind
	ID    string
	State MutationState
	Err   error
}

// Page is one server listing.
type Page[T any] struct {
	Items []T
	Total int
}

// Options wires a Store to its server calls.
type Options[T any, F any, S any] struct {
	// ID returns the entity identifier.
	ID func(T) string
	// List fetches one listing.
	List func(ctx context.Context, filter F) (Page[T], error)
	// FilterKey normalizes a filter; identical keys share one in-flight fetch.
	FilterKey func(F) string
	// Stats fetches the aggregate counters. Optional.
	Stats func(ctx context.Context) (S, error)
	// CloneStats deep-copies the counters. Required when S holds slices or
	// maps, otherwise views share memory with the store.
	CloneStats func(S) S
}

// View is an immutable copy of the local state.
type View[T any, S any] struct {
	Items   []T
	Total   int
	Stats   S
	Loading bool
}

// Store holds one listing plus aggregate counters and coordinates optimistic
// mutations against it. Only one mutation per entity may be in flight.
type Store[T any, F any, S any] struct {
	opts Options[T, F, S]

	mu      sync.Mutex
	items   []T
	total   int
	stats   S
	loading int
	states  map[string]MutationState
	subs    map[int]chan Event
	nextSub int

	fetches singleflight.Group
}

// New creates an empty Store.
func New[T any, F any, S any](opts Options[T, F, S]) *Store[T, F, S] {
	return &Store[T, F, S]{
		opts:   opts,
		states: make(map[string]MutationState),
		subs:   make(map[int]chan Event),
	}
}

// Subscribe returns a channel of change notifications and a function that
// unsubscribes. Events are dropped for subscribers that fall behind.
func (s *Store[T, F, S]) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// publish must be called with s.mu held.
func (s *Store[T, F, S]) publish(e Event) {
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// View returns a copy of the current local state.
func (s *Store[T, F, S]) View() View[T, S] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View[T, S]{
		Items:   slices.Clone(s.items),
		Total:   s.total,
		Stats:   s.cloneStatsLocked(),
		Loading: s.loading > 0,
	}
}

// State returns the mutation state of one entity.
func (s *Store[T, F, S]) State(id string) MutationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[id]
}

// Fetch replaces the listing with the server's. Concurrent fetches for the
// same normalized filter share one request.
func (s *Store[T, F, S]) Fetch(ctx context.Context, filter F) error {
	key := fmt.Sprint(filter)
	if s.opts.FilterKey != nil {
		key = s.opts.FilterKey(filter)
	}

	s.mu.Lock()
	s.loading++
	s.mu.Unlock()

	v, err, _ := s.fetches.Do(key, func() (any, error) {
		return s.opts.List(ctx, filter)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--
	if err != nil {
		return fmt.Errorf("fetch listing: %w", err)
	}

	page := v.(Page[T])
	s.items = slices.Clone(page.Items)
	s.total = page.Total
	s.publish(Event{Kind: EventLoaded})
	return nil
}

// RefreshStats replaces the aggregate counters with the server's.
func (s *Store[T, F, S]) RefreshStats(ctx context.Context) error {
	if s.opts.Stats == nil {
		return nil
	}

	v, err, _ := s.fetches.Do("\x00stats", func() (any, error) {
		return s.opts.Stats(ctx)
	})
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = v.(S)
	s.publish(Event{Kind: EventStatsLoaded})
	return nil
}

// Create dispatches call and inserts the confirmed entity at the front of the
// listing. Counters are adjusted before the server answers.
func (s *Store[T, F, S]) Create(ctx context.Context, adjust func(*S), call func(context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	s.total++
	if adjust != nil {
		adjust(&s.stats)
	}
	s.mu.Unlock()

	created, err := call(ctx)

	s.mu.Lock()
	if err != nil {
		s.total--
		s.publish(Event{Kind: EventMutation, State: StateFailed, Err: err})
		s.mu.Unlock()
		s.resync(ctx)
		var zero T
		return zero, err
	}

	id := s.opts.ID(created)
	if i := s.indexLocked(id); i >= 0 {
		// A fetch finished first and already holds the server's row.
		s.items[i] = created
	} else {
		s.items = slices.Insert(s.items, 0, created)
	}
	s.states[id] = StateSucceeded
	s.publish(Event{Kind: EventMutation, ID: id, State: StateSucceeded})
	s.mu.Unlock()
	return created, nil
}

// Update applies change to the local entity, dispatches call, and then either
// replaces the entity with the server's copy or restores the snapshot.
func (s *Store[T, F, S]) Update(
	ctx context.Context,
	id string,
	change func(T) T,
	adjust func(stats *S, before, after T),
	call func(context.Context) (T, error),
) (T, error) {
	var zero T

	s.mu.Lock()
	idx, err := s.beginLocked(id)
	if err != nil {
		s.mu.Unlock()
		return zero, err
	}
	snapshot := s.items[idx]
	optimistic := change(snapshot)
	s.items[idx] = optimistic
	if adjust != nil {
		adjust(&s.stats, snapshot, optimistic)
	}
	s.publish(Event{Kind: EventMutation, ID: id, State: StatePending})
	s.mu.Unlock()

	confirmed, err := call(ctx)

	s.mu.Lock()
	if err != nil {
		if i := s.indexLocked(id); i >= 0 {
			s.items[i] = snapshot
		}
		s.finishLocked(id, err)
		s.mu.Unlock()
		s.resync(ctx)
		return zero, err
	}

	if i := s.indexLocked(id); i >= 0 {
		s.items[i] = confirmed
	}
	s.finishLocked(id, nil)
	s.mu.Unlock()
	return confirmed, nil
}

// Delete removes the entity locally, dispatches call, and reinserts the
// snapshot at its original position if the server refuses.
func (s *Store[T, F, S]) Delete(ctx context.Context, id string, adjust func(*S, T), call func(context.Context) error) error {
	s.mu.Lock()
	idx, err := s.beginLocked(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.items[idx]
	s.items = slices.Delete(s.items, idx, idx+1)
	s.total--
	if adjust != nil {
		adjust(&s.stats, snapshot)
	}
	s.publish(Event{Kind: EventMutation, ID: id, State: StatePending})
	s.mu.Unlock()

	err = call(ctx)

	s.mu.Lock()
	if err != nil {
		if s.indexLocked(id) < 0 {
			s.items = slices.Insert(s.items, min(idx, len(s.items)), snapshot)
			s.total++
		}
		s.finishLocked(id, err)
		s.mu.Unlock()
		s.resync(ctx)
		return err
	}
	// A fetch that raced the delete may have restored the row.
	if i := s.indexLocked(id); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
		s.total--
	}
	s.finishLocked(id, nil)
	s.mu.Unlock()
	return nil
}

func (s *Store[T, F, S]) beginLocked(id string) (int, error) {
	if s.states[id] == StatePending {
		return -1, ErrMutationInFlight
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotLoaded, id)
	}
	s.states[id] = StatePending
	return idx, nil
}

func (s *Store[T, F, S]) finishLocked(id string, err error) {
	state := StateSucceeded
	if err != nil {
		state = StateFailed
	}
	s.states[id] = state
	s.publish(Event{Kind: EventMutation, ID: id, State: state, Err: err})
}

func (s *Store[T, F, S]) cloneStatsLocked() S {
	if s.opts.CloneStats == nil {
		return s.stats
	}
	return s.opts.CloneStats(s.stats)
}

func (s *Store[T, F, S]) indexLocked(id string) int {
	return slices.IndexFunc(s.items, func(item T) bool { return s.opts.ID(item) == id })
}

// resync refetches the counters after a failed mutation instead of undoing
// the optimistic arithmetic.
func (s *Store[T, F, S]) resync(ctx context.Context) {
	if err := s.RefreshStats(ctx); err != nil {
		slog.Warn("stats resync after failed mutation", "error", err)
	}
}
