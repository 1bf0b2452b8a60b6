// Package checklist owns the in-memory collection of checklists. Every
// mutation re-establishes the ordering invariant and writes the whole
// collection through the persistence port before observers are notified.
package checklist

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/ordering"
	"github.com/idilsaglam/checklist/internal/persist"
)

var tracer = otel.Tracer("github.com/idilsaglam/checklist/internal/checklist")

// ErrNotReady is returned by mutations issued before the initial load has
// finished (or while FetchLists is reloading).
var ErrNotReady = errors.New("checklist store is loading")

// Phase is the store lifecycle.
type Phase int

const (
	Loading Phase = iota
	Ready
)

func (p Phase) String() string {
	if p == Ready {
		return "ready"
	}
	return "loading"
}

// Snapshot is a deep copy of the store state handed to observers.
type Snapshot struct {
	Phase Phase
	Lists []model.CheckList
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the task id generator.
func WithIDs(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store is the authoritative checklist collection. Construct with New, then
// call Load before issuing mutations.
type Store struct {
	persist persist.Persistence
	log     *slog.Logger
	now     func() time.Time
	newID   func() string

	mu    sync.RWMutex
	lists []model.CheckList
	phase Phase

	ready     chan struct{}
	readyOnce sync.Once

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// New returns a store in the Loading phase.
func New(p persist.Persistence, opts ...Option) *Store {
	s := &Store{
		persist: p,
		log:     slog.Default(),
		now:     time.Now,
		newID:   uuid.NewString,
		lists:   []model.CheckList{},
		phase:   Loading,
		ready:   make(chan struct{}),
		subs:    make(map[int]func(Snapshot)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load reads the collection through the persistence port and moves the store
// to Ready. Backend failures resolve to an empty collection.
func (s *Store) Load(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "Store.Load")
	defer span.End()

	s.mu.Lock()
	s.phase = Loading
	s.mu.Unlock()

	lists := s.persist.Load(ctx)
	if lists == nil {
		lists = []model.CheckList{}
	}
	ordering.Normalize(lists)

	s.mu.Lock()
	s.lists = lists
	s.phase = Ready
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	span.SetAttributes(attribute.Int("lists.count", len(lists)))
	s.log.Debug("checklists loaded", slog.Int("count", len(lists)))
	s.notify(snap)
}

// FetchLists re-runs the load path and replaces the in-memory collection.
func (s *Store) FetchLists(ctx context.Context) { s.Load(ctx) }

// Phase reports the current lifecycle phase.
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Ready is closed once the first load completes.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Lists returns a deep copy of the collection in canonical order.
func (s *Store) Lists() []model.CheckList {
	return s.Snapshot().Lists
}

// GetListBySlug looks a list up. ok is false when there is none.
func (s *Store) GetListBySlug(slug string) (model.CheckList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(slug); i >= 0 {
		return s.lists[i].Clone(), true
	}
	return model.CheckList{}, false
}

// Subscribe registers fn to receive a snapshot after every load and every
// successful mutation. fn runs on the mutating goroutine after the store lock
// is released. The returned func unregisters it.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// mutate runs fn under the write lock. When fn reports a change the
// collection is re-sorted, persisted and observers are notified.
func (s *Store) mutate(ctx context.Context, op string, attrs []attribute.KeyValue, fn func() (bool, error)) error {
	ctx, span := tracer.Start(ctx, "Store."+op, trace.WithAttributes(attrs...))
	defer span.End()

	s.mu.Lock()
	if s.phase != Ready {
		s.mu.Unlock()
		span.SetStatus(codes.Error, ErrNotReady.Error())
		return ErrNotReady
	}
	changed, err := fn()
	if err != nil {
		s.mu.Unlock()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if !changed {
		s.mu.Unlock()
		span.SetAttributes(attribute.Bool("changed", false))
		return nil
	}
	ordering.Normalize(s.lists)
	s.persist.Save(ctx, s.lists)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	span.SetAttributes(attribute.Bool("changed", true))
	s.notify(snap)
	return nil
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Phase: s.phase, Lists: model.CloneAll(s.lists)}
}

func (s *Store) indexLocked(slug string) int {
	for i := range s.lists {
		if s.lists[i].Slug == slug {
			return i
		}
	}
	return -1
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}
