package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/annabbc1804/vitamin-bot/internal/domain"
	"github.com/annabbc1804/vitamin-bot/internal/metrics"
)

// States is the in-memory primary copy of every user's DoseState, flushed to a Repo
// after each touch. All access for one user is serialized; different users proceed
// independently.
type States struct {
	repo    Repo
	log     *zap.Logger
	clock   clockwork.Clock
	loc     *time.Location
	metrics *metrics.Recorder

	mu         sync.Mutex // guards states, registered, userLocks
	states     map[int64]domain.DoseState
	registered map[int64]struct{}
	userLocks  map[int64]*sync.Mutex

	saveMu sync.Mutex // orders snapshot+write pairs
}

// Open loads the repository into memory. A failed load is logged and the process
// starts with an empty table.
func Open(ctx context.Context, repo Repo, clock clockwork.Clock, loc *time.Location, log *zap.Logger, m *metrics.Recorder) *States {
	s := &States{
		repo:       repo,
		log:        log,
		clock:      clock,
		loc:        loc,
		metrics:    m,
		states:     make(map[int64]domain.DoseState),
		registered: make(map[int64]struct{}),
		userLocks:  make(map[int64]*sync.Mutex),
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		log.Error("state load failed, starting empty", zap.Error(err))
		return s
	}
	for id, st := range snap.States {
		s.states[id] = st
	}
	for _, id := range snap.Registered {
		s.registered[id] = struct{}{}
	}
	m.SetRegisteredUsers(len(s.registered))
	log.Info("state loaded",
		zap.Int("states", len(s.states)),
		zap.Int("registered", len(s.registered)),
	)
	return s
}

// Now returns the current time in the deployment zone.
func (s *States) Now() time.Time {
	return s.clock.Now().In(s.loc)
}

// Today returns the current calendar date in the deployment zone.
func (s *States) Today() string {
	return domain.DateOf(s.clock.Now(), s.loc)
}

func (s *States) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	return l
}

// Update runs fn on the user's current-day state: it creates a zero state if absent,
// applies the day rollover, calls fn (if non-nil), stores the result and persists.
// The whole sequence holds the user's lock, so fn may perform I/O for that user
// without racing a concurrent Update for the same user.
func (s *States) Update(ctx context.Context, userID int64, fn func(st *domain.DoseState)) domain.DoseState {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	today := s.Today()

	s.mu.Lock()
	st, ok := s.states[userID]
	s.mu.Unlock()
	if !ok {
		st = domain.NewDoseState(today)
	}
	if st.RolloverIfNewDay(today) {
		s.log.Debug("daily state reset", zap.Int64("userID", userID), zap.String("date", today))
	}
	if fn != nil {
		fn(&st)
	}

	s.mu.Lock()
	s.states[userID] = st
	s.mu.Unlock()

	s.persist(ctx)
	return st
}

// Get is the rollover-aware accessor: Update with no mutation. It persists too.
func (s *States) Get(ctx context.Context, userID int64) domain.DoseState {
	return s.Update(ctx, userID, nil)
}

// Register adds userID to the registered set and reports whether it was new.
func (s *States) Register(ctx context.Context, userID int64) bool {
	s.mu.Lock()
	_, known := s.registered[userID]
	if !known {
		s.registered[userID] = struct{}{}
	}
	n := len(s.registered)
	s.mu.Unlock()

	if known {
		return false
	}
	s.metrics.SetRegisteredUsers(n)
	s.persist(ctx)
	return true
}

// Registered returns the registered user ids in ascending order.
func (s *States) Registered() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, 0, len(s.registered))
	for id := range s.registered {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Snapshot copies the in-memory table.
func (s *States) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		States:     make(map[int64]domain.DoseState, len(s.states)),
		Registered: make([]int64, 0, len(s.registered)),
	}
	for id, st := range s.states {
		snap.States[id] = st
	}
	for id := range s.registered {
		snap.Registered = append(snap.Registered, id)
	}
	sort.Slice(snap.Registered, func(i, j int) bool { return snap.Registered[i] < snap.Registered[j] })
	return snap
}

// persist writes the latest snapshot. Failures are logged; memory stays authoritative.
func (s *States) persist(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.repo.Save(ctx, s.Snapshot()); err != nil {
		s.metrics.IncPersistFailure()
		s.log.Error("state save failed", zap.Error(err))
	}
}

// Close flushes the table and closes the repository.
func (s *States) Close(ctx context.Context) error {
	s.persist(ctx)
	return s.repo.Close()
}
