package session

import (
	"context"
	"sync"
	"time"

	"launchdash/domain/core"
	"launchdash/domain/launch"
	"launchdash/internal"
	"launchdash/internal/errors"
	"launchdash/internal/metrics"
	"launchdash/internal/query"
)

// Publisher pushes views to whatever renders them for a session
type Publisher interface {
	Publish(sessionID string, generation uint64, views launch.Views)
	// Release drops everything held for a session that has ended
	Release(sessionID string)
}

// Session is one browser's SelectionState plus the newest views computed for it
type Session struct {
	ID        core.SessionID
	CreatedAt time.Time

	mu        sync.Mutex
	state     launch.SelectionState // selection the held views were computed from
	pending   launch.SelectionState // selection after the latest state change
	issued    uint64                // generation handed to the latest state change
	published uint64                // generation of views currently held
	aborted   uint64                // newest generation whose recomputation failed
	views     launch.Views
	lastSeen  time.Time
}

// Snapshot is a consistent copy of a session's state and views
type Snapshot struct {
	ID         core.SessionID        `json:"id"`
	State      launch.SelectionState `json:"state"`
	Generation uint64                `json:"generation"`
	Views      launch.Views          `json:"views"`
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{ID: s.ID, State: s.state, Generation: s.published, Views: s.views}
}

// begin applies change to the pending selection under the lock and hands out
// the next generation. The committed state is untouched until commit.
func (s *Session) begin(change func(*launch.SelectionState)) (launch.SelectionState, uint64, launch.Views) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change(&s.pending)
	s.issued++
	s.lastSeen = time.Now()
	return s.pending, s.issued, s.views
}

// commit stores views and the selection they were computed from, unless a
// newer generation has already been stored. It reports whether views were kept.
func (s *Session) commit(generation uint64, views launch.Views) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation <= s.published {
		return false
	}
	s.published = generation
	s.state = views.Selection
	s.views = views
	if s.issued <= s.aborted {
		s.pending = s.state
	}
	return true
}

// abort drops a failed change. When no newer change was issued the pending
// selection falls back to the committed one.
func (s *Session) abort(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation > s.aborted {
		s.aborted = generation
	}
	if generation == s.issued {
		s.pending = s.state
	}
}

// Manager owns every live session
type Manager struct {
	engine     *query.Engine
	dispatcher *Dispatcher
	publisher  Publisher
	metrics    *metrics.Metrics
	logger     *internal.Logger

	mu       sync.RWMutex
	sessions map[core.SessionID]*Session
}

// NewManager creates a session manager. publisher and m may be nil.
func NewManager(engine *query.Engine, publisher Publisher, m *metrics.Metrics) *Manager {
	return &Manager{
		engine:     engine,
		dispatcher: NewDispatcher(engine),
		publisher:  publisher,
		metrics:    m,
		logger:     internal.DefaultLogger.WithComponent("Sessions"),
		sessions:   make(map[core.SessionID]*Session),
	}
}

// Dispatcher returns the channel/view subscription table
func (m *Manager) Dispatcher() *Dispatcher {
	return m.dispatcher
}

// Create starts a session at the default selection with both views computed
func (m *Manager) Create(ctx context.Context) (Snapshot, error) {
	now := time.Now()
	s := &Session{
		ID:        core.NewSessionID(),
		CreatedAt: now,
		pending:   m.engine.Dataset().DefaultSelection(),
		lastSeen:  now,
	}

	views, err := m.dispatcher.Dispatch(ctx, ChannelSite, s.pending, launch.Views{})
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "failed to compute initial views")
	}
	s.issued = 1
	s.commit(1, views)

	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetActiveSessions(count)
	m.logger.Debug("Created session %s (%d active)", s.ID, count)
	return s.snapshot(), nil
}

// Get returns the current snapshot of a session
func (m *Manager) Get(id core.SessionID) (Snapshot, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return s.snapshot(), nil
}

// SetSite handles the site channel: unknown sites select AllSites
func (m *Manager) SetSite(ctx context.Context, id core.SessionID, site string) (Snapshot, error) {
	ds := m.engine.Dataset()
	return m.update(ctx, id, ChannelSite, func(state *launch.SelectionState) {
		state.SelectedSite = site
		*state = query.Normalize(ds, *state)
	})
}

// SetPayloadRange handles the payload channel: the range is clamped to the dataset
func (m *Manager) SetPayloadRange(ctx context.Context, id core.SessionID, r launch.PayloadRange) (Snapshot, error) {
	ds := m.engine.Dataset()
	return m.update(ctx, id, ChannelPayload, func(state *launch.SelectionState) {
		state.PayloadRange = r
		*state = query.Normalize(ds, *state)
	})
}

// update applies one state change, recomputes the subscribed views and keeps
// the result only if no newer change has published meanwhile.
func (m *Manager) update(ctx context.Context, id core.SessionID, ch Channel, change func(*launch.SelectionState)) (Snapshot, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	m.metrics.SelectionChanged(string(ch))

	state, generation, prev := s.begin(change)

	start := time.Now()
	views, err := m.dispatcher.Dispatch(ctx, ch, state, prev)
	if err != nil {
		s.abort(generation)
		return Snapshot{}, errors.Wrapf(err, "failed to recompute views for %s change", ch)
	}
	m.metrics.ObserveRecompute(time.Since(start))

	if s.commit(generation, views) {
		m.logger.Trace("Session %s generation %d published after %s change", id, generation, ch)
		if m.publisher != nil {
			m.publisher.Publish(string(id), generation, views)
		}
	} else {
		m.metrics.StaleDiscarded()
		m.logger.Debug("Session %s generation %d superseded, discarding", id, generation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

func (m *Manager) lookup(id core.SessionID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.NotFound("session " + id.String())
	}
	return s, nil
}

// Exists reports whether id names a live session
func (m *Manager) Exists(id core.SessionID) bool {
	_, err := m.lookup(id)
	return err == nil
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Expire drops sessions idle for longer than ttl and returns how many went
func (m *Manager) Expire(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	m.mu.Lock()
	var expired []core.SessionID
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			expired = append(expired, id)
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if m.publisher != nil {
		for _, id := range expired {
			m.publisher.Release(id.String())
		}
	}

	removed := len(expired)
	if removed > 0 {
		m.metrics.SetActiveSessions(count)
		m.logger.Info("Expired %d idle sessions (%d active)", removed, count)
	}
	return removed
}

// RunJanitor expires idle sessions every interval until ctx is done
func (m *Manager) RunJanitor(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Expire(ttl)
		}
	}
}
