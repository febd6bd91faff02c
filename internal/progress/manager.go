package progress

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/catalog"
	"github.com/example/ott-platform/internal/identity"
)

// Entry is a continue-watching row: a progress record joined with the
// catalog record it points at.
type Entry struct {
	Record  Record
	Content catalog.ContentRecord
}

// ManagerOptions wires a Manager. Local and Catalog are required. Remote may
// be nil when the app runs without an authenticated backend; Identity may be
// nil for an always-anonymous session; Logger defaults to a no-op.
type ManagerOptions struct {
	Remote   Store
	Local    Store
	Catalog  catalog.Catalog
	Identity identity.Watcher
	Logger   *zap.Logger
}

// Manager owns the in-memory continue-watching list for the active owner and
// mediates every read and write against the backing store. Observers read
// the list and subscribe for change notifications; they never mutate it.
//
// Store failures never escape: reads degrade to an empty list, writes to a
// no-op, both logged. Worst case the row renders empty and playback starts
// from zero.
type Manager struct {
	remote  Store
	local   Store
	catalog catalog.Catalog
	ident   identity.Watcher
	log     *zap.Logger

	mu      sync.Mutex
	owner   string
	authed  bool
	gen     uint64
	entries []Entry
	// positions retains the last position seen this session for every
	// content id, including ones that completed and left the list. GetProgress
	// serves from here so a "watch again" still resumes.
	positions map[string]int

	observers map[int]func()
	nextObs   int
	unsub     func()
}

func NewManager(opts ManagerOptions) *Manager {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		remote:    opts.Remote,
		local:     opts.Local,
		catalog:   opts.Catalog,
		ident:     opts.Identity,
		log:       log,
		positions: make(map[string]int),
		observers: make(map[int]func()),
	}
	if m.ident != nil {
		m.unsub = m.ident.OnChange(func() {
			// Reload under the new identity; the generation guard discards
			// any load still in flight for the previous owner.
			m.Refresh(context.Background())
		})
	}
	return m
}

// Close detaches the manager from the identity watcher.
func (m *Manager) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

// ContinueWatching returns a snapshot of the current list.
func (m *Manager) ContinueWatching() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// GetProgress returns the last known position for contentID, or 0 when
// unknown. It is a synchronous read against cached state only: it sits on
// the player-mount hot path and must never wait on the store. Episodes may
// be referenced by the record's content id or the joined record's id.
func (m *Manager) GetProgress(contentID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.positions[contentID]; ok {
		return p
	}
	for _, e := range m.entries {
		if e.Content.ID == contentID {
			return e.Record.ProgressSeconds
		}
	}
	return 0
}

// UpdateProgress persists a playback position and refreshes the list.
// Callers are expected to throttle to roughly one call per 10 seconds of
// playback (see package playback); the manager itself stays correct at any
// call rate, it just writes more.
func (m *Manager) UpdateProgress(ctx context.Context, contentID string, progressSeconds, durationSeconds int) {
	if contentID == "" {
		return
	}
	if progressSeconds < 0 {
		progressSeconds = 0
	}

	owner, authed := m.currentOwner()
	if err := m.storeFor(authed).Upsert(ctx, owner, contentID, progressSeconds, durationSeconds); err != nil {
		m.log.Warn("progress upsert failed; position kept in memory only",
			zap.String("content_id", contentID), zap.Error(err))
	}

	// The identity may have switched while the upsert was in flight. A
	// position written under the old identity must not land in the new
	// owner's session state.
	m.mu.Lock()
	if m.identityStill(owner, authed) {
		m.positions[contentID] = progressSeconds
	}
	m.mu.Unlock()

	m.Refresh(ctx)
}

// RemoveFromContinueWatching deletes the record and refreshes. Safe to call
// twice; the second call is a no-op.
func (m *Manager) RemoveFromContinueWatching(ctx context.Context, contentID string) {
	owner, authed := m.currentOwner()
	if err := m.storeFor(authed).Remove(ctx, owner, contentID); err != nil {
		m.log.Warn("progress remove failed", zap.String("content_id", contentID), zap.Error(err))
	}

	m.mu.Lock()
	if m.identityStill(owner, authed) {
		delete(m.positions, contentID)
	}
	m.mu.Unlock()

	m.Refresh(ctx)
}

// Refresh reloads the list from the backend for the current owner. A refresh
// that loses the race to a newer one (or to an identity switch) discards its
// result instead of overwriting fresher state.
func (m *Manager) Refresh(ctx context.Context) {
	// Owner and generation are read in one critical section: a refresh that
	// observed the previous owner can never claim the newest generation.
	m.mu.Lock()
	owner, authed := m.currentOwner()
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	recs, err := m.storeFor(authed).LoadRecent(ctx, owner)
	if err != nil {
		m.log.Warn("continue watching load failed; showing empty list", zap.Error(err))
		recs = nil
	}
	entries := m.join(ctx, recs)

	m.mu.Lock()
	if gen != m.gen || !m.identityStill(owner, authed) {
		m.mu.Unlock()
		return
	}
	if owner != m.owner || authed != m.authed {
		// Identity switched: the previous owner's session positions must not
		// leak into this one.
		m.positions = make(map[string]int)
		m.owner = owner
		m.authed = authed
	}
	m.entries = entries
	for _, e := range entries {
		m.positions[e.Record.ContentID] = e.Record.ProgressSeconds
	}
	fns := make([]func(), 0, len(m.observers))
	for _, fn := range m.observers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribe registers fn to run after every applied state change. The
// returned function unsubscribes.
func (m *Manager) Subscribe(fn func()) func() {
	m.mu.Lock()
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// join resolves records against the catalog. Records whose title is gone
// from the catalog are dropped rather than rendered with missing data.
func (m *Manager) join(ctx context.Context, recs []Record) []Entry {
	entries := make([]Entry, 0, len(recs))
	for _, r := range recs {
		c, ok, err := m.catalog.FindByID(ctx, r.ContentID)
		if err != nil {
			m.log.Warn("catalog lookup failed", zap.String("content_id", r.ContentID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		entries = append(entries, Entry{Record: r, Content: c})
		if len(entries) == ListCap {
			break
		}
	}
	return entries
}

func (m *Manager) currentOwner() (string, bool) {
	if m.ident == nil {
		return "", false
	}
	return m.ident.CurrentOwner()
}

// identityStill reports whether the identity captured at the start of an
// operation is still the active one. Callers hold m.mu.
func (m *Manager) identityStill(owner string, authed bool) bool {
	o, a := m.currentOwner()
	return o == owner && a == authed
}

func (m *Manager) storeFor(authed bool) Store {
	if authed && m.remote != nil {
		return m.remote
	}
	return m.local
}
