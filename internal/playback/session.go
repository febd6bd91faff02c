package playback

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/autoplay"
	"github.com/example/ott-platform/internal/catalog"
	"github.com/example/ott-platform/internal/progress"
)

// defaultSaveSeconds is how far playback must advance between persisted
// positions. The player emits time updates several times a second; writing
// each one through would hammer the store for no benefit.
const defaultSaveSeconds = 10

// SessionOptions configures a single playback session.
type SessionOptions struct {
	ContentID string
	Progress  *progress.Manager
	Sequencer *autoplay.Sequencer
	Logger    *zap.Logger

	// OnNext receives the episode the player should switch to when the
	// post-credits countdown fires.
	OnNext func(next catalog.ContentRecord)

	// SaveSeconds overrides the persist interval; zero keeps the default.
	SaveSeconds int
}

// Session translates raw player events into progress writes and autoplay.
// One Session per loaded title; Close it when the player tears down.
type Session struct {
	contentID string
	mgr       *progress.Manager
	seq       *autoplay.Sequencer
	logger    *zap.Logger
	onNext    func(catalog.ContentRecord)
	saveEvery int

	mu        sync.Mutex
	duration  int
	position  int
	lastSaved int
	saved     bool
	resume    int
	countdown *autoplay.Countdown
	closed    bool
}

// NewSession captures the resume position for the title up front so the
// player can seek before the first time update arrives.
func NewSession(opts SessionOptions) *Session {
	s := &Session{
		contentID: opts.ContentID,
		mgr:       opts.Progress,
		seq:       opts.Sequencer,
		logger:    opts.Logger,
		onNext:    opts.OnNext,
		saveEvery: opts.SaveSeconds,
	}
	if s.saveEvery <= 0 {
		s.saveEvery = defaultSaveSeconds
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.resume = s.mgr.GetProgress(s.contentID)
	return s
}

// ResumePosition is where the player should seek to before starting, in
// seconds. Zero means play from the beginning.
func (s *Session) ResumePosition() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resume
}

// HandleLoadedMetadata records the title's real duration once the player
// knows it. Until then upserts carry duration 0 and can never complete.
func (s *Session) HandleLoadedMetadata(durationSeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if durationSeconds > 0 {
		s.duration = durationSeconds
	}
}

// HandleTimeUpdate persists the playhead when it has moved at least the
// save interval past the last persisted position. Seeks in either direction
// count as movement.
func (s *Session) HandleTimeUpdate(ctx context.Context, positionSeconds int) {
	s.mu.Lock()
	if s.closed || positionSeconds < 0 {
		s.mu.Unlock()
		return
	}
	s.position = positionSeconds

	delta := positionSeconds - s.lastSaved
	if delta < 0 {
		delta = -delta
	}
	if s.saved && delta < s.saveEvery {
		s.mu.Unlock()
		return
	}
	s.lastSaved = positionSeconds
	s.saved = true
	dur := s.duration
	s.mu.Unlock()

	s.mgr.UpdateProgress(ctx, s.contentID, positionSeconds, dur)
}

// HandleEnded writes the final completed position and, when a next episode
// exists, arms the autoplay countdown toward it.
func (s *Session) HandleEnded(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	dur := s.duration
	s.position = dur
	s.lastSaved = dur
	s.saved = true
	s.mu.Unlock()

	s.mgr.UpdateProgress(ctx, s.contentID, dur, dur)

	if s.seq == nil || s.onNext == nil {
		return
	}
	cd, ok := s.seq.AutoAdvance(ctx, s.contentID, func(next catalog.ContentRecord) {
		s.onNext(next)
	})
	if !ok {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cd.Cancel()
		return
	}
	s.countdown = cd
	s.mu.Unlock()
}

// CancelAutoplay stops an armed countdown without ending the session, for a
// viewer who dismisses the up-next card.
func (s *Session) CancelAutoplay() {
	s.mu.Lock()
	cd := s.countdown
	s.mu.Unlock()
	if cd != nil {
		cd.Cancel()
	}
}

// PlayNext skips the rest of an armed countdown. It reports whether a
// countdown was there to skip.
func (s *Session) PlayNext() bool {
	s.mu.Lock()
	cd := s.countdown
	s.mu.Unlock()
	if cd == nil {
		return false
	}
	cd.PlayNow()
	return true
}

// Close flushes any unsaved playhead movement and cancels an armed
// countdown. Safe to call more than once.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cd := s.countdown
	s.countdown = nil
	flush := s.saved && s.position != s.lastSaved
	pos := s.position
	dur := s.duration
	s.mu.Unlock()

	if cd != nil {
		cd.Cancel()
	}
	if flush {
		s.mgr.UpdateProgress(ctx, s.contentID, pos, dur)
	}
}
