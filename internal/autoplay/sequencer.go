package autoplay

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/catalog"
)

// TransitionFunc receives the episode the player should move to.
type TransitionFunc func(next catalog.ContentRecord)

// Sequencer resolves what plays after a finished title and arms the
// countdown that hands it to the player.
type Sequencer struct {
	Catalog catalog.Catalog
	Logger  *zap.Logger

	// CountdownSeconds and TickInterval override the countdown defaults;
	// zero values keep them. Tests shorten TickInterval.
	CountdownSeconds int
	TickInterval     time.Duration
}

// ResolveNext returns the episode that follows finishedID, or ok=false when
// the finished title was a movie, unknown, or the last episode of its
// series. Catalog failures resolve to "nothing next": autoplay is a nicety
// and must never surface an error into playback.
func (s *Sequencer) ResolveNext(ctx context.Context, finishedID string) (catalog.ContentRecord, bool) {
	next, ok, err := s.Catalog.FindNextEpisode(ctx, finishedID)
	if err != nil {
		s.logger().Warn("next episode lookup failed", zap.String("content_id", finishedID), zap.Error(err))
		return catalog.ContentRecord{}, false
	}
	return next, ok
}

// AutoAdvance resolves the successor of finishedID and, when one exists,
// starts the countdown that will hand it to transition. The caller owns the
// returned countdown and must Cancel it when the player goes away.
func (s *Sequencer) AutoAdvance(ctx context.Context, finishedID string, transition TransitionFunc) (*Countdown, bool) {
	next, ok := s.ResolveNext(ctx, finishedID)
	if !ok {
		return nil, false
	}
	cd := StartCountdown(CountdownOptions{
		Total:    s.CountdownSeconds,
		Interval: s.TickInterval,
		OnFire:   func() { transition(next) },
	})
	return cd, true
}

func (s *Sequencer) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
