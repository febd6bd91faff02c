package playback

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/ott-platform/internal/autoplay"
	"github.com/example/ott-platform/internal/catalog"
	"github.com/example/ott-platform/internal/identity"
	"github.com/example/ott-platform/internal/progress"
)

func testCatalog(t *testing.T) *catalog.MemoryCatalog {
	t.Helper()
	c, err := catalog.NewMemoryCatalog([]catalog.ContentRecord{
		{ID: "movie-1", Title: "Heist Night", Kind: catalog.KindMovie, DurationSeconds: 5400},
		{ID: "ep-1-1", Kind: catalog.KindEpisode, SeriesID: "series-1", SeasonNumber: 1, EpisodeNumber: 1, DurationSeconds: 1400},
		{ID: "ep-1-2", Kind: catalog.KindEpisode, SeriesID: "series-1", SeasonNumber: 1, EpisodeNumber: 2, DurationSeconds: 1380},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return c
}

func testManager(t *testing.T) *progress.Manager {
	t.Helper()
	local := progress.NewLocalStore(filepath.Join(t.TempDir(), "history.json"))
	m := progress.NewManager(progress.ManagerOptions{
		Local:    local,
		Catalog:  testCatalog(t),
		Identity: identity.NewBroadcaster(),
	})
	t.Cleanup(m.Close)
	return m
}

func TestSession_ThrottlesTimeUpdates(t *testing.T) {
	mgr := testManager(t)
	s := NewSession(SessionOptions{ContentID: "movie-1", Progress: mgr})
	ctx := context.Background()

	s.HandleLoadedMetadata(5400)
	s.HandleTimeUpdate(ctx, 1)
	s.HandleTimeUpdate(ctx, 4) // within the interval, must not persist
	s.HandleTimeUpdate(ctx, 12)

	if got := mgr.GetProgress("movie-1"); got != 12 {
		t.Fatalf("persisted position = %d, want 12", got)
	}

	// A fresh session resumes from the persisted playhead, not the
	// throttled-away one.
	s2 := NewSession(SessionOptions{ContentID: "movie-1", Progress: mgr})
	if got := s2.ResumePosition(); got != 12 {
		t.Fatalf("ResumePosition = %d, want 12", got)
	}
}

func TestSession_SeekBackwardPersists(t *testing.T) {
	mgr := testManager(t)
	s := NewSession(SessionOptions{ContentID: "movie-1", Progress: mgr})
	ctx := context.Background()

	s.HandleLoadedMetadata(5400)
	s.HandleTimeUpdate(ctx, 300)
	s.HandleTimeUpdate(ctx, 30) // big rewind counts as movement

	if got := mgr.GetProgress("movie-1"); got != 30 {
		t.Fatalf("persisted position = %d, want 30", got)
	}
}

func TestSession_CloseFlushesUnsavedPosition(t *testing.T) {
	mgr := testManager(t)
	s := NewSession(SessionOptions{ContentID: "movie-1", Progress: mgr})
	ctx := context.Background()

	s.HandleLoadedMetadata(5400)
	s.HandleTimeUpdate(ctx, 20)
	s.HandleTimeUpdate(ctx, 25) // throttled
	s.Close(ctx)

	if got := mgr.GetProgress("movie-1"); got != 25 {
		t.Fatalf("position after close = %d, want 25", got)
	}

	// Closed sessions drop further events.
	s.HandleTimeUpdate(ctx, 900)
	if got := mgr.GetProgress("movie-1"); got != 25 {
		t.Fatalf("closed session wrote through: got %d", got)
	}
}

func TestSession_EndedCompletesAndArmsCountdown(t *testing.T) {
	mgr := testManager(t)
	seq := &autoplay.Sequencer{
		Catalog:          testCatalog(t),
		CountdownSeconds: 1,
		TickInterval:     5 * time.Millisecond,
	}

	got := make(chan catalog.ContentRecord, 1)
	s := NewSession(SessionOptions{
		ContentID: "ep-1-1",
		Progress:  mgr,
		Sequencer: seq,
		OnNext:    func(next catalog.ContentRecord) { got <- next },
	})
	ctx := context.Background()

	s.HandleLoadedMetadata(1400)
	s.HandleEnded(ctx)

	if got := mgr.GetProgress("ep-1-1"); got != 1400 {
		t.Fatalf("ended position = %d, want 1400", got)
	}
	if len(mgr.ContinueWatching()) != 0 {
		t.Fatal("completed title must leave the continue-watching list")
	}

	select {
	case next := <-got:
		if next.ID != "ep-1-2" {
			t.Fatalf("autoplay resolved %s, want ep-1-2", next.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("countdown never fired")
	}
}

func TestSession_EndedMovieArmsNothing(t *testing.T) {
	mgr := testManager(t)
	seq := &autoplay.Sequencer{Catalog: testCatalog(t), TickInterval: 5 * time.Millisecond}

	s := NewSession(SessionOptions{
		ContentID: "movie-1",
		Progress:  mgr,
		Sequencer: seq,
		OnNext:    func(catalog.ContentRecord) { t.Error("movie must not autoplay") },
	})
	s.HandleLoadedMetadata(5400)
	s.HandleEnded(context.Background())

	if s.PlayNext() {
		t.Fatal("no countdown should be armed for a movie")
	}
	time.Sleep(50 * time.Millisecond)
}

func TestSession_CancelAutoplaySuppressesTransition(t *testing.T) {
	mgr := testManager(t)
	seq := &autoplay.Sequencer{
		Catalog:          testCatalog(t),
		CountdownSeconds: 3,
		TickInterval:     20 * time.Millisecond,
	}

	s := NewSession(SessionOptions{
		ContentID: "ep-1-1",
		Progress:  mgr,
		Sequencer: seq,
		OnNext:    func(catalog.ContentRecord) { t.Error("cancelled countdown fired") },
	})
	s.HandleLoadedMetadata(1400)
	s.HandleEnded(context.Background())
	s.CancelAutoplay()
	time.Sleep(120 * time.Millisecond)
}

func TestSession_PlayNextSkipsCountdown(t *testing.T) {
	mgr := testManager(t)
	seq := &autoplay.Sequencer{
		Catalog:          testCatalog(t),
		CountdownSeconds: 10,
		TickInterval:     time.Hour, // never ticks on its own
	}

	got := make(chan catalog.ContentRecord, 1)
	s := NewSession(SessionOptions{
		ContentID: "ep-1-1",
		Progress:  mgr,
		Sequencer: seq,
		OnNext:    func(next catalog.ContentRecord) { got <- next },
	})
	s.HandleLoadedMetadata(1400)
	s.HandleEnded(context.Background())

	if !s.PlayNext() {
		t.Fatal("expected an armed countdown to skip")
	}
	select {
	case next := <-got:
		if next.ID != "ep-1-2" {
			t.Fatalf("skip resolved %s, want ep-1-2", next.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("PlayNow never delivered the transition")
	}
}
