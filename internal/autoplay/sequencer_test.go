package autoplay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/ott-platform/internal/catalog"
)

func seriesFixture(t *testing.T) *catalog.MemoryCatalog {
	t.Helper()
	c, err := catalog.NewMemoryCatalog([]catalog.ContentRecord{
		{ID: "movie-1", Title: "Heist Night", Kind: catalog.KindMovie, DurationSeconds: 5400},
		{ID: "ep-1-1", Kind: catalog.KindEpisode, SeriesID: "series-1", SeasonNumber: 1, EpisodeNumber: 1},
		{ID: "ep-1-2", Kind: catalog.KindEpisode, SeriesID: "series-1", SeasonNumber: 1, EpisodeNumber: 2},
		{ID: "ep-2-1", Kind: catalog.KindEpisode, SeriesID: "series-1", SeasonNumber: 2, EpisodeNumber: 1},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return c
}

func TestSequencer_ResolveNext(t *testing.T) {
	s := &Sequencer{Catalog: seriesFixture(t)}
	ctx := context.Background()

	next, ok := s.ResolveNext(ctx, "ep-1-1")
	if !ok || next.ID != "ep-1-2" {
		t.Fatalf("expected ep-1-2, got %+v ok=%v", next, ok)
	}

	next, ok = s.ResolveNext(ctx, "ep-1-2")
	if !ok || next.ID != "ep-2-1" {
		t.Fatalf("expected season rollover to ep-2-1, got %+v ok=%v", next, ok)
	}

	if _, ok := s.ResolveNext(ctx, "ep-2-1"); ok {
		t.Fatal("final episode must resolve to nothing")
	}
	if _, ok := s.ResolveNext(ctx, "movie-1"); ok {
		t.Fatal("movie must resolve to nothing")
	}
}

type failingCatalog struct{}

func (failingCatalog) FindByID(context.Context, string) (catalog.ContentRecord, bool, error) {
	return catalog.ContentRecord{}, false, errors.New("catalog down")
}
func (failingCatalog) ListEpisodes(context.Context, string) ([]catalog.ContentRecord, error) {
	return nil, errors.New("catalog down")
}
func (failingCatalog) FindNextEpisode(context.Context, string) (catalog.ContentRecord, bool, error) {
	return catalog.ContentRecord{}, false, errors.New("catalog down")
}

func TestSequencer_ResolveNextSwallowsCatalogErrors(t *testing.T) {
	s := &Sequencer{Catalog: failingCatalog{}}
	if _, ok := s.ResolveNext(context.Background(), "ep-1-1"); ok {
		t.Fatal("catalog failure must resolve to nothing, not error")
	}
}

func TestSequencer_AutoAdvanceFiresTransition(t *testing.T) {
	s := &Sequencer{
		Catalog:          seriesFixture(t),
		CountdownSeconds: 2,
		TickInterval:     5 * time.Millisecond,
	}

	got := make(chan catalog.ContentRecord, 1)
	cd, ok := s.AutoAdvance(context.Background(), "ep-1-1", func(next catalog.ContentRecord) {
		got <- next
	})
	if !ok || cd == nil {
		t.Fatal("expected countdown for ep-1-1")
	}

	select {
	case next := <-got:
		if next.ID != "ep-1-2" {
			t.Fatalf("expected transition to ep-1-2, got %s", next.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("transition never fired")
	}
}

func TestSequencer_AutoAdvanceNoSuccessor(t *testing.T) {
	s := &Sequencer{Catalog: seriesFixture(t)}

	cd, ok := s.AutoAdvance(context.Background(), "movie-1", func(catalog.ContentRecord) {
		t.Error("transition must not fire for a movie")
	})
	if ok || cd != nil {
		t.Fatal("expected no countdown for a movie")
	}
}
