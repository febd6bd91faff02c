package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LocalStore persists the anonymous session's progress as a bounded JSON
// list on disk, most recent first. It stands in for the browser-local
// storage used when nobody is signed in: single owner, no cross-process
// locking, last writer wins. The ownerID argument is ignored.
type LocalStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path, now: time.Now}
}

func (s *LocalStore) LoadRecent(_ context.Context, _ string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return nil, err
	}
	// The file already caps at ListCap, but entries may have completed since
	// they were written; filter and re-cap on every read.
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if r.Completed {
			continue
		}
		out = append(out, r)
		if len(out) == ListCap {
			break
		}
	}
	return out, nil
}

func (s *LocalStore) Upsert(_ context.Context, _ string, contentID string, progressSeconds, durationSeconds int) error {
	if progressSeconds < 0 {
		progressSeconds = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return err
	}

	rec := Record{
		ContentID:       contentID,
		ProgressSeconds: progressSeconds,
		Completed:       IsCompleted(progressSeconds, durationSeconds),
		UpdatedAt:       s.now().UTC(),
	}

	replaced := false
	for i := range recs {
		if recs[i].ContentID == contentID {
			recs[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		recs = append([]Record{rec}, recs...)
	}
	if len(recs) > ListCap {
		recs = recs[:ListCap]
	}
	return s.write(recs)
}

func (s *LocalStore) Get(_ context.Context, _ string, contentID string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return Record{}, false, err
	}
	for _, r := range recs {
		if r.ContentID == contentID {
			return r, true, nil
		}
	}
	return Record{}, false, nil
}

func (s *LocalStore) Remove(_ context.Context, _ string, contentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.read()
	if err != nil {
		return err
	}
	kept := recs[:0]
	for _, r := range recs {
		if r.ContentID != contentID {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(recs) {
		return nil
	}
	return s.write(kept)
}

// read loads the stored list. A missing or malformed file is treated as an
// empty history, not an error: corrupt local data must never block playback.
func (s *LocalStore) read() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read progress file: %w", err)
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, nil
	}
	return recs, nil
}

func (s *LocalStore) write(recs []Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create progress dir: %w", err)
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encode progress file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write progress file: %w", err)
	}
	return nil
}
