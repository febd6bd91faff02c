// Package progress implements the continue-watching subsystem: durable
// per-owner playback positions and the in-memory list that backs the
// "Continue Watching" row.
package progress

import "time"

// completedThreshold is the watched fraction at which a title counts as finished.
const completedThreshold = 0.90

// ListCap bounds the continue-watching list.
const ListCap = 10

// Record is one owner's playback position for a single title. At most one
// record exists per (owner, content) pair; writes replace, never duplicate.
type Record struct {
	ContentID       string    `json:"content_id"`
	ProgressSeconds int       `json:"progress_seconds"`
	Completed       bool      `json:"completed"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsCompleted reports whether a position counts as finished. Unknown
// durations (0) never complete: there is no percentage to take, and an
// unknown-length title must not be flagged finished by guesswork.
func IsCompleted(progressSeconds, durationSeconds int) bool {
	if durationSeconds <= 0 {
		return false
	}
	return float64(progressSeconds)/float64(durationSeconds) >= completedThreshold
}
