// Package timer implements the resumable reading session timer. Elapsed time
// is never counted with a ticking counter; it is recomputed on every
// observation from wall-clock checkpoints recorded at state transitions, so
// the value stays correct across process suspension, reload, and missed
// ticks. Every transition is persisted before it takes effect.
package timer

import "time"

// State is the checkpoint record for a user's one active session. It is
// ephemeral: created at session start, rewritten on every pause/resume, and
// destroyed at finalization or abandonment.
type State struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	BookID    string `json:"book_id"`

	// StartedAtMs is the wall-clock instant the session began.
	StartedAtMs int64 `json:"started_at_ms"`
	// AccumulatedPausedMs totals all completed pause intervals.
	AccumulatedPausedMs int64 `json:"accumulated_paused_ms"`
	// PauseStartedAtMs is set while paused, nil while active.
	PauseStartedAtMs *int64 `json:"pause_started_at_ms,omitempty"`
	// Active is redundant with PauseStartedAtMs but kept for fast checks.
	Active bool `json:"active"`

	// FloorElapsedMs is the elapsed value at the last transition. Elapsed
	// never reports below it, which absorbs wall clocks moving backward.
	FloorElapsedMs int64 `json:"floor_elapsed_ms"`
	// CheckpointAtMs is when the state last changed, used for staleness.
	CheckpointAtMs int64 `json:"checkpoint_at_ms"`
}

// Start creates the state for a freshly started session.
func Start(sessionID, userID, bookID string, now time.Time) State {
	ms := now.UnixMilli()
	return State{
		SessionID:      sessionID,
		UserID:         userID,
		BookID:         bookID,
		StartedAtMs:    ms,
		Active:         true,
		CheckpointAtMs: ms,
	}
}

// Pause stops the active clock. Pausing an already paused state is a no-op.
func (s State) Pause(now time.Time) State {
	if !s.Active {
		return s
	}
	ms := now.UnixMilli()
	s.FloorElapsedMs = s.ElapsedMs(now)
	s.PauseStartedAtMs = &ms
	s.Active = false
	s.CheckpointAtMs = ms
	return s
}

// Resume folds the just-finished pause into the accumulated total and
// restarts the active clock. Resuming an active state is a no-op.
func (s State) Resume(now time.Time) State {
	if s.Active {
		return s
	}
	ms := now.UnixMilli()
	if s.PauseStartedAtMs != nil {
		paused := ms - *s.PauseStartedAtMs
		if paused > 0 {
			s.AccumulatedPausedMs += paused
		}
		s.PauseStartedAtMs = nil
	}
	s.Active = true
	s.CheckpointAtMs = ms
	return s
}

// ElapsedMs computes active reading time from checkpoints:
//
//	now - started - accumulatedPaused - (current pause, if any)
//
// While paused the current pause grows exactly as fast as now does, so the
// result is constant. The value never drops below the floor recorded at the
// last transition, which keeps backward clock jumps from producing negative
// or regressing elapsed time.
func (s State) ElapsedMs(now time.Time) int64 {
	ref := now.UnixMilli()
	if s.PauseStartedAtMs != nil {
		ref = *s.PauseStartedAtMs
	}
	raw := ref - s.StartedAtMs - s.AccumulatedPausedMs
	if raw < s.FloorElapsedMs {
		return s.FloorElapsedMs
	}
	return raw
}

// ElapsedSeconds is ElapsedMs in whole seconds.
func (s State) ElapsedSeconds(now time.Time) int {
	return int(s.ElapsedMs(now) / 1000)
}

// IsPaused returns true while the clock is stopped.
func (s State) IsPaused() bool {
	return !s.Active
}

// CheckpointAge returns how long ago the state last changed. Sessions whose
// checkpoint age exceeds the configured threshold are abandoned by cleanup.
func (s State) CheckpointAge(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(s.CheckpointAtMs))
}
