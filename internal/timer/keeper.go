package timer

import (
	"log/slog"
	"time"

	"github.com/pagepace/pagepace-server/internal/clock"
	domainerrors "github.com/pagepace/pagepace-server/internal/errors"
)

// Keeper runs the timer state machine against the checkpoint store. Every
// transition persists synchronously before it is reported back; a transition
// that fails to persist is treated as not having happened and the previous
// state stays authoritative.
type Keeper struct {
	store  *Store
	clk    clock.Clock
	logger *slog.Logger
}

// NewKeeper creates a keeper over the given store and clock.
func NewKeeper(store *Store, clk clock.Clock, logger *slog.Logger) *Keeper {
	return &Keeper{store: store, clk: clk, logger: logger}
}

// Begin starts timing a new session. Fails with AlreadyActive when the user
// already has an unfinalized session checkpoint, whatever its session ID.
func (k *Keeper) Begin(sessionID, userID, bookID string) (State, error) {
	existing, err := k.store.Load(userID)
	if err != nil {
		return State{}, domainerrors.StorageUnavailable(err)
	}
	if existing != nil {
		return State{}, domainerrors.AlreadyActive("a session is already active").
			WithDetails(map[string]string{"session_id": existing.SessionID})
	}

	state := Start(sessionID, userID, bookID, k.clk.Now())
	if err := k.store.Save(state); err != nil {
		return State{}, domainerrors.StorageUnavailable(err)
	}
	return state, nil
}

// Pause stops the user's active clock. Pausing twice is a harmless no-op.
func (k *Keeper) Pause(userID string) (State, error) {
	return k.transition(userID, State.Pause)
}

// Resume restarts the user's paused clock. Resuming twice is a no-op.
func (k *Keeper) Resume(userID string) (State, error) {
	return k.transition(userID, State.Resume)
}

// Touch re-persists the current state with a fresh checkpoint timestamp.
// Clients call this when the app regains foreground; it keeps the session
// out of stale cleanup without changing any timing field.
func (k *Keeper) Touch(userID string) (State, error) {
	return k.transition(userID, func(s State, now time.Time) State {
		s.CheckpointAtMs = now.UnixMilli()
		return s
	})
}

// Restore loads the user's persisted state, or nil when none exists. The
// caller gets elapsed time recomputed against the current clock, which is
// what makes the timer indifferent to how long the process was gone.
func (k *Keeper) Restore(userID string) (*State, error) {
	state, err := k.store.Load(userID)
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}
	return state, nil
}

// Elapsed returns the active seconds of the user's session right now.
func (k *Keeper) Elapsed(userID string) (int, error) {
	state, err := k.store.Load(userID)
	if err != nil {
		return 0, domainerrors.StorageUnavailable(err)
	}
	if state == nil {
		return 0, domainerrors.NotFound("no active session")
	}
	return state.ElapsedSeconds(k.clk.Now()), nil
}

// Clear destroys the user's checkpoint after finalization or abandonment.
func (k *Keeper) Clear(userID string) error {
	if err := k.store.Clear(userID); err != nil {
		return domainerrors.StorageUnavailable(err)
	}
	return nil
}

// Stale lists sessions whose last checkpoint is older than the threshold.
func (k *Keeper) Stale(olderThan time.Duration) ([]State, error) {
	states, err := k.store.List()
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}

	now := k.clk.Now()
	var stale []State
	for _, s := range states {
		if s.CheckpointAge(now) > olderThan {
			stale = append(stale, s)
		}
	}
	return stale, nil
}

func (k *Keeper) transition(userID string, fn func(State, time.Time) State) (State, error) {
	state, err := k.store.Load(userID)
	if err != nil {
		return State{}, domainerrors.StorageUnavailable(err)
	}
	if state == nil {
		return State{}, domainerrors.NotFound("no active session")
	}

	next := fn(*state, k.clk.Now())
	if err := k.store.Save(next); err != nil {
		// Persist-before-return: the old checkpoint remains authoritative.
		return *state, domainerrors.StorageUnavailable(err)
	}
	return next, nil
}
