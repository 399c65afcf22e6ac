// Package service contains the application services that coordinate the
// stores, the timer keeper, and push delivery.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagepace/pagepace-server/internal/clock"
	"github.com/pagepace/pagepace-server/internal/domain"
	domainerrors "github.com/pagepace/pagepace-server/internal/errors"
	"github.com/pagepace/pagepace-server/internal/id"
	"github.com/pagepace/pagepace-server/internal/store"
	"github.com/pagepace/pagepace-server/internal/timer"
)

// SessionService manages the reading session lifecycle: starting the timer,
// pause/resume, and the single finalization that commits the session and the
// book progress.
type SessionService struct {
	store  store.Store
	keeper *timer.Keeper
	clk    clock.Clock
	logger *slog.Logger
}

// NewSessionService creates a session service.
func NewSessionService(store store.Store, keeper *timer.Keeper, clk clock.Clock, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:  store,
		keeper: keeper,
		clk:    clk,
		logger: logger,
	}
}

// ActiveSession is an in-progress session together with its live timer view.
type ActiveSession struct {
	Session        *domain.ReadingSession `json:"session"`
	ElapsedSeconds int                    `json:"elapsed_seconds"`
	Paused         bool                   `json:"paused"`
}

// Start begins a new reading session for the user. A user can have at most
// one active session; starting while one exists fails with ErrAlreadyActive.
func (s *SessionService) Start(ctx context.Context, userID, bookID string, startPage int) (*ActiveSession, error) {
	if startPage < 0 || startPage > domain.MaxPageNumber {
		return nil, domainerrors.InvalidPagef("start page %d is out of range", startPage)
	}

	book, err := s.store.GetBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("book not found")
	}
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}
	if book.UserID != userID {
		// Do not reveal other users' shelves.
		return nil, domainerrors.NotFound("book not found")
	}

	sessionID, err := id.Generate("session")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	state, err := s.keeper.Begin(sessionID, userID, bookID)
	if err != nil {
		return nil, err
	}

	session := domain.NewReadingSession(sessionID, userID, bookID, startPage, s.clk.Now().UTC())
	if err := s.store.CreateSession(ctx, session); err != nil {
		// The checkpoint exists but the row does not; roll the checkpoint
		// back so the user is not locked out of starting again.
		if clearErr := s.keeper.Clear(userID); clearErr != nil {
			s.logger.Warn("failed to roll back timer checkpoint",
				"user_id", userID,
				"session_id", sessionID,
				"error", clearErr)
		}
		return nil, domainerrors.StorageUnavailable(err)
	}

	s.logger.Info("started reading session",
		"session_id", sessionID,
		"user_id", userID,
		"book_id", bookID,
		"start_page", startPage)

	return &ActiveSession{
		Session:        session,
		ElapsedSeconds: state.ElapsedSeconds(s.clk.Now()),
		Paused:         state.IsPaused(),
	}, nil
}

// Active returns the user's in-progress session with elapsed time recomputed
// against the current clock.
func (s *SessionService) Active(ctx context.Context, userID string) (*ActiveSession, error) {
	state, err := s.keeper.Restore(userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, domainerrors.NotFound("no active session")
	}

	session, err := s.store.GetSession(ctx, state.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		// Orphaned checkpoint: the row is gone, so the timer is meaningless.
		if clearErr := s.keeper.Clear(userID); clearErr != nil {
			s.logger.Warn("failed to clear orphaned timer checkpoint",
				"user_id", userID,
				"session_id", state.SessionID,
				"error", clearErr)
		}
		return nil, domainerrors.NotFound("no active session")
	}
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}

	if _, err := s.keeper.Touch(userID); err != nil {
		s.logger.Warn("failed to refresh timer checkpoint",
			"user_id", userID,
			"session_id", state.SessionID,
			"error", err)
	}

	return &ActiveSession{
		Session:        session,
		ElapsedSeconds: state.ElapsedSeconds(s.clk.Now()),
		Paused:         state.IsPaused(),
	}, nil
}

// Pause stops the active session's clock. Pausing an already-paused session
// is a no-op.
func (s *SessionService) Pause(ctx context.Context, userID string) (*ActiveSession, error) {
	state, err := s.keeper.Pause(userID)
	if err != nil {
		return nil, err
	}
	return s.activeFromState(ctx, userID, state)
}

// Resume restarts a paused session's clock. Resuming a running session is a
// no-op.
func (s *SessionService) Resume(ctx context.Context, userID string) (*ActiveSession, error) {
	state, err := s.keeper.Resume(userID)
	if err != nil {
		return nil, err
	}
	return s.activeFromState(ctx, userID, state)
}

func (s *SessionService) activeFromState(ctx context.Context, userID string, state timer.State) (*ActiveSession, error) {
	session, err := s.store.GetSession(ctx, state.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("no active session")
	}
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}
	return &ActiveSession{
		Session:        session,
		ElapsedSeconds: state.ElapsedSeconds(s.clk.Now()),
		Paused:         state.IsPaused(),
	}, nil
}

// Finalize ends the active session at the given page. It validates the end
// page, commits the session record and the book progress record in sequence,
// and clears the timer checkpoint. If the session commits but the progress
// write fails, the caller sees ErrPartiallyCommitted; retrying then reports
// ErrAlreadyFinalized because the session record is already immutable.
func (s *SessionService) Finalize(ctx context.Context, userID string, endPage int) (*domain.ReadingSession, error) {
	state, err := s.keeper.Restore(userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, domainerrors.NotFound("no active session to finalize")
	}

	if endPage < 0 || endPage > domain.MaxPageNumber {
		return nil, domainerrors.InvalidPagef("end page %d is out of range", endPage)
	}

	session, err := s.store.GetSession(ctx, state.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		if clearErr := s.keeper.Clear(userID); clearErr != nil {
			s.logger.Warn("failed to clear orphaned timer checkpoint",
				"user_id", userID,
				"session_id", state.SessionID,
				"error", clearErr)
		}
		return nil, domainerrors.NotFound("no active session to finalize")
	}
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}

	if session.IsFinalized() {
		// Left over from a partial commit or a lost race. The session record
		// is already immutable; clean up the checkpoint and say so.
		s.clearCheckpoint(userID, session.ID)
		return nil, domainerrors.AlreadyFinalized("session already finalized")
	}

	if endPage < session.StartPage {
		return nil, domainerrors.RegressivePage(
			fmt.Sprintf("end page %d is before start page %d", endPage, session.StartPage))
	}

	now := s.clk.Now().UTC()
	session.Finalize(endPage, state.ElapsedSeconds(s.clk.Now()), now)

	if err := s.store.FinalizeSession(ctx, session); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.clearCheckpoint(userID, session.ID)
			return nil, domainerrors.AlreadyFinalized("session already finalized")
		}
		return nil, domainerrors.StorageUnavailable(err)
	}

	if err := s.applyProgress(ctx, session, endPage, now); err != nil {
		// The session row is committed; the shelf is now behind. Leave the
		// checkpoint so the condition stays observable on retry.
		s.logger.Error("book progress update failed after session commit",
			"session_id", session.ID,
			"user_id", userID,
			"book_id", session.BookID,
			"error", err)
		return nil, domainerrors.PartiallyCommitted("session committed but book progress update failed", err)
	}

	s.clearCheckpoint(userID, session.ID)

	s.logger.Info("finalized reading session",
		"session_id", session.ID,
		"user_id", userID,
		"book_id", session.BookID,
		"pages_read", session.PagesRead,
		"duration_seconds", session.DurationSeconds)

	return session, nil
}

// applyProgress moves the book's shelf progress to the finalized end page.
func (s *SessionService) applyProgress(ctx context.Context, session *domain.ReadingSession, endPage int, now time.Time) error {
	book, err := s.store.GetBook(ctx, session.BookID)
	if err != nil {
		return fmt.Errorf("get book: %w", err)
	}

	progress, err := s.store.GetBookProgress(ctx, session.UserID, session.BookID)
	if errors.Is(err, store.ErrNotFound) {
		progress = domain.NewBookProgress(session.UserID, session.BookID, now)
	} else if err != nil {
		return fmt.Errorf("get book progress: %w", err)
	}

	progress.ApplyPage(endPage, book.PageCount, now)
	if err := s.store.UpsertBookProgress(ctx, progress); err != nil {
		return fmt.Errorf("upsert book progress: %w", err)
	}
	return nil
}

// Abandon discards the active session without recording anything.
func (s *SessionService) Abandon(ctx context.Context, userID string) error {
	state, err := s.keeper.Restore(userID)
	if err != nil {
		return err
	}
	if state == nil {
		return domainerrors.NotFound("no active session to abandon")
	}

	if err := s.store.DeleteSession(ctx, state.SessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return domainerrors.StorageUnavailable(err)
	}
	if err := s.keeper.Clear(userID); err != nil {
		return err
	}

	s.logger.Info("abandoned reading session",
		"session_id", state.SessionID,
		"user_id", userID)
	return nil
}

// CleanupStale abandons sessions whose timer checkpoint has not been touched
// for longer than the threshold. Failures on one session do not stop the
// sweep. Returns how many sessions were cleaned up.
func (s *SessionService) CleanupStale(ctx context.Context, olderThan time.Duration) (int, error) {
	states, err := s.keeper.Stale(olderThan)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, state := range states {
		if err := s.store.DeleteSession(ctx, state.SessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to delete stale session",
				"session_id", state.SessionID,
				"user_id", state.UserID,
				"error", err)
			continue
		}
		if err := s.keeper.Clear(state.UserID); err != nil {
			s.logger.Warn("failed to clear stale timer checkpoint",
				"session_id", state.SessionID,
				"user_id", state.UserID,
				"error", err)
			continue
		}
		s.logger.Info("cleaned up stale session",
			"session_id", state.SessionID,
			"user_id", state.UserID)
		cleaned++
	}
	return cleaned, nil
}

func (s *SessionService) clearCheckpoint(userID, sessionID string) {
	if err := s.keeper.Clear(userID); err != nil {
		s.logger.Warn("failed to clear timer checkpoint",
			"user_id", userID,
			"session_id", sessionID,
			"error", err)
	}
}
