package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagepace/pagepace-server/internal/domain"
	domainerrors "github.com/pagepace/pagepace-server/internal/errors"
)

func TestSessionService_StartAndActive(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService()
	ctx := context.Background()

	env.addUser(t, "user-1")
	env.addBook(t, "book-1", "user-1", "Dune", 412)

	started, err := svc.Start(ctx, "user-1", "book-1", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, started.Session.StartPage)
	assert.Equal(t, 0, started.ElapsedSeconds)
	assert.False(t, started.Paused)

	env.clk.Advance(90 * time.Second)
	active, err := svc.Active(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, started.Session.ID, active.Session.ID)
	assert.Equal(t, 90, active.ElapsedSeconds)
}

func TestSessionService_StartWhileActive(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService()
	ctx := context.Background()

	env.addUser(t, "user-1")
	env.addBook(t, "book-1", "user-1", "Dune", 412)
	env.addBook(t, "book-2", "user-1", "Hyperion", 482)

	_, err := svc.Start(ctx, "user-1", "book-1", 10)
	require.NoError(t, err)

	_, err = svc.Start(ctx, "user-1", "book-2", 1)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyActive)
}

func TestSessionService_StartValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService()
	ctx := context.Background()

	env.addUser(t, "user-1")
	env.addUser(t, "user-2")
	env.addBook(t, "book-1", "user-1", "Dune", 412)

	_, err := svc.Start(ctx, "user-1", "book-1", -1)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPage)

	_, err = svc.Start(ctx, "user-1", "book-1", domain.MaxPageNumber+1)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPage)

	_, err = svc.Start(ctx, "user-1", "book-missing", 1)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// Someone else's book looks like it does not exist.
	_, err = svc.Start(ctx, "user-2", "book-1", 1)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSessionService_FinalizeCompletesBook(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService()
	ctx := context.Background()

	env.addUser(t, "user-1")
	env.addBook(t, "book-1", "user-1", "Short Novel", 65)

	_, err := svc.Start(ctx, "user-1", "book-1", 50)
	require.NoError(t, err)

	env.clk.Advance(20 * time.Minute)
	session, err := svc.Finalize(ctx, "user-1", 65)
	require.NoError(t, err)

	assert.Equal(t, 15, session.PagesRead)
	assert.Equal(t, 20*60, session.DurationSeconds)
	require.NotNil(t, session.EndPage)
	assert.Equal(t, 65, *session.EndPage)

	progress, err := env.store.GetBookProgress(ctx, "user-1", "book-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, progress.Status)
	require.NotNil(t, progress.CompletedAt)
	assert.Equal(t, env.clk.Now().UTC(), progress.CompletedAt.UTC())

	// The timer checkpoint is gone.
	_, err = svc.Active(ctx, "user-1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestSessionService_FinalizeUnknownPageCount(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService()
	ctx := context.Background()

	env.addUser(t, "user-1")
	env.addBook(t, "book-1", "user-1", "Unknown Length", 0)

	_, err := svc.Start(ctx, "user-1", "book-1", 0)
	require.NoError(t, err)

	env.clk.Advance(10 * time.Minute)
	_, err = svc.Finalize(ctx, "user-1", 400)
	require.NoError(t, err)

	// No page count means completion is never derived.
	progress, err := env.store.GetBookProgress(ctx, "user-1", "book-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReading, progress.Status)
	assert.Nil(t, progress.CompletedAt)
}

func TestSessionService_FinalizeExcludesPausedTime(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService()
	ctx := context.Background()

	env.addUser(t, "user-1")
	env.addBook(t, "book-1", "user-1", "Dune", 412)

	_, err := svc.Start(ctx, "user-1", "book-1", 100)
	require.NoError(t, err)

	// 20 minutes of wall time with a 5 minute pause in the middle.
	env.clk.Advance(10 * time.Minute)
	paused, err := svc.Pause(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, paused.Paused)

	env.clk.Advance(5 * time.Minute)
	resumed, err := svc.Resume(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, resumed.Paused)

	env.clk.Advance(5 * time.Minute)
	session, err := svc.Finalize(ctx, "user-1", 120)
	require.NoError(t, err)
	assert.Equal(t, 900, session.DurationSeconds)
}

func TestSessionService_FinalizeValidationOrder(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService()
	ctx := context.Background()

	env.addUser(t, "user-1")
	env.addBook(t, "book-1", "user-1", "Dune", 412)

	_, err := svc.Finalize(ctx, "user-1", 10)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = svc.Start(ctx, "user-1", "book-1", 50)
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, "user-1", -3)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPage)

	_, err = svc.Finalize(ctx, "user-1", domain.MaxPageNumber+1)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidPage)

	_, err = svc.Finalize(ctx, "user-1", 49)
	assert.ErrorIs(t, err, domainerrors.ErrRegressivePage)

	// A rejected finalize leaves the session active.
	active, err := svc.Active(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, active.Session.IsFinalized())
}

func TestSessionService_FinalizeAfterPartialCommit(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService()
	ctx := context.Background()

	env.addUser(t, "user-1")
	env.addBook(t, "book-1", "user-1", "Dune", 412)

	started, err := svc.Start(ctx, "user-1", "book-1", 10)
	require.NoError(t, err)

	// Simulate a run that committed the session row but died before clearing
	// the checkpoint: finalize the row behind the service's back.
	row := started.Session
	row.Finalize(20, 300, env.clk.Now().UTC())
	require.NoError(t, env.store.FinalizeSession(ctx, row))

	_, err = svc.Finalize(ctx, "user-1", 20)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyFinalized)

	// The retry cleaned up the checkpoint, so the user can start fresh.
	_, err = svc.Start(ctx, "user-1", "book-1", 20)
	assert.NoError(t, err)
}

func TestSessionService_Abandon(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService()
	ctx := context.Background()

	env.addUser(t, "user-1")
	env.addBook(t, "book-1", "user-1", "Dune", 412)

	started, err := svc.Start(ctx, "user-1", "book-1", 10)
	require.NoError(t, err)

	require.NoError(t, svc.Abandon(ctx, "user-1"))

	_, err = svc.Active(ctx, "user-1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = env.store.GetSession(ctx, started.Session.ID)
	assert.Error(t, err)

	assert.ErrorIs(t, svc.Abandon(ctx, "user-1"), domainerrors.ErrNotFound)
}

func TestSessionService_CleanupStale(t *testing.T) {
	env := newTestEnv(t)
	svc := env.sessionService()
	ctx := context.Background()

	env.addUser(t, "user-1")
	env.addUser(t, "user-2")
	env.addBook(t, "book-1", "user-1", "Dune", 412)
	env.addBook(t, "book-2", "user-2", "Hyperion", 482)

	stale, err := svc.Start(ctx, "user-1", "book-1", 1)
	require.NoError(t, err)

	env.clk.Advance(7 * time.Hour)
	fresh, err := svc.Start(ctx, "user-2", "book-2", 1)
	require.NoError(t, err)

	cleaned, err := svc.CleanupStale(ctx, 6*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, cleaned)

	_, err = env.store.GetSession(ctx, stale.Session.ID)
	assert.Error(t, err)
	_, err = env.store.GetSession(ctx, fresh.Session.ID)
	assert.NoError(t, err)
}
