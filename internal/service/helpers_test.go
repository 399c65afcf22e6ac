package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pagepace/pagepace-server/internal/clock"
	"github.com/pagepace/pagepace-server/internal/domain"
	"github.com/pagepace/pagepace-server/internal/store/sqlite"
	"github.com/pagepace/pagepace-server/internal/timer"
)

// testEnv wires real stores against temp directories with a controllable
// clock.
type testEnv struct {
	store  *sqlite.Store
	keeper *timer.Keeper
	clk    *clock.Mock
	logger *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	timerStore, err := timer.Open(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = timerStore.Close() })

	clk := clock.NewMock(time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC))
	return &testEnv{
		store:  s,
		keeper: timer.NewKeeper(timerStore, clk, logger),
		clk:    clk,
		logger: logger,
	}
}

func (e *testEnv) sessionService() *SessionService {
	return NewSessionService(e.store, e.keeper, e.clk, e.logger)
}

func (e *testEnv) statsService() *StatsService {
	return NewStatsService(e.store, e.clk, time.UTC, e.logger)
}

func (e *testEnv) addUser(t *testing.T, userID string) {
	t.Helper()
	user := domain.NewUser(userID, userID+"@example.com", "Reader", e.clk.Now())
	require.NoError(t, e.store.CreateUser(context.Background(), user))
}

func (e *testEnv) addBook(t *testing.T, bookID, userID, title string, pageCount int) {
	t.Helper()
	book := domain.NewBook(bookID, userID, title, "Author", pageCount, e.clk.Now())
	require.NoError(t, e.store.CreateBook(context.Background(), book))
}

// addFinalizedSession inserts a committed session ending at the given time.
func (e *testEnv) addFinalizedSession(t *testing.T, id, userID, bookID string, startPage, endPage, durationSeconds int, endedAt time.Time) {
	t.Helper()
	ctx := context.Background()

	started := endedAt.Add(-time.Duration(durationSeconds) * time.Second)
	session := domain.NewReadingSession(id, userID, bookID, startPage, started)
	require.NoError(t, e.store.CreateSession(ctx, session))
	session.Finalize(endPage, durationSeconds, endedAt)
	require.NoError(t, e.store.FinalizeSession(ctx, session))
}
