// Package store defines the persistence boundary for the PagePace server.
// Implementations live in subpackages; services depend only on the Store
// interface so tests can swap in lightweight fakes.
package store

import (
	"context"

	"github.com/pagepace/pagepace-server/internal/domain"
)

// Store is the durable storage collaborator. Methods return the sentinel
// errors from this package (ErrNotFound, ErrAlreadyExists) for the
// conditions callers branch on.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// Books and shelf progress.
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context, userID string) ([]*domain.Book, error)
	GetBookProgress(ctx context.Context, userID, bookID string) (*domain.BookProgress, error)
	UpsertBookProgress(ctx context.Context, progress *domain.BookProgress) error
	CountCompletedBooks(ctx context.Context, userID string) (int, error)
	// GetCurrentlyReadingBook returns the book the user most recently moved
	// to reading status, or nil when nothing is in progress.
	GetCurrentlyReadingBook(ctx context.Context, userID string) (*domain.Book, error)

	// Reading sessions. FinalizeSession writes the end-of-session fields of
	// an unfinalized row; finalizing a finalized row returns ErrNotFound so
	// callers can distinguish a lost race from success.
	CreateSession(ctx context.Context, session *domain.ReadingSession) error
	GetSession(ctx context.Context, id string) (*domain.ReadingSession, error)
	FinalizeSession(ctx context.Context, session *domain.ReadingSession) error
	DeleteSession(ctx context.Context, id string) error
	ListFinalizedSessions(ctx context.Context, userID string) ([]*domain.ReadingSession, error)

	// Reminder preferences and push subscriptions.
	GetReminderPreference(ctx context.Context, userID string) (*domain.ReminderPreference, error)
	UpsertReminderPreference(ctx context.Context, pref *domain.ReminderPreference) error
	ListReminderPreferences(ctx context.Context) ([]*domain.ReminderPreference, error)
	CreatePushSubscription(ctx context.Context, sub *domain.PushSubscription) error
	DeletePushSubscription(ctx context.Context, id string) error
	ListPushSubscriptions(ctx context.Context, userID string) ([]*domain.PushSubscription, error)

	Close() error
}
