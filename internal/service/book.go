package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pagepace/pagepace-server/internal/clock"
	"github.com/pagepace/pagepace-server/internal/domain"
	domainerrors "github.com/pagepace/pagepace-server/internal/errors"
	"github.com/pagepace/pagepace-server/internal/id"
	"github.com/pagepace/pagepace-server/internal/store"
)

// BookService manages the user's shelf.
type BookService struct {
	store  store.Store
	clk    clock.Clock
	logger *slog.Logger
}

// NewBookService creates a book service.
func NewBookService(store store.Store, clk clock.Clock, logger *slog.Logger) *BookService {
	return &BookService{
		store:  store,
		clk:    clk,
		logger: logger,
	}
}

// BookWithProgress pairs a book with the user's shelf progress.
type BookWithProgress struct {
	Book     *domain.Book         `json:"book"`
	Progress *domain.BookProgress `json:"progress"`
}

// Create adds a book to the user's shelf with want_to_read progress.
func (s *BookService) Create(ctx context.Context, userID, title, author string, pageCount int) (*BookWithProgress, error) {
	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := s.clk.Now().UTC()
	book := domain.NewBook(bookID, userID, title, author, pageCount, now)
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}

	progress := domain.NewBookProgress(userID, bookID, now)
	if err := s.store.UpsertBookProgress(ctx, progress); err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}

	s.logger.Info("added book to shelf",
		"book_id", bookID,
		"user_id", userID,
		"title", title,
		"page_count", pageCount)

	return &BookWithProgress{Book: book, Progress: progress}, nil
}

// Get returns one of the user's books with its progress.
func (s *BookService) Get(ctx context.Context, userID, bookID string) (*BookWithProgress, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("book not found")
	}
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}
	if book.UserID != userID {
		return nil, domainerrors.NotFound("book not found")
	}

	progress, err := s.store.GetBookProgress(ctx, userID, bookID)
	if errors.Is(err, store.ErrNotFound) {
		progress = domain.NewBookProgress(userID, bookID, book.CreatedAt)
	} else if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}

	return &BookWithProgress{Book: book, Progress: progress}, nil
}

// List returns the user's shelf, newest additions first.
func (s *BookService) List(ctx context.Context, userID string) ([]*BookWithProgress, error) {
	books, err := s.store.ListBooks(ctx, userID)
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}

	shelf := make([]*BookWithProgress, 0, len(books))
	for _, book := range books {
		progress, err := s.store.GetBookProgress(ctx, userID, book.ID)
		if errors.Is(err, store.ErrNotFound) {
			progress = domain.NewBookProgress(userID, book.ID, book.CreatedAt)
		} else if err != nil {
			return nil, domainerrors.StorageUnavailable(err)
		}
		shelf = append(shelf, &BookWithProgress{Book: book, Progress: progress})
	}
	return shelf, nil
}
