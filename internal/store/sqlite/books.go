package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pagepace/pagepace-server/internal/domain"
	"github.com/pagepace/pagepace-server/internal/store"
)

const bookColumns = `id, user_id, title, author, page_count, created_at, updated_at`

const progressColumns = `user_id, book_id, current_page, status, completed_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows so scan helpers can
// serve single-row and list queries.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateBook inserts a new book onto a user's shelf.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	query := fmt.Sprintf(`INSERT INTO books (%s) VALUES (?, ?, ?, ?, ?, ?, ?)`, bookColumns)

	_, err := s.db.ExecContext(ctx, query,
		book.ID,
		book.UserID,
		book.Title,
		book.Author,
		book.PageCount,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", mapConstraintError(err))
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = ?`, bookColumns)

	book, err := scanBook(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}
	return book, nil
}

// ListBooks returns all books on a user's shelf, most recently added first.
func (s *Store) ListBooks(ctx context.Context, userID string) ([]*domain.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE user_id = ? ORDER BY created_at DESC, id`, bookColumns)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// GetBookProgress retrieves a user's shelf progress for one book.
func (s *Store) GetBookProgress(ctx context.Context, userID, bookID string) (*domain.BookProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM book_progress WHERE user_id = ? AND book_id = ?`, progressColumns)

	progress, err := scanBookProgress(s.db.QueryRowContext(ctx, query, userID, bookID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query book progress: %w", err)
	}
	return progress, nil
}

// UpsertBookProgress writes shelf progress, replacing any prior row for the
// same user and book.
func (s *Store) UpsertBookProgress(ctx context.Context, progress *domain.BookProgress) error {
	query := fmt.Sprintf(`INSERT INTO book_progress (%s) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, book_id) DO UPDATE SET
			current_page = excluded.current_page,
			status = excluded.status,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at`, progressColumns)

	_, err := s.db.ExecContext(ctx, query,
		progress.UserID,
		progress.BookID,
		progress.CurrentPage,
		string(progress.Status),
		nullTimeString(progress.CompletedAt),
		formatTime(progress.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert book progress: %w", err)
	}
	return nil
}

// CountCompletedBooks returns how many books the user has finished.
func (s *Store) CountCompletedBooks(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM book_progress WHERE user_id = ? AND status = ?`,
		userID, string(domain.StatusCompleted),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed books: %w", err)
	}
	return count, nil
}

// GetCurrentlyReadingBook returns the book the user most recently touched in
// reading status, or nil when nothing is in progress.
func (s *Store) GetCurrentlyReadingBook(ctx context.Context, userID string) (*domain.Book, error) {
	query := `SELECT b.id, b.user_id, b.title, b.author, b.page_count, b.created_at, b.updated_at
		FROM books b
		JOIN book_progress p ON p.book_id = b.id AND p.user_id = b.user_id
		WHERE b.user_id = ? AND p.status = ?
		ORDER BY p.updated_at DESC LIMIT 1`

	book, err := scanBook(s.db.QueryRowContext(ctx, query, userID, string(domain.StatusReading)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query currently reading book: %w", err)
	}
	return book, nil
}

func scanBook(row rowScanner) (*domain.Book, error) {
	var (
		book               domain.Book
		createdAt, updated string
	)
	err := row.Scan(
		&book.ID,
		&book.UserID,
		&book.Title,
		&book.Author,
		&book.PageCount,
		&createdAt,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	if book.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if book.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &book, nil
}

func scanBookProgress(row rowScanner) (*domain.BookProgress, error) {
	var (
		progress    domain.BookProgress
		status      string
		completedAt sql.NullString
		updated     string
	)
	err := row.Scan(
		&progress.UserID,
		&progress.BookID,
		&progress.CurrentPage,
		&status,
		&completedAt,
		&updated,
	)
	if err != nil {
		return nil, err
	}

	progress.Status = domain.ReadingStatus(status)
	if progress.CompletedAt, err = parseNullableTime(completedAt); err != nil {
		return nil, fmt.Errorf("parse completed_at: %w", err)
	}
	if progress.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &progress, nil
}
