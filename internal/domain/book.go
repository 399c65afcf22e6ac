// Package domain contains the core business entities and domain logic for the PagePace reading tracker.
package domain

import "time"

// MaxPageNumber is the upper bound for any page input. No real book comes
// close; anything above it is treated as malformed input.
const MaxPageNumber = 50000

// ReadingStatus describes where a book sits on a user's shelf.
type ReadingStatus string

// Reading statuses.
const (
	StatusWantToRead ReadingStatus = "want_to_read"
	StatusReading    ReadingStatus = "reading"
	StatusCompleted  ReadingStatus = "completed"
)

// Valid returns true for a known status value.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusWantToRead, StatusReading, StatusCompleted:
		return true
	}
	return false
}

// Book is a title on a user's shelf. PageCount of 0 means the total is
// unknown, in which case completion is never derived automatically.
type Book struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	PageCount int       `json:"page_count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBook creates a book owned by a user.
func NewBook(id, userID, title, author string, pageCount int, now time.Time) *Book {
	return &Book{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Author:    author,
		PageCount: pageCount,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BookProgress is the user's position in a book. Invariant: Status is
// completed exactly when CompletedAt is set, which happens exactly when
// CurrentPage has reached a known page count.
type BookProgress struct {
	UserID      string        `json:"user_id"`
	BookID      string        `json:"book_id"`
	CurrentPage int           `json:"current_page"`
	Status      ReadingStatus `json:"status"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewBookProgress creates shelf progress for a book, starting as want_to_read.
func NewBookProgress(userID, bookID string, now time.Time) *BookProgress {
	return &BookProgress{
		UserID:    userID,
		BookID:    bookID,
		Status:    StatusWantToRead,
		UpdatedAt: now,
	}
}

// ApplyPage moves progress to the given page and re-derives completion.
// A pageCount of 0 (unknown) never auto-completes; re-reading past the end
// of an already-completed book keeps the original CompletedAt.
func (p *BookProgress) ApplyPage(page, pageCount int, now time.Time) {
	p.CurrentPage = page
	if pageCount > 0 && page >= pageCount {
		p.Status = StatusCompleted
		if p.CompletedAt == nil {
			p.CompletedAt = &now
		}
	} else {
		p.Status = StatusReading
		p.CompletedAt = nil
	}
	p.UpdatedAt = now
}

// IsCompleted returns true once the book has been finished.
func (p *BookProgress) IsCompleted() bool {
	return p.Status == StatusCompleted
}
