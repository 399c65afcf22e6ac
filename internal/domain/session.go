package domain

import "time"

// ReadingSession is one reading sitting for a book. It is created when the
// user starts the timer and finalized exactly once when they stop; after
// finalization the record is immutable.
type ReadingSession struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	BookID          string     `json:"book_id"`
	StartPage       int        `json:"start_page"`
	EndPage         *int       `json:"end_page,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds int        `json:"duration_seconds"` // active time only, excludes pauses
	PagesRead       int        `json:"pages_read"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewReadingSession creates an in-progress session starting at the given page.
func NewReadingSession(id, userID, bookID string, startPage int, now time.Time) *ReadingSession {
	return &ReadingSession{
		ID:        id,
		UserID:    userID,
		BookID:    bookID,
		StartPage: startPage,
		StartedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsFinalized returns true once the session has been committed.
func (s *ReadingSession) IsFinalized() bool {
	return s.EndedAt != nil
}

// Finalize fills in the end-of-session fields. Callers validate the end page
// and compute the active duration before calling; Finalize only records.
func (s *ReadingSession) Finalize(endPage, durationSeconds int, now time.Time) {
	s.EndPage = &endPage
	s.EndedAt = &now
	s.DurationSeconds = durationSeconds
	s.PagesRead = endPage - s.StartPage
	s.UpdatedAt = now
}
