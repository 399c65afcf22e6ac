package domain

import (
	"testing"
	"time"
)

func TestReadingStatus_Valid(t *testing.T) {
	for _, s := range []ReadingStatus{StatusWantToRead, StatusReading, StatusCompleted} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if ReadingStatus("finished").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestBookProgress_ApplyPage(t *testing.T) {
	now := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	p := NewBookProgress("user-1", "book-1", now)

	if p.Status != StatusWantToRead {
		t.Fatalf("new progress status = %q, want %q", p.Status, StatusWantToRead)
	}

	p.ApplyPage(100, 412, now)
	if p.Status != StatusReading {
		t.Errorf("status = %q, want %q", p.Status, StatusReading)
	}
	if p.CurrentPage != 100 {
		t.Errorf("current page = %d, want 100", p.CurrentPage)
	}
	if p.CompletedAt != nil {
		t.Error("mid-book progress should not be completed")
	}

	p.ApplyPage(412, 412, now)
	if !p.IsCompleted() {
		t.Error("reaching the last page should complete the book")
	}
	if p.CompletedAt == nil || !p.CompletedAt.Equal(now) {
		t.Errorf("completed at = %v, want %v", p.CompletedAt, now)
	}
}

func TestBookProgress_ApplyPageUnknownCount(t *testing.T) {
	now := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	p := NewBookProgress("user-1", "book-1", now)

	// Page count 0 means unknown, so no page ever completes the book.
	p.ApplyPage(9000, 0, now)
	if p.Status != StatusReading {
		t.Errorf("status = %q, want %q", p.Status, StatusReading)
	}
	if p.CompletedAt != nil {
		t.Error("unknown page count should never auto-complete")
	}
}

func TestBookProgress_RereadKeepsCompletedAt(t *testing.T) {
	first := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	p := NewBookProgress("user-1", "book-1", first)
	p.ApplyPage(412, 412, first)
	p.ApplyPage(420, 412, later)

	if p.CompletedAt == nil || !p.CompletedAt.Equal(first) {
		t.Errorf("completed at = %v, want original %v", p.CompletedAt, first)
	}
}
