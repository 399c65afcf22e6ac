package domain

import (
	"testing"
	"time"
)

func TestNewReadingSession(t *testing.T) {
	now := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	s := NewReadingSession("session-1", "user-1", "book-1", 50, now)

	if s.IsFinalized() {
		t.Error("new session should not be finalized")
	}
	if s.StartPage != 50 {
		t.Errorf("start page = %d, want 50", s.StartPage)
	}
	if !s.StartedAt.Equal(now) {
		t.Errorf("started at = %v, want %v", s.StartedAt, now)
	}
}

func TestReadingSession_Finalize(t *testing.T) {
	start := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	end := start.Add(20 * time.Minute)

	s := NewReadingSession("session-1", "user-1", "book-1", 50, start)
	s.Finalize(65, 900, end)

	if !s.IsFinalized() {
		t.Fatal("session should be finalized")
	}
	if *s.EndPage != 65 {
		t.Errorf("end page = %d, want 65", *s.EndPage)
	}
	if s.PagesRead != 15 {
		t.Errorf("pages read = %d, want 15", s.PagesRead)
	}
	if s.DurationSeconds != 900 {
		t.Errorf("duration = %d, want 900", s.DurationSeconds)
	}
	if !s.EndedAt.Equal(end) {
		t.Errorf("ended at = %v, want %v", s.EndedAt, end)
	}
}
