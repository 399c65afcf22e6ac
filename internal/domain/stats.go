package domain

import "time"

// DailyReading represents reading activity for a single day.
type DailyReading struct {
	Date      time.Time `json:"date"`
	Minutes   int       `json:"minutes"`
	PagesRead int       `json:"pages_read"`
	Sessions  int       `json:"sessions"`
}

// StreakDay represents a single day in the streak calendar.
type StreakDay struct {
	Date      time.Time `json:"date"`
	HasRead   bool      `json:"has_read"`
	Minutes   int       `json:"minutes"`
	Intensity int       `json:"intensity"` // 0-4 for visual gradient (0=none, 4=max)
}

// ReadingStats contains the aggregates derived from a user's finalized
// sessions. The current streak is today-anchored: a run that ends yesterday
// counts as zero until the user reads again today.
type ReadingStats struct {
	// Headline numbers
	TotalSessions     int `json:"total_sessions"`
	TotalPagesRead    int `json:"total_pages_read"`
	TotalMinutes      int `json:"total_minutes"`
	AvgSessionMinutes int `json:"avg_session_minutes"`
	BooksCompleted    int `json:"books_completed"`

	// Distribution of session lengths
	MedianSessionMinutes int `json:"median_session_minutes"`
	MaxSessionMinutes    int `json:"max_session_minutes"`

	// Streaks
	CurrentStreakDays int `json:"current_streak_days"`
	LongestStreakDays int `json:"longest_streak_days"`

	// Chart data
	DailyReading []DailyReading `json:"daily_reading,omitempty"`

	// Streak calendar: past 12 weeks (84 days)
	StreakCalendar []StreakDay `json:"streak_calendar,omitempty"`
}
