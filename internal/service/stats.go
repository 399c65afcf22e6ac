package service

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/pagepace/pagepace-server/internal/clock"
	"github.com/pagepace/pagepace-server/internal/domain"
	domainerrors "github.com/pagepace/pagepace-server/internal/errors"
	"github.com/pagepace/pagepace-server/internal/store"
)

// streakCalendarDays is the window of the streak calendar: twelve weeks.
const streakCalendarDays = 84

// StatsService derives reading aggregates from finalized sessions. Day
// boundaries are taken in a single reference timezone for all users.
type StatsService struct {
	store  store.Store
	clk    clock.Clock
	loc    *time.Location
	logger *slog.Logger
}

// NewStatsService creates a stats service. loc is the reference timezone for
// day bucketing.
func NewStatsService(store store.Store, clk clock.Clock, loc *time.Location, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		clk:    clk,
		loc:    loc,
		logger: logger,
	}
}

// Compute builds the full stats view for a user. All aggregates come from
// finalized sessions only; an in-progress session contributes nothing.
func (s *StatsService) Compute(ctx context.Context, userID string) (*domain.ReadingStats, error) {
	sessions, err := s.store.ListFinalizedSessions(ctx, userID)
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}

	completed, err := s.store.CountCompletedBooks(ctx, userID)
	if err != nil {
		return nil, domainerrors.StorageUnavailable(err)
	}

	result := &domain.ReadingStats{
		TotalSessions:  len(sessions),
		BooksCompleted: completed,
	}

	totalSeconds := 0
	durations := make([]float64, 0, len(sessions))
	daily := make(map[time.Time]*domain.DailyReading)

	for _, session := range sessions {
		result.TotalPagesRead += session.PagesRead
		totalSeconds += session.DurationSeconds
		durations = append(durations, float64(session.DurationSeconds))

		day := s.dayOf(*session.EndedAt)
		bucket, ok := daily[day]
		if !ok {
			bucket = &domain.DailyReading{Date: day}
			daily[day] = bucket
		}
		bucket.Minutes += roundToMinutes(session.DurationSeconds)
		bucket.PagesRead += session.PagesRead
		bucket.Sessions++
	}

	result.TotalMinutes = roundToMinutes(totalSeconds)
	if len(durations) > 0 {
		mean, _ := stats.Mean(durations)
		median, _ := stats.Median(durations)
		longest, _ := stats.Max(durations)
		result.AvgSessionMinutes = roundToMinutes(int(math.Round(mean)))
		result.MedianSessionMinutes = roundToMinutes(int(math.Round(median)))
		result.MaxSessionMinutes = roundToMinutes(int(longest))
	}

	today := s.dayOf(s.clk.Now())
	result.CurrentStreakDays = currentStreak(daily, today)
	result.LongestStreakDays = longestStreak(daily)
	result.DailyReading = sortedDailyReading(daily)
	result.StreakCalendar = buildStreakCalendar(daily, today)

	return result, nil
}

// dayOf truncates a timestamp to midnight in the reference timezone.
func (s *StatsService) dayOf(t time.Time) time.Time {
	local := t.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

// currentStreak counts consecutive reading days ending today. A run that
// stopped yesterday is worth zero.
func currentStreak(daily map[time.Time]*domain.DailyReading, today time.Time) int {
	if _, ok := daily[today]; !ok {
		return 0
	}
	streak := 0
	for day := today; ; day = day.AddDate(0, 0, -1) {
		if _, ok := daily[day]; !ok {
			break
		}
		streak++
	}
	return streak
}

// longestStreak finds the longest run of consecutive reading days anywhere in
// the history.
func longestStreak(daily map[time.Time]*domain.DailyReading) int {
	days := make([]time.Time, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	longest, run := 0, 0
	for i, day := range days {
		if i > 0 && days[i-1].AddDate(0, 0, 1).Equal(day) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

func sortedDailyReading(daily map[time.Time]*domain.DailyReading) []domain.DailyReading {
	out := make([]domain.DailyReading, 0, len(daily))
	for _, bucket := range daily {
		out = append(out, *bucket)
	}
	slices.SortFunc(out, func(a, b domain.DailyReading) int { return a.Date.Compare(b.Date) })
	return out
}

// buildStreakCalendar returns the trailing twelve weeks ending today, oldest
// day first.
func buildStreakCalendar(daily map[time.Time]*domain.DailyReading, today time.Time) []domain.StreakDay {
	calendar := make([]domain.StreakDay, 0, streakCalendarDays)
	for offset := streakCalendarDays - 1; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		entry := domain.StreakDay{Date: day}
		if bucket, ok := daily[day]; ok {
			entry.HasRead = true
			entry.Minutes = bucket.Minutes
			entry.Intensity = intensityFor(bucket.Minutes)
		}
		calendar = append(calendar, entry)
	}
	return calendar
}

// intensityFor maps minutes read in a day to the 1-4 gradient bucket.
func intensityFor(minutes int) int {
	switch {
	case minutes > 60:
		return 4
	case minutes > 30:
		return 3
	case minutes > 15:
		return 2
	default:
		return 1
	}
}

// roundToMinutes converts seconds to whole minutes, rounding halves up.
func roundToMinutes(seconds int) int {
	return int(math.Round(float64(seconds) / 60.0))
}
