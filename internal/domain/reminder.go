package domain

import (
	"fmt"
	"time"
)

// DefaultReminderTime is the preferred reading time users start with.
const DefaultReminderTime = "20:00"

// ReminderPreference is a user's daily reading reminder setting. TimeOfDay
// is a wall-clock "HH:MM" in the server's reference timezone; no per-user
// timezone is modeled.
type ReminderPreference struct {
	UserID    string    `json:"user_id"`
	Enabled   bool      `json:"enabled"`
	TimeOfDay string    `json:"time_of_day"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewReminderPreference creates a disabled preference at the default time.
func NewReminderPreference(userID string, now time.Time) *ReminderPreference {
	return &ReminderPreference{
		UserID:    userID,
		Enabled:   false,
		TimeOfDay: DefaultReminderTime,
		UpdatedAt: now,
	}
}

// MinutesSinceMidnight parses TimeOfDay into minutes past midnight.
func (p *ReminderPreference) MinutesSinceMidnight() (int, error) {
	return ParseTimeOfDay(p.TimeOfDay)
}

// ParseTimeOfDay converts an "HH:MM" string to minutes past midnight.
func ParseTimeOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// PushSubscription is one push endpoint registered by a user's browser or
// device. Keys is the opaque key material the push transport needs; this
// server stores and forwards it without interpreting it.
type PushSubscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	Keys      string    `json:"keys,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPushSubscription registers a push endpoint for a user.
func NewPushSubscription(id, userID, endpoint, keys string, now time.Time) *PushSubscription {
	return &PushSubscription{
		ID:        id,
		UserID:    userID,
		Endpoint:  endpoint,
		Keys:      keys,
		CreatedAt: now,
	}
}
