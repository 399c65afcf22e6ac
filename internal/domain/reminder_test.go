package domain

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		minutes int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"07:30", 450, false},
		{"20:00", 1200, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9pm", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.minutes {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tt.input, got, tt.minutes)
		}
	}
}

func TestNewReminderPreferenceDefaults(t *testing.T) {
	now := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	pref := NewReminderPreference("user-1", now)

	if pref.Enabled {
		t.Error("new preference should start disabled")
	}
	if pref.TimeOfDay != DefaultReminderTime {
		t.Errorf("time of day = %q, want %q", pref.TimeOfDay, DefaultReminderTime)
	}
	if _, err := pref.MinutesSinceMidnight(); err != nil {
		t.Errorf("default time should parse: %v", err)
	}
}
