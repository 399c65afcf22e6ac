package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNew_FormatFollowsEnvironment(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{Writer: &buf, Environment: "production"})
	log.Info("reminder dispatch run finished", "users_due", 3)
	if !strings.Contains(buf.String(), `"users_due":3`) {
		t.Errorf("production should log JSON, got: %s", buf.String())
	}

	buf.Reset()
	log = New(Config{Writer: &buf, Environment: "development"})
	log.Info("reminder dispatch run finished", "users_due", 3)
	if strings.Contains(buf.String(), `"users_due"`) {
		t.Errorf("development should log pretty, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "users_due=3") {
		t.Errorf("pretty output should carry key=value attrs, got: %s", buf.String())
	}
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer

	log := New(Config{Writer: &buf, Environment: "development", Format: "json"})
	log.Info("session finalized", "pages_read", 15)
	if !strings.Contains(buf.String(), `"pages_read":15`) {
		t.Errorf("explicit json format should override environment, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPrettyHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	r := slog.NewRecord(time.Date(2026, 3, 14, 19, 42, 7, 0, time.UTC), slog.LevelInfo, "session started", 0)
	r.AddAttrs(slog.String("user_id", "reader-ada"), slog.Int("start_page", 50))

	if err := h.Handle(t.Context(), r); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"19:42:07", "INF", "session started", "user_id=reader-ada", "start_page=50"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("output should end with a newline")
	}
}

func TestPrettyHandler_LevelBadges(t *testing.T) {
	tests := []struct {
		level slog.Level
		badge string
	}{
		{slog.LevelDebug, "DBG"},
		{slog.LevelInfo, "INF"},
		{slog.LevelWarn, "WRN"},
		{slog.LevelError, "ERR"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

		r := slog.NewRecord(time.Now(), tt.level, "checkpoint saved", 0)
		if err := h.Handle(t.Context(), r); err != nil {
			t.Fatalf("Handle() error: %v", err)
		}
		if !strings.Contains(buf.String(), tt.badge) {
			t.Errorf("level %v: output missing badge %q: %s", tt.level, tt.badge, buf.String())
		}
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("info should be filtered below a warn threshold")
	}
	if !h.Enabled(t.Context(), slog.LevelError) {
		t.Error("error should pass a warn threshold")
	}

	// Default threshold is info.
	h = NewPrettyHandler(&bytes.Buffer{}, nil)
	if h.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("debug should be filtered by the default threshold")
	}
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).With("run_id", "run-1")

	log.Info("reminder sent", "endpoint_host", "push.example.com")

	out := buf.String()
	if !strings.Contains(out, "run_id=run-1") {
		t.Errorf("output missing carried attr: %s", out)
	}
	if !strings.Contains(out, "endpoint_host=push.example.com") {
		t.Errorf("output missing record attr: %s", out)
	}
}

func TestPrettyHandler_WithGroupPrefixesKeys(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).WithGroup("timer")

	log.Info("checkpoint saved", "session_id", "session-1")

	if !strings.Contains(buf.String(), "timer.session_id=session-1") {
		t.Errorf("group should prefix attr keys: %s", buf.String())
	}
}

func TestPrettyHandler_ValueFormatting(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	at := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	log.Info("session stale",
		"idle", 6*time.Hour,
		"started_at", at,
		"paused", true,
	)

	out := buf.String()
	for _, want := range []string{"idle=6h0m0s", "started_at=2026-03-14T20:00:00Z", "paused=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Level: slog.LevelWarn, Format: "pretty"})

	log.Debug("badger sync")
	log.Info("session started")
	log.Warn("checkpoint stale")

	out := buf.String()
	if strings.Contains(out, "session started") {
		t.Errorf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "checkpoint stale") {
		t.Errorf("warn should be logged at warn level: %s", out)
	}
}
