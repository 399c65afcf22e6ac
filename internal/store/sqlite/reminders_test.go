package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pagepace/pagepace-server/internal/domain"
	"github.com/pagepace/pagepace-server/internal/store"
)

func TestReminderPreferenceRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-r1")

	now := time.Now().UTC()
	pref := domain.NewReminderPreference("user-r1", now)
	if err := s.UpsertReminderPreference(ctx, pref); err != nil {
		t.Fatalf("UpsertReminderPreference: %v", err)
	}

	got, err := s.GetReminderPreference(ctx, "user-r1")
	if err != nil {
		t.Fatalf("GetReminderPreference: %v", err)
	}
	if got.Enabled {
		t.Error("Enabled: expected false")
	}
	if got.TimeOfDay != domain.DefaultReminderTime {
		t.Errorf("TimeOfDay: got %q, want %q", got.TimeOfDay, domain.DefaultReminderTime)
	}

	// Upsert replaces the row.
	pref.Enabled = true
	pref.TimeOfDay = "07:30"
	pref.UpdatedAt = now.Add(time.Minute)
	if err := s.UpsertReminderPreference(ctx, pref); err != nil {
		t.Fatalf("second UpsertReminderPreference: %v", err)
	}

	got, err = s.GetReminderPreference(ctx, "user-r1")
	if err != nil {
		t.Fatalf("GetReminderPreference: %v", err)
	}
	if !got.Enabled {
		t.Error("Enabled: expected true")
	}
	if got.TimeOfDay != "07:30" {
		t.Errorf("TimeOfDay: got %q, want 07:30", got.TimeOfDay)
	}
}

func TestGetReminderPreferenceNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetReminderPreference(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListReminderPreferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, id := range []string{"user-ra", "user-rb"} {
		insertTestUser(t, s, id)
		pref := domain.NewReminderPreference(id, now)
		pref.Enabled = id == "user-ra"
		if err := s.UpsertReminderPreference(ctx, pref); err != nil {
			t.Fatalf("UpsertReminderPreference(%s): %v", id, err)
		}
	}

	prefs, err := s.ListReminderPreferences(ctx)
	if err != nil {
		t.Fatalf("ListReminderPreferences: %v", err)
	}
	if len(prefs) != 2 {
		t.Fatalf("expected 2 preferences, got %d", len(prefs))
	}
	if prefs[0].UserID != "user-ra" || !prefs[0].Enabled {
		t.Errorf("first pref: got %+v", prefs[0])
	}
}

func TestPushSubscriptionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-p1")

	now := time.Now().UTC()
	sub := domain.NewPushSubscription("sub-1", "user-p1", "https://push.example.com/ep1", `{"p256dh":"x","auth":"y"}`, now)
	if err := s.CreatePushSubscription(ctx, sub); err != nil {
		t.Fatalf("CreatePushSubscription: %v", err)
	}

	subs, err := s.ListPushSubscriptions(ctx, "user-p1")
	if err != nil {
		t.Fatalf("ListPushSubscriptions: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}
	if subs[0].Endpoint != sub.Endpoint {
		t.Errorf("Endpoint: got %q, want %q", subs[0].Endpoint, sub.Endpoint)
	}
	if subs[0].Keys != sub.Keys {
		t.Errorf("Keys: got %q, want %q", subs[0].Keys, sub.Keys)
	}

	if err := s.DeletePushSubscription(ctx, "sub-1"); err != nil {
		t.Fatalf("DeletePushSubscription: %v", err)
	}
	subs, err = s.ListPushSubscriptions(ctx, "user-p1")
	if err != nil {
		t.Fatalf("ListPushSubscriptions after delete: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no subscriptions, got %d", len(subs))
	}

	if err := s.DeletePushSubscription(ctx, "sub-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second DeletePushSubscription: expected ErrNotFound, got %v", err)
	}
}

func TestCreatePushSubscriptionDuplicateEndpoint(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insertTestUser(t, s, "user-p2")

	now := time.Now().UTC()
	first := domain.NewPushSubscription("sub-a", "user-p2", "https://push.example.com/dup", "", now)
	if err := s.CreatePushSubscription(ctx, first); err != nil {
		t.Fatalf("CreatePushSubscription: %v", err)
	}

	second := domain.NewPushSubscription("sub-b", "user-p2", "https://push.example.com/dup", "", now)
	err := s.CreatePushSubscription(ctx, second)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}
