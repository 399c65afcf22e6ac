// Package main provides a tool to seed the database with test reading data.
//
// It creates a handful of users with books on their shelves and two weeks of
// finalized reading sessions, enough to exercise the stats and reminder
// surfaces against realistic data.
//
// Usage:
//
//	DATA_PATH=~/PagePace/data go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/pagepace/pagepace-server/internal/config"
	"github.com/pagepace/pagepace-server/internal/domain"
	"github.com/pagepace/pagepace-server/internal/id"
	"github.com/pagepace/pagepace-server/internal/logger"
	"github.com/pagepace/pagepace-server/internal/store"
	"github.com/pagepace/pagepace-server/internal/store/sqlite"
)

type seedBook struct {
	title     string
	author    string
	pageCount int
}

var catalog = []seedBook{
	{"Dune", "Frank Herbert", 412},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", 304},
	{"Piranesi", "Susanna Clarke", 245},
	{"Project Hail Mary", "Andy Weir", 476},
	{"The Name of the Wind", "Patrick Rothfuss", 662},
	{"A Memory Called Empire", "Arkady Martine", 462},
	{"Notes from a Small Island", "Bill Bryson", 324},
	{"The Overstory", "Richard Powers", 502},
}

var readers = []struct {
	id          string
	displayName string
}{
	{"reader-ada", "Ada"},
	{"reader-bram", "Bram"},
	{"reader-clio", "Clio"},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Opening database at: %s\n", cfg.Data.DatabasePath)

	slogger := logger.New(logger.Config{Level: logger.ParseLevel("warn")})
	s, err := sqlite.Open(cfg.Data.DatabasePath, slogger.Logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, r := range readers {
		if err := seedReader(ctx, s, rng, r.id, r.displayName); err != nil {
			log.Fatalf("Failed to seed %s: %v", r.id, err)
		}
	}

	fmt.Println("Done.")
}

func seedReader(ctx context.Context, s *sqlite.Store, rng *rand.Rand, userID, displayName string) error {
	now := time.Now().UTC()

	user := domain.NewUser(userID, userID+"@users.local", displayName, now)
	if err := s.CreateUser(ctx, user); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("\nSeeding data for user: %s\n", userID)

	// Put 3-4 random catalog books on the shelf.
	shuffled := make([]seedBook, len(catalog))
	copy(shuffled, catalog)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	books := shuffled[:3+rng.Intn(2)]

	for _, sb := range books {
		bookID, err := id.Generate("book")
		if err != nil {
			return err
		}
		book := domain.NewBook(bookID, userID, sb.title, sb.author, sb.pageCount, now)
		if err := s.CreateBook(ctx, book); err != nil {
			return fmt.Errorf("create book: %w", err)
		}

		progress := domain.NewBookProgress(userID, bookID, now)
		currentPage := 0

		// Two weeks of sessions. Always read today and yesterday so the
		// current streak is active; other days read with 80% probability.
		sessionsCreated := 0
		for day := 13; day >= 0; day-- {
			if day > 1 && rng.Float32() > 0.8 {
				continue
			}

			startedAt := now.AddDate(0, 0, -day).Add(-time.Duration(rng.Intn(120)) * time.Minute)
			pages := 8 + rng.Intn(25)
			endPage := min(currentPage+pages, sb.pageCount)
			durationSeconds := (10 + rng.Intn(50)) * 60

			sessionID, err := id.Generate("session")
			if err != nil {
				return err
			}

			session := domain.NewReadingSession(sessionID, userID, bookID, currentPage, startedAt)
			if err := s.CreateSession(ctx, session); err != nil {
				return fmt.Errorf("create session: %w", err)
			}

			endedAt := startedAt.Add(time.Duration(durationSeconds) * time.Second)
			session.Finalize(endPage, durationSeconds, endedAt)
			if err := s.FinalizeSession(ctx, session); err != nil {
				return fmt.Errorf("finalize session: %w", err)
			}

			progress.ApplyPage(endPage, sb.pageCount, endedAt)
			currentPage = endPage
			sessionsCreated++

			if currentPage >= sb.pageCount {
				break
			}
		}

		if err := s.UpsertBookProgress(ctx, progress); err != nil {
			return fmt.Errorf("upsert progress: %w", err)
		}

		fmt.Printf("  %-35s %3d/%3d pages, %d sessions\n", sb.title, currentPage, sb.pageCount, sessionsCreated)
	}

	// Evening reminder, enabled.
	pref := domain.NewReminderPreference(userID, now)
	pref.Enabled = true
	pref.TimeOfDay = fmt.Sprintf("%02d:%02d", 19+rng.Intn(3), 15*rng.Intn(4))
	if err := s.UpsertReminderPreference(ctx, pref); err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}

	return nil
}
