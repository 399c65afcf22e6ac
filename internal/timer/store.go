package timer

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "timer:"

// Store persists timer checkpoints in a Badger database. Writes are synced
// to disk before returning so a crash between transitions loses at most the
// in-memory tick, never a checkpoint.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the checkpoint store at the given path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // A checkpoint that isn't on disk didn't happen
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open timer store: %w", err)
	}

	if logger != nil {
		logger.Info("Timer checkpoint store opened", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Save writes the state, keyed by its user. One active session per user.
func (st *Store) Save(state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal timer state: %w", err)
	}

	err = st.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+state.UserID), data)
	})
	if err != nil {
		return fmt.Errorf("save timer state for user %s: %w", state.UserID, err)
	}
	return nil
}

// Load returns the user's persisted state, or nil when none exists.
func (st *Store) Load(userID string) (*State, error) {
	var state State
	err := st.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &state)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load timer state for user %s: %w", userID, err)
	}
	return &state, nil
}

// Clear removes the user's state. Clearing an absent key is not an error.
func (st *Store) Clear(userID string) error {
	err := st.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + userID))
	})
	if err != nil {
		return fmt.Errorf("clear timer state for user %s: %w", userID, err)
	}
	return nil
}

// List returns every persisted state, used by stale session cleanup.
func (st *Store) List() ([]State, error) {
	var states []State
	err := st.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var state State
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &state)
			})
			if err != nil {
				return err
			}
			states = append(states, state)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list timer states: %w", err)
	}
	return states, nil
}

// Close closes the underlying database.
func (st *Store) Close() error {
	return st.db.Close()
}
