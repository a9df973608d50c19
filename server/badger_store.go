package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
)

const (
	badgerPlayerPrefix  = "player:"
	badgerUserPrefix    = "user:"
	badgerSettingPrefix = "setting:"
	badgerTxnRetries    = 5
)

// BadgerStore is the embedded key-value profile store. Each profile is one
// JSON record; a second key maps the lower-cased username to the id.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a badger directory at path
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the store
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func playerKey(id string) []byte {
	return []byte(badgerPlayerPrefix + id)
}

func userKey(username string) []byte {
	return []byte(badgerUserPrefix + strings.ToLower(strings.TrimSpace(username)))
}

// update runs fn in a read-write transaction, retrying on conflicts
func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < badgerTxnRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func getProfile(txn *badger.Txn, id string) (*Profile, error) {
	item, err := txn.Get(playerKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	p := &Profile{}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, p)
	})
	if err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}
	if p.HullUpgrades == nil {
		p.HullUpgrades = map[string]int{}
	}
	if p.GunUpgrades == nil {
		p.GunUpgrades = map[string]int{}
	}
	return p, nil
}

func putProfile(txn *badger.Txn, p *Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.ID, err)
	}
	return txn.Set(playerKey(p.ID), data)
}

// CreateProfile inserts a new profile and claims its username
func (s *BadgerStore) CreateProfile(ctx context.Context, p *Profile) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		_, err := txn.Get(userKey(p.Username))
		if err == nil {
			return ErrUsernameTaken
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(userKey(p.Username), []byte(p.ID)); err != nil {
			return err
		}
		return putProfile(txn, p)
	})
}

// ProfileByUsername looks a profile up case-insensitively
func (s *BadgerStore) ProfileByUsername(ctx context.Context, username string) (*Profile, error) {
	var p *Profile
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrProfileNotFound
		}
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		p, err = getProfile(txn, string(id))
		return err
	})
	return p, err
}

// Profile looks a profile up by id
func (s *BadgerStore) Profile(ctx context.Context, id string) (*Profile, error) {
	var p *Profile
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		p, err = getProfile(txn, id)
		return err
	})
	return p, err
}

// UpdateProfile applies fn to one profile in a single transaction
func (s *BadgerStore) UpdateProfile(ctx context.Context, id string, fn func(*Profile) error) (*Profile, error) {
	var out *Profile
	err := s.update(ctx, func(txn *badger.Txn) error {
		p, err := getProfile(txn, id)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
		p.LastSeen = time.Now().UTC()
		out = p
		return putProfile(txn, p)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Leaderboard scans every registered profile and sorts in memory
func (s *BadgerStore) Leaderboard(ctx context.Context, sortBy string, limit int) ([]LeaderboardEntry, error) {
	sortBy, limit = normalizeLeaderboard(sortBy, limit)
	entries := []LeaderboardEntry{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerPlayerPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var p Profile
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			}); err != nil {
				return err
			}
			if !p.Guest {
				entries = append(entries, newLeaderboardEntry(&p))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sortLeaderboard(entries, sortBy, limit), nil
}

// Setting returns a stored setting, "" when unset
func (s *BadgerStore) Setting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerSettingPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		b, err := item.ValueCopy(nil)
		v = string(b)
		return err
	})
	return v, err
}

// SetSetting stores a setting
func (s *BadgerStore) SetSetting(ctx context.Context, key, value string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerSettingPrefix+key), []byte(value))
	})
}
