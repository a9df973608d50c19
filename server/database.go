package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	itemHull = "hull"
	itemGun  = "gun"
)

// DB is the SQLite profile store
type DB struct {
	conn *sql.DB
}

// dbtx is satisfied by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; transactions serialize on this connection
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		username_lower TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		is_guest INTEGER NOT NULL DEFAULT 0,
		money INTEGER NOT NULL DEFAULT 0,
		xp INTEGER NOT NULL DEFAULT 0,
		equipped_hull TEXT NOT NULL,
		equipped_gun TEXT NOT NULL,
		created_at TEXT NOT NULL,
		last_seen TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stats (
		player_id TEXT PRIMARY KEY REFERENCES players(id) ON DELETE CASCADE,
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		flag_captures INTEGER NOT NULL DEFAULT 0,
		flag_returns INTEGER NOT NULL DEFAULT 0,
		damage_dealt INTEGER NOT NULL DEFAULT 0,
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		games_played INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS items (
		player_id TEXT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		item_id TEXT NOT NULL,
		level INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (player_id, kind, item_id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS battle_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		match_no INTEGER NOT NULL DEFAULT 0,
		player_id TEXT,
		target_id TEXT,
		team TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_battle_events_player ON battle_events(player_id);
	CREATE INDEX IF NOT EXISTS idx_battle_events_type ON battle_events(event_type);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// CreateProfile inserts a new profile. Usernames are unique without regard to case.
func (db *DB) CreateProfile(ctx context.Context, p *Profile) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM players WHERE username_lower = ?", strings.ToLower(p.Username),
	).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrUsernameTaken
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO players (id, username, username_lower, pass_hash, is_guest, money, xp,
			equipped_hull, equipped_gun, created_at, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Username, strings.ToLower(p.Username), p.PassHash, p.Guest, p.Money, p.XP,
		p.EquippedHull, p.EquippedGun, formatTime(p.CreatedAt), formatTime(p.LastSeen),
	)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO stats (player_id) VALUES (?)", p.ID); err != nil {
		return fmt.Errorf("insert stats: %w", err)
	}
	if err := writeStats(ctx, tx, p); err != nil {
		return err
	}
	if err := writeItems(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit()
}

// ProfileByUsername looks a profile up case-insensitively
func (db *DB) ProfileByUsername(ctx context.Context, username string) (*Profile, error) {
	return loadProfile(ctx, db.conn, "username_lower = ?", strings.ToLower(strings.TrimSpace(username)))
}

// Profile looks a profile up by id
func (db *DB) Profile(ctx context.Context, id string) (*Profile, error) {
	return loadProfile(ctx, db.conn, "id = ?", id)
}

// UpdateProfile loads, mutates and writes one profile in a single transaction
func (db *DB) UpdateProfile(ctx context.Context, id string, fn func(*Profile) error) (*Profile, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := loadProfile(ctx, tx, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.LastSeen = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE players SET money = ?, xp = ?, equipped_hull = ?, equipped_gun = ?, last_seen = ?
		WHERE id = ?`,
		p.Money, p.XP, p.EquippedHull, p.EquippedGun, formatTime(p.LastSeen), p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update player: %w", err)
	}
	if err := writeStats(ctx, tx, p); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE player_id = ?", p.ID); err != nil {
		return nil, fmt.Errorf("clear items: %w", err)
	}
	if err := writeItems(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

func writeStats(ctx context.Context, q dbtx, p *Profile) error {
	s := p.Stats
	_, err := q.ExecContext(ctx, `
		UPDATE stats SET kills = ?, deaths = ?, flag_captures = ?, flag_returns = ?,
			damage_dealt = ?, wins = ?, losses = ?, games_played = ?
		WHERE player_id = ?`,
		s.Kills, s.Deaths, s.FlagCaptures, s.FlagReturns, s.DamageDealt, s.Wins, s.Losses, s.GamesPlayed, p.ID,
	)
	if err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	return nil
}

func writeItems(ctx context.Context, q dbtx, p *Profile) error {
	insert := func(kind, id string, level int) error {
		_, err := q.ExecContext(ctx,
			"INSERT INTO items (player_id, kind, item_id, level) VALUES (?, ?, ?, ?)",
			p.ID, kind, id, level,
		)
		if err != nil {
			return fmt.Errorf("write %s %s: %w", kind, id, err)
		}
		return nil
	}
	for _, id := range p.OwnedHulls {
		if err := insert(itemHull, id, p.HullUpgrades[id]); err != nil {
			return err
		}
	}
	for _, id := range p.OwnedGuns {
		if err := insert(itemGun, id, p.GunUpgrades[id]); err != nil {
			return err
		}
	}
	return nil
}

func loadProfile(ctx context.Context, q dbtx, where string, arg interface{}) (*Profile, error) {
	p := &Profile{HullUpgrades: map[string]int{}, GunUpgrades: map[string]int{}}
	var created, seen string
	err := q.QueryRowContext(ctx, `
		SELECT p.id, p.username, p.pass_hash, p.is_guest, p.money, p.xp, p.equipped_hull, p.equipped_gun,
			p.created_at, p.last_seen,
			s.kills, s.deaths, s.flag_captures, s.flag_returns, s.damage_dealt, s.wins, s.losses, s.games_played
		FROM players p JOIN stats s ON s.player_id = p.id
		WHERE p.`+where, arg,
	).Scan(&p.ID, &p.Username, &p.PassHash, &p.Guest, &p.Money, &p.XP, &p.EquippedHull, &p.EquippedGun,
		&created, &seen,
		&p.Stats.Kills, &p.Stats.Deaths, &p.Stats.FlagCaptures, &p.Stats.FlagReturns,
		&p.Stats.DamageDealt, &p.Stats.Wins, &p.Stats.Losses, &p.Stats.GamesPlayed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(created)
	p.LastSeen = parseTime(seen)

	rows, err := q.QueryContext(ctx,
		"SELECT kind, item_id, level FROM items WHERE player_id = ? ORDER BY rowid", p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind, id string
		var level int
		if err := rows.Scan(&kind, &id, &level); err != nil {
			return nil, err
		}
		switch kind {
		case itemHull:
			p.OwnedHulls = append(p.OwnedHulls, id)
			p.HullUpgrades[id] = level
		case itemGun:
			p.OwnedGuns = append(p.OwnedGuns, id)
			p.GunUpgrades[id] = level
		}
	}
	return p, rows.Err()
}

// Leaderboard returns top registered players sorted by the given key
func (db *DB) Leaderboard(ctx context.Context, sortBy string, limit int) ([]LeaderboardEntry, error) {
	sortBy, limit = normalizeLeaderboard(sortBy, limit)
	cols := map[string]string{
		"xp":       "p.xp",
		"kills":    "s.kills",
		"captures": "s.flag_captures",
		"money":    "p.money",
		"kd":       "CASE WHEN s.deaths > 0 THEN CAST(s.kills AS REAL)/s.deaths ELSE s.kills END",
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.username, p.xp, p.money, s.kills, s.deaths, s.flag_captures
		FROM players p JOIN stats s ON s.player_id = p.id
		WHERE p.is_guest = 0
		ORDER BY `+cols[sortBy]+` DESC, p.username ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.XP, &e.Money, &e.Kills, &e.Deaths, &e.FlagCaptures); err != nil {
			return nil, err
		}
		e.Position = len(result) + 1
		e.Rank = RankForXP(e.XP)
		e.KD = killDeath(e.Kills, e.Deaths)
		result = append(result, e)
	}
	return result, rows.Err()
}

// Setting returns a stored setting, "" when unset
func (db *DB) Setting(ctx context.Context, key string) (string, error) {
	var v string
	err := db.conn.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

// SetSetting upserts a setting
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// InsertEvents writes a batch of battle events in one transaction
func (db *DB) InsertEvents(ctx context.Context, events []BattleEvent) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO battle_events (event_type, match_no, player_id, target_id, team, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		_, err := stmt.ExecContext(ctx, ev.Type, ev.Match,
			sql.NullString{String: ev.PlayerID, Valid: ev.PlayerID != ""},
			sql.NullString{String: ev.TargetID, Valid: ev.TargetID != ""},
			sql.NullString{String: ev.Team, Valid: ev.Team != ""},
			formatTime(ev.At),
		)
		if err != nil {
			return fmt.Errorf("insert %s event: %w", ev.Type, err)
		}
	}
	return tx.Commit()
}

// CountEvents returns how many events of a type were logged
func (db *DB) CountEvents(ctx context.Context, eventType string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM battle_events WHERE event_type = ?", eventType).Scan(&n)
	return n, err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
