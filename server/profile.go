package main

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"
)

const (
	startingMoney  = 5000
	maxLeaderboard = 100
)

// Validation errors. Their text is sent to clients as-is.
var (
	ErrInvalidSession  = errors.New("Invalid session")
	ErrProfileNotFound = errors.New("Player data not found")
	ErrUsernameTaken   = errors.New("Username already taken")
	ErrBadCredentials  = errors.New("Invalid username or password")
	ErrNotEnoughMoney  = errors.New("Not enough money")
	ErrHullNotFound    = errors.New("Hull not found")
	ErrHullOwned       = errors.New("Hull already owned")
	ErrHullNotOwned    = errors.New("Hull not owned")
	ErrHullMaxLevel    = errors.New("Hull already at max level")
	ErrGunNotFound     = errors.New("Gun not found")
	ErrGunOwned        = errors.New("Gun already owned")
	ErrGunNotOwned     = errors.New("Gun not owned")
	ErrGunMaxLevel     = errors.New("Gun already at max level")
)

// ProfileStats are lifetime counters
type ProfileStats struct {
	Kills        int `json:"kills"`
	Deaths       int `json:"deaths"`
	FlagCaptures int `json:"flagCaptures"`
	FlagReturns  int `json:"flagReturns"`
	DamageDealt  int `json:"damageDealt"`
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	GamesPlayed  int `json:"gamesPlayed"`
}

// Profile is a persisted player record
type Profile struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	PassHash     string         `json:"passHash,omitempty"`
	Guest        bool           `json:"guest"`
	Money        int            `json:"money"`
	XP           int            `json:"xp"`
	OwnedHulls   []string       `json:"ownedHulls"`
	OwnedGuns    []string       `json:"ownedGuns"`
	EquippedHull string         `json:"equippedHull"`
	EquippedGun  string         `json:"equippedGun"`
	HullUpgrades map[string]int `json:"hullUpgrades"`
	GunUpgrades  map[string]int `json:"gunUpgrades"`
	Stats        ProfileStats   `json:"stats"`
	CreatedAt    time.Time      `json:"createdAt"`
	LastSeen     time.Time      `json:"lastSeen"`
}

// NewProfile builds a fresh profile with the starter loadout
func NewProfile(username, passHash string, guest bool, now time.Time) *Profile {
	hull, gun := Hulls[0].ID, Guns[0].ID
	return &Profile{
		ID:           GenerateID(),
		Username:     username,
		PassHash:     passHash,
		Guest:        guest,
		Money:        startingMoney,
		OwnedHulls:   []string{hull},
		OwnedGuns:    []string{gun},
		EquippedHull: hull,
		EquippedGun:  gun,
		HullUpgrades: map[string]int{hull: 0},
		GunUpgrades:  map[string]int{gun: 0},
		CreatedAt:    now.UTC(),
		LastSeen:     now.UTC(),
	}
}

// Public returns a copy without credentials
func (p *Profile) Public() *Profile {
	c := *p
	c.PassHash = ""
	return &c
}

// OwnsHull reports whether id is in the owned hull list
func (p *Profile) OwnsHull(id string) bool {
	return contains(p.OwnedHulls, id)
}

// OwnsGun reports whether id is in the owned gun list
func (p *Profile) OwnsGun(id string) bool {
	return contains(p.OwnedGuns, id)
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// ProfileDelta is an additive change produced by the simulation
type ProfileDelta struct {
	PlayerID     string
	Money        int
	XP           int
	Kills        int
	Deaths       int
	FlagCaptures int
	FlagReturns  int
	DamageDealt  int
	Wins         int
	Losses       int
	GamesPlayed  int
}

// Merge adds o into d. Both must target the same player.
func (d *ProfileDelta) Merge(o ProfileDelta) {
	d.Money += o.Money
	d.XP += o.XP
	d.Kills += o.Kills
	d.Deaths += o.Deaths
	d.FlagCaptures += o.FlagCaptures
	d.FlagReturns += o.FlagReturns
	d.DamageDealt += o.DamageDealt
	d.Wins += o.Wins
	d.Losses += o.Losses
	d.GamesPlayed += o.GamesPlayed
}

// Apply adds the delta to a profile
func (d ProfileDelta) Apply(p *Profile) {
	p.Money += d.Money
	p.XP += d.XP
	p.Stats.Kills += d.Kills
	p.Stats.Deaths += d.Deaths
	p.Stats.FlagCaptures += d.FlagCaptures
	p.Stats.FlagReturns += d.FlagReturns
	p.Stats.DamageDealt += d.DamageDealt
	p.Stats.Wins += d.Wins
	p.Stats.Losses += d.Losses
	p.Stats.GamesPlayed += d.GamesPlayed
}

// LeaderboardEntry represents one row in the leaderboard
type LeaderboardEntry struct {
	Position     int     `json:"position"`
	Username     string  `json:"username"`
	XP           int     `json:"xp"`
	Rank         Rank    `json:"rank"`
	Money        int     `json:"money"`
	Kills        int     `json:"kills"`
	Deaths       int     `json:"deaths"`
	FlagCaptures int     `json:"flagCaptures"`
	KD           float64 `json:"kd"`
}

// leaderboardSorts are the accepted sort keys
var leaderboardSorts = map[string]bool{"xp": true, "kills": true, "captures": true, "kd": true, "money": true}

func normalizeLeaderboard(sortBy string, limit int) (string, int) {
	if !leaderboardSorts[sortBy] {
		sortBy = "xp"
	}
	if limit <= 0 || limit > maxLeaderboard {
		limit = maxLeaderboard
	}
	return sortBy, limit
}

func killDeath(kills, deaths int) float64 {
	if deaths == 0 {
		return float64(kills)
	}
	return math.Round(float64(kills)/float64(deaths)*100) / 100
}

// newLeaderboardEntry builds a leaderboard row from a profile
func newLeaderboardEntry(p *Profile) LeaderboardEntry {
	return LeaderboardEntry{
		Username:     p.Username,
		XP:           p.XP,
		Rank:         RankForXP(p.XP),
		Money:        p.Money,
		Kills:        p.Stats.Kills,
		Deaths:       p.Stats.Deaths,
		FlagCaptures: p.Stats.FlagCaptures,
		KD:           killDeath(p.Stats.Kills, p.Stats.Deaths),
	}
}

// sortLeaderboard orders entries descending by sortBy, then by username,
// truncates to limit and numbers the positions.
func sortLeaderboard(entries []LeaderboardEntry, sortBy string, limit int) []LeaderboardEntry {
	key := func(e LeaderboardEntry) float64 {
		switch sortBy {
		case "kills":
			return float64(e.Kills)
		case "captures":
			return float64(e.FlagCaptures)
		case "kd":
			return e.KD
		case "money":
			return float64(e.Money)
		}
		return float64(e.XP)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := key(entries[i]), key(entries[j])
		if a != b {
			return a > b
		}
		return entries[i].Username < entries[j].Username
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

// ProfileStore persists profiles. UpdateProfile runs fn inside one
// transaction; when fn returns an error nothing is written.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *Profile) error
	ProfileByUsername(ctx context.Context, username string) (*Profile, error)
	Profile(ctx context.Context, id string) (*Profile, error)
	UpdateProfile(ctx context.Context, id string, fn func(*Profile) error) (*Profile, error)
	Leaderboard(ctx context.Context, sortBy string, limit int) ([]LeaderboardEntry, error)
	Setting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	Close() error
}
