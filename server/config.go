package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Match   MatchSettings `mapstructure:"match"`
	Flags   FlagSettings  `mapstructure:"flags"`
	Combat  CombatConfig  `mapstructure:"combat"`
	Rewards Rewards       `mapstructure:"rewards"`
	AI      AIConfig      `mapstructure:"ai"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Events  EventsConfig  `mapstructure:"events"`
}

type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	ClientDir     string `mapstructure:"clientDir"`
	PublicURL     string `mapstructure:"publicURL"`
	MaxConns      int    `mapstructure:"maxConns"`
	MaxConnsPerIP int    `mapstructure:"maxConnsPerIP"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwtSecret"`
	TokenTTL  time.Duration `mapstructure:"tokenTTL"`
}

type MatchSettings struct {
	TickRate       int           `mapstructure:"tickRate"`
	BroadcastEvery int           `mapstructure:"broadcastEvery"`
	Duration       time.Duration `mapstructure:"duration"`
	ScoreToWin     int           `mapstructure:"scoreToWin"`
	RespawnDelay   time.Duration `mapstructure:"respawnDelay"`
	RestartDelay   time.Duration `mapstructure:"restartDelay"`
	Map            string        `mapstructure:"map"`
	MaxPlayers     int           `mapstructure:"maxPlayers"`
}

type FlagSettings struct {
	PickupRadius  float64       `mapstructure:"pickupRadius"`
	CaptureRadius float64       `mapstructure:"captureRadius"`
	ReturnTime    time.Duration `mapstructure:"returnTime"`
}

type CombatConfig struct {
	FriendlyFire    bool          `mapstructure:"friendlyFire"`
	Pierce          bool          `mapstructure:"pierce"`
	ProjectileTTL   time.Duration `mapstructure:"projectileTTL"`
	HitRadius       float64       `mapstructure:"hitRadius"`
	WallProbeRadius float64       `mapstructure:"wallProbeRadius"`
	BodyRadius      float64       `mapstructure:"bodyRadius"`
	BoundaryMargin  float64       `mapstructure:"boundaryMargin"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type EventsConfig struct {
	NATSURL       string `mapstructure:"natsURL"`
	SubjectPrefix string `mapstructure:"subjectPrefix"`
}

func setDefaults(v *viper.Viper) {
	m := DefaultMatchConfig()

	v.SetDefault("server.addr", ":3001")
	v.SetDefault("server.clientDir", "")
	v.SetDefault("server.publicURL", "")
	v.SetDefault("server.maxConns", 200)
	v.SetDefault("server.maxConnsPerIP", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "flagwars.db")

	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.tokenTTL", "168h")

	v.SetDefault("match.tickRate", m.TickRate)
	v.SetDefault("match.broadcastEvery", m.BroadcastEvery)
	v.SetDefault("match.duration", m.Duration.String())
	v.SetDefault("match.scoreToWin", m.ScoreToWin)
	v.SetDefault("match.respawnDelay", m.RespawnDelay.String())
	v.SetDefault("match.restartDelay", m.RestartDelay.String())
	v.SetDefault("match.map", m.Map.ID)
	v.SetDefault("match.maxPlayers", m.MaxPlayers)

	v.SetDefault("flags.pickupRadius", m.PickupRadius)
	v.SetDefault("flags.captureRadius", m.CaptureRadius)
	v.SetDefault("flags.returnTime", m.FlagReturnTime.String())

	v.SetDefault("combat.friendlyFire", m.FriendlyFire)
	v.SetDefault("combat.pierce", m.Pierce)
	v.SetDefault("combat.projectileTTL", m.ProjectileTTL.String())
	v.SetDefault("combat.hitRadius", m.HitRadius)
	v.SetDefault("combat.wallProbeRadius", m.WallProbeRadius)
	v.SetDefault("combat.bodyRadius", m.BodyRadius)
	v.SetDefault("combat.boundaryMargin", m.BoundaryMargin)

	r := m.Rewards
	v.SetDefault("rewards.killXP", r.KillXP)
	v.SetDefault("rewards.flagCaptureXP", r.FlagCaptureXP)
	v.SetDefault("rewards.flagReturnXP", r.FlagReturnXP)
	v.SetDefault("rewards.participationXP", r.ParticipationXP)
	v.SetDefault("rewards.winXP", r.WinXP)
	v.SetDefault("rewards.lossXP", r.LossXP)
	v.SetDefault("rewards.killMoney", r.KillMoney)
	v.SetDefault("rewards.flagCaptureMoney", r.FlagCaptureMoney)
	v.SetDefault("rewards.winMoney", r.WinMoney)

	v.SetDefault("ai.botsPerTeam", m.AI.BotsPerTeam)
	v.SetDefault("ai.sightRange", m.AI.SightRange)
	v.SetDefault("ai.nearRange", m.AI.NearRange)
	v.SetDefault("ai.farRange", m.AI.FarRange)

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("events.natsURL", "")
	v.SetDefault("events.subjectPrefix", "flagwars")
}

// LoadConfig reads defaults, then the optional config file at path, then
// FLAGWARS_* environment variables.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FLAGWARS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with
func (c Config) Validate() error {
	switch {
	case c.Match.TickRate <= 0:
		return errors.New("match.tickRate must be positive")
	case c.Match.BroadcastEvery < 1:
		return errors.New("match.broadcastEvery must be at least 1")
	case c.Match.ScoreToWin < 1:
		return errors.New("match.scoreToWin must be at least 1")
	case c.Match.Duration < time.Second:
		return errors.New("match.duration must be at least 1s")
	case c.Store.Driver != "sqlite" && c.Store.Driver != "badger":
		return fmt.Errorf("store.driver %q: want sqlite or badger", c.Store.Driver)
	}
	if _, err := MapByID(c.Match.Map); err != nil {
		return fmt.Errorf("match.map: %w", err)
	}
	return nil
}

// MatchConfig converts the loaded settings into the simulation's config
func (c Config) MatchConfig() MatchConfig {
	m := DefaultMatchConfig()
	m.TickRate = c.Match.TickRate
	m.BroadcastEvery = c.Match.BroadcastEvery
	m.Duration = c.Match.Duration
	m.ScoreToWin = c.Match.ScoreToWin
	m.RespawnDelay = c.Match.RespawnDelay
	m.RestartDelay = c.Match.RestartDelay
	if def, err := MapByID(c.Match.Map); err == nil {
		m.Map = def
	}
	m.MaxPlayers = c.Match.MaxPlayers
	m.PickupRadius = c.Flags.PickupRadius
	m.CaptureRadius = c.Flags.CaptureRadius
	m.FlagReturnTime = c.Flags.ReturnTime
	m.FriendlyFire = c.Combat.FriendlyFire
	m.Pierce = c.Combat.Pierce
	m.ProjectileTTL = c.Combat.ProjectileTTL
	m.HitRadius = c.Combat.HitRadius
	m.WallProbeRadius = c.Combat.WallProbeRadius
	m.BodyRadius = c.Combat.BodyRadius
	m.BoundaryMargin = c.Combat.BoundaryMargin
	m.Rewards = c.Rewards
	m.AI = c.AI
	return m
}
