package main

import "time"

// Team is one side of the match
type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Teams lists both sides in snapshot order
var Teams = [2]Team{TeamRed, TeamBlue}

// Opponent returns the other team
func (t Team) Opponent() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

// ResultDraw is the winner value of a tied match
const ResultDraw = "draw"

// AIConfig tunes the bot controller
type AIConfig struct {
	BotsPerTeam int     `mapstructure:"botsPerTeam"`
	SightRange  float64 `mapstructure:"sightRange"`
	NearRange   float64 `mapstructure:"nearRange"`
	FarRange    float64 `mapstructure:"farRange"`
}

// MatchConfig holds every tunable of the simulation
type MatchConfig struct {
	TickRate       int
	BroadcastEvery int
	Duration       time.Duration
	ScoreToWin     int
	RespawnDelay   time.Duration
	RestartDelay   time.Duration
	Map            *MapDef
	MaxPlayers     int

	PickupRadius   float64
	CaptureRadius  float64
	FlagReturnTime time.Duration

	FriendlyFire    bool
	Pierce          bool
	ProjectileTTL   time.Duration
	HitRadius       float64
	WallProbeRadius float64
	BodyRadius      float64
	BoundaryMargin  float64

	Rewards Rewards
	AI      AIConfig
}

// DefaultMatchConfig returns the shipped match settings on the classic map
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		TickRate:        60,
		BroadcastEvery:  1,
		Duration:        600 * time.Second,
		ScoreToWin:      3,
		RespawnDelay:    3 * time.Second,
		RestartDelay:    10 * time.Second,
		Map:             ClassicMap,
		MaxPlayers:      32,
		PickupRadius:    50,
		CaptureRadius:   50,
		FlagReturnTime:  30 * time.Second,
		FriendlyFire:    true,
		ProjectileTTL:   5 * time.Second,
		HitRadius:       25,
		WallProbeRadius: 5,
		BodyRadius:      20,
		BoundaryMargin:  30,
		Rewards:         DefaultRewards(),
		AI:              AIConfig{SightRange: 400, NearRange: 100, FarRange: 200},
	}
}

// MatchState holds the score and clock of the current match
type MatchState struct {
	Number        int
	Running       bool
	TimeRemaining int // seconds
	Scores        map[Team]int
	Winner        string
	StartedAt     time.Time
}

// NewMatchState starts a fresh running match
func NewMatchState(number int, d time.Duration, now time.Time) MatchState {
	return MatchState{
		Number:        number,
		Running:       true,
		TimeRemaining: int(d / time.Second),
		Scores:        map[Team]int{TeamRed: 0, TeamBlue: 0},
		StartedAt:     now,
	}
}

// Result returns the winning team or ResultDraw
func (ms *MatchState) Result() string {
	red, blue := ms.Scores[TeamRed], ms.Scores[TeamBlue]
	switch {
	case red > blue:
		return string(TeamRed)
	case blue > red:
		return string(TeamBlue)
	}
	return ResultDraw
}

// AssignTeam auto-balances a new player to the smaller team
func AssignTeam(players []*Player) Team {
	red, blue := 0, 0
	for _, p := range players {
		if p.Team == TeamRed {
			red++
		} else if p.Team == TeamBlue {
			blue++
		}
	}
	if red <= blue {
		return TeamRed
	}
	return TeamBlue
}
