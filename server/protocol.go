package main

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Client -> Server message types
const (
	MsgJoin           = "join"
	MsgRegister       = "register"
	MsgLogin          = "login"
	MsgJoinBattle     = "joinBattle"
	MsgLeaveBattle    = "leaveBattle"
	MsgMove           = "move"
	MsgRotate         = "rotate"
	MsgRotateTurret   = "rotateTurret"
	MsgShoot          = "shoot"
	MsgInteract       = "interact"
	MsgGetGarage      = "getGarage"
	MsgBuyHull        = "buyHull"
	MsgBuyGun         = "buyGun"
	MsgUpgradeHull    = "upgradeHull"
	MsgUpgradeGun     = "upgradeGun"
	MsgEquipHull      = "equipHull"
	MsgEquipGun       = "equipGun"
	MsgGetLeaderboard = "getLeaderboard"
)

// Server -> Client message types
const (
	MsgWelcome        = "welcome"
	MsgAuthSuccess    = "authSuccess"
	MsgBattleJoined   = "battleJoined"
	MsgGameState      = "gameState"
	MsgPlayerJoined   = "playerJoined"
	MsgPlayerLeft     = "playerLeft"
	MsgPlayerKilled   = "playerKilled"
	MsgFlagPickup     = "flagPickup"
	MsgFlagCapture    = "flagCapture"
	MsgFlagReturn     = "flagReturn"
	MsgFlagDrop       = "flagDrop"
	MsgProjectileHit  = "projectileHit"
	MsgWallDestroyed  = "wallDestroyed"
	MsgMatchStart     = "matchStart"
	MsgMatchEnd       = "matchEnd"
	MsgGarageData     = "garageData"
	MsgPurchaseResult = "purchaseResult"
	MsgUpgradeResult  = "upgradeResult"
	MsgEquipResult    = "equipResult"
	MsgRankUp         = "rankUp"
	MsgXPGain         = "xpGain"
	MsgLeaderboard    = "leaderboard"
	MsgError          = "error"
)

// Intent is a decoded client message. The concrete types below are the
// complete set; DecodeIntent and Client.dispatch switch over all of them.
type Intent interface {
	intentType() string
}

type JoinIntent struct {
	Username string `json:"username"`
}

type RegisterIntent struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginIntent struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type JoinBattleIntent struct {
	SessionToken string `json:"sessionToken"`
	Binary       bool   `json:"binary"`
}

type LeaveBattleIntent struct{}

type MoveIntent struct {
	Direction Vec2 `json:"direction"`
}

type RotateIntent struct {
	Angle float64 `json:"angle"`
}

type RotateTurretIntent struct {
	Angle float64 `json:"angle"`
}

type ShootIntent struct{}

type InteractIntent struct{}

type GetGarageIntent struct {
	SessionToken string `json:"sessionToken"`
}

// GarageIntent is a buy, upgrade or equip request for one catalog item
type GarageIntent struct {
	Kind         string `json:"-"`
	SessionToken string `json:"sessionToken"`
	HullID       string `json:"hullId"`
	GunID        string `json:"gunId"`
}

type GetLeaderboardIntent struct {
	SortBy string `json:"sortBy"`
	Limit  int    `json:"limit"`
}

func (*JoinIntent) intentType() string           { return MsgJoin }
func (*RegisterIntent) intentType() string       { return MsgRegister }
func (*LoginIntent) intentType() string          { return MsgLogin }
func (*JoinBattleIntent) intentType() string     { return MsgJoinBattle }
func (*LeaveBattleIntent) intentType() string    { return MsgLeaveBattle }
func (*MoveIntent) intentType() string           { return MsgMove }
func (*RotateIntent) intentType() string         { return MsgRotate }
func (*RotateTurretIntent) intentType() string   { return MsgRotateTurret }
func (*ShootIntent) intentType() string          { return MsgShoot }
func (*InteractIntent) intentType() string       { return MsgInteract }
func (*GetGarageIntent) intentType() string      { return MsgGetGarage }
func (g *GarageIntent) intentType() string       { return g.Kind }
func (*GetLeaderboardIntent) intentType() string { return MsgGetLeaderboard }

// ErrUnknownMessage is returned for a message type with no intent
var ErrUnknownMessage = errors.New("unknown message type")

// DecodeIntent parses one client frame into its intent
func DecodeIntent(raw []byte) (Intent, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}

	var in Intent
	switch head.Type {
	case MsgJoin:
		in = &JoinIntent{}
	case MsgRegister:
		in = &RegisterIntent{}
	case MsgLogin:
		in = &LoginIntent{}
	case MsgJoinBattle:
		in = &JoinBattleIntent{}
	case MsgLeaveBattle:
		return &LeaveBattleIntent{}, nil
	case MsgMove:
		in = &MoveIntent{}
	case MsgRotate:
		in = &RotateIntent{}
	case MsgRotateTurret:
		in = &RotateTurretIntent{}
	case MsgShoot:
		return &ShootIntent{}, nil
	case MsgInteract:
		return &InteractIntent{}, nil
	case MsgGetGarage:
		in = &GetGarageIntent{}
	case MsgBuyHull, MsgBuyGun, MsgUpgradeHull, MsgUpgradeGun, MsgEquipHull, MsgEquipGun:
		in = &GarageIntent{Kind: head.Type}
	case MsgGetLeaderboard:
		in = &GetLeaderboardIntent{}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMessage, head.Type)
	}
	if err := json.Unmarshal(raw, in); err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Type, err)
	}
	return in, nil
}

// PlayerState is the sanitized player in a snapshot
type PlayerState struct {
	ID             string  `json:"id" msgpack:"id"`
	Username       string  `json:"username" msgpack:"username"`
	Team           Team    `json:"team" msgpack:"team"`
	Position       Vec2    `json:"position" msgpack:"position"`
	Rotation       float64 `json:"rotation" msgpack:"rotation"`
	TurretRotation float64 `json:"turretRotation" msgpack:"turretRotation"`
	Health         int     `json:"health" msgpack:"health"`
	MaxHealth      int     `json:"maxHealth" msgpack:"maxHealth"`
	Hull           string  `json:"hull" msgpack:"hull"`
	Gun            string  `json:"gun" msgpack:"gun"`
	HasFlag        bool    `json:"hasFlag" msgpack:"hasFlag"`
	IsAlive        bool    `json:"isAlive" msgpack:"isAlive"`
	IsBot          bool    `json:"isBot" msgpack:"isBot"`
	Kills          int     `json:"kills" msgpack:"kills"`
	Deaths         int     `json:"deaths" msgpack:"deaths"`
}

// FlagState is a flag in a snapshot
type FlagState struct {
	ID        string `json:"id" msgpack:"id"`
	Team      Team   `json:"team" msgpack:"team"`
	Position  Vec2   `json:"position" msgpack:"position"`
	Base      Vec2   `json:"basePosition" msgpack:"basePosition"`
	IsAtBase  bool   `json:"isAtBase" msgpack:"isAtBase"`
	CarriedBy string `json:"carriedBy" msgpack:"carriedBy"`
}

// ProjectileState is a projectile in a snapshot
type ProjectileState struct {
	ID       string `json:"id" msgpack:"id"`
	OwnerID  string `json:"ownerId" msgpack:"ownerId"`
	Position Vec2   `json:"position" msgpack:"position"`
	Velocity Vec2   `json:"velocity" msgpack:"velocity"`
	Effect   string `json:"effect" msgpack:"effect"`
	Color    string `json:"color" msgpack:"color"`
}

// WallState is a wall in a snapshot
type WallState struct {
	ID        string  `json:"id" msgpack:"id"`
	Position  Vec2    `json:"position" msgpack:"position"`
	Width     float64 `json:"width" msgpack:"width"`
	Height    float64 `json:"height" msgpack:"height"`
	Type      string  `json:"type" msgpack:"type"`
	Health    int     `json:"health,omitempty" msgpack:"health,omitempty"`
	MaxHealth int     `json:"maxHealth,omitempty" msgpack:"maxHealth,omitempty"`
	Destroyed bool    `json:"destroyed" msgpack:"destroyed"`
}

// GameState is the full snapshot broadcast every tick
type GameState struct {
	Players       []PlayerState     `json:"players" msgpack:"players"`
	Flags         []FlagState       `json:"flags" msgpack:"flags"`
	Projectiles   []ProjectileState `json:"projectiles" msgpack:"projectiles"`
	Walls         []WallState       `json:"walls" msgpack:"walls"`
	RedScore      int               `json:"redScore" msgpack:"redScore"`
	BlueScore     int               `json:"blueScore" msgpack:"blueScore"`
	TimeRemaining int               `json:"timeRemaining" msgpack:"timeRemaining"`
	IsRunning     bool              `json:"isRunning" msgpack:"isRunning"`
	Tick          uint64            `json:"tick" msgpack:"tick"`
}

type GameStateMsg struct {
	Type  string    `json:"type"`
	State GameState `json:"state"`
}

type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func errorMsg(message string) ErrorMsg {
	return ErrorMsg{Type: MsgError, Message: message}
}

// PlayerData is a profile as shown to its owner, with rank info attached
type PlayerData struct {
	*Profile
	Rank     Rank          `json:"rank"`
	NextRank *NextRankInfo `json:"nextRank"`
}

func newPlayerData(p *Profile) PlayerData {
	return PlayerData{Profile: p, Rank: RankForXP(p.XP), NextRank: NextRank(p.XP)}
}

type WelcomeMsg struct {
	Type         string     `json:"type"`
	PlayerID     string     `json:"playerId"`
	SessionToken string     `json:"sessionToken"`
	PlayerData   PlayerData `json:"playerData"`
}

type AuthSuccessMsg struct {
	Type         string     `json:"type"`
	SessionToken string     `json:"sessionToken"`
	PlayerData   PlayerData `json:"playerData"`
}

type BattleJoinedMsg struct {
	Type       string      `json:"type"`
	PlayerID   string      `json:"playerId"`
	Team       Team        `json:"team"`
	MapID      string      `json:"mapId"`
	PlayerData interface{} `json:"playerData,omitempty"`
}

type PlayerJoinedMsg struct {
	Type   string      `json:"type"`
	Player PlayerState `json:"player"`
}

type PlayerLeftMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

type PlayerKilledMsg struct {
	Type       string `json:"type"`
	KillerID   string `json:"killerId"`
	VictimID   string `json:"victimId"`
	KillerName string `json:"killerName"`
	VictimName string `json:"victimName"`
}

type FlagPickupMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	FlagTeam Team   `json:"flagTeam"`
}

type FlagCaptureMsg struct {
	Type      string `json:"type"`
	PlayerID  string `json:"playerId"`
	Team      Team   `json:"team"`
	RedScore  int    `json:"redScore"`
	BlueScore int    `json:"blueScore"`
}

type FlagReturnMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Team     Team   `json:"team"`
}

type FlagDropMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	FlagTeam Team   `json:"flagTeam"`
	Position Vec2   `json:"position"`
}

// HitReport is one player's share of a projectileHit event
type HitReport struct {
	PlayerID string        `json:"playerId"`
	Damage   int           `json:"damage"`
	Healed   int           `json:"healed"`
	Status   *StatusEffect `json:"status,omitempty"`
}

type ProjectileHitMsg struct {
	Type         string      `json:"type"`
	ProjectileID string      `json:"projectileId"`
	Effect       string      `json:"effect"`
	X            float64     `json:"x"`
	Y            float64     `json:"y"`
	Hits         []HitReport `json:"hits"`
}

type WallDestroyedMsg struct {
	Type   string `json:"type"`
	WallID string `json:"wallId"`
}

type MatchStartMsg struct {
	Type          string `json:"type"`
	Match         int    `json:"match"`
	TimeRemaining int    `json:"timeRemaining"`
}

type MatchEndMsg struct {
	Type      string `json:"type"`
	Winner    string `json:"winner"`
	RedScore  int    `json:"redScore"`
	BlueScore int    `json:"blueScore"`
}

type RankUpMsg struct {
	Type         string `json:"type"`
	OldRank      Rank   `json:"oldRank"`
	NewRank      Rank   `json:"newRank"`
	NewXP        int    `json:"newXP"`
	LevelsGained int    `json:"levelsGained"`
}

type XPGainMsg struct {
	Type        string        `json:"type"`
	Amount      int           `json:"amount"`
	NewXP       int           `json:"newXP"`
	CurrentRank Rank          `json:"currentRank"`
	NextRank    *NextRankInfo `json:"nextRank"`
}

type GarageDataMsg struct {
	Type       string     `json:"type"`
	Hulls      []*HullDef `json:"hulls"`
	Guns       []*GunDef  `json:"guns"`
	PlayerData PlayerData `json:"playerData"`
}

type PurchaseResultMsg struct {
	Type       string     `json:"type"`
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	PlayerData PlayerData `json:"playerData"`
}

type UpgradeResultMsg struct {
	Type       string     `json:"type"`
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	NewLevel   int        `json:"newLevel"`
	Cost       int        `json:"cost"`
	PlayerData PlayerData `json:"playerData"`
}

type EquipResultMsg struct {
	Type       string     `json:"type"`
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	PlayerData PlayerData `json:"playerData"`
}

type LeaderboardMsg struct {
	Type    string             `json:"type"`
	Entries []LeaderboardEntry `json:"entries"`
}
