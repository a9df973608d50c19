package main

// Rank is one step of the XP ladder
type Rank struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	MinXP int    `json:"minXP"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Ranks is sorted ascending by MinXP
var Ranks = []Rank{
	{1, "Recruit", 0, "#9ca3af", "⬜"},
	{2, "Private", 100, "#6b7280", "▫️"},
	{3, "Gefreiter", 500, "#4ade80", "🟢"},
	{4, "Corporal", 1500, "#22c55e", "🟩"},
	{5, "Master Corporal", 3700, "#16a34a", "💚"},
	{6, "Sergeant", 7100, "#fbbf24", "🟡"},
	{7, "Staff Sergeant", 12300, "#f59e0b", "🟨"},
	{8, "Master Sergeant", 20000, "#d97706", "🧡"},
	{9, "First Sergeant", 29000, "#ea580c", "🟠"},
	{10, "Sergeant Major", 41000, "#dc2626", "🔴"},
	{11, "Warrant Officer 1", 57000, "#b91c1c", "🟥"},
	{12, "Warrant Officer 2", 76000, "#991b1b", "❤️"},
	{13, "Warrant Officer 3", 98000, "#7f1d1d", "💔"},
	{14, "Warrant Officer 4", 125000, "#3b82f6", "🔵"},
	{15, "Warrant Officer 5", 156000, "#2563eb", "🟦"},
	{16, "Third Lieutenant", 192000, "#1d4ed8", "💙"},
	{17, "Second Lieutenant", 233000, "#1e40af", "🔷"},
	{18, "First Lieutenant", 280000, "#a855f7", "🟣"},
	{19, "Captain", 332000, "#9333ea", "🟪"},
	{20, "Major", 390000, "#7c3aed", "💜"},
	{21, "Lieutenant Colonel", 455000, "#6d28d9", "💎"},
	{22, "Colonel", 527000, "#5b21b6", "🔮"},
	{23, "Brigadier", 606000, "#fcd34d", "⭐"},
	{24, "Major General", 692000, "#fbbf24", "🌟"},
	{25, "Lieutenant General", 787000, "#f59e0b", "✨"},
	{26, "General", 889000, "#d97706", "🏆"},
	{27, "Marshal", 1000000, "#b45309", "👑"},
	{28, "Generalissimo", 1500000, "#92400e", "🎖️"},
	{29, "Legend", 2500000, "#78350f", "🌠"},
}

// NextRankInfo describes progress toward the rank above the current one
type NextRankInfo struct {
	Rank     Rank    `json:"rank"`
	XPNeeded int     `json:"xpNeeded"`
	Progress float64 `json:"progress"`
}

// RankUp reports a rank transition between two XP totals
type RankUp struct {
	RankedUp     bool `json:"rankedUp"`
	OldRank      Rank `json:"oldRank"`
	NewRank      Rank `json:"newRank"`
	LevelsGained int  `json:"levelsGained"`
}

func rankIndex(xp int) int {
	idx := 0
	for i, r := range Ranks {
		if xp < r.MinXP {
			break
		}
		idx = i
	}
	return idx
}

// RankForXP returns the highest rank whose threshold xp has reached
func RankForXP(xp int) Rank {
	return Ranks[rankIndex(xp)]
}

// NextRank returns the following rank and progress toward it, nil at max rank
func NextRank(xp int) *NextRankInfo {
	i := rankIndex(xp)
	if i+1 >= len(Ranks) {
		return nil
	}
	cur, next := Ranks[i], Ranks[i+1]
	return &NextRankInfo{
		Rank:     next,
		XPNeeded: next.MinXP - xp,
		Progress: float64(xp-cur.MinXP) / float64(next.MinXP-cur.MinXP),
	}
}

// CheckRankUp compares the ranks of oldXP and newXP
func CheckRankUp(oldXP, newXP int) RankUp {
	oldRank, newRank := RankForXP(oldXP), RankForXP(newXP)
	if newRank.ID > oldRank.ID {
		return RankUp{
			RankedUp:     true,
			OldRank:      oldRank,
			NewRank:      newRank,
			LevelsGained: newRank.ID - oldRank.ID,
		}
	}
	return RankUp{}
}

// RewardAction names a rewarded battle event
type RewardAction int

const (
	RewardKill RewardAction = iota
	RewardFlagCapture
	RewardFlagReturn
	RewardWin
	RewardLoss
)

// Rewards is the XP and money table per action
type Rewards struct {
	KillXP           int `mapstructure:"killXP"`
	FlagCaptureXP    int `mapstructure:"flagCaptureXP"`
	FlagReturnXP     int `mapstructure:"flagReturnXP"`
	ParticipationXP  int `mapstructure:"participationXP"` // per minute
	WinXP            int `mapstructure:"winXP"`
	LossXP           int `mapstructure:"lossXP"`
	KillMoney        int `mapstructure:"killMoney"`
	FlagCaptureMoney int `mapstructure:"flagCaptureMoney"`
	WinMoney         int `mapstructure:"winMoney"`
}

// DefaultRewards matches the shipped game configuration
func DefaultRewards() Rewards {
	return Rewards{
		KillXP:           50,
		FlagCaptureXP:    200,
		FlagReturnXP:     50,
		ParticipationXP:  10,
		WinXP:            100,
		LossXP:           25,
		KillMoney:        100,
		FlagCaptureMoney: 500,
		WinMoney:         250,
	}
}

// For returns the XP and money granted for an action
func (r Rewards) For(a RewardAction) (xp, money int) {
	switch a {
	case RewardKill:
		return r.KillXP, r.KillMoney
	case RewardFlagCapture:
		return r.FlagCaptureXP, r.FlagCaptureMoney
	case RewardFlagReturn:
		return r.FlagReturnXP, 0
	case RewardWin:
		return r.WinXP, r.WinMoney
	case RewardLoss:
		return r.LossXP, 0
	}
	return 0, 0
}

// ParticipationFor returns floor(minutes * participationXP)
func (r Rewards) ParticipationFor(minutes float64) int {
	if minutes <= 0 {
		return 0
	}
	return int(minutes * float64(r.ParticipationXP))
}
