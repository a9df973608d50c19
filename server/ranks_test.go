package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankForXP(t *testing.T) {
	tests := []struct {
		xp   int
		id   int
		name string
	}{
		{0, 1, "Recruit"},
		{99, 1, "Recruit"},
		{100, 2, "Private"},
		{499, 2, "Private"},
		{500, 3, "Gefreiter"},
		{2500000, 29, "Legend"},
		{10000000, 29, "Legend"},
	}
	for _, tt := range tests {
		r := RankForXP(tt.xp)
		if r.ID != tt.id || r.Name != tt.name {
			t.Errorf("RankForXP(%d) = %d %s, want %d %s", tt.xp, r.ID, r.Name, tt.id, tt.name)
		}
	}
}

func TestRanksAscending(t *testing.T) {
	for i := 1; i < len(Ranks); i++ {
		if Ranks[i].MinXP <= Ranks[i-1].MinXP {
			t.Errorf("rank %d threshold %d not above %d", Ranks[i].ID, Ranks[i].MinXP, Ranks[i-1].MinXP)
		}
		if Ranks[i].ID != Ranks[i-1].ID+1 {
			t.Errorf("rank ids should be consecutive at %d", i)
		}
	}
}

func TestRankMonotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp < 1200000; xp += 997 {
		id := RankForXP(xp).ID
		if id < prev {
			t.Fatalf("rank decreased at xp %d", xp)
		}
		prev = id
	}
}

func TestNextRank(t *testing.T) {
	n := NextRank(50)
	require.NotNil(t, n)
	assert.Equal(t, "Private", n.Rank.Name)
	assert.Equal(t, 50, n.XPNeeded)
	assert.InDelta(t, 0.5, n.Progress, 1e-9)

	assert.Nil(t, NextRank(Ranks[len(Ranks)-1].MinXP))
}

func TestCheckRankUp(t *testing.T) {
	up := CheckRankUp(90, 140)
	assert.True(t, up.RankedUp)
	assert.Equal(t, "Recruit", up.OldRank.Name)
	assert.Equal(t, "Private", up.NewRank.Name)
	assert.Equal(t, 1, up.LevelsGained)

	multi := CheckRankUp(0, 1600)
	assert.Equal(t, 3, multi.LevelsGained)

	assert.False(t, CheckRankUp(100, 150).RankedUp)
}

func TestRewards(t *testing.T) {
	r := DefaultRewards()
	xp, money := r.For(RewardKill)
	assert.Equal(t, 50, xp)
	assert.Equal(t, 100, money)

	xp, money = r.For(RewardFlagReturn)
	assert.Equal(t, 50, xp)
	assert.Zero(t, money)

	assert.Equal(t, 25, r.ParticipationFor(2.5))
	assert.Zero(t, r.ParticipationFor(0.05))
	assert.Zero(t, r.ParticipationFor(-1))
}
