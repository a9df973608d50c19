package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressWriterAppliesOnStop(t *testing.T) {
	s := openSQLiteStore(t)
	a := createProfile(t, s, "alpha", false)
	b := createProfile(t, s, "bravo", false)

	w := NewProgressWriter(s, zerolog.Nop(), nil)
	w.Enqueue(ProfileDelta{PlayerID: a.ID, XP: 50, Money: 100, Kills: 1})
	w.Enqueue(ProfileDelta{PlayerID: b.ID, Deaths: 1})
	w.Enqueue(ProfileDelta{PlayerID: a.ID, XP: 200, FlagCaptures: 1})
	w.Enqueue(ProfileDelta{XP: 1000}) // no player, ignored
	w.Stop()

	ctx := context.Background()
	got, err := s.Profile(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 250, got.XP)
	assert.Equal(t, startingMoney+100, got.Money)
	assert.Equal(t, 1, got.Stats.Kills)
	assert.Equal(t, 1, got.Stats.FlagCaptures)

	got, err = s.Profile(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stats.Deaths)
}

func TestProgressWriterSurvivesMissingProfile(t *testing.T) {
	s := openBadgerStore(t)
	a := createProfile(t, s, "alpha", false)

	w := NewProgressWriter(s, zerolog.Nop(), nil)
	w.Enqueue(ProfileDelta{PlayerID: "gone", XP: 10})
	w.Enqueue(ProfileDelta{PlayerID: a.ID, XP: 10})
	w.Stop()

	got, err := s.Profile(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.XP)
}

func TestGameProgressReachesStore(t *testing.T) {
	s := openSQLiteStore(t)
	k := createProfile(t, s, "killer", false)
	v := createProfile(t, s, "victim", false)
	w := NewProgressWriter(s, zerolog.Nop(), nil)

	g := NewGame(DefaultMatchConfig(), GameDeps{Progress: w})
	killer := addTestPlayer(g, k.ID, TeamRed, Vec2{X: 100, Y: 400})
	victim := addTestPlayer(g, v.ID, TeamBlue, Vec2{X: 1100, Y: 400})
	g.handleDeath(victim, killer.ID)
	w.Stop()

	got, err := s.Profile(context.Background(), k.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stats.Kills)
	assert.Equal(t, 50, got.XP)
	assert.Equal(t, startingMoney+100, got.Money)
}
