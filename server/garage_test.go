package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGarage(t *testing.T) (*Garage, ProfileStore, *Profile) {
	t.Helper()
	s := openSQLiteStore(t)
	p := createProfile(t, s, "Garagist", false)
	return NewGarage(s), s, p
}

func setMoney(t *testing.T, s ProfileStore, id string, money int) {
	t.Helper()
	_, err := s.UpdateProfile(context.Background(), id, func(p *Profile) error {
		p.Money = money
		return nil
	})
	require.NoError(t, err)
}

func TestBuyHullNotEnoughMoney(t *testing.T) {
	g, s, p := newTestGarage(t)
	ctx := context.Background()
	setMoney(t, s, p.ID, 3000)

	_, err := g.BuyHull(ctx, p.ID, "hornet")
	require.ErrorIs(t, err, ErrNotEnoughMoney)
	assert.Equal(t, "Not enough money", err.Error())

	got, err := s.Profile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3000, got.Money)
	assert.Equal(t, []string{"wasp"}, got.OwnedHulls)
}

func TestBuyHull(t *testing.T) {
	g, s, p := newTestGarage(t)
	ctx := context.Background()

	updated, err := g.BuyHull(ctx, p.ID, "hornet")
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Money)
	assert.True(t, updated.OwnsHull("hornet"))
	assert.Equal(t, 0, updated.HullUpgrades["hornet"])
	assert.Equal(t, "wasp", updated.EquippedHull, "buying does not equip")

	_, err = g.BuyHull(ctx, p.ID, "hornet")
	assert.ErrorIs(t, err, ErrHullOwned)

	_, err = g.BuyHull(ctx, p.ID, "hovercraft")
	assert.ErrorIs(t, err, ErrHullNotFound)

	stored, err := s.Profile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"wasp", "hornet"}, stored.OwnedHulls)
}

func TestBuyGun(t *testing.T) {
	g, _, p := newTestGarage(t)
	ctx := context.Background()

	updated, err := g.BuyGun(ctx, p.ID, "twins")
	require.NoError(t, err)
	assert.Equal(t, startingMoney-3000, updated.Money)
	assert.True(t, updated.OwnsGun("twins"))

	_, err = g.BuyGun(ctx, p.ID, "smoky")
	assert.ErrorIs(t, err, ErrGunOwned)
	_, err = g.BuyGun(ctx, p.ID, "thunder")
	assert.ErrorIs(t, err, ErrNotEnoughMoney)
	_, err = g.BuyGun(ctx, p.ID, "bfg")
	assert.ErrorIs(t, err, ErrGunNotFound)
}

func TestUpgradeHull(t *testing.T) {
	g, _, p := newTestGarage(t)
	ctx := context.Background()

	res, err := g.UpgradeHull(ctx, p.ID, "wasp")
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewLevel)
	assert.Equal(t, 1000, res.Cost)
	assert.Equal(t, 4000, res.Profile.Money)

	res, err = g.UpgradeHull(ctx, p.ID, "wasp")
	require.NoError(t, err)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 1500, res.Cost)
	assert.Equal(t, 2500, res.Profile.Money)

	res, err = g.UpgradeHull(ctx, p.ID, "wasp")
	require.NoError(t, err)
	assert.Equal(t, 250, res.Profile.Money)

	_, err = g.UpgradeHull(ctx, p.ID, "wasp")
	assert.ErrorIs(t, err, ErrNotEnoughMoney)

	_, err = g.UpgradeHull(ctx, p.ID, "titan")
	assert.ErrorIs(t, err, ErrHullNotOwned)
}

func TestUpgradeStopsAtMaxLevel(t *testing.T) {
	g, s, p := newTestGarage(t)
	ctx := context.Background()
	_, err := s.UpdateProfile(ctx, p.ID, func(p *Profile) error {
		p.Money = 1 << 30
		p.HullUpgrades["wasp"] = MaxUpgradeLevel
		p.GunUpgrades["smoky"] = MaxUpgradeLevel - 1
		return nil
	})
	require.NoError(t, err)

	_, err = g.UpgradeHull(ctx, p.ID, "wasp")
	assert.ErrorIs(t, err, ErrHullMaxLevel)

	res, err := g.UpgradeGun(ctx, p.ID, "smoky")
	require.NoError(t, err)
	assert.Equal(t, MaxUpgradeLevel, res.NewLevel)
	assert.Equal(t, UpgradeCost(MaxUpgradeLevel-1), res.Cost)

	_, err = g.UpgradeGun(ctx, p.ID, "smoky")
	assert.ErrorIs(t, err, ErrGunMaxLevel)
}

func TestEquip(t *testing.T) {
	g, s, p := newTestGarage(t)
	ctx := context.Background()

	_, err := g.EquipHull(ctx, p.ID, "hornet")
	assert.ErrorIs(t, err, ErrHullNotOwned)
	_, err = g.EquipGun(ctx, p.ID, "twins")
	assert.ErrorIs(t, err, ErrGunNotOwned)

	_, err = g.BuyGun(ctx, p.ID, "twins")
	require.NoError(t, err)
	updated, err := g.EquipGun(ctx, p.ID, "twins")
	require.NoError(t, err)
	assert.Equal(t, "twins", updated.EquippedGun)

	stored, err := s.Profile(ctx, p.ID)
	require.NoError(t, err)
	_, gun := LoadoutFromProfile(stored)
	assert.Equal(t, "twins", gun.ID)
}

func TestGarageOnBadger(t *testing.T) {
	s := openBadgerStore(t)
	p := createProfile(t, s, "Badgerist", false)
	g := NewGarage(s)
	ctx := context.Background()

	_, err := g.BuyHull(ctx, p.ID, "hornet")
	require.NoError(t, err)
	_, err = g.UpgradeHull(ctx, p.ID, "hornet")
	assert.ErrorIs(t, err, ErrNotEnoughMoney)

	stored, err := s.Profile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Money)
	assert.Equal(t, 0, stored.HullUpgrades["hornet"])
}
