package main

import "context"

// Garage applies shop operations to profiles. Every operation validates and
// mutates inside one store transaction.
type Garage struct {
	store ProfileStore
}

// NewGarage creates a garage over store
func NewGarage(store ProfileStore) *Garage {
	return &Garage{store: store}
}

// BuyHull purchases a hull at level 0
func (g *Garage) BuyHull(ctx context.Context, profileID, hullID string) (*Profile, error) {
	hull, ok := HullByID(hullID)
	if !ok {
		return nil, ErrHullNotFound
	}
	return g.store.UpdateProfile(ctx, profileID, func(p *Profile) error {
		if p.OwnsHull(hull.ID) {
			return ErrHullOwned
		}
		if p.Money < hull.Price {
			return ErrNotEnoughMoney
		}
		p.Money -= hull.Price
		p.OwnedHulls = append(p.OwnedHulls, hull.ID)
		p.HullUpgrades[hull.ID] = 0
		return nil
	})
}

// BuyGun purchases a gun at level 0
func (g *Garage) BuyGun(ctx context.Context, profileID, gunID string) (*Profile, error) {
	gun, ok := GunByID(gunID)
	if !ok {
		return nil, ErrGunNotFound
	}
	return g.store.UpdateProfile(ctx, profileID, func(p *Profile) error {
		if p.OwnsGun(gun.ID) {
			return ErrGunOwned
		}
		if p.Money < gun.Price {
			return ErrNotEnoughMoney
		}
		p.Money -= gun.Price
		p.OwnedGuns = append(p.OwnedGuns, gun.ID)
		p.GunUpgrades[gun.ID] = 0
		return nil
	})
}

// UpgradeResult describes a completed upgrade
type UpgradeResult struct {
	Profile  *Profile
	NewLevel int
	Cost     int
}

// UpgradeHull raises an owned hull one level
func (g *Garage) UpgradeHull(ctx context.Context, profileID, hullID string) (UpgradeResult, error) {
	var res UpgradeResult
	p, err := g.store.UpdateProfile(ctx, profileID, func(p *Profile) error {
		if !p.OwnsHull(hullID) {
			return ErrHullNotOwned
		}
		level := p.HullUpgrades[hullID]
		if level >= MaxUpgradeLevel {
			return ErrHullMaxLevel
		}
		cost := UpgradeCost(level)
		if p.Money < cost {
			return ErrNotEnoughMoney
		}
		p.Money -= cost
		p.HullUpgrades[hullID] = level + 1
		res.NewLevel, res.Cost = level+1, cost
		return nil
	})
	if err != nil {
		return UpgradeResult{}, err
	}
	res.Profile = p
	return res, nil
}

// UpgradeGun raises an owned gun one level
func (g *Garage) UpgradeGun(ctx context.Context, profileID, gunID string) (UpgradeResult, error) {
	var res UpgradeResult
	p, err := g.store.UpdateProfile(ctx, profileID, func(p *Profile) error {
		if !p.OwnsGun(gunID) {
			return ErrGunNotOwned
		}
		level := p.GunUpgrades[gunID]
		if level >= MaxUpgradeLevel {
			return ErrGunMaxLevel
		}
		cost := UpgradeCost(level)
		if p.Money < cost {
			return ErrNotEnoughMoney
		}
		p.Money -= cost
		p.GunUpgrades[gunID] = level + 1
		res.NewLevel, res.Cost = level+1, cost
		return nil
	})
	if err != nil {
		return UpgradeResult{}, err
	}
	res.Profile = p
	return res, nil
}

// EquipHull selects an owned hull for the next battle
func (g *Garage) EquipHull(ctx context.Context, profileID, hullID string) (*Profile, error) {
	return g.store.UpdateProfile(ctx, profileID, func(p *Profile) error {
		if !p.OwnsHull(hullID) {
			return ErrHullNotOwned
		}
		p.EquippedHull = hullID
		return nil
	})
}

// EquipGun selects an owned gun for the next battle
func (g *Garage) EquipGun(ctx context.Context, profileID, gunID string) (*Profile, error) {
	return g.store.UpdateProfile(ctx, profileID, func(p *Profile) error {
		if !p.OwnsGun(gunID) {
			return ErrGunNotOwned
		}
		p.EquippedGun = gunID
		return nil
	})
}
