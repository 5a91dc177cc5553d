package config

import "github.com/Garsondee/squadclash/internal/battle"

// ProjectileDefaults is the projectile used by units whose projectile name is
// missing from the table.
func (c *Config) ProjectileDefaults() battle.ProjectileDef {
	return battle.ProjectileDef{
		Name:        battle.DefaultProjectile.Name,
		Speed:       c.Sim.DefaultProjectileSpeed,
		MaxLifetime: c.Sim.ProjectileMaxLifetime,
	}
}

// BattleOptions turns the sim and layout sections into engine options.
func (c *Config) BattleOptions() []battle.Option {
	return []battle.Option{
		battle.WithLayout(battle.Layout{
			FrontOffset: c.Layout.FrontOffset,
			RowGap:      c.Layout.RowGap,
			ColumnGap:   c.Layout.ColumnGap,
		}),
		battle.WithProjectileDefaults(c.ProjectileDefaults()),
		battle.WithEpsilon(c.Sim.ProjectileEpsilon),
	}
}
