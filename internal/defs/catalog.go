package defs

import (
	"fmt"
	"log/slog"

	"github.com/Garsondee/squadclash/internal/battle"
	"github.com/Garsondee/squadclash/internal/config"
)

// Catalog is every data file a host needs, loaded and cross-checked once.
type Catalog struct {
	Units       battle.UnitStatsTable
	Abilities   battle.AbilityTable
	Projectiles battle.ProjectileTable
	Squads      map[string]battle.SquadDefinition
	Maps        *MapConfig
	Registry    *battle.Registry
}

// LoadCatalog reads the files named in cfg and resolves the registry shared by
// every battle. Squads and maps are optional. fallback replaces projectile
// names missing from the table.
func LoadCatalog(cfg config.DataConfig, fallback battle.ProjectileDef, log *slog.Logger) (*Catalog, error) {
	c := &Catalog{Squads: map[string]battle.SquadDefinition{}, Maps: &MapConfig{}}
	var err error
	if c.Units, err = LoadUnits(cfg.Units); err != nil {
		return nil, err
	}
	if c.Abilities, err = LoadAbilities(cfg.Abilities); err != nil {
		return nil, err
	}
	if c.Projectiles, err = LoadProjectiles(cfg.Projectiles); err != nil {
		return nil, err
	}
	if cfg.Squads != "" {
		if c.Squads, err = LoadSquads(cfg.Squads); err != nil {
			return nil, err
		}
	}
	if cfg.Maps != "" {
		if c.Maps, err = LoadMaps(cfg.Maps); err != nil {
			return nil, err
		}
	}
	c.Registry, err = battle.NewRegistry(c.Units, c.Abilities, c.Projectiles, fallback, log)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Squad returns the named squad.
func (c *Catalog) Squad(name string) (battle.SquadDefinition, error) {
	sq, ok := c.Squads[name]
	if !ok {
		return nil, fmt.Errorf("squad %q not found", name)
	}
	return sq, nil
}
