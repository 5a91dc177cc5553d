// Package defs loads balance tables, squads and campaign maps from YAML or
// JSON files into the types the battle engine consumes.
package defs

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Garsondee/squadclash/internal/battle"
)

// ErrDuplicate reports two entries with the same name in one file.
var ErrDuplicate = errors.New("duplicate entry")

type unitsFile struct {
	Units []battle.UnitStats `yaml:"units"`
}

type abilitiesFile struct {
	Abilities []battle.AbilityDef `yaml:"abilities"`
}

type projectilesFile struct {
	Projectiles []battle.ProjectileDef `yaml:"projectiles"`
}

// NamedSquad is one preset squad, e.g. an enemy encounter or a starting line-up.
type NamedSquad struct {
	Name  string                 `yaml:"name"`
	Units battle.SquadDefinition `yaml:"units"`
}

type squadsFile struct {
	Squads []NamedSquad `yaml:"squads"`
}

// decode parses YAML (and therefore JSON) strictly: unknown keys are errors.
func decode(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ParseUnits decodes a `units:` list into a UnitStatsTable keyed by unit name.
func ParseUnits(r io.Reader) (battle.UnitStatsTable, error) {
	var f unitsFile
	if err := decode(r, &f); err != nil {
		return nil, err
	}
	table := make(battle.UnitStatsTable, len(f.Units))
	for i, u := range f.Units {
		if u.Name == "" {
			return nil, fmt.Errorf("units[%d]: missing unit name", i)
		}
		if _, dup := table[u.Name]; dup {
			return nil, fmt.Errorf("unit %q: %w", u.Name, ErrDuplicate)
		}
		table[u.Name] = u
	}
	return table, nil
}

// ParseAbilities decodes an `abilities:` list into an AbilityTable.
func ParseAbilities(r io.Reader) (battle.AbilityTable, error) {
	var f abilitiesFile
	if err := decode(r, &f); err != nil {
		return nil, err
	}
	table := make(battle.AbilityTable, len(f.Abilities))
	for i, a := range f.Abilities {
		if a.Name == "" {
			return nil, fmt.Errorf("abilities[%d]: missing abilityName", i)
		}
		if _, dup := table[a.Name]; dup {
			return nil, fmt.Errorf("ability %q: %w", a.Name, ErrDuplicate)
		}
		table[a.Name] = a
	}
	return table, nil
}

// ParseProjectiles decodes a `projectiles:` list into a ProjectileTable.
func ParseProjectiles(r io.Reader) (battle.ProjectileTable, error) {
	var f projectilesFile
	if err := decode(r, &f); err != nil {
		return nil, err
	}
	table := make(battle.ProjectileTable, len(f.Projectiles))
	for i, p := range f.Projectiles {
		if p.Name == "" {
			return nil, fmt.Errorf("projectiles[%d]: missing name", i)
		}
		if _, dup := table[p.Name]; dup {
			return nil, fmt.Errorf("projectile %q: %w", p.Name, ErrDuplicate)
		}
		table[p.Name] = p
	}
	return table, nil
}

// ParseSquads decodes a `squads:` list into squads keyed by name.
func ParseSquads(r io.Reader) (map[string]battle.SquadDefinition, error) {
	var f squadsFile
	if err := decode(r, &f); err != nil {
		return nil, err
	}
	out := make(map[string]battle.SquadDefinition, len(f.Squads))
	for i, s := range f.Squads {
		if s.Name == "" {
			return nil, fmt.Errorf("squads[%d]: missing name", i)
		}
		if _, dup := out[s.Name]; dup {
			return nil, fmt.Errorf("squad %q: %w", s.Name, ErrDuplicate)
		}
		out[s.Name] = s.Units
	}
	return out, nil
}

// LoadUnits reads a unit stats file.
func LoadUnits(path string) (battle.UnitStatsTable, error) {
	return loadFile(path, ParseUnits)
}

// LoadAbilities reads an ability file.
func LoadAbilities(path string) (battle.AbilityTable, error) {
	return loadFile(path, ParseAbilities)
}

// LoadProjectiles reads a projectile file. An empty path yields an empty table,
// so every projectile name resolves to the engine default.
func LoadProjectiles(path string) (battle.ProjectileTable, error) {
	if path == "" {
		return battle.ProjectileTable{}, nil
	}
	return loadFile(path, ParseProjectiles)
}

// LoadSquads reads a squads file.
func LoadSquads(path string) (map[string]battle.SquadDefinition, error) {
	return loadFile(path, ParseSquads)
}

func loadFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}
