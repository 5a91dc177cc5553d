package defs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/squadclash/internal/battle"
	"github.com/Garsondee/squadclash/internal/config"
)

const unitsYAML = `
units:
  - unit: Knight
    level: 1
    description: Sturdy hero
    health: 120
    armor: 2
    moveSpeed: 2
    minimumAttackDamage: 8
    maximumAttackDamage: 12
    attackPeriod: 1
    attackRange: 1
    ability: Shockwave
  - unit: Hunter
    health: 60
    moveSpeed: 1.5
    minimumAttackDamage: 4
    maximumAttackDamage: 7
    attackPeriod: 1.5
    attackRange: 6
    projectile: arrow
`

func TestParseUnits(t *testing.T) {
	table, err := ParseUnits(strings.NewReader(unitsYAML))
	require.NoError(t, err)
	require.Len(t, table, 2)

	k := table["Knight"]
	assert.Equal(t, 120, k.Health)
	assert.InDelta(t, 8, k.MinDamage, 1e-12)
	assert.Equal(t, "Shockwave", k.Ability)
	assert.Equal(t, "arrow", table["Hunter"].Projectile)
}

func TestParseUnits_JSON(t *testing.T) {
	body := `{"units": [{"unit": "Militia", "health": 50, "minimumAttackDamage": 2, "maximumAttackDamage": 4, "attackPeriod": 1, "attackRange": 1}]}`
	table, err := ParseUnits(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 50, table["Militia"].Health)
}

func TestParseUnits_Errors(t *testing.T) {
	_, err := ParseUnits(strings.NewReader("units:\n  - unit: A\n    health: 1\n  - unit: A\n    health: 2\n"))
	assert.True(t, errors.Is(err, ErrDuplicate), "got %v", err)

	_, err = ParseUnits(strings.NewReader("units:\n  - health: 1\n"))
	assert.ErrorContains(t, err, "missing unit name")

	_, err = ParseUnits(strings.NewReader("units:\n  - unit: A\n    hitpoints: 1\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

func TestParseAbilities(t *testing.T) {
	body := `
abilities:
  - abilityName: Shockwave
    kind: area_burst
    radius: 3
    damage: 20
    knockback: 1.5
    buttonImage: ui/shockwave
    effectImage: fx/shockwave
  - abilityName: Frenzy
    kind: self_buff
    attackPeriodDelta: -0.5
    duration: 4
  - abilityName: Meteor
    kind: global_nuke
    damage: 15
`
	table, err := ParseAbilities(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.Equal(t, battle.AbilityAreaBurst, table["Shockwave"].Kind)
	assert.Equal(t, "ui/shockwave", table["Shockwave"].ButtonAsset)
	assert.Equal(t, battle.AbilitySelfBuff, table["Frenzy"].Kind)
	assert.InDelta(t, -0.5, table["Frenzy"].AttackPeriodDelta, 1e-12)
	assert.Equal(t, battle.AbilityGlobalNuke, table["Meteor"].Kind)

	_, err = ParseAbilities(strings.NewReader("abilities:\n  - abilityName: X\n    kind: teleport\n"))
	assert.ErrorContains(t, err, "teleport")
}

func TestParseProjectilesAndSquads(t *testing.T) {
	p, err := ParseProjectiles(strings.NewReader("projectiles:\n  - name: arrow\n    speed: 14\n    maxLifetime: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, battle.ProjectileDef{Name: "arrow", Speed: 14, MaxLifetime: 3}, p["arrow"])

	body := `
squads:
  - name: bandits
    units:
      - unit: Militia
        placement: 1
      - unit: Hunter
        placement: 5
`
	squads, err := ParseSquads(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, battle.SquadDefinition{
		{UnitType: "Militia", Slot: 1},
		{UnitType: "Hunter", Slot: 5},
	}, squads["bandits"])
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "units.yaml")
	require.NoError(t, os.WriteFile(path, []byte(unitsYAML), 0o644))

	table, err := LoadUnits(path)
	require.NoError(t, err)
	assert.Contains(t, table, "Knight")

	_, err = LoadUnits(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "missing.yaml")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("units: [{unit: A}, {unit: A}]"), 0o644))
	_, err = LoadUnits(bad)
	assert.ErrorContains(t, err, "bad.yaml")

	proj, err := LoadProjectiles("")
	require.NoError(t, err)
	assert.Empty(t, proj)
}

func TestRepositoryDataLoads(t *testing.T) {
	root := filepath.Join("..", "..", "data")
	units, err := LoadUnits(filepath.Join(root, "units.yaml"))
	require.NoError(t, err)
	abilities, err := LoadAbilities(filepath.Join(root, "abilities.yaml"))
	require.NoError(t, err)
	projectiles, err := LoadProjectiles(filepath.Join(root, "projectiles.yaml"))
	require.NoError(t, err)
	squads, err := LoadSquads(filepath.Join(root, "squads.yaml"))
	require.NoError(t, err)
	maps, err := LoadMaps(filepath.Join(root, "maps.yaml"))
	require.NoError(t, err)

	reg, err := battle.NewRegistry(units, abilities, projectiles, battle.DefaultProjectile, nil)
	require.NoError(t, err)
	for name, squad := range squads {
		for _, p := range squad {
			_, err := reg.Unit(p.UnitType)
			assert.NoError(t, err, "squad %s", name)
		}
	}
	for _, m := range maps.Maps {
		for _, e := range m.Edges {
			for _, p := range e.Squad {
				_, err := reg.Unit(p.UnitType)
				assert.NoError(t, err, "map %s edge %d-%d", m.Name, e.From, e.To)
			}
		}
	}
}

const mapsYAML = `
maps:
  - name: FieldMap
    nextMaps: [ForestMap]
    nodes:
      - {id: 1, type: start, x: 0, y: 0}
      - {id: 2, type: barracks, x: 1, y: 0}
      - {id: 3, type: end, x: 2, y: 0}
    edges:
      - from: 1
        to: 2
        squad:
          - {unit: Militia, placement: 1}
      - {from: 2, to: 3}
`

func TestParseMaps(t *testing.T) {
	cfg, err := ParseMaps(strings.NewReader(mapsYAML))
	require.NoError(t, err)
	m, ok := cfg.Map("FieldMap")
	require.True(t, ok)

	e, ok := m.Edge(2, 1)
	require.True(t, ok, "edges are undirected")
	assert.Len(t, e.Squad, 1)
	assert.Equal(t, []int{1, 3}, m.Neighbours(2))
	n, ok := m.Node(3)
	require.True(t, ok)
	assert.Equal(t, NodeEnd, n.Type)

	_, ok = cfg.Map("Nowhere")
	assert.False(t, ok)
}

func TestParseMaps_Invalid(t *testing.T) {
	_, err := ParseMaps(strings.NewReader("maps:\n  - name: M\n    nodes: [{id: 1}]\n    edges: [{from: 1, to: 9}]\n"))
	assert.ErrorContains(t, err, "unknown node")

	_, err = ParseMaps(strings.NewReader("maps:\n  - name: M\n    nodes: [{id: 1}, {id: 2}]\n    edges: [{from: 1, to: 2, squad: [{unit: A, placement: 9}]}]\n"))
	assert.True(t, errors.Is(err, battle.ErrConfiguration), "got %v", err)
}

func TestLoadCatalog(t *testing.T) {
	root := filepath.Join("..", "..", "data")
	cat, err := LoadCatalog(config.DataConfig{
		Units:       filepath.Join(root, "units.yaml"),
		Abilities:   filepath.Join(root, "abilities.yaml"),
		Projectiles: filepath.Join(root, "projectiles.yaml"),
		Squads:      filepath.Join(root, "squads.yaml"),
		Maps:        filepath.Join(root, "maps.yaml"),
	}, battle.DefaultProjectile, nil)
	require.NoError(t, err)

	sq, err := cat.Squad("knight_start")
	require.NoError(t, err)
	assert.NotEmpty(t, sq)
	_, err = cat.Squad("nope")
	assert.Error(t, err)

	m, ok := cat.Maps.Map("FieldMap")
	require.True(t, ok)
	assert.NoError(t, m.Validate())
}

func TestLoadCatalogOptionalFiles(t *testing.T) {
	dir := t.TempDir()
	units := filepath.Join(dir, "units.yaml")
	abilities := filepath.Join(dir, "abilities.yaml")
	require.NoError(t, os.WriteFile(units, []byte(unitsYAML), 0o600))
	require.NoError(t, os.WriteFile(abilities, []byte("abilities: []\n"), 0o600))

	fallback := battle.ProjectileDef{Name: "default", Speed: 42, MaxLifetime: 3}
	cat, err := LoadCatalog(config.DataConfig{Units: units, Abilities: abilities}, fallback, nil)
	require.NoError(t, err)
	assert.Empty(t, cat.Squads)
	assert.Empty(t, cat.Maps.Maps)
	_, err = cat.Registry.Unit("Knight")
	assert.NoError(t, err)

	hunter, err := cat.Registry.Unit("Hunter")
	require.NoError(t, err)
	require.NotNil(t, hunter.Projectile)
	assert.True(t, hunter.Projectile.Fallback)
	assert.Equal(t, 42.0, hunter.Projectile.Speed)
	assert.Equal(t, 3.0, hunter.Projectile.MaxLifetime)
}
