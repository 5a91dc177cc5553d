package battle

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// ErrConfiguration is the sentinel wrapped by every ConfigurationError.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports balance data or a squad that cannot start a battle.
type ConfigurationError struct {
	Subject string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Subject, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// UnitStats is the static balance entry for one unit type.
type UnitStats struct {
	Name         string  `yaml:"unit"`
	Level        int     `yaml:"level"`
	Description  string  `yaml:"description"`
	Health       int     `yaml:"health"`
	Armor        float64 `yaml:"armor"`
	MoveSpeed    float64 `yaml:"moveSpeed"`
	MinDamage    float64 `yaml:"minimumAttackDamage"`
	MaxDamage    float64 `yaml:"maximumAttackDamage"`
	AttackPeriod float64 `yaml:"attackPeriod"` // seconds between attacks
	AttackRange  float64 `yaml:"attackRange"`
	Projectile   string  `yaml:"projectile,omitempty"`
	Ability      string  `yaml:"ability,omitempty"`
}

// UnitStatsTable maps unit type name to its stats.
type UnitStatsTable map[string]UnitStats

// AbilityKind selects an ability's effect.
type AbilityKind int

const (
	AbilityUnknown AbilityKind = iota
	AbilityAreaBurst
	AbilitySelfBuff
	AbilityGlobalNuke
)

func (k AbilityKind) String() string {
	switch k {
	case AbilityAreaBurst:
		return "area_burst"
	case AbilitySelfBuff:
		return "self_buff"
	case AbilityGlobalNuke:
		return "global_nuke"
	default:
		return "unknown"
	}
}

func (k AbilityKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *AbilityKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "area_burst", "areaburst":
		*k = AbilityAreaBurst
	case "self_buff", "selfbuff":
		*k = AbilitySelfBuff
	case "global_nuke", "globalnuke":
		*k = AbilityGlobalNuke
	default:
		return fmt.Errorf("unknown ability kind %q", text)
	}
	return nil
}

// AbilityDef is the static entry for one ability. Asset ids are opaque to the
// engine and are handed back untouched in events and snapshots.
type AbilityDef struct {
	Name              string      `yaml:"abilityName"`
	Kind              AbilityKind `yaml:"kind"`
	Radius            float64     `yaml:"radius,omitempty"`
	Damage            int         `yaml:"damage,omitempty"`
	Knockback         float64     `yaml:"knockback,omitempty"`
	AttackPeriodDelta float64     `yaml:"attackPeriodDelta,omitempty"`
	Duration          float64     `yaml:"duration,omitempty"` // seconds
	ButtonAsset       string      `yaml:"buttonImage,omitempty"`
	EffectAsset       string      `yaml:"effectImage,omitempty"`
}

// AbilityTable maps ability name to its definition.
type AbilityTable map[string]AbilityDef

// ProjectileDef is the static entry for one projectile type.
type ProjectileDef struct {
	Name        string  `yaml:"name"`
	Speed       float64 `yaml:"speed"`       // units per second
	MaxLifetime float64 `yaml:"maxLifetime"` // seconds before it lands regardless
}

// ProjectileTable maps projectile name to its definition.
type ProjectileTable map[string]ProjectileDef

// DefaultProjectile is used for projectile names missing from the ProjectileTable.
var DefaultProjectile = ProjectileDef{Name: "default", Speed: 12, MaxLifetime: 5}

// UnitType is a validated, resolved unit type handle.
type UnitType struct {
	Name       string
	Stats      UnitStats
	Ability    *AbilityType
	Projectile *ProjectileType
}

// AbilityType is a validated ability handle.
type AbilityType struct {
	AbilityDef
}

// ProjectileType is a validated projectile handle.
type ProjectileType struct {
	ProjectileDef
	Fallback bool // resolved from DefaultProjectile
}

// Registry resolves string-keyed balance tables into typed handles once, at
// battle start. Nothing looks up a name during Step.
type Registry struct {
	units       map[string]*UnitType
	abilities   map[string]*AbilityType
	projectiles map[string]*ProjectileType
	fallback    *ProjectileType
}

// NewRegistry validates every table entry and links unit types to their
// ability and projectile handles. A unit that names an ability missing from
// abilities gets no ability; a missing projectile name falls back to fallback.
func NewRegistry(stats UnitStatsTable, abilities AbilityTable, projectiles ProjectileTable, fallback ProjectileDef, log *slog.Logger) (*Registry, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if err := validateProjectile("default projectile", fallback); err != nil {
		return nil, err
	}
	r := &Registry{
		units:       make(map[string]*UnitType, len(stats)),
		abilities:   make(map[string]*AbilityType, len(abilities)),
		projectiles: make(map[string]*ProjectileType, len(projectiles)),
		fallback:    &ProjectileType{ProjectileDef: fallback, Fallback: true},
	}

	for _, name := range sortedKeys(projectiles) {
		def := projectiles[name]
		if def.Name == "" {
			def.Name = name
		}
		if err := validateProjectile("projectile "+name, def); err != nil {
			return nil, err
		}
		r.projectiles[name] = &ProjectileType{ProjectileDef: def}
	}

	for _, name := range sortedKeys(abilities) {
		def := abilities[name]
		if def.Name == "" {
			def.Name = name
		}
		if err := validateAbility(name, def); err != nil {
			return nil, err
		}
		r.abilities[name] = &AbilityType{AbilityDef: def}
	}

	for _, name := range sortedKeys(stats) {
		st := stats[name]
		if st.Name == "" {
			st.Name = name
		}
		if err := validateStats(name, st); err != nil {
			return nil, err
		}
		ut := &UnitType{Name: name, Stats: st}
		if st.Ability != "" {
			if ab, ok := r.abilities[st.Ability]; ok {
				ut.Ability = ab
			} else {
				log.Warn("ability not found, unit has no ability", "unit", name, "ability", st.Ability)
			}
		}
		if st.Projectile != "" {
			if pt, ok := r.projectiles[st.Projectile]; ok {
				ut.Projectile = pt
			} else {
				log.Warn("projectile not found, using default", "unit", name, "projectile", st.Projectile)
				ut.Projectile = r.fallback
			}
		}
		r.units[name] = ut
	}
	return r, nil
}

// Unit returns the handle for a unit type name.
func (r *Registry) Unit(name string) (*UnitType, error) {
	ut, ok := r.units[name]
	if !ok {
		return nil, &ConfigurationError{Subject: fmt.Sprintf("unit type %q", name), Reason: "not in unit stats table"}
	}
	return ut, nil
}

// Ability returns the handle for an ability name.
func (r *Registry) Ability(name string) (*AbilityType, bool) {
	ab, ok := r.abilities[name]
	return ab, ok
}

func validateStats(name string, st UnitStats) error {
	bad := func(reason string) error {
		return &ConfigurationError{Subject: fmt.Sprintf("unit type %q", name), Reason: reason}
	}
	switch {
	case st.Health <= 0:
		return bad("health must be positive")
	case st.Armor < 0:
		return bad("armor must not be negative")
	case st.MoveSpeed < 0:
		return bad("moveSpeed must not be negative")
	case st.MinDamage < 0:
		return bad("minimum damage must not be negative")
	case st.MinDamage > st.MaxDamage:
		return bad(fmt.Sprintf("minimum damage %.2f exceeds maximum %.2f", st.MinDamage, st.MaxDamage))
	case st.AttackPeriod <= 0:
		return bad("attack period must be positive")
	case st.AttackRange < 0:
		return bad("attack range must not be negative")
	}
	return nil
}

func validateAbility(name string, def AbilityDef) error {
	bad := func(reason string) error {
		return &ConfigurationError{Subject: fmt.Sprintf("ability %q", name), Reason: reason}
	}
	switch def.Kind {
	case AbilityAreaBurst:
		if def.Radius <= 0 {
			return bad("area burst radius must be positive")
		}
		if def.Damage < 0 || def.Knockback < 0 {
			return bad("area burst damage and knockback must not be negative")
		}
	case AbilitySelfBuff:
		if def.Duration <= 0 {
			return bad("self buff duration must be positive")
		}
	case AbilityGlobalNuke:
		if def.Damage < 0 {
			return bad("global nuke damage must not be negative")
		}
	default:
		return bad("unknown ability kind")
	}
	return nil
}

func validateProjectile(subject string, def ProjectileDef) error {
	if def.Speed <= 0 {
		return &ConfigurationError{Subject: subject, Reason: "speed must be positive"}
	}
	if def.MaxLifetime <= 0 {
		return &ConfigurationError{Subject: subject, Reason: "max lifetime must be positive"}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
