package battle

import (
	"fmt"
	"log/slog"
)

// TestSim is a headless battle harness used by tests and the batch runner.
// It builds a Simulation from options, steps it at a fixed tick length and
// records every event into SimLog.
type TestSim struct {
	Sim         *Simulation
	SimLog      *SimLog
	TickSeconds float64

	seed        int64
	log         *slog.Logger
	stats       UnitStatsTable
	abilities   AbilityTable
	projectiles ProjectileTable
	player      SquadDefinition
	enemy       SquadDefinition
	modifiers   []Modifier
	layout      Layout
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // seed, tick length, verbose, tables
	simOptSquad                       // placements, applied after tables exist
	simOptPlaced                      // position overrides, applied after the simulation is built
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithHarnessSeed sets the RNG seed for deterministic runs.
func WithHarnessSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.seed = seed }}
}

// WithTickSeconds sets the fixed dt used by RunTicks and RunUntil.
func WithTickSeconds(dt float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.TickSeconds = dt }}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.SimLog = NewSimLog(v) }}
}

// WithHarnessLogger routes engine diagnostics to l.
func WithHarnessLogger(l *slog.Logger) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.log = l }}
}

// WithUnitType adds or replaces a unit stats entry.
func WithUnitType(name string, st UnitStats) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.stats[name] = st }}
}

// WithAbility adds or replaces an ability entry.
func WithAbility(def AbilityDef) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.abilities[def.Name] = def }}
}

// WithProjectile adds or replaces a projectile entry.
func WithProjectile(def ProjectileDef) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.projectiles[def.Name] = def }}
}

// WithHarnessModifier applies a progression bonus to player units.
func WithHarnessModifier(m Modifier) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.modifiers = append(ts.modifiers, m) }}
}

// WithPlayerUnit places a unit of unitType in a player slot.
func WithPlayerUnit(slot int, unitType string) SimOption {
	return SimOption{simOptSquad, func(ts *TestSim) {
		ts.player = append(ts.player, Placement{UnitType: unitType, Slot: slot})
	}}
}

// WithEnemyUnit places a unit of unitType in an enemy slot.
func WithEnemyUnit(slot int, unitType string) SimOption {
	return SimOption{simOptSquad, func(ts *TestSim) {
		ts.enemy = append(ts.enemy, Placement{UnitType: unitType, Slot: slot})
	}}
}

// WithPosition moves the unit in slot of faction f to (x, y) before the first tick.
func WithPosition(f Faction, slot int, x, y float64) SimOption {
	return SimOption{simOptPlaced, func(ts *TestSim) {
		if u := ts.Sim.squad(f).Unit(slot); u != nil {
			u.pos = Vec2{X: x, Y: y}
		}
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (seed, tick length, verbose, tables)
//  2. Squad placements
//  3. Simulation build
//  4. Position overrides
//
// It panics on a configuration error; use Initialize directly to test those.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		SimLog:      NewSimLog(false),
		TickSeconds: 0.05,
		seed:        1,
		stats:       UnitStatsTable{},
		abilities:   AbilityTable{},
		projectiles: ProjectileTable{},
		layout:      DefaultLayout(),
	}
	for _, kind := range []simOptionKind{simOptInfra, simOptSquad} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(ts)
			}
		}
	}

	sim, err := Initialize(ts.player, ts.enemy, ts.stats, ts.abilities,
		WithSeed(ts.seed),
		WithLogger(ts.log),
		WithProjectiles(ts.projectiles),
		WithLayout(ts.layout),
		WithModifiers(ts.modifiers...),
	)
	if err != nil {
		panic(fmt.Sprintf("test harness: %v", err))
	}
	ts.Sim = sim
	ts.SimLog.Attach(sim)

	for _, o := range opts {
		if o.kind == simOptPlaced {
			o.fn(ts)
		}
	}
	return ts
}

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.step()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.step()
		if predicate(ts) {
			return ts.Sim.Tick()
		}
	}
	return -1
}

// RunToEnd steps until the battle ends or maxTicks elapse and returns the outcome.
func (ts *TestSim) RunToEnd(maxTicks int) Outcome {
	ts.RunUntil(func(ts *TestSim) bool { return ts.Sim.Ended() }, maxTicks)
	return ts.Sim.Outcome()
}

func (ts *TestSim) step() {
	ts.Sim.Step(ts.TickSeconds)
	ts.SimLog.RecordPositions(ts.Sim)
}

// Player returns the player unit in slot, or nil.
func (ts *TestSim) Player(slot int) *Unit { return ts.Sim.player.Unit(slot) }

// Enemy returns the enemy unit in slot, or nil.
func (ts *TestSim) Enemy(slot int) *Unit { return ts.Sim.enemy.Unit(slot) }
