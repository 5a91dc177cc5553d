// Package autocast fires unit abilities from expression rules. Hosts use it to
// drive the enemy side, or the player side in headless runs.
package autocast

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/Garsondee/squadclash/internal/battle"
	"github.com/Garsondee/squadclash/internal/config"
)

// Wildcard matches every ability name.
const Wildcard = "*"

// Env is what a rule condition can see about one ready caster.
type Env struct {
	Time                 float64
	Unit                 string // unit type name
	Ability              string
	Kind                 string // area_burst, self_buff or global_nuke
	Health               int
	MaxHealth            int
	HealthFraction       float64
	AlliesAlive          int
	EnemiesAlive         int
	EnemiesInRadius      int // within the ability radius, or attack range for abilities without one
	NearestEnemyDistance float64
}

// Rule is a compiled condition for one ability name.
type Rule struct {
	Ability string
	When    string
	program *vm.Program
}

// Cast records one activation attempt made by Apply.
type Cast struct {
	Unit    battle.UnitID
	Label   string
	Ability string
	Result  battle.ActivationResult
}

// Planner evaluates rules against every ready caster on one side.
type Planner struct {
	rules []*Rule
	log   *slog.Logger
}

// Compile checks every rule against Env. The whole set is rejected when any
// condition does not compile to a bool.
func Compile(rules []config.AutocastRule, log *slog.Logger) (*Planner, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	p := &Planner{log: log.With("component", "autocast")}
	for i, r := range rules {
		if r.Ability == "" {
			return nil, fmt.Errorf("autocast rule %d: ability is required", i)
		}
		program, err := expr.Compile(r.When, expr.Env(Env{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("autocast rule %d (%s): %w", i, r.Ability, err)
		}
		p.rules = append(p.rules, &Rule{Ability: r.Ability, When: r.When, program: program})
	}
	return p, nil
}

// Rules returns the compiled rules in evaluation order.
func (p *Planner) Rules() []*Rule { return p.rules }

// Apply activates the ability of every ready unit of side whose first
// matching rule holds. Units are visited in slot order and each sees the
// battle as left by earlier casts.
func (p *Planner) Apply(sim *battle.Simulation, side battle.Faction) []Cast {
	if sim.Ended() {
		return nil
	}
	own, opp := sim.Player(), sim.Enemy()
	if side == battle.FactionEnemy {
		own, opp = opp, own
	}

	var casts []Cast
	for _, u := range own.Units() {
		if !u.AbilityReady() {
			continue
		}
		ab := u.Ability()
		env := buildEnv(sim, u, ab, own, opp)
		for _, r := range p.rules {
			if r.Ability != Wildcard && r.Ability != ab.Name {
				continue
			}
			fire, err := p.eval(r, env)
			if err != nil {
				p.log.Warn("rule condition error", "ability", r.Ability, "unit", u.Label(), "error", err)
				continue
			}
			if !fire {
				continue
			}
			res := sim.ActivateAbility(u.ID())
			p.log.Debug("rule fired", "ability", ab.Name, "unit", u.Label(), "result", res.String())
			casts = append(casts, Cast{Unit: u.ID(), Label: u.Label(), Ability: ab.Name, Result: res})
			break
		}
		if sim.Ended() {
			break
		}
	}
	return casts
}

func (p *Planner) eval(r *Rule, env Env) (bool, error) {
	out, err := vm.Run(r.program, env)
	if err != nil {
		return false, err
	}
	fire, _ := out.(bool)
	return fire, nil
}

func buildEnv(sim *battle.Simulation, u *battle.Unit, ab *battle.AbilityType, own, opp *battle.Squad) Env {
	radius := ab.Radius
	if radius <= 0 {
		radius = u.AttackRange()
	}
	env := Env{
		Time:                 sim.Now(),
		Unit:                 u.TypeName(),
		Ability:              ab.Name,
		Kind:                 ab.Kind.String(),
		Health:               u.Health(),
		MaxHealth:            u.MaxHealth(),
		AlliesAlive:          own.AliveCount(),
		EnemiesAlive:         opp.AliveCount(),
		NearestEnemyDistance: math.Inf(1),
	}
	if u.MaxHealth() > 0 {
		env.HealthFraction = float64(u.Health()) / float64(u.MaxHealth())
	}
	for _, e := range opp.Units() {
		if !e.Alive() {
			continue
		}
		d := u.Position().Dist(e.Position())
		if d <= radius {
			env.EnemiesInRadius++
		}
		env.NearestEnemyDistance = math.Min(env.NearestEnemyDistance, d)
	}
	return env
}
