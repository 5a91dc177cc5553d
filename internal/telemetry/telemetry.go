// Package telemetry exports battle event counts as OpenTelemetry metrics.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Garsondee/squadclash/internal/battle"
)

const instrumentationName = "github.com/Garsondee/squadclash/internal/telemetry"

// Meter returns the global meter for battle metrics.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Totals is a local copy of what Metrics has counted.
type Totals struct {
	Attacks     int64
	Damage      int64
	Deaths      map[string]int64 // by faction
	Abilities   map[string]int64 // by ability name
	Projectiles map[string]int64 // spawned, hit, fizzled, expired
	Outcomes    map[string]int64
}

// Metrics is a battle.Listener that feeds OpenTelemetry counters. One value
// may listen to many battles, including concurrently.
type Metrics struct {
	attacks     metric.Int64Counter
	damage      metric.Int64Counter
	deaths      metric.Int64Counter
	abilities   metric.Int64Counter
	projectiles metric.Int64Counter
	outcomes    metric.Int64Counter

	mu     sync.Mutex
	totals Totals
}

// NewMetrics registers the counters on m. A nil m uses the global meter.
func NewMetrics(m metric.Meter) (*Metrics, error) {
	if m == nil {
		m = Meter()
	}
	r := &Metrics{totals: Totals{
		Deaths:      map[string]int64{},
		Abilities:   map[string]int64{},
		Projectiles: map[string]int64{},
		Outcomes:    map[string]int64{},
	}}

	var err error
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&r.attacks, "battle.attacks", "Landed attacks"},
		{&r.damage, "battle.damage", "Damage dealt by attacks and abilities"},
		{&r.deaths, "battle.deaths", "Units killed"},
		{&r.abilities, "battle.abilities", "Abilities activated"},
		{&r.projectiles, "battle.projectiles", "Projectile lifecycle events"},
		{&r.outcomes, "battle.outcomes", "Finished battles"},
	}
	for _, c := range counters {
		*c.dst, err = m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("create %s counter: %w", c.name, err)
		}
	}
	return r, nil
}

// OnEvent implements battle.Listener.
func (r *Metrics) OnEvent(e battle.Event) {
	ctx := context.Background()
	r.mu.Lock()
	defer r.mu.Unlock()

	switch d := e.Data.(type) {
	case battle.AttackResolved:
		kind := "melee"
		if d.ProjectileID != 0 {
			kind = "ranged"
		}
		attrs := metric.WithAttributes(attribute.String("kind", kind))
		r.attacks.Add(ctx, 1, attrs)
		r.damage.Add(ctx, int64(d.HealthLost), attrs)
		r.totals.Attacks++
		r.totals.Damage += int64(d.HealthLost)
	case battle.AbilityHit:
		r.damage.Add(ctx, int64(d.HealthLost), metric.WithAttributes(attribute.String("kind", "ability")))
		r.totals.Damage += int64(d.HealthLost)
	case battle.UnitDied:
		side := d.Faction.String()
		r.deaths.Add(ctx, 1, metric.WithAttributes(attribute.String("faction", side)))
		r.totals.Deaths[side]++
	case battle.AbilityActivated:
		r.abilities.Add(ctx, 1, metric.WithAttributes(
			attribute.String("ability", d.AbilityName),
			attribute.String("kind", d.Kind.String())))
		r.totals.Abilities[d.AbilityName]++
	case battle.ProjectileSpawned:
		r.projectile(ctx, "spawned")
	case battle.ProjectileResolved:
		switch {
		case d.Expired:
			r.projectile(ctx, "expired")
		case d.Hit:
			r.projectile(ctx, "hit")
		default:
			r.projectile(ctx, "fizzled")
		}
	case battle.BattleEnded:
		o := d.Outcome.String()
		r.outcomes.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", o),
			attribute.String("reason", d.Reason)))
		r.totals.Outcomes[o]++
	}
}

func (r *Metrics) projectile(ctx context.Context, stage string) {
	r.projectiles.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
	r.totals.Projectiles[stage]++
}

// Totals returns a copy of the local tallies.
func (r *Metrics) Totals() Totals {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.totals
	t.Deaths = copyMap(t.Deaths)
	t.Abilities = copyMap(t.Abilities)
	t.Projectiles = copyMap(t.Projectiles)
	t.Outcomes = copyMap(t.Outcomes)
	return t
}

func copyMap(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
