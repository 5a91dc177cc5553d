package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"strings"

	"github.com/Garsondee/squadclash/internal/autocast"
	"github.com/Garsondee/squadclash/internal/battle"
	"github.com/Garsondee/squadclash/internal/config"
	"github.com/Garsondee/squadclash/internal/defs"
	"github.com/Garsondee/squadclash/internal/progress"
	"github.com/Garsondee/squadclash/internal/storage"
	"github.com/Garsondee/squadclash/internal/telemetry"
)

type runStats struct {
	runIndex int
	seed     int64
	label    string

	outcome  battle.Outcome
	reason   string
	ticks    int
	duration float64

	firstAttackTick  int
	firstDeathTick   int
	firstAbilityTick int

	attacks      int
	deaths       int
	abilities    int
	projectiles  int
	fizzled      int
	buffsExpired int

	playerTotal     int
	enemyTotal      int
	playerSurvivors int
	enemySurvivors  int

	casts []autocast.Cast
	final battle.Snapshot
}

type runner struct {
	cfg     *config.Config
	cat     *defs.Catalog
	planner *autocast.Planner
	sides   []battle.Faction
	metrics *telemetry.Metrics
	store   *storage.Store
	record  bool
	verbose bool
	jsonOut bool
	log     *slog.Logger
}

func parseSides(s string) ([]battle.Faction, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return nil, nil
	case "player":
		return []battle.Faction{battle.FactionPlayer}, nil
	case "enemy":
		return []battle.Faction{battle.FactionEnemy}, nil
	case "both":
		return []battle.Faction{battle.FactionPlayer, battle.FactionEnemy}, nil
	default:
		return nil, fmt.Errorf("unsupported -autocast %q (supported: none, player, enemy, both)", s)
	}
}

// battle plays one fight to its end or the configured time budget.
func (r *runner) battle(ctx context.Context, runIndex int, seed int64, label string, player, enemy battle.SquadDefinition, mods []battle.Modifier) (runStats, error) {
	opts := append(r.cfg.BattleOptions(),
		battle.WithSeed(seed),
		battle.WithLogger(r.log),
		battle.WithModifiers(mods...),
	)
	if r.metrics != nil {
		opts = append(opts, battle.WithSubscriber(r.metrics))
	}
	var rec *storage.Recorder
	if r.record && r.store != nil {
		var err error
		if rec, err = r.store.NewRecorder(label, seed, player, enemy); err != nil {
			return runStats{}, err
		}
		opts = append(opts, battle.WithSubscriber(rec))
	}

	sim, err := battle.New(r.cat.Registry, player, enemy, opts...)
	if err != nil {
		return runStats{}, err
	}
	sl := battle.NewSimLog(r.verbose)
	sl.Attach(sim)
	reason := "time_limit"
	sim.Subscribe(battle.EventBattleEnded, battle.ListenerFunc(func(e battle.Event) {
		reason = e.Data.(battle.BattleEnded).Reason
	}))

	var casts []autocast.Cast
	dt := r.cfg.Sim.TickSeconds
	for tick := 0; tick < r.cfg.MaxTicks() && !sim.Ended(); tick++ {
		for _, side := range r.sides {
			casts = append(casts, r.planner.Apply(sim, side)...)
		}
		sim.Step(dt)
		if sl.Verbose() {
			sl.RecordPositions(sim)
		}
	}

	if rec != nil {
		if err := rec.Flush(ctx, sim); err != nil {
			return runStats{}, err
		}
	}
	if r.verbose {
		fmt.Print(sl.Format())
		fmt.Print(sl.Summary(sim))
	}
	snap := sim.CurrentState()
	if r.jsonOut {
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return runStats{}, err
		}
		fmt.Println(string(out))
	}

	rs := collectStats(sl, snap)
	rs.reason = reason
	rs.runIndex = runIndex
	rs.seed = seed
	rs.label = label
	rs.casts = casts
	return rs, nil
}

func collectStats(sl *battle.SimLog, snap battle.Snapshot) runStats {
	rs := runStats{
		outcome:          snap.Outcome,
		ticks:            snap.Tick,
		duration:         snap.Time,
		firstAttackTick:  firstTick(sl, "combat", "attack"),
		firstDeathTick:   firstTick(sl, "combat", "death"),
		firstAbilityTick: firstTick(sl, "ability", "activated"),
		attacks:          sl.CountCategory("combat", "attack"),
		deaths:           sl.CountCategory("combat", "death"),
		abilities:        sl.CountCategory("ability", "activated"),
		projectiles:      sl.CountCategory("projectile", "spawned"),
		fizzled:          sl.CountCategory("projectile", "fizzled"),
		buffsExpired:     sl.CountCategory("ability", "expired"),
		playerTotal:      len(snap.Player.Units),
		enemyTotal:       len(snap.Enemy.Units),
		playerSurvivors:  snap.Player.Alive,
		enemySurvivors:   snap.Enemy.Alive,
		final:            snap,
	}
	return rs
}

func firstTick(sl *battle.SimLog, category, key string) int {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return -1
	}
	return entries[0].Tick
}

// campaign plays the saved (or a new) run of profile until it is lost,
// finished, or stuck, saving after every node.
func (r *runner) campaign(ctx context.Context, profile, hero string, seed int64) error {
	p, err := r.store.LoadProfile(ctx, profile)
	switch {
	case errors.Is(err, storage.ErrProfileNotFound):
		p = progress.New(hero)
		r.log.Info("new campaign", "profile", profile, "hero", hero)
	case err != nil:
		return err
	}
	rng := rand.New(rand.NewSource(seed)) // #nosec G404

	fmt.Printf("=== Campaign %s (hero=%s) ===\n", profile, p.SelectedCharacter)
	for step := 1; step <= 100; step++ {
		m, ok := r.cat.Maps.Map(p.CurrentMap)
		if !ok {
			return fmt.Errorf("map %q not found", p.CurrentMap)
		}
		if p.Completed {
			if len(m.NextMaps) == 0 {
				fmt.Println("campaign complete")
				return r.store.SaveProfile(ctx, profile, p)
			}
			fmt.Printf("map %s complete, moving to %s\n", m.Name, m.NextMaps[0])
			p.AdvanceMap(m.NextMaps[0])
			continue
		}

		next, ok := chooseNode(m, p)
		if !ok {
			return fmt.Errorf("no way forward from node %d on %s", p.CurrentNode, m.Name)
		}
		enc, err := p.Travel(m, next)
		if err != nil {
			return err
		}
		if enc.Battle {
			label := fmt.Sprintf("%s %d-%d", m.Name, p.CurrentNode, next)
			rs, err := r.battle(ctx, step, seed+int64(step), label, p.SquadDefinition(), enc.Enemy, p.Modifiers())
			if err != nil {
				return err
			}
			printRun(rs)
			if err := p.ApplyOutcome(rs.final); err != nil {
				return fmt.Errorf("battle at %s: %w", label, err)
			}
			if rs.outcome == battle.OutcomeLose {
				fmt.Println("the squad was defeated; progress reset")
				return r.store.SaveProfile(ctx, profile, p)
			}
		}

		reward, err := p.ClaimReward(rng)
		if err != nil && !errors.Is(err, progress.ErrSquadFull) {
			return err
		}
		fmt.Printf("step %d: %s node %d (%s) squad=%d buffs=%d %s\n",
			step, m.Name, p.CurrentNode, enc.Node.Type, len(p.Squad), len(p.Buffs), reward.Text)
		for _, mg := range reward.Merges {
			fmt.Printf("  merged two %s into a %s in slot %d\n", mg.From, mg.To, mg.Slot)
		}
		if err := r.store.SaveProfile(ctx, profile, p); err != nil {
			return err
		}
	}
	return errors.New("campaign did not finish within 100 steps")
}

// chooseNode prefers an unvisited neighbour further along the map.
func chooseNode(m *defs.Map, p *progress.Progress) (int, bool) {
	var forward []int
	for _, n := range m.Neighbours(p.CurrentNode) {
		if n > p.CurrentNode {
			forward = append(forward, n)
		}
	}
	if len(forward) == 0 {
		return 0, false
	}
	slices.Sort(forward)
	for _, n := range forward {
		if !slices.Contains(p.VisitedNodes, n) {
			return n, true
		}
	}
	return forward[0], true
}
