package battle

import "log/slog"

// Option configures a Simulation at initialization.
type Option func(*settings)

type settings struct {
	seed               int64
	log                *slog.Logger
	projectiles        ProjectileTable
	projectileDefaults ProjectileDef
	layout             Layout
	modifiers          []Modifier
	listeners          []Listener
	epsilon            float64
}

func defaultSettings() settings {
	return settings{
		projectileDefaults: DefaultProjectile,
		layout:             DefaultLayout(),
		epsilon:            DefaultProjectileEpsilon,
	}
}

// WithSeed seeds the damage RNG. Equal seeds and inputs replay identically.
func WithSeed(seed int64) Option { return func(s *settings) { s.seed = seed } }

// WithLogger sets the logger used for engine diagnostics.
func WithLogger(l *slog.Logger) Option { return func(s *settings) { s.log = l } }

// WithProjectiles supplies the projectile table referenced by unit stats.
func WithProjectiles(t ProjectileTable) Option { return func(s *settings) { s.projectiles = t } }

// WithProjectileDefaults replaces the fallback used for unknown projectile names.
func WithProjectileDefaults(d ProjectileDef) Option {
	return func(s *settings) { s.projectileDefaults = d }
}

// WithLayout sets the starting formation.
func WithLayout(l Layout) Option { return func(s *settings) { s.layout = l } }

// WithModifiers applies progression bonuses to matching player units.
func WithModifiers(m ...Modifier) Option {
	return func(s *settings) { s.modifiers = append(s.modifiers, m...) }
}

// WithSubscriber registers a catch-all listener before any event fires.
func WithSubscriber(l Listener) Option {
	return func(s *settings) { s.listeners = append(s.listeners, l) }
}

// WithEpsilon sets the projectile arrival distance.
func WithEpsilon(eps float64) Option { return func(s *settings) { s.epsilon = eps } }

// Simulation is one battle between a player squad and an enemy squad. It is
// step-driven and single-threaded: all state changes happen inside Step or
// ActivateAbility.
type Simulation struct {
	log        *slog.Logger
	dispatcher *Dispatcher
	registry   *Registry

	player *Squad
	enemy  *Squad
	units  []*Unit // indexed by id-1

	targets     map[UnitID]UnitID
	combat      combatResolver
	projectiles *projectileScheduler
	deferred    deferredQueue
	outcome     outcomeDetector

	now    float64
	tick   int
	events []Event
}

// Initialize resolves the balance tables and builds a battle from the two
// squad definitions. An unknown unit type or a malformed table entry yields
// a *ConfigurationError.
func Initialize(player, enemy SquadDefinition, stats UnitStatsTable, abilities AbilityTable, opts ...Option) (*Simulation, error) {
	cfg := defaultSettings()
	for _, o := range opts {
		o(&cfg)
	}
	reg, err := NewRegistry(stats, abilities, cfg.projectiles, cfg.projectileDefaults, cfg.log)
	if err != nil {
		return nil, err
	}
	return newSimulation(reg, player, enemy, cfg)
}

// New builds a battle from an already validated registry. Hosts that run many
// battles against the same tables resolve the registry once and call New.
func New(reg *Registry, player, enemy SquadDefinition, opts ...Option) (*Simulation, error) {
	cfg := defaultSettings()
	for _, o := range opts {
		o(&cfg)
	}
	return newSimulation(reg, player, enemy, cfg)
}

func newSimulation(reg *Registry, player, enemy SquadDefinition, cfg settings) (*Simulation, error) {
	if err := player.Validate(FactionPlayer); err != nil {
		return nil, err
	}
	if err := enemy.Validate(FactionEnemy); err != nil {
		return nil, err
	}
	log := cfg.log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s := &Simulation{
		log:         log.With("component", "battle"),
		dispatcher:  NewDispatcher(),
		registry:    reg,
		player:      newSquad(FactionPlayer),
		enemy:       newSquad(FactionEnemy),
		targets:     make(map[UnitID]UnitID),
		combat:      newCombatResolver(cfg.seed),
		projectiles: newProjectileScheduler(cfg.epsilon),
	}
	for _, l := range cfg.listeners {
		s.dispatcher.SubscribeAll(l)
	}

	for _, side := range []struct {
		faction Faction
		def     SquadDefinition
		squad   *Squad
	}{
		{FactionPlayer, player, s.player},
		{FactionEnemy, enemy, s.enemy},
	} {
		bySlot := make(map[int]string, len(side.def))
		for _, p := range side.def {
			bySlot[p.Slot] = p.UnitType
		}
		for slot := MinSlot; slot <= MaxSlot; slot++ {
			name, ok := bySlot[slot]
			if !ok {
				continue
			}
			kind, err := reg.Unit(name)
			if err != nil {
				return nil, err
			}
			u := newUnit(UnitID(len(s.units)+1), side.faction, slot, kind, cfg.layout.Position(side.faction, slot))
			if side.faction == FactionPlayer {
				for _, m := range cfg.modifiers {
					if m.UnitType == name {
						u.applyModifier(m)
					}
				}
			}
			side.squad.place(u)
			s.units = append(s.units, u)
		}
	}

	s.log.Info("battle initialized",
		"player_units", len(s.player.Units()),
		"enemy_units", len(s.enemy.Units()),
		"seed", cfg.seed)
	return s, nil
}

// Step advances the battle by dt seconds. It does nothing once the battle has
// ended or when dt is not positive.
func (s *Simulation) Step(dt float64) {
	if dt <= 0 || s.outcome.ended() {
		return
	}
	s.now += dt
	s.tick++

	s.runDeferred()
	s.advanceProjectiles(dt)
	for slot := MinSlot; slot <= MaxSlot; slot++ {
		for _, sq := range [...]*Squad{s.player, s.enemy} {
			u := sq.slots[slot]
			if u == nil || !u.Alive() {
				continue
			}
			s.actUnit(u, dt)
		}
	}
	s.settleOutcome()
}

// runDeferred executes every task due by now. Tasks whose unit has died are
// discarded.
func (s *Simulation) runDeferred() {
	for t := s.deferred.popDue(s.now); t != nil; t = s.deferred.popDue(s.now) {
		u := s.Unit(t.unit)
		if u == nil || !u.Alive() {
			s.log.Debug("deferred task discarded", "task", t.label, "unit", t.unit)
			continue
		}
		t.run(u)
	}
}

// advanceProjectiles lands arrivals in spawn order. An impact reports the
// projectile before the death it causes.
func (s *Simulation) advanceProjectiles(dt float64) {
	for _, a := range s.projectiles.advance(dt) {
		p := a.p
		hit := s.landHit(p.from, p.target, p.damage, p.id)
		s.emit(EventProjectileResolved, ProjectileResolved{
			ID:       p.id,
			TargetID: p.target.id,
			Hit:      hit,
			Expired:  a.expired,
		})
		if hit && p.target.health == 0 {
			s.kill(p.target, p.from)
		}
	}
}

// settleOutcome emits BattleEnded once a wipe has been observed and discards
// the remaining deferred work.
func (s *Simulation) settleOutcome() {
	r, ok := s.outcome.settle(s.player, s.enemy)
	if !ok {
		return
	}
	s.emit(EventBattleEnded, BattleEnded{
		Outcome:         r.Outcome,
		Reason:          r.Description,
		PlayerSurvivors: r.PlayerSurvivors,
		EnemySurvivors:  r.EnemySurvivors,
	})
	discarded := s.deferred.drain()
	s.log.Info("battle ended",
		"outcome", r.Outcome.String(),
		"reason", r.Description,
		"time", s.now,
		"tick", s.tick,
		"discarded_tasks", len(discarded))
}

func (s *Simulation) emit(t EventType, data any) {
	e := Event{Type: t, Tick: s.tick, Time: s.now, Data: data}
	s.events = append(s.events, e)
	s.dispatcher.Dispatch(e)
}

func (s *Simulation) squad(f Faction) *Squad {
	if f == FactionPlayer {
		return s.player
	}
	return s.enemy
}

// Subscribe registers l for events of type t.
func (s *Simulation) Subscribe(t EventType, l Listener) { s.dispatcher.Subscribe(t, l) }

// SubscribeAll registers l for every event.
func (s *Simulation) SubscribeAll(l Listener) { s.dispatcher.SubscribeAll(l) }

// Events returns every event emitted so far, in emission order.
func (s *Simulation) Events() []Event { return s.events }

// Now returns the simulated time in seconds.
func (s *Simulation) Now() float64 { return s.now }

// Tick returns the number of steps taken.
func (s *Simulation) Tick() int { return s.tick }

// Ended reports whether the battle has a terminal outcome.
func (s *Simulation) Ended() bool { return s.outcome.ended() }

// Outcome returns the terminal outcome, or OutcomeNone while in progress.
func (s *Simulation) Outcome() Outcome {
	if !s.outcome.ended() {
		return OutcomeNone
	}
	return s.outcome.result.Outcome
}

// Registry returns the resolved balance tables.
func (s *Simulation) Registry() *Registry { return s.registry }

// Player returns the player squad.
func (s *Simulation) Player() *Squad { return s.player }

// Enemy returns the enemy squad.
func (s *Simulation) Enemy() *Squad { return s.enemy }

// Units returns every unit in id order.
func (s *Simulation) Units() []*Unit { return s.units }

// Unit returns the unit with id, or nil.
func (s *Simulation) Unit(id UnitID) *Unit {
	if id < 1 || int(id) > len(s.units) {
		return nil
	}
	return s.units[id-1]
}

// TargetOf returns the unit id currently targeted by id.
func (s *Simulation) TargetOf(id UnitID) (UnitID, bool) {
	t, ok := s.targets[id]
	return t, ok
}

// InFlight returns the number of projectiles still travelling.
func (s *Simulation) InFlight() int { return s.projectiles.Len() }

// PendingTasks returns the number of deferred tasks waiting to run.
func (s *Simulation) PendingTasks() int { return s.deferred.Len() }
