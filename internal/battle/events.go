package battle

// EventType names a battle event.
type EventType string

const (
	EventAttackResolved     EventType = "attack_resolved"
	EventUnitDied           EventType = "unit_died"
	EventAbilityActivated   EventType = "ability_activated"
	EventAbilityHit         EventType = "ability_hit"
	EventBuffExpired        EventType = "buff_expired"
	EventProjectileSpawned  EventType = "projectile_spawned"
	EventProjectileResolved EventType = "projectile_resolved"
	EventBattleEnded        EventType = "battle_ended"
)

// Event is the envelope delivered to listeners. Data holds one of the
// payload structs below, matching Type.
type Event struct {
	Type EventType
	Tick int
	Time float64
	Data any
}

// AttackResolved is a landed melee hit or projectile impact.
type AttackResolved struct {
	AttackerID      UnitID
	TargetID        UnitID
	Damage          int
	HealthLost      int // Damage clamped to the health the target had left
	ResultingHealth int
	ProjectileID    ProjectileID // zero for melee
}

// UnitDied fires exactly once per unit.
type UnitDied struct {
	UnitID   UnitID
	Faction  Faction
	KillerID UnitID
}

// AbilityActivated carries the ability's presentation assets through untouched.
type AbilityActivated struct {
	UnitID      UnitID
	AbilityName string
	Kind        AbilityKind
	ButtonAsset string
	EffectAsset string
}

// AbilityHit is ability damage dealt to one unit.
type AbilityHit struct {
	CasterID        UnitID
	TargetID        UnitID
	AbilityName     string
	Damage          int
	HealthLost      int
	ResultingHealth int
	Displacement    Vec2
}

// BuffExpired reports a self buff reverting on a living unit.
type BuffExpired struct {
	UnitID       UnitID
	AbilityName  string
	AttackPeriod float64
}

// ProjectileSpawned reports a ranged attack leaving the attacker.
type ProjectileSpawned struct {
	ID     ProjectileID
	FromID UnitID
	ToID   UnitID
	Damage int
	Origin Vec2
	Aim    Vec2
}

// ProjectileResolved reports a projectile leaving play. Hit is false when the
// target was already dead.
type ProjectileResolved struct {
	ID       ProjectileID
	TargetID UnitID
	Hit      bool
	Expired  bool // landed because its lifetime ran out
}

// BattleEnded is the single terminal event of a battle.
type BattleEnded struct {
	Outcome         Outcome
	Reason          string
	PlayerSurvivors int
	EnemySurvivors  int
}

// Listener receives battle events synchronously during Step and ActivateAbility.
type Listener interface {
	OnEvent(e Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(e Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Dispatcher fans events out to subscribers in subscription order.
type Dispatcher struct {
	listeners map[EventType][]Listener
	all       []Listener
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[EventType][]Listener)}
}

// Subscribe registers l for one event type.
func (d *Dispatcher) Subscribe(t EventType, l Listener) {
	d.listeners[t] = append(d.listeners[t], l)
}

// SubscribeAll registers l for every event type.
func (d *Dispatcher) SubscribeAll(l Listener) {
	d.all = append(d.all, l)
}

// Dispatch delivers e to typed subscribers first, then to catch-all ones.
func (d *Dispatcher) Dispatch(e Event) {
	for _, l := range d.listeners[e.Type] {
		l.OnEvent(e)
	}
	for _, l := range d.all {
		l.OnEvent(e)
	}
}
