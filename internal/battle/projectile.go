package battle

// ProjectileID identifies an in-flight projectile. Zero means none.
type ProjectileID int

// DefaultProjectileEpsilon is the arrival distance for projectiles.
const DefaultProjectileEpsilon = 0.1

// Projectile carries damage rolled at spawn time toward the point where its
// target stood when it was fired. It is never re-aimed.
type Projectile struct {
	id       ProjectileID
	kind     *ProjectileType
	from     UnitID
	target   *Unit
	origin   Vec2
	pos      Vec2
	aim      Vec2
	damage   int
	age      float64
	lifetime float64
	speed    float64
}

func (p *Projectile) ID() ProjectileID { return p.id }
func (p *Projectile) Position() Vec2 { return p.pos }
func (p *Projectile) Aim() Vec2 { return p.aim }
func (p *Projectile) Damage() int { return p.damage }

// projectileArrival is a projectile that reached its aim point or ran out of
// lifetime during one advance.
type projectileArrival struct {
	p       *Projectile
	expired bool
}

// projectileScheduler keeps in-flight projectiles in spawn order.
type projectileScheduler struct {
	nextID   ProjectileID
	inFlight []*Projectile
	epsilon  float64
}

func newProjectileScheduler(epsilon float64) *projectileScheduler {
	if epsilon <= 0 {
		epsilon = DefaultProjectileEpsilon
	}
	return &projectileScheduler{epsilon: epsilon}
}

func (ps *projectileScheduler) spawn(from, target *Unit, damage int) *Projectile {
	ps.nextID++
	kind := from.projectile
	p := &Projectile{
		id:       ps.nextID,
		kind:     kind,
		from:     from.id,
		target:   target,
		origin:   from.pos,
		pos:      from.pos,
		aim:      target.pos,
		damage:   damage,
		speed:    kind.Speed,
		lifetime: kind.MaxLifetime,
	}
	ps.inFlight = append(ps.inFlight, p)
	return p
}

// advance moves every projectile by dt and removes the ones that arrive,
// returning them in spawn order.
func (ps *projectileScheduler) advance(dt float64) []projectileArrival {
	var arrived []projectileArrival
	kept := ps.inFlight[:0]
	for _, p := range ps.inFlight {
		p.age += dt
		remaining := p.pos.Dist(p.aim)
		step := p.speed * dt
		switch {
		case remaining <= ps.epsilon || step >= remaining:
			p.pos = p.aim
			arrived = append(arrived, projectileArrival{p: p})
		case p.age >= p.lifetime-timeEpsilon:
			p.pos = p.pos.MoveToward(p.aim, step)
			arrived = append(arrived, projectileArrival{p: p, expired: true})
		default:
			p.pos = p.pos.MoveToward(p.aim, step)
			if p.pos.Dist(p.aim) <= ps.epsilon {
				arrived = append(arrived, projectileArrival{p: p})
				continue
			}
			kept = append(kept, p)
		}
	}
	clear(ps.inFlight[len(kept):])
	ps.inFlight = kept
	return arrived
}

// dropTarget removes every projectile aimed at unit and returns them.
func (ps *projectileScheduler) dropTarget(unit UnitID) []*Projectile {
	var dropped []*Projectile
	kept := ps.inFlight[:0]
	for _, p := range ps.inFlight {
		if p.target.id == unit {
			dropped = append(dropped, p)
			continue
		}
		kept = append(kept, p)
	}
	clear(ps.inFlight[len(kept):])
	ps.inFlight = kept
	return dropped
}

func (ps *projectileScheduler) Len() int { return len(ps.inFlight) }
