package battle

import "math"

// rangeEpsilon keeps a unit that stopped exactly at its attack range from
// creeping forward on float error.
const rangeEpsilon = 1e-6

// inRange reports whether target is within actor's attack range.
func inRange(actor, target *Unit) bool {
	return actor.pos.Dist(target.pos) <= actor.attackRange+rangeEpsilon
}

// approach moves actor straight toward target by at most moveSpeed*dt,
// stopping at the edge of its attack range. It returns the distance covered.
func approach(actor, target *Unit, dt float64) float64 {
	gap := actor.pos.Dist(target.pos) - actor.attackRange
	if gap <= rangeEpsilon {
		return 0
	}
	step := math.Min(actor.moveSpeed*dt, gap)
	if step <= 0 {
		return 0
	}
	actor.pos = actor.pos.MoveToward(target.pos, step)
	return step
}

// knockback pushes u directly away from origin by distance. When the two
// positions coincide, u is pushed along its own retreat direction.
func knockback(u *Unit, origin Vec2, distance float64) Vec2 {
	if distance <= 0 {
		return Vec2{}
	}
	dir := u.pos.Sub(origin).Normalized()
	if dir == (Vec2{}) {
		dir = u.faction.facing().Scale(-1)
	}
	shift := dir.Scale(distance)
	u.pos = u.pos.Add(shift)
	return shift
}
