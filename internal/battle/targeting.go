package battle

import "math"

// nearestEnemy returns the living unit of opponents closest to actor, or nil
// when none is alive. Units are scanned in ascending slot order with a strict
// comparison, so equal distances resolve to the lowest slot.
func nearestEnemy(actor *Unit, opponents *Squad) *Unit {
	var best *Unit
	bestDist := math.Inf(1)
	for _, u := range opponents.slots[MinSlot:] {
		if u == nil || !u.Alive() {
			continue
		}
		if d := actor.pos.Dist(u.pos); d < bestDist {
			best, bestDist = u, d
		}
	}
	return best
}

// enemiesWithin returns living opponents within radius of centre, in slot order.
func enemiesWithin(centre Vec2, radius float64, opponents *Squad) []*Unit {
	var out []*Unit
	for _, u := range opponents.slots[MinSlot:] {
		if u == nil || !u.Alive() {
			continue
		}
		if centre.Dist(u.pos) <= radius {
			out = append(out, u)
		}
	}
	return out
}
