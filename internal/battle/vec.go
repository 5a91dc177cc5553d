package battle

import "math"

// Vec2 is a point or displacement on the arena plane.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// Normalized returns the unit vector along v, or the zero vector when v has no length.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// MoveToward returns the point reached by travelling at most step from v
// toward target. The result never passes target.
func (v Vec2) MoveToward(target Vec2, step float64) Vec2 {
	d := target.Sub(v)
	dist := d.Len()
	if dist == 0 || step >= dist {
		return target
	}
	return v.Add(d.Scale(step / dist))
}
