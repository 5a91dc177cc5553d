package viewer

import (
	"math"

	"github.com/Garsondee/squadclash/internal/battle"
)

const (
	hudHeight   = 96
	arenaMargin = 3.0 // world units kept around the starting formations
)

// camera maps arena coordinates (origin at the centre line) to screen pixels.
type camera struct {
	w, h  int
	scale float64 // pixels per world unit
	cx    float64 // world point at the screen centre
	cy    float64
}

func newCamera(w, h int) camera {
	return camera{w: w, h: h, scale: 40}
}

// fit frames every unit of snap with arenaMargin to spare.
func (c *camera) fit(snap battle.Snapshot) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sq := range [...]battle.SquadSnapshot{snap.Player, snap.Enemy} {
		for _, u := range sq.Units {
			minX, maxX = math.Min(minX, u.Position.X), math.Max(maxX, u.Position.X)
			minY, maxY = math.Min(minY, u.Position.Y), math.Max(maxY, u.Position.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return
	}
	spanX := maxX - minX + 2*arenaMargin
	spanY := maxY - minY + 2*arenaMargin
	c.scale = math.Min(float64(c.w)/spanX, float64(c.h)/spanY)
	c.cx = (minX + maxX) / 2
	c.cy = (minY + maxY) / 2
}

// toScreen converts a world position to pixel coordinates.
func (c camera) toScreen(p battle.Vec2) (float32, float32) {
	x := float64(c.w)/2 + (p.X-c.cx)*c.scale
	y := float64(c.h)/2 + (p.Y-c.cy)*c.scale
	return float32(x), float32(y)
}

// pixels converts a world length to pixels.
func (c camera) pixels(d float64) float32 { return float32(d * c.scale) }
