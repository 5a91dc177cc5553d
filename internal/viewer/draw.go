package viewer

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/squadclash/internal/battle"
)

var (
	arenaFill   = color.RGBA{R: 28, G: 42, B: 28, A: 255}
	hudFill     = color.RGBA{R: 14, G: 16, B: 20, A: 255}
	playerColor = color.RGBA{R: 60, G: 140, B: 255, A: 255}
	enemyColor  = color.RGBA{R: 230, G: 70, B: 60, A: 255}
	deadColor   = color.RGBA{R: 80, G: 80, B: 80, A: 160}
	targetLine  = color.RGBA{R: 255, G: 255, B: 255, A: 40}
	rangeRing   = color.RGBA{R: 255, G: 255, B: 255, A: 25}
	projColor   = color.RGBA{R: 255, G: 220, B: 90, A: 255}
	healthBack  = color.RGBA{R: 60, G: 0, B: 0, A: 255}
	healthFront = color.RGBA{R: 60, G: 220, B: 60, A: 255}
	textColor   = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	readyColor  = color.RGBA{R: 255, G: 210, B: 60, A: 255}
)

var hudFace = text.NewGoXFace(basicfont.Face7x13)

func (g *Game) Draw(screen *ebiten.Image) {
	snap := g.sim.CurrentState()
	aw, ah := float32(g.cfg.Width), float32(g.cfg.Height-hudHeight)
	vector.FillRect(screen, 0, 0, aw, ah, arenaFill, false)
	vector.StrokeLine(screen, aw/2, 0, aw/2, ah, 1, targetLine, false)

	byID := map[battle.UnitID]battle.UnitSnapshot{}
	for _, sq := range [...]battle.SquadSnapshot{snap.Player, snap.Enemy} {
		for _, u := range sq.Units {
			byID[u.ID] = u
		}
	}
	for _, u := range byID {
		if t, ok := byID[u.Target]; ok && u.Status == battle.StatusAlive {
			x0, y0 := g.cam.toScreen(u.Position)
			x1, y1 := g.cam.toScreen(t.Position)
			vector.StrokeLine(screen, x0, y0, x1, y1, 1, targetLine, true)
		}
	}
	for _, sq := range [...]battle.SquadSnapshot{snap.Player, snap.Enemy} {
		for _, u := range sq.Units {
			g.drawUnit(screen, u)
		}
	}
	for _, p := range snap.Projectiles {
		x, y := g.cam.toScreen(p.Position)
		vector.FillCircle(screen, x, y, 3, projColor, true)
	}

	g.drawHUD(screen, snap)
}

func (g *Game) drawUnit(screen *ebiten.Image, u battle.UnitSnapshot) {
	x, y := g.cam.toScreen(u.Position)
	r := max(g.cam.pixels(0.45), 6)
	if u.Status == battle.StatusDead {
		vector.StrokeCircle(screen, x, y, r, 1.5, deadColor, true)
		return
	}
	fill := playerColor
	if u.Faction == battle.FactionEnemy {
		fill = enemyColor
	}
	if u.AttackRange > 1.5 {
		vector.StrokeCircle(screen, x, y, g.cam.pixels(u.AttackRange), 1, rangeRing, true)
	}
	vector.FillCircle(screen, x, y, r, fill, true)
	if u.Ability != nil && !u.Ability.Used {
		vector.StrokeCircle(screen, x, y, r+2, 2, readyColor, true)
	}

	bw := r * 2
	frac := float32(u.Health) / float32(max(u.MaxHealth, 1))
	vector.FillRect(screen, x-r, y-r-7, bw, 4, healthBack, false)
	vector.FillRect(screen, x-r, y-r-7, bw*frac, 4, healthFront, false)
	ebitenutil.DebugPrintAt(screen, u.Label, int(x-r), int(y+r+2))
}

func (g *Game) drawHUD(screen *ebiten.Image, snap battle.Snapshot) {
	top := float32(g.cfg.Height - hudHeight)
	vector.FillRect(screen, 0, top, float32(g.cfg.Width), hudHeight, hudFill, false)
	for i, line := range hudLines(snap, g.Speed(), g.seed, g.status) {
		op := &text.DrawOptions{}
		op.GeoM.Translate(10, float64(top)+8+float64(i)*18)
		op.ColorScale.ScaleWithColor(textColor)
		text.Draw(screen, line, hudFace, op)
	}
}

// hudLines is the text shown under the arena.
func hudLines(snap battle.Snapshot, speed float64, seed int64, status string) []string {
	state := "fighting"
	if snap.Ended {
		state = strings.ToUpper(snap.Outcome.String())
	}
	speedText := fmt.Sprintf("x%.2f", speed)
	if speed == 0 {
		speedText = "paused"
	}
	lines := []string{
		fmt.Sprintf("T=%.2fs tick=%d  %s  player %d alive  enemy %d alive  speed %s  seed %d",
			snap.Time, snap.Tick, state, snap.Player.Alive, snap.Enemy.Alive, speedText, seed),
		abilityBar(snap.Player),
		"[1-6] ability  [space] pause  [+/-] speed  [C] copy log  [R] rematch  [esc] quit",
	}
	if status != "" {
		lines = append(lines, status)
	}
	return lines
}

// abilityBar lists each player slot's ability and whether it can still fire.
func abilityBar(sq battle.SquadSnapshot) string {
	var parts []string
	for _, u := range sq.Units {
		switch {
		case u.Ability == nil:
			continue
		case u.Status == battle.StatusDead:
			parts = append(parts, fmt.Sprintf("%d:%s(dead)", u.Slot, u.Ability.Name))
		case u.Ability.Used:
			parts = append(parts, fmt.Sprintf("%d:%s(used)", u.Slot, u.Ability.Name))
		default:
			parts = append(parts, fmt.Sprintf("%d:%s", u.Slot, u.Ability.Name))
		}
	}
	if len(parts) == 0 {
		return "no abilities"
	}
	return strings.Join(parts, "  ")
}
