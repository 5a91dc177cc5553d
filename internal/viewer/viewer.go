// Package viewer renders a live battle with ebiten. The player fires abilities
// with the number keys; autocast rules drive the enemy.
package viewer

import (
	"fmt"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/squadclash/internal/autocast"
	"github.com/Garsondee/squadclash/internal/battle"
)

// Factory builds a fresh battle for seed.
type Factory func(seed int64) (*battle.Simulation, error)

// Config holds viewer settings.
type Config struct {
	Width       int
	Height      int
	TickSeconds float64
	Seed        int64
	Planner     *autocast.Planner // drives the enemy; nil leaves it without abilities
	Logger      *slog.Logger
}

var speeds = []float64{0, 0.25, 0.5, 1, 2, 4, 8}

// abilityKeys maps number keys to player slots 1-6.
var abilityKeys = [battle.MaxSlot]ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3,
	ebiten.Key4, ebiten.Key5, ebiten.Key6,
}

// Game implements ebiten.Game for one battle at a time.
type Game struct {
	cfg     Config
	factory Factory
	log     *slog.Logger

	sim    *battle.Simulation
	simLog *battle.SimLog
	seed   int64

	speedIdx  int     // index into speeds
	tickAccum float64 // fractional ticks carried between frames
	frame     int

	status      string
	statusUntil int // frame after which status is cleared

	cam camera
}

// New starts the first battle.
func New(cfg Config, factory Factory) (*Game, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	if cfg.TickSeconds <= 0 {
		cfg.TickSeconds = 1.0 / 60
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	g := &Game{
		cfg:      cfg,
		factory:  factory,
		log:      log.With("component", "viewer"),
		speedIdx: 3,
		cam:      newCamera(cfg.Width, cfg.Height-hudHeight),
	}
	if err := g.restart(cfg.Seed); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) restart(seed int64) error {
	sim, err := g.factory(seed)
	if err != nil {
		return fmt.Errorf("start battle seed %d: %w", seed, err)
	}
	g.sim = sim
	g.seed = seed
	g.simLog = battle.NewSimLog(false)
	g.simLog.Attach(sim)
	g.tickAccum = 0
	g.cam.fit(sim.CurrentState())
	g.log.Info("battle started", "seed", seed, "player", sim.Player().AliveCount(), "enemy", sim.Enemy().AliveCount())
	return nil
}

// Sim exposes the running battle.
func (g *Game) Sim() *battle.Simulation { return g.sim }

// Speed is the current ticks per frame.
func (g *Game) Speed() float64 { return speeds[g.speedIdx] }

func (g *Game) Update() error {
	g.frame++
	if err := g.handleInput(); err != nil {
		return err
	}
	g.advance()
	if g.statusUntil > 0 && g.frame > g.statusUntil {
		g.status, g.statusUntil = "", 0
	}
	return nil
}

// advance runs the ticks owed for this frame. Autocast runs before each step.
func (g *Game) advance() {
	g.tickAccum += g.Speed()
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		if g.sim.Ended() {
			g.tickAccum = 0
			return
		}
		if g.cfg.Planner != nil {
			for _, c := range g.cfg.Planner.Apply(g.sim, battle.FactionEnemy) {
				g.flash(fmt.Sprintf("%s cast %s", c.Label, c.Ability))
			}
		}
		g.sim.Step(g.cfg.TickSeconds)
	}
}

func (g *Game) handleInput() error {
	for i, k := range abilityKeys {
		if inpututil.IsKeyJustPressed(k) {
			g.activateSlot(i + 1)
		}
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.togglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		g.changeSpeed(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		g.changeSpeed(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copyLog(clipboard.WriteAll)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		return g.restart(g.seed + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	}
	return nil
}

// activateSlot fires the ability of the player unit in slot.
func (g *Game) activateSlot(slot int) battle.ActivationResult {
	u := g.sim.Player().Unit(slot)
	if u == nil {
		g.flash(fmt.Sprintf("slot %d is empty", slot))
		return battle.RejectedUnknownUnit
	}
	res := g.sim.ActivateAbility(u.ID())
	if res.OK() {
		g.flash(fmt.Sprintf("%s cast %s", u.Label(), u.Ability().Name))
	} else {
		g.flash(fmt.Sprintf("%s: %s", u.Label(), res))
	}
	return res
}

func (g *Game) togglePause() {
	if g.speedIdx == 0 {
		g.speedIdx = 3
	} else {
		g.speedIdx = 0
	}
}

func (g *Game) changeSpeed(delta int) {
	g.speedIdx = min(max(g.speedIdx+delta, 0), len(speeds)-1)
	g.flash(fmt.Sprintf("speed x%.2f", g.Speed()))
}

// copyLog hands the formatted battle log to write.
func (g *Game) copyLog(write func(string) error) {
	text := g.simLog.Format() + g.simLog.Summary(g.sim)
	if err := write(text); err != nil {
		g.log.Warn("clipboard copy failed", "error", err)
		g.flash("clipboard unavailable")
		return
	}
	g.flash(fmt.Sprintf("copied %d log lines", len(g.simLog.Entries())))
}

func (g *Game) flash(msg string) {
	g.status = msg
	g.statusUntil = g.frame + 120
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}
