package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/squadclash/internal/autocast"
	"github.com/Garsondee/squadclash/internal/battle"
	"github.com/Garsondee/squadclash/internal/config"
	"github.com/Garsondee/squadclash/internal/defs"
	"github.com/Garsondee/squadclash/internal/logging"
	"github.com/Garsondee/squadclash/internal/progress"
	"github.com/Garsondee/squadclash/internal/storage"
	"github.com/Garsondee/squadclash/internal/viewer"
)

func main() {
	configPath := flag.String("config", "", "config file (yaml or json)")
	player := flag.String("player", "knight_start", "player squad name")
	enemy := flag.String("enemy", "goblin_pack", "enemy squad name")
	profile := flag.String("profile", "", "use the squad and buffs of a saved campaign profile")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	logs := logging.NewSlogManager()
	if err := logs.SetupFile(os.Stderr, cfg.LogFile, cfg.LogLevel); err != nil {
		log.Fatal(err)
	}
	defer logs.Close()
	logger := logs.Logger()

	cat, err := defs.LoadCatalog(cfg.Data, cfg.ProjectileDefaults(), logger)
	if err != nil {
		log.Fatal(err)
	}
	enemySquad, err := cat.Squad(*enemy)
	if err != nil {
		log.Fatal(err)
	}
	playerSquad, err := cat.Squad(*player)
	if err != nil {
		log.Fatal(err)
	}
	var mods []battle.Modifier
	if *profile != "" {
		p, err := loadProfile(cfg, *profile)
		if err != nil {
			log.Fatal(err)
		}
		playerSquad, mods = p.SquadDefinition(), p.Modifiers()
	}
	planner, err := autocast.Compile(cfg.Autocast.Rules, logger)
	if err != nil {
		log.Fatal(err)
	}

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	factory := func(seed int64) (*battle.Simulation, error) {
		opts := append(cfg.BattleOptions(),
			battle.WithSeed(seed),
			battle.WithLogger(logger),
			battle.WithModifiers(mods...),
		)
		return battle.New(cat.Registry, playerSquad, enemySquad, opts...)
	}

	g, err := viewer.New(viewer.Config{
		Width:       1280,
		Height:      720,
		TickSeconds: 1.0 / 60,
		Seed:        seed,
		Planner:     planner,
		Logger:      logger,
	}, factory)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowTitle("Squad Clash")
	ebiten.SetWindowSize(1280, 720)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}

func loadProfile(cfg *config.Config, name string) (*progress.Progress, error) {
	store, err := storage.Open(cfg.Storage, nil)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LoadProfile(context.Background(), name)
}
