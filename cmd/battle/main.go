package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Garsondee/squadclash/internal/autocast"
	"github.com/Garsondee/squadclash/internal/config"
	"github.com/Garsondee/squadclash/internal/defs"
	"github.com/Garsondee/squadclash/internal/logging"
	"github.com/Garsondee/squadclash/internal/storage"
	"github.com/Garsondee/squadclash/internal/telemetry"
)

func main() {
	var (
		configPath string
		player     string
		enemy      string
		runs       int
		seedBase   int64
		seedStep   int64
		casters    string
		record     bool
		verbose    bool
		jsonOut    bool
		campaign   string
		hero       string
	)
	flag.StringVar(&configPath, "config", "", "config file (yaml or json)")
	flag.StringVar(&player, "player", "knight_start", "player squad name from the squads file")
	flag.StringVar(&enemy, "enemy", "goblin_pack", "enemy squad name from the squads file")
	flag.IntVar(&runs, "runs", 5, "number of battles")
	flag.Int64Var(&seedBase, "seed-base", 0, "seed for run 1 (0 uses sim.seed, then the clock)")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&casters, "autocast", "both", "sides driven by autocast rules: none, player, enemy, both")
	flag.BoolVar(&record, "record", false, "save battles to the configured database")
	flag.BoolVar(&verbose, "verbose", false, "print every battle's event log")
	flag.BoolVar(&jsonOut, "json", false, "print each run's final snapshot as JSON")
	flag.StringVar(&campaign, "campaign", "", "play a whole campaign and save it under this profile name")
	flag.StringVar(&hero, "hero", "Knight", "hero for -campaign")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		os.Exit(2)
	}
	sides, err := parseSides(casters)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	logs := logging.NewSlogManager()
	if err := logs.SetupFile(os.Stderr, cfg.LogFile, cfg.LogLevel); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	defer logs.Close()
	log := logs.Logger()

	cat, err := defs.LoadCatalog(cfg.Data, cfg.ProjectileDefaults(), log)
	if err != nil {
		log.Error("failed to load data", "error", err)
		os.Exit(1)
	}
	planner, err := autocast.Compile(cfg.Autocast.Rules, log)
	if err != nil {
		log.Error("failed to compile autocast rules", "error", err)
		os.Exit(1)
	}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Enabled {
		if metrics, err = telemetry.NewMetrics(nil); err != nil {
			log.Error("failed to create metrics", "error", err)
			os.Exit(1)
		}
	}

	var store *storage.Store
	if record || campaign != "" {
		if store, err = storage.Open(cfg.Storage, log); err != nil {
			log.Error("failed to open storage", "error", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	if seedBase == 0 {
		seedBase = cfg.Sim.Seed
	}
	if seedBase == 0 {
		seedBase = time.Now().UnixNano()
	}

	r := &runner{
		cfg:     cfg,
		cat:     cat,
		planner: planner,
		sides:   sides,
		metrics: metrics,
		store:   store,
		record:  record,
		verbose: verbose,
		jsonOut: jsonOut,
		log:     log,
	}
	ctx := context.Background()

	if campaign != "" {
		if err := r.campaign(ctx, campaign, hero, seedBase); err != nil {
			log.Error("campaign failed", "error", err)
			os.Exit(1)
		}
		return
	}

	playerSquad, err := cat.Squad(player)
	if err != nil {
		log.Error("unknown player squad", "error", err)
		os.Exit(1)
	}
	enemySquad, err := cat.Squad(enemy)
	if err != nil {
		log.Error("unknown enemy squad", "error", err)
		os.Exit(1)
	}

	fmt.Printf("=== Battle Report ===\n")
	fmt.Printf("player=%s enemy=%s runs=%d seed_base=%d seed_step=%d autocast=%s\n\n",
		player, enemy, runs, seedBase, seedStep, casters)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		rs, err := r.battle(ctx, i+1, seed, fmt.Sprintf("%s vs %s", player, enemy), playerSquad, enemySquad, nil)
		if err != nil {
			log.Error("battle failed", "run", i+1, "seed", seed, "error", err)
			os.Exit(1)
		}
		all = append(all, rs)
		printRun(rs)
	}
	printAggregate(all)
	if metrics != nil {
		printTotals(metrics.Totals())
	}
}
