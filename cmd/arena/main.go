// Command arena plays two fleets against each other in the built-in
// simulator and prints a match report. Useful for tuning config without
// an engine attached.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/nstehr/wingman/config"
	"github.com/nstehr/wingman/drone"
	"github.com/nstehr/wingman/fleet"
	"github.com/nstehr/wingman/model"
	"github.com/nstehr/wingman/scenario"
	"github.com/nstehr/wingman/sim"
	"github.com/nstehr/wingman/stats"
	"github.com/nstehr/wingman/store"
)

type side struct {
	team   int
	pilot  *drone.Pilot
	travel *stats.Tracker
	match  string
	kinds  map[fleet.EventKind]int
}

func main() {
	var (
		cfgPath    = flag.String("config", "", "fleet config (YAML); defaults when empty")
		seed       = flag.Int64("seed", 1, "scenario seed")
		ticks      = flag.Int("ticks", 2000, "ticks to simulate")
		harvesters = flag.Int("harvesters", 6, "harvesters per team")
		fighters   = flag.Int("fighters", 4, "fighters per team")
		guardians  = flag.Int("guardians", 2, "guardians per team")
		dbPath     = flag.String("store", "", "record the match in this SQLite file")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "path", *cfgPath, "error", err)
		os.Exit(1)
	}

	var db *store.DB
	if *dbPath != "" {
		db, err = store.Open(*dbPath)
		if err != nil {
			slog.Error("failed to open store", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	layout := scenario.Generate(cfg.Arena.Bound(), scenario.DefaultOptions(*seed))
	arena := sim.New(cfg.Arena.Bound(), sim.DefaultOptions())
	for _, r := range layout.Resources {
		arena.AddResource(r)
	}
	for _, b := range layout.Bases {
		arena.AddBase(b)
	}

	var sides []*side
	for _, home := range layout.Bases {
		f := drone.NewFleet(home.Team, cfg)
		f.SetHome(home)
		travel := stats.NewTracker()
		p, err := drone.New(f, arena, arena, cfg, travel)
		if err != nil {
			slog.Error("failed to build pilot", "team", home.Team, "error", err)
			os.Exit(1)
		}
		arena.Join(home.Team, p)
		s := &side{team: home.Team, pilot: p, travel: travel, match: uuid.NewString(), kinds: make(map[fleet.EventKind]int)}
		if db != nil {
			if err := db.StartMatch(s.match, s.team); err != nil {
				slog.Error("failed to record match", "error", err)
				os.Exit(1)
			}
		}
		sides = append(sides, s)
	}

	for _, s := range sides {
		for _i := 0; _i < *harvesters; _i++ {
			arena.Spawn(s.team, model.RoleHarvester)
		}
		for _i := 0; _i < *fighters; _i++ {
			arena.Spawn(s.team, model.RoleFighter)
		}
		for _i := 0; _i < *guardians; _i++ {
			arena.Spawn(s.team, model.RoleGuardian)
		}
	}

	for _i := 0; _i < *ticks; _i++ {
		arena.Step()
		for _, s := range sides {
			events := s.pilot.Fleet.Drain()
			for _, e := range events {
				s.kinds[e.Kind]++
			}
			if db != nil {
				if err := db.SaveEvents(s.match, events); err != nil {
					slog.Error("failed to save events", "error", err)
				}
			}
		}
	}

	fmt.Printf("seed %d, %s ticks, %s nodes holding %s payload\n",
		*seed, humanize.Comma(int64(arena.Tick)), humanize.Comma(int64(len(layout.Resources))), humanize.Comma(int64(layout.Total())))
	fmt.Printf("%s shots fired, %s hook errors\n\n", humanize.Comma(int64(arena.Shots)), humanize.Comma(int64(arena.HookErrors)))
	for _, s := range sides {
		report(s)
		if db != nil {
			f := s.pilot.Fleet
			if err := db.SaveTravel(s.match, s.travel); err != nil {
				slog.Error("failed to save travel", "error", err)
			}
			if err := db.UpdateMatch(s.match, arena.Tick, f.Casualties, f.Home.Payload); err != nil {
				slog.Error("failed to update match", "error", err)
			}
		}
	}
}

func report(s *side) {
	f := s.pilot.Fleet
	t := s.travel.Fleet()
	status := "standing"
	if f.Home.Dead {
		status = "destroyed"
	}
	fmt.Printf("team %d (%s)\n", s.team, status)
	fmt.Printf("  delivered   %s\n", humanize.Comma(int64(f.Home.Payload)))
	fmt.Printf("  alive       %d harvesters, %d fighters, %d guardians\n",
		len(f.Harvesters()), len(f.Fighters()), len(f.Guardians()))
	fmt.Printf("  casualties  %d\n", f.Casualties)
	fmt.Printf("  travel      %s empty, %s partial, %s full\n",
		distance(t.Empty), distance(t.Partial), distance(t.Full))

	kinds := make([]string, 0, len(s.kinds))
	for k := range s.kinds {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  %-12s%s\n", k, humanize.Comma(int64(s.kinds[fleet.EventKind(k)])))
	}
	fmt.Println()
}

func distance(d float64) string {
	return humanize.Commaf(math.Round(d))
}
