package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/microvita/microcosm/audio"
	"github.com/microvita/microcosm/config"
	"github.com/microvita/microcosm/game"
	"github.com/microvita/microcosm/ui"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics or audio")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	opts := game.Options{
		Headless:  *headless,
		Seed:      rngSeed,
		MaxTicks:  int32(*maxTicks),
		OutputDir: *outputDir,
	}

	if *headless {
		g, err := game.NewGame(opts)
		if err != nil {
			slog.Error("failed to start game", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"max_ticks", *maxTicks,
		)

		for !g.Done() {
			g.Step()
		}
		slog.Info("max ticks reached", "tick", g.Tick())
		return
	}

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Microcosm")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	if cfg.Audio.Enabled {
		player := audio.NewPlayer(cfg.Audio.SampleRate, cfg.Audio.Volume)
		if err := player.Initialize(); err != nil {
			slog.Warn("audio unavailable, continuing silent", "error", err)
		} else {
			defer player.Cleanup()
			opts.Audio = &game.AudioOptions{Cues: player}
		}
	}

	g, err := game.NewGame(opts)
	if err != nil {
		slog.Error("failed to start game", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	controls := ui.NewControlStrip(20, float32(cfg.Screen.Height)-100, 460)
	state := &ui.ControlState{Speed: 1}

	for !rl.WindowShouldClose() {
		g.Update()

		rl.BeginDrawing()
		g.Draw(controls, state)
		rl.EndDrawing()

		if g.Done() {
			break
		}
	}
}
