package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pthm-cable/murmur/config"
	"github.com/pthm-cable/murmur/game"
	"github.com/pthm-cable/murmur/persistence"
	"github.com/pthm-cable/murmur/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV stats (overrides config)")
	resume := flag.Bool("resume", false, "Restore the stored snapshot on startup")
	saveOnExit := flag.Bool("save-on-exit", true, "Save a snapshot before shutting down")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg := config.Cfg()

	dir := cfg.Telemetry.OutputDir
	if *outputDir != "" {
		dir = *outputDir
	}
	out, err := telemetry.NewOutputManager(dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry output")
	}
	collector := telemetry.NewCollector(out, cfg.Telemetry.FlushEvery)

	eng := game.New(cfg, game.Options{Seed: *seed, Collector: collector})
	defer eng.Close()

	client, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open snapshot store")
	}
	defer closeStore()

	store := persistence.NewSnapshotStore(client, cfg.Persistence.Key)
	saver := persistence.NewSaver(store, eng, cfg.Derived.AutosaveInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *resume {
		if err := saver.LoadNow(ctx); err != nil {
			if eris.Is(err, persistence.ErrNoSnapshot) {
				log.Info().Msg("no stored snapshot; starting fresh")
			} else {
				log.Warn().Err(err).Msg("resume failed")
			}
		}
	}

	go saver.Run(ctx)

	runLoop(ctx, eng, cfg, *maxTicks)

	if *saveOnExit {
		// The run context is already canceled on signal exit; give the
		// final save its own deadline.
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := saver.SaveNow(saveCtx); err != nil && !eris.Is(err, persistence.ErrBusy) {
			log.Warn().Err(err).Msg("final save failed")
		}
	}
}

// runLoop drives the fixed-step scheduler from a wall clock until the
// context is canceled or the tick budget runs out.
func runLoop(ctx context.Context, eng *game.Engine, cfg *config.Config, maxTicks int64) {
	// Poll well below the tick interval so tick timing stays accurate.
	clock := time.NewTicker(cfg.Derived.TickInterval / 4)
	defer clock.Stop()

	logEvery := int64(cfg.Telemetry.LogEveryTicks)

	for {
		select {
		case <-ctx.Done():
			log.Info().Int64("tick", eng.Tick()).Msg("shutting down")
			return
		case now := <-clock.C:
			if !eng.Advance(now) {
				continue
			}
			tick := eng.Tick()
			if logEvery > 0 && tick%logEvery == 0 {
				r := eng.Readout()
				log.Info().
					Int64("tick", r.Tick).
					Int("entities", r.Entities).
					Float64("avg_happiness", r.AverageHappiness).
					Bool("festival", r.FestivalActive).
					Msg("population status")
			}
			if maxTicks > 0 && tick >= maxTicks {
				log.Info().Int64("tick", tick).Msg("tick budget reached")
				return
			}
		}
	}
}

// openStore connects to the configured key-value store, or starts the
// in-process one when no address is configured.
func openStore(cfg *config.Config) (redis.Cmdable, func(), error) {
	if cfg.Persistence.Addr == "" {
		return persistence.NewEmbedded()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Persistence.Addr})
	return client, func() { _ = client.Close() }, nil
}
