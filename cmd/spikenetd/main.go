// Command spikenetd runs the spiking neural network runtime: the object
// store, the spike scheduler, its worker pool, and the network/driver
// layer that turns fired neurons into newly scheduled spikes.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/axontrace/spikenet/pkg/assert"
	"github.com/axontrace/spikenet/pkg/config"
	"github.com/axontrace/spikenet/pkg/driver"
	"github.com/axontrace/spikenet/pkg/idalloc"
	"github.com/axontrace/spikenet/pkg/inspect"
	"github.com/axontrace/spikenet/pkg/network"
	"github.com/axontrace/spikenet/pkg/scheduler"
	"github.com/axontrace/spikenet/pkg/store"
	"github.com/axontrace/spikenet/pkg/workerpool"
)

func main() {
	var cliOverrides config.CLIOverrides

	rootCmd := &cobra.Command{
		Use:   "spikenetd",
		Short: "spikenetd - spiking neural network runtime",
		Long:  "A real-time spike scheduler and durable object store for spiking neural network simulations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Flags(), &cliOverrides)
		},
		SilenceUsage: true,
	}

	f := rootCmd.Flags()
	cliOverrides.ConfigPath = f.StringP("config", "f", "", "Path to YAML config file (overrides SPIKENET_CONFIG env)")
	cliOverrides.ListenAddr = f.String("listen-addr", "", "Inspection surface listen address")
	cliOverrides.DataPath = f.String("data-path", "", "Data directory for entity records")
	cliOverrides.CacheCapacity = f.Int("cache-capacity", 0, "Object store LRU cache capacity")
	cliOverrides.Compress = f.Bool("compress", false, "Enable gzip compression of backing records")
	cliOverrides.NumSlots = f.Int("num-slots", 0, "Scheduler time-wheel slot count")
	dt := f.Int64("dt-ms", 0, "Scheduler slot width in milliseconds")
	cliOverrides.DtMS = dt
	cliOverrides.DeliveryThreads = f.Int("delivery-threads", 0, "Per-slot delivery chunk count")
	cliOverrides.RealTime = f.Bool("real-time", false, "Synchronize the tick loop to wall-clock time")
	cliOverrides.Workers = f.Int("workers", 0, "Worker pool goroutine count")
	cliOverrides.StrategyName = f.String("strategy", "", "Default pattern-update strategy name")
	cliOverrides.StrictAssertions = f.Bool("strict-assertions", false, "Turn invariant violations into hard errors instead of log-and-continue")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(flags *pflag.FlagSet, cliOverrides *config.CLIOverrides) error {
	config.PrintBanner()

	configPath := ""
	if cliOverrides.ConfigPath != nil && *cliOverrides.ConfigPath != "" {
		configPath = *cliOverrides.ConfigPath
	} else {
		configPath = os.Getenv("SPIKENET_CONFIG")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyExplicitFlags(flags, cfg, cliOverrides)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log.Printf("data path: %s", cfg.Storage.DataPath)
	log.Printf("listen addr: %s", cfg.Server.ListenAddr)

	assert.SetStrict(cfg.Server.StrictAssertions)
	log.Printf("strict assertions: %v", cfg.Server.StrictAssertions)

	objStore, err := store.NewObjectStore(cfg.Storage.DataPath, cfg.Storage.CacheCapacity, cfg.Storage.Compress)
	if err != nil {
		return fmt.Errorf("failed to initialize object store: %w", err)
	}
	log.Println("object store initialized")

	net := network.New()
	alloc := idalloc.New()

	pool := workerpool.New(cfg.Worker.Workers, cfg.Worker.QueueCapacity)
	log.Println("worker pool initialized")

	sched := scheduler.New(scheduler.Config{
		NumSlots:        cfg.Scheduler.NumSlots,
		DtMS:            cfg.Scheduler.DtMS,
		DeliveryThreads: cfg.Scheduler.DeliveryThreads,
		RealTime:        cfg.Scheduler.RealTime,
		STDP: network.STDPParams{
			APlus:    cfg.Scheduler.STDP.APlus,
			AMinus:   cfg.Scheduler.STDP.AMinus,
			TauPlus:  cfg.Scheduler.STDP.TauPlus,
			TauMinus: cfg.Scheduler.STDP.TauMinus,
		},
	}, net, pool)
	log.Println("scheduler constructed")

	driver.New(net, sched)
	log.Println("driver wired to network fire events")

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	log.Println("scheduler started")

	flushStop := objStore.StartFlushWorker(cfg.Daemons.FlushInterval)
	checksumStop := objStore.StartChecksumValidationWorker(cfg.Storage.ChecksumValidationInterval)

	inspectSrv := inspect.NewServer(cfg.Server.ListenAddr, objStore, sched, pool, alloc, cfg)
	go func() {
		if err := inspectSrv.Start(); err != nil {
			log.Printf("⚠ inspection server stopped: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())

	log.Println("spikenetd is ready!")
	log.Println("--------------------------------------------")

	config.WaitForShutdown(ctx, cancel)

	log.Println("initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := inspectSrv.Stop(shutdownCtx); err != nil {
		log.Printf("inspection server shutdown error: %v", err)
	}

	close(flushStop)
	close(checksumStop)
	sched.Stop()
	pool.Stop()

	if err := objStore.Flush(); err != nil {
		log.Printf("final flush error: %v", err)
	}

	log.Println("spikenetd shutdown complete")
	return nil
}

func applyExplicitFlags(flags *pflag.FlagSet, cfg *config.Config, o *config.CLIOverrides) {
	overrides := config.CLIOverrides{}

	if flags.Changed("listen-addr") {
		overrides.ListenAddr = o.ListenAddr
	}
	if flags.Changed("data-path") {
		overrides.DataPath = o.DataPath
	}
	if flags.Changed("cache-capacity") {
		overrides.CacheCapacity = o.CacheCapacity
	}
	if flags.Changed("compress") {
		overrides.Compress = o.Compress
	}
	if flags.Changed("num-slots") {
		overrides.NumSlots = o.NumSlots
	}
	if flags.Changed("dt-ms") {
		overrides.DtMS = o.DtMS
	}
	if flags.Changed("delivery-threads") {
		overrides.DeliveryThreads = o.DeliveryThreads
	}
	if flags.Changed("real-time") {
		overrides.RealTime = o.RealTime
	}
	if flags.Changed("workers") {
		overrides.Workers = o.Workers
	}
	if flags.Changed("strategy") {
		overrides.StrategyName = o.StrategyName
	}
	if flags.Changed("strict-assertions") {
		overrides.StrictAssertions = o.StrictAssertions
	}

	cfg.ApplyCLIOverrides(&overrides)
}
