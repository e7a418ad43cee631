package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zeusync/sectorsim/internal/core/config"
	"github.com/zeusync/sectorsim/internal/core/persistence"
	"github.com/zeusync/sectorsim/internal/core/scenario"
	"github.com/zeusync/sectorsim/internal/injector"
	"github.com/zeusync/sectorsim/pkg/concurrent"
)

var (
	configPath  string
	snapshotDir string
	workers     int
)

var runCmd = &cobra.Command{
	Use:   "run scenario.yaml...",
	Short: "Run scenario files",
	Long:  `Run one or more scenario files to completion. Each file gets its own world, so files run concurrently.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScenarios,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "simulation config file (YAML)")
	runCmd.Flags().StringVar(&snapshotDir, "snapshot", "", "directory to write a snapshot of each finished run into")
	runCmd.Flags().IntVar(&workers, "workers", 4, "scenarios run at the same time")
}

// outcome is what one scenario run reports.
type outcome struct {
	result   scenario.Result
	digest   uint64
	snapshot string
}

func runScenarios(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.LoadFile(configPath); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcomes, err := concurrent.ParallelMap(ctx, args, workers, func(ctx context.Context, path string) (outcome, error) {
		return runFile(ctx, path, cfg)
	})
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		printOutcome(cmd.OutOrStdout(), o)
	}
	return nil
}

func runFile(ctx context.Context, path string, cfg config.Config) (outcome, error) {
	sc, err := scenario.LoadFile(path)
	if err != nil {
		return outcome{}, fmt.Errorf("%s: %w", path, err)
	}
	level, err := sc.Build()
	if err != nil {
		return outcome{}, fmt.Errorf("%s: %w", path, err)
	}
	sim, err := injector.InitializeSimulation(level, cfg)
	if err != nil {
		return outcome{}, fmt.Errorf("%s: %w", path, err)
	}
	defer sim.Log.Sync() //nolint:errcheck

	res, err := sim.Runner.Run(ctx)
	if err != nil {
		return outcome{}, fmt.Errorf("%s: %w", path, err)
	}

	reg := sim.Runner.Registry()
	o := outcome{result: res, digest: persistence.Digest(level.World, reg.Export())}
	if snapshotDir != "" {
		snap := persistence.Capture(reg)
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".snap"
		o.snapshot = filepath.Join(snapshotDir, name)
		if err := persistence.WriteSnapshot(o.snapshot, snap); err != nil {
			return outcome{}, fmt.Errorf("%s: write snapshot: %w", path, err)
		}
	}
	return o, nil
}

func printOutcome(w io.Writer, o outcome) {
	r := o.result
	fmt.Fprintf(w, "%s: %d ticks, %d activations, %d spawned, %d still active\n",
		r.Name, r.Ticks, r.Activations, r.Spawned, r.Active)
	fmt.Fprintf(w, "  digest %016x\n", o.digest)
	for _, p := range r.Planes {
		fmt.Fprintf(w, "  sector %3d  floor %8.2f  ceiling %8.2f\n", p.Sector, p.Floor, p.Ceiling)
	}
	if o.snapshot != "" {
		fmt.Fprintf(w, "  snapshot %s\n", o.snapshot)
	}
}
