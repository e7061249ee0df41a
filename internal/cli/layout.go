package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"atelier/internal/codec"
	"atelier/internal/layout"
)

type layoutOptions struct {
	profile string
	seed    uint64
	seeded  bool
	workers int
	output  string
}

func newLayoutCmd(g *globalOptions) *cobra.Command {
	var opts layoutOptions

	cmd := &cobra.Command{
		Use:   "layout [snapshot.json|snapshot.yaml]",
		Short: "Run the layout engine over a snapshot file",
		Long: `Run the force-directed layout engine over a snapshot file.

A snapshot lists nodes (id, space_id, label, x, y, width, height) and edges
(source_id, target_id, weight, rejected). The command writes the rounded
positions to --output (default: <input>.layout.json) and prints the run
summary. Profile overrides from the config file apply.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.seeded = cmd.Flags().Changed("seed")
			summary, err := runLayout(cmd.Context(), g, args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.profile, "profile", "p", layout.ProfileLocal, "parameter profile: local, global")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "jitter seed (default: from config, else time-based)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "repulsion workers (default: from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.layout.json)")

	return cmd
}

func runLayout(ctx context.Context, g *globalOptions, input string, opts layoutOptions) (string, error) {
	logger := loggerFromContext(ctx)

	cfg, _, err := g.loadConfig()
	if err != nil {
		return "", err
	}

	// Validates the name; the configured overrides are applied below
	if _, err := layout.ProfileFor(opts.profile); err != nil {
		return "", err
	}
	local, global := cfg.Profiles()
	isGlobal := strings.EqualFold(strings.TrimSpace(opts.profile), layout.ProfileGlobal)
	profile := local
	if isGlobal {
		profile = global
	}

	snap, err := codec.ReadSnapshotFile(input)
	if err != nil {
		return "", fmt.Errorf("load snapshot %s: %w", input, err)
	}
	if err := snap.Validate(); err != nil {
		return "", err
	}

	seed := uint64(time.Now().UnixNano())
	switch {
	case opts.seeded:
		seed = opts.seed
	case cfg.Layout.Seed != nil:
		seed = *cfg.Layout.Seed
	}
	workers := cfg.Layout.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}

	logger.Debug("running layout", "profile", profile.Name, "nodes", len(snap.Nodes), "edges", len(snap.Edges), "seed", seed, "workers", workers)

	start := time.Now()
	report := layout.Arrange(*snap, profile,
		layout.WithSeed(seed),
		layout.WithWorkers(workers),
		layout.WithMinWeight(cfg.Layout.MinWeight),
	)
	logger.Infof("Arranged %d nodes in %d iterations (%s)", report.NodeCount, report.Iterations, time.Since(start).Round(time.Millisecond))

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
	}
	if err := codec.WriteReportFile(output, report); err != nil {
		return "", err
	}
	logger.Info("positions written", "path", output)

	if isGlobal {
		return report.GlobalSummary(snap.SpaceCount()), nil
	}
	return report.Summary(), nil
}
