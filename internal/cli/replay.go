// replay.go: Feed saved logs through a pipeline
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/pingseran/eplog"
	"github.com/spf13/cobra"
)

func newReplayCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "replay FILE...",
		Short: "Re-emit saved records through a configured pipeline",
		Long: `Read text or JSON-line logs and hand every record to a pipeline built
from --config. The pipeline's level threshold applies; records keep their
original sequence numbers.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Dir = dir
			}
			p, err := eplog.New(cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var total eplog.ReplayResult
			for _, name := range args {
				res, err := replayFile(ctx, name, p)
				total.Queued += res.Queued
				total.Suppressed += res.Suppressed
				if err != nil {
					_ = p.Close()
					return err
				}
			}
			if err := p.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %d, suppressed %d\n", total.Queued, total.Suppressed)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "log directory (overrides config)")
	return cmd
}

func replayFile(ctx context.Context, name string, p *eplog.Pipeline) (eplog.ReplayResult, error) {
	f, err := os.Open(name) // #nosec G304 -- user supplied file to replay
	if err != nil {
		return eplog.ReplayResult{}, err
	}
	defer f.Close()
	return eplog.Replay(ctx, f, p)
}
