// bench.go: Concurrent load generator
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pingseran/eplog"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
)

type benchOptions struct {
	records int
	workers int
	dir     string
}

func newBenchCommand() *cobra.Command {
	var opts benchOptions
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Write records from many goroutines and report throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if opts.dir != "" {
				cfg.Dir = opts.dir
			}
			return runBench(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.records, "records", "n", 1000, "records per goroutine")
	cmd.Flags().IntVarP(&opts.workers, "goroutines", "m", 16, "number of producing goroutines")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "log directory (overrides config)")
	return cmd
}

// benchResult is what one bench run measured.
type benchResult struct {
	total   int
	elapsed time.Duration
	stats   eplog.Stats
}

func runBench(ctx context.Context, out io.Writer, cfg eplog.Config, opts benchOptions) error {
	if opts.records < 0 || opts.workers <= 0 {
		return fmt.Errorf("records must be >= 0 and goroutines > 0")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := eplog.New(cfg)
	if err != nil {
		return err
	}

	res := benchPipeline(p, opts)

	shutdownCtx, cancel := context.WithTimeout(ctx, p.Config().Grace+5*time.Second)
	defer cancel()
	if err := p.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	res.stats = p.Stats()

	printBench(out, res)
	return nil
}

// benchPipeline runs opts.workers goroutines of opts.records info records
// and times the producer side only.
func benchPipeline(p *eplog.Pipeline, opts benchOptions) benchResult {
	var wg conc.WaitGroup
	start := time.Now()
	for w := 0; w < opts.workers; w++ {
		log := p.Logger().Named("bench-" + strconv.Itoa(w))
		wg.Go(func() {
			for i := 0; i < opts.records; i++ {
				log.Infof("bench record %d", i)
			}
		})
	}
	wg.Wait()
	return benchResult{total: opts.records * opts.workers, elapsed: time.Since(start)}
}

func printBench(out io.Writer, res benchResult) {
	perRecord := time.Duration(0)
	qps := 0.0
	if res.total > 0 {
		perRecord = res.elapsed / time.Duration(res.total)
	}
	if res.elapsed > 0 {
		qps = float64(res.total) / res.elapsed.Seconds()
	}

	fmt.Fprintln(out, titleStyle.Render("eplog bench"))
	fmt.Fprintf(out, "records   %d\n", res.total)
	fmt.Fprintf(out, "elapsed   %s\n", res.elapsed)
	fmt.Fprintf(out, "per rec   %s\n", perRecord)
	fmt.Fprintf(out, "qps       %.0f\n", qps)
	fmt.Fprintf(out, "written   %d\n", res.stats.Written)
	if res.stats.Dropped > 0 {
		fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("dropped   %d", res.stats.Dropped)))
	}
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("rotations %d", res.stats.Rotations)))
}
