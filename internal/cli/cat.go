// cat.go: Pretty-print log files
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/pingseran/eplog"
	"github.com/spf13/cobra"
)

type catOptions struct {
	level   string
	json    bool
	noColor bool
}

func newCatCommand() *cobra.Command {
	var opts catOptions
	cmd := &cobra.Command{
		Use:   "cat FILE...",
		Short: "Print text or JSON-line logs with level colours",
		Long: `Print one or more eplog files. Text and JSON-line files are both
accepted, line by line. Lines that do not parse are printed unchanged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minLevel := eplog.LevelNone
			if opts.level != "" {
				l, err := eplog.ParseLevel(opts.level)
				if err != nil {
					return err
				}
				minLevel = l
			}
			for _, name := range args {
				if err := catFile(cmd.Context(), cmd.OutOrStdout(), name, minLevel, opts); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.level, "level", "", "minimum level to show (D, I, W, E, T or name)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print records as JSON lines")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colours")
	return cmd
}

func catFile(ctx context.Context, out io.Writer, name string, minLevel eplog.Level, opts catOptions) error {
	f, err := os.Open(name) // #nosec G304 -- user supplied file to display
	if err != nil {
		return err
	}
	defer f.Close()
	return catReader(ctx, out, f, minLevel, opts)
}

func catReader(ctx context.Context, out io.Writer, r io.Reader, minLevel eplog.Level, opts catOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var buf []byte
	return eplog.ScanLines(ctx, r, func(_ int, line []byte) error {
		rec, err := eplog.ParseLine(line)
		if err != nil {
			_, werr := fmt.Fprintf(out, "%s\n", line)
			return werr
		}
		if rec.Level < minLevel {
			return nil
		}
		if opts.json {
			buf = rec.AppendJSON(buf[:0])
			_, err = out.Write(buf)
			return err
		}
		_, err = fmt.Fprintln(out, formatRecord(rec, !opts.noColor))
		return err
	})
}

// formatRecord renders a record for the terminal.
func formatRecord(rec *eplog.Record, color bool) string {
	ts := rec.Time.UTC().Format("2006-01-02 15:04:05.000000")
	code := rec.Level.String()
	where := fmt.Sprintf("%s:%d", path.Base(rec.File), rec.Line)
	if color {
		ts = dimStyle.Render(ts)
		code = levelStyle(rec.Level).Render(code)
		where = dimStyle.Render(where)
	}
	return fmt.Sprintf("%s %s %6d %s/%s %s %s", ts, code, rec.Seq, rec.ProcessName, rec.ThreadName, where, rec.Message)
}
