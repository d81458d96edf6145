// root.go: Root command and shared flags
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package cli implements the eplog command: a load generator and a log
// file viewer for the eplog pipeline.
package cli

import (
	"strings"

	"github.com/pingseran/eplog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCommand builds the command tree. Each call returns fresh commands
// so tests can run them in isolation.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "eplog",
		Short: "Asynchronous structured-log pipeline tools",
		Long: `eplog drives and inspects eplog pipelines.

Examples:
  # 16 goroutines writing 1000 info records each
  eplog bench -n 1000 -m 16

  # Show warnings and errors from the primary log
  eplog cat log/ep.0.log --level W

  # Feed a saved log through a pipeline configured by file
  eplog replay old.log --config eplog.yaml`,
		SilenceUsage: true,
	}

	root.SetGlobalNormalizationFunc(dashedFlags)
	root.PersistentFlags().StringP("config", "c", "", "config file (yaml, toml or json); EPLOG_* env vars override it")

	root.AddCommand(newBenchCommand(), newCatCommand(), newReplayCommand())
	return root
}

// Execute runs the command line.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig reads --config through eplog.LoadConfig.
func loadConfig(cmd *cobra.Command) (eplog.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return eplog.LoadConfig(path)
}

// dashedFlags accepts --no_color and --no.color as --no-color.
func dashedFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.NewReplacer("_", "-", ".", "-").Replace(name))
}
