// Package cmd implements knightfall's cobra command tree, one file per subcommand, mirroring
// CWBudde-go-dws's cmd/dwscript/cmd package layout.
package cmd

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/knightfall/knightfall/config"
	"github.com/knightfall/knightfall/internal/zlog"
)

var (
	// Version is overridden at build time via -ldflags, per the teacher's dwscript root command.
	Version = "0.1.0-dev"

	opts       config.Options
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     "knightfall",
	Short:   "A symbolic-execution static analyzer for C/C++",
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	opts = config.Defaults()
	opts.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cobra.OnInitialize(func() {
		if verbose {
			zlog.SetLevel(zerolog.DebugLevel)
		}
	})
}
