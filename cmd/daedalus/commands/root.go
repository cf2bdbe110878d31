// Package commands implements the daedalus CLI: inspection and one-shot
// execution of units from the built-in set plus any manifest roots.
package commands

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	manifestRoots []string
	jsonOutput    bool
	natsURL       string
)

// Execute runs the root command.
func Execute(ctx context.Context, logger *zap.Logger) error {
	rootCmd := newRootCommand(logger)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(logger *zap.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "daedalus",
		Short: "Daedalus - workflow unit registry",
		Long: `Daedalus discovers workflow units, activates them in dependency order,
and executes them with per-unit failure isolation.

The CLI loads the built-in unit set plus any unit manifests found under the
given roots, then inspects or invokes the resulting registry.`,
	}

	rootCmd.PersistentFlags().StringSliceVarP(&manifestRoots, "root", "r", nil, "manifest root to scan (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&natsURL, "nats", "", "NATS server URL for registry events")

	rootCmd.AddCommand(newListCommand(logger))
	rootCmd.AddCommand(newSearchCommand(logger))
	rootCmd.AddCommand(newExecCommand(logger))
	rootCmd.AddCommand(newMetricsCommand(logger))
	rootCmd.AddCommand(newWatchCommand(logger))

	return rootCmd
}
